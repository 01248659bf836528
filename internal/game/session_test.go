package game

import (
	"math"
	"testing"
	"time"

	"github.com/tomz197/cannonade/internal/config"
	"github.com/tomz197/cannonade/internal/draw"
	"github.com/tomz197/cannonade/internal/object"
	"github.com/tomz197/cannonade/internal/physics"
	"gonum.org/v1/gonum/spatial/r2"
)

var t0 = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

const frame = 16 * time.Millisecond

// quietConfig disables random spawning and initial targets.
func quietConfig() *config.Config {
	cfg := config.Default()
	cfg.Target.SpawnOneIn = math.MaxInt32
	cfg.Target.InitialCount = 0
	return cfg
}

func newQuiet(t *testing.T) *Session {
	t.Helper()
	s := New(quietConfig(), 1)
	s.Start(t0)
	return s
}

func target(x, y, r float64) *object.Body {
	return &object.Body{Pos: r2.Vec{X: x, Y: y}, Radius: r, Color: draw.Green, Alive: true, Role: object.RoleTarget}
}

func TestSession_StartPlacesInitialTargets(t *testing.T) {
	cfg := config.Default()
	s := New(cfg, 1)
	s.Start(t0)
	s.Start(t0.Add(time.Second))

	if got := len(s.View().Targets); got != cfg.Target.InitialCount {
		t.Fatalf("%d targets after Start, want %d", got, cfg.Target.InitialCount)
	}
	if s.State() != StateRunning || s.Score() != 0 {
		t.Fatalf("state=%v score=%d", s.State(), s.Score())
	}
}

func TestSession_OneHitScoring(t *testing.T) {
	s := newQuiet(t)
	a := target(200, 200, 20)
	b := target(205, 200, 20)
	s.targets = []*object.Body{a, b}
	s.shell = object.NewShell(r2.Vec{X: 202, Y: 200}, r2.Vec{}, 4)

	ev := s.Tick(t0.Add(frame), Input{})

	if ev.Hits != 1 || s.Score() != 10 {
		t.Fatalf("hits=%d score=%d, want 1 and 10", ev.Hits, s.Score())
	}
	if a.Alive || s.shell.Alive {
		t.Errorf("first target alive=%v shell alive=%v, want both dead", a.Alive, s.shell.Alive)
	}
	if !b.Alive {
		t.Error("second target died without a shell")
	}

	ev = s.Tick(t0.Add(2*frame), Input{})
	if ev.Hits != 0 || s.Score() != 10 {
		t.Errorf("dead shell scored again: hits=%d score=%d", ev.Hits, s.Score())
	}
}

func TestSession_CheckBeforeMove(t *testing.T) {
	s := newQuiet(t)
	tg := target(300, 200, 10)
	tg.Vel = r2.Vec{X: 10, Y: 0}
	s.targets = []*object.Body{tg}
	s.shell = object.NewShell(r2.Vec{X: 300, Y: 300}, r2.Vec{}, 4)

	s.Tick(t0.Add(frame), Input{})

	if !tg.Alive || tg.Pos.X != 301 {
		t.Fatalf("untouched target: alive=%v x=%v, want alive at 301", tg.Alive, tg.Pos.X)
	}

	hit := target(100, 100, 10)
	hit.Vel = r2.Vec{X: 10, Y: 0}
	s.targets = append(s.targets, hit)
	s.shell = object.NewShell(r2.Vec{X: 100, Y: 100}, r2.Vec{}, 4)
	s.Tick(t0.Add(2*frame), Input{})

	if hit.Alive || hit.Pos != (r2.Vec{X: 100, Y: 100}) {
		t.Errorf("hit target alive=%v pos=%+v, want dead and unmoved", hit.Alive, hit.Pos)
	}
}

func TestSession_FireReplacesShell(t *testing.T) {
	s := newQuiet(t)

	ev := s.Tick(t0.Add(frame), Input{Fire: true, Power: 500})
	if !ev.Fired || ev.Power != 500 {
		t.Fatalf("events = %+v", ev)
	}
	first := s.shell
	if !first.Alive {
		t.Fatal("fired shell is not alive")
	}

	for i := 2; i < 10; i++ {
		s.Tick(t0.Add(time.Duration(i)*frame), Input{})
	}
	s.Tick(t0.Add(10*frame), Input{Fire: true, Power: 1500})

	if s.shell == first {
		t.Fatal("second shot did not replace the shell")
	}
	tip := s.cannon.Tip()
	if d := r2.Norm(r2.Sub(s.shell.Pos, tip)); d > 20 {
		t.Errorf("new shell %v away from the muzzle", d)
	}
	if v := r2.Norm(s.shell.Vel); math.Abs(v-150) > 1 {
		t.Errorf("new shell speed = %v, want about 150", v)
	}
}

func TestSession_FirstShotIsFinite(t *testing.T) {
	cfg := quietConfig()
	cfg.Cannon.InitialAimX, cfg.Cannon.InitialAimY = 0, 0
	s := New(cfg, 1)
	s.Start(t0)

	// The press arrives with the first pointer report, so it fires before
	// the cannon is re-aimed.
	ev := s.Tick(t0.Add(frame), Input{Fire: true, Power: 500, HasPointer: true, Pointer: r2.Vec{X: 300, Y: 100}})
	if !ev.Fired {
		t.Fatal("shot not fired")
	}
	if !physics.Finite(s.shell.Pos) || !physics.Finite(s.shell.Vel) {
		t.Errorf("shell pos=%+v vel=%+v, want finite", s.shell.Pos, s.shell.Vel)
	}
}

func TestSession_FireWithoutDirectionIsSkipped(t *testing.T) {
	s := newQuiet(t)
	s.cannon.Aim = r2.Vec{}
	before := s.shell

	ev := s.Tick(t0.Add(frame), Input{Fire: true, Power: 500})
	if ev.Fired || s.shell != before || s.shell.Alive {
		t.Errorf("events=%+v shell=%+v, want no shot", ev, s.shell)
	}
}

func TestSession_FireUsesCurrentAim(t *testing.T) {
	s := newQuiet(t)
	s.cannon.Aim = r2.Vec{X: 40, Y: 0}
	s.Tick(t0.Add(frame), Input{Fire: true, Power: 500})

	// One integration step after launch at (40,400) with v=(50,0).
	if math.Abs(s.shell.Pos.X-45) > 1e-9 {
		t.Errorf("shell x = %v, want 45", s.shell.Pos.X)
	}
	if math.Abs(s.shell.Vel.X-50) > 1e-9 {
		t.Errorf("shell vx = %v, want 50", s.shell.Vel.X)
	}
}

func TestSession_SpawnIsStagedUntilAfterCollisions(t *testing.T) {
	cfg := quietConfig()
	cfg.Target.SpawnOneIn = 1
	s := New(cfg, 9)
	s.Start(t0)

	s.Tick(t0.Add(frame), Input{})
	if len(s.targets) != 1 {
		t.Fatalf("%d targets after one tick, want 1", len(s.targets))
	}
	tg := s.targets[0]
	// Integration always adds g*dt to vy, so an integer vy means it has not moved.
	if tg.Vel.Y != math.Trunc(tg.Vel.Y) || tg.Pos.Y != math.Trunc(tg.Pos.Y) {
		t.Errorf("spawned target moved on its spawn tick: pos=%+v vel=%+v", tg.Pos, tg.Vel)
	}

	s.Tick(t0.Add(2*frame), Input{})
	if tg.Vel.Y == math.Trunc(tg.Vel.Y) {
		t.Errorf("target did not move on the following tick: vel=%+v", tg.Vel)
	}
}

func TestSession_GameOverExactlyOnce(t *testing.T) {
	s := newQuiet(t)

	ev := s.Tick(t0.Add(60*time.Second-time.Millisecond), Input{})
	if ev.GameOver || s.State() != StateRunning {
		t.Fatal("game over before 60s")
	}

	ev = s.Tick(t0.Add(60*time.Second), Input{})
	if !ev.GameOver || s.State() != StateGameOver {
		t.Fatal("no game over at 60s")
	}

	s.targets = []*object.Body{target(200, 200, 20)}
	s.shell = object.NewShell(r2.Vec{X: 200, Y: 200}, r2.Vec{}, 4)
	before := s.View()

	for i := 1; i <= 5; i++ {
		ev = s.Tick(t0.Add(60*time.Second+time.Duration(i)*frame), Input{Fire: true, Power: 900, HasPointer: true, Pointer: r2.Vec{X: 500, Y: 10}})
		if ev != (Events{}) {
			t.Fatalf("tick after game over reported %+v", ev)
		}
	}
	after := s.View()
	if s.State() != StateGameOver || after.Score != before.Score || after.Shell != before.Shell || after.Cannon.Aim != before.Cannon.Aim {
		t.Error("state changed after game over")
	}
}

func TestSession_Quit(t *testing.T) {
	s := newQuiet(t)
	s.Tick(t0.Add(frame), Input{Quit: true, Fire: true, Power: 500})

	if !s.Quit() {
		t.Fatal("Quit() = false after quit input")
	}
	if s.shell.Alive {
		t.Error("quit tick still fired")
	}
}

func TestSession_AimFollowsPointer(t *testing.T) {
	s := newQuiet(t)
	s.Tick(t0.Add(frame), Input{HasPointer: true, Pointer: r2.Vec{X: 0, Y: 0}})

	if math.Abs(s.cannon.Aim.X) > 1e-9 || math.Abs(s.cannon.Aim.Y+40) > 1e-9 {
		t.Errorf("aim = %+v, want (0,-40)", s.cannon.Aim)
	}

	prev := s.cannon.Aim
	s.Tick(t0.Add(2*frame), Input{HasPointer: true, Pointer: s.cannon.Base})
	if s.cannon.Aim != prev {
		t.Errorf("degenerate pointer changed aim to %+v", s.cannon.Aim)
	}
}

func TestSession_ScoreTracksDeadTargets(t *testing.T) {
	cfg := config.Default()
	cfg.Target.SpawnOneIn = 5
	s := New(cfg, 42)
	s.Start(t0)

	prev := 0
	now := t0
	for i := 0; i < 3000; i++ {
		now = now.Add(frame / 4)
		in := Input{HasPointer: true, Pointer: r2.Vec{X: float64(i % 600), Y: float64((i * 7) % 400)}}
		if i%15 == 0 {
			in.Fire = true
			in.Power = 400 + float64(i%1100)
		}
		s.Tick(now, in)

		if s.Score() < prev {
			t.Fatalf("score went down: %d -> %d", prev, s.Score())
		}
		prev = s.Score()

		dead := 0
		for _, tg := range s.targets {
			if !tg.Alive {
				dead++
			}
		}
		if s.Score() != dead*cfg.Match.ScorePerHit {
			t.Fatalf("tick %d: score %d with %d dead targets", i, s.Score(), dead)
		}
	}
	if s.Score() == 0 {
		t.Log("no hits in the random run")
	}
}

func TestSession_DebrisOnHit(t *testing.T) {
	s := newQuiet(t)
	s.targets = []*object.Body{target(200, 200, 20)}
	s.shell = object.NewShell(r2.Vec{X: 200, Y: 200}, r2.Vec{}, 4)

	s.Tick(t0.Add(frame), Input{})
	v := s.View()
	if len(v.Particles) == 0 {
		t.Fatal("hit produced no debris")
	}
	for _, p := range v.Particles {
		if p.Color != draw.Green {
			t.Errorf("debris color %+v, want target color", p.Color)
		}
	}

	now := t0.Add(frame)
	for i := 0; i < 120; i++ {
		now = now.Add(frame)
		s.Tick(now, Input{})
	}
	if n := len(s.View().Particles); n != 0 {
		t.Errorf("%d particles left after 120 ticks", n)
	}
}

func TestSession_DebrisAgesBySimulatedTime(t *testing.T) {
	s := newQuiet(t)
	s.targets = []*object.Body{target(200, 200, 20)}
	s.shell = object.NewShell(r2.Vec{X: 200, Y: 200}, r2.Vec{}, 4)
	s.Tick(t0.Add(frame), Input{})
	n := len(s.debris)
	if n == 0 {
		t.Fatal("hit produced no debris")
	}

	// A long stall between frames still ages debris by one step.
	s.Tick(t0.Add(30*time.Second), Input{})
	if len(s.debris) != n {
		t.Fatalf("%d of %d particles survived one tick", len(s.debris), n)
	}
	dt := s.cfg.Physics.DT
	for _, p := range s.debris {
		if got := p.MaxLifetime - p.Lifetime; math.Abs(got-2*dt) > 1e-9 {
			t.Errorf("particle aged %v, want %v", got, 2*dt)
		}
	}
}

func TestView_Snapshot(t *testing.T) {
	s := newQuiet(t)
	alive := target(100, 100, 10)
	dead := target(300, 100, 10)
	dead.Alive = false
	s.targets = []*object.Body{alive, dead}

	v := s.View()
	if len(v.Targets) != 1 || v.Targets[0].Pos != alive.Pos {
		t.Fatalf("view targets = %+v", v.Targets)
	}

	v.Targets[0].Pos = r2.Vec{X: 1, Y: 1}
	v.Cannon.Aim = r2.Vec{X: 1, Y: 1}
	if alive.Pos == (r2.Vec{X: 1, Y: 1}) || s.cannon.Aim == (r2.Vec{X: 1, Y: 1}) {
		t.Error("view shares state with the session")
	}
}

func TestView_Labels(t *testing.T) {
	v := View{Score: 30, Elapsed: 12900 * time.Millisecond, Duration: time.Minute}
	if got := v.ScoreText(); got != "Score 30" {
		t.Errorf("ScoreText = %q", got)
	}
	if got := v.TimeText(); got != "Time 12/60" {
		t.Errorf("TimeText = %q", got)
	}
	if got := v.Remaining(); got != 47100*time.Millisecond {
		t.Errorf("Remaining = %v", got)
	}
	v.Elapsed = 61 * time.Second
	if v.Remaining() != 0 {
		t.Errorf("Remaining = %v after time ran out", v.Remaining())
	}
}

func TestView_Draw(t *testing.T) {
	s := newQuiet(t)
	s.targets = []*object.Body{target(300, 200, 30)}

	c := draw.NewScaledCanvas(60, 20, 600, 400)
	if err := s.View().Draw(object.DrawContext{Canvas: c}); err != nil {
		t.Fatal(err)
	}
	if col, ok := c.PixelAt(30, 20); !ok || col != draw.Green {
		t.Errorf("target center pixel = %v,%v", col, ok)
	}
	// Barrel starts at the bottom-left corner.
	found := false
	for x := 0; x <= 4; x++ {
		for y := 34; y < 40; y++ {
			if col, ok := c.PixelAt(x, y); ok && col == object.ShellColor {
				found = true
			}
		}
	}
	if !found {
		t.Error("cannon not drawn")
	}
}
