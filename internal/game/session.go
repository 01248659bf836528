// Package game runs one match: targets falling and bouncing, a single
// shell, scoring and the match clock.
package game

import (
	"math/rand"
	"time"

	"github.com/tomz197/cannonade/internal/config"
	"github.com/tomz197/cannonade/internal/object"
	"github.com/tomz197/cannonade/internal/physics"
	"gonum.org/v1/gonum/spatial/r2"
)

// State is the phase of a match.
type State uint8

const (
	StateRunning State = iota
	StateGameOver
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateGameOver:
		return "game over"
	default:
		return "unknown"
	}
}

// Input is what the player did since the previous tick.
type Input struct {
	Pointer    r2.Vec // Logical coordinates
	HasPointer bool

	Fire  bool
	Power float64 // Launch power when Fire is set

	Quit bool
}

// Events reports what happened during a tick.
type Events struct {
	Fired    bool
	Power    float64
	Hits     int
	GameOver bool
}

// Session is the state of a single match. It is not safe for concurrent
// use; one goroutine drives it.
type Session struct {
	cfg     *config.Config
	bounds  physics.Bounds
	rng     *rand.Rand
	spawner *object.TargetSpawner

	targets []*object.Body // Dead targets stay here; they are skipped
	staged  []*object.Body // Spawned this tick, merged after collisions
	shell   *object.Body
	cannon  *object.Cannon
	debris  []*object.Particle

	score   int
	state   State
	started bool
	quit    bool
	start   time.Time
	elapsed time.Duration
}

// New creates a match. seed makes target spawning reproducible.
func New(cfg *config.Config, seed int64) *Session {
	bounds := physics.Bounds{Width: cfg.Screen.Width, Height: cfg.Screen.Height}
	return &Session{
		cfg:     cfg,
		bounds:  bounds,
		rng:     rand.New(rand.NewSource(seed)),
		spawner: object.NewTargetSpawner(cfg.Target),
		shell:   object.NewInertShell(),
		cannon:  object.NewCannon(cfg.Cannon, bounds),
		state:   StateRunning,
	}
}

// Start begins the match clock at now and places the initial targets.
// Calling it again has no effect.
func (s *Session) Start(now time.Time) {
	if s.started {
		return
	}
	s.started = true
	s.start = now
	for i := 0; i < s.cfg.Target.InitialCount; i++ {
		s.targets = append(s.targets, object.NewTarget(s.rng, s.cfg.Target, s.bounds))
	}
}

// Tick advances the match by one step. Nothing changes once the match is
// over or a quit was requested.
func (s *Session) Tick(now time.Time, in Input) Events {
	var ev Events
	if !s.started {
		s.Start(now)
	}
	if in.Quit {
		s.quit = true
	}
	if s.quit || s.state == StateGameOver {
		return ev
	}

	dt, g := s.cfg.Physics.DT, s.cfg.Physics.Gravity

	if t := s.spawner.Roll(s.rng, s.bounds); t != nil {
		s.staged = append(s.staged, t)
	}

	if in.Fire {
		if shell := s.cannon.Fire(in.Power); shell != nil {
			s.shell = shell
			ev.Fired = true
			ev.Power = in.Power
		}
	}

	s.shell.Integrate(dt, g, s.bounds)

	for _, t := range s.targets {
		if !t.Alive {
			continue
		}
		if s.shell.Alive && s.shell.CollidesWith(t) {
			s.shell.MarkDestroyed()
			t.MarkDestroyed()
			s.score += s.cfg.Match.ScorePerHit
			ev.Hits++
			object.SpawnDebris(s.rng, t.Pos, t.Color, s.cfg.Debris, s)
		}
		t.Integrate(dt, g, s.bounds)
	}

	if len(s.staged) > 0 {
		s.targets = append(s.targets, s.staged...)
		s.staged = s.staged[:0]
	}

	s.updateDebris(dt)

	if in.HasPointer {
		s.cannon.AimAt(in.Pointer)
	}

	s.elapsed = now.Sub(s.start)
	if s.elapsed >= s.cfg.Match.Duration {
		s.state = StateGameOver
		ev.GameOver = true
	}
	return ev
}

// Spawn adds a debris particle. It lets the session act as an object.Spawner.
func (s *Session) Spawn(p *object.Particle) {
	s.debris = append(s.debris, p)
}

func (s *Session) updateDebris(dt float64) {
	kept := s.debris[:0]
	for _, p := range s.debris {
		if p.Update(dt) {
			p.Release()
			continue
		}
		kept = append(kept, p)
	}
	clear(s.debris[len(kept):])
	s.debris = kept
}

// Score returns the current score.
func (s *Session) Score() int {
	return s.score
}

// State returns the match phase.
func (s *Session) State() State {
	return s.state
}

// Quit reports whether the player asked to leave.
func (s *Session) Quit() bool {
	return s.quit
}

// Elapsed returns match time as of the last tick.
func (s *Session) Elapsed() time.Duration {
	return s.elapsed
}

// Bounds returns the play field.
func (s *Session) Bounds() physics.Bounds {
	return s.bounds
}

var _ object.Spawner = (*Session)(nil)
