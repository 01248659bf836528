package game

import (
	"strconv"
	"time"

	"github.com/tomz197/cannonade/internal/object"
	"github.com/tomz197/cannonade/internal/physics"
)

// View is a snapshot of a match for rendering. It shares nothing mutable
// with the session.
type View struct {
	Bounds    physics.Bounds
	Targets   []object.Body // Alive targets only
	Shell     object.Body
	Cannon    object.Cannon
	Particles []object.Particle

	Score    int
	State    State
	Elapsed  time.Duration
	Duration time.Duration
}

// View returns a snapshot of the current match.
func (s *Session) View() View {
	v := View{
		Bounds:   s.bounds,
		Shell:    *s.shell,
		Cannon:   *s.cannon,
		Score:    s.score,
		State:    s.state,
		Elapsed:  s.elapsed,
		Duration: s.cfg.Match.Duration,
	}
	for _, t := range s.targets {
		if t.Alive {
			v.Targets = append(v.Targets, *t)
		}
	}
	for _, p := range s.debris {
		v.Particles = append(v.Particles, *p)
	}
	return v
}

// Remaining returns how much match time is left.
func (v View) Remaining() time.Duration {
	return max(v.Duration-v.Elapsed, 0)
}

// ScoreText is the score label, e.g. "Score 30".
func (v View) ScoreText() string {
	return "Score " + strconv.Itoa(v.Score)
}

// TimeText is the clock label, e.g. "Time 12/60". Seconds are truncated.
func (v View) TimeText() string {
	secs := int(v.Elapsed / time.Second)
	return "Time " + strconv.Itoa(secs) + "/" + strconv.Itoa(int(v.Duration/time.Second))
}

// Draw puts the whole scene on the canvas: debris first, then targets, the
// shell and the cannon on top.
func (v View) Draw(ctx object.DrawContext) error {
	for i := range v.Particles {
		if err := v.Particles[i].Draw(ctx); err != nil {
			return err
		}
	}
	for i := range v.Targets {
		if err := v.Targets[i].Draw(ctx); err != nil {
			return err
		}
	}
	if err := v.Shell.Draw(ctx); err != nil {
		return err
	}
	return v.Cannon.Draw(ctx)
}
