// Package object holds the circular bodies, the cannon and the visual
// effects that make up a match.
package object

import (
	"github.com/tomz197/cannonade/internal/draw"
	"github.com/tomz197/cannonade/internal/physics"
	"gonum.org/v1/gonum/spatial/r2"
)

// DrawContext provides drawing resources for objects.
type DrawContext struct {
	Canvas *draw.Canvas // Half-block canvas, two pixels per cell vertically
}

// Drawable is anything that can put itself on the canvas.
type Drawable interface {
	Draw(ctx DrawContext) error
}

// Role tells targets and shells apart.
type Role uint8

const (
	RoleTarget Role = iota
	RoleShell
)

func (r Role) String() string {
	switch r {
	case RoleTarget:
		return "target"
	case RoleShell:
		return "shell"
	default:
		return "unknown"
	}
}

// Body is a moving circle. A dead body is neither moved nor drawn.
type Body struct {
	Pos    r2.Vec
	Vel    r2.Vec
	Radius float64
	Color  draw.RGB
	Alive  bool
	Role   Role
}

// Integrate advances the body by one tick, reflecting off the bounds.
// It returns the axes that reflected.
func (b *Body) Integrate(dt, g float64, bounds physics.Bounds) physics.Axis {
	if !b.Alive {
		return physics.AxisNone
	}
	var hit physics.Axis
	b.Pos, b.Vel, hit = physics.Step(b.Pos, b.Vel, b.Radius, dt, g, bounds)
	return hit
}

// CollidesWith reports whether the two circles touch. Liveness is not
// considered; callers decide which bodies take part.
func (b *Body) CollidesWith(other *Body) bool {
	return physics.CirclesTouch(b.Pos, b.Radius, other.Pos, other.Radius)
}

// MarkDestroyed marks the body dead.
func (b *Body) MarkDestroyed() {
	b.Alive = false
}

// Draw fills the body's circle on the canvas.
func (b *Body) Draw(ctx DrawContext) error {
	if !b.Alive {
		return nil
	}
	ctx.Canvas.FillCircle(draw.Point{X: b.Pos.X, Y: b.Pos.Y}, b.Radius, b.Color)
	return nil
}

var _ Drawable = (*Body)(nil)
