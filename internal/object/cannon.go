package object

import (
	"math"

	"github.com/tomz197/cannonade/internal/config"
	"github.com/tomz197/cannonade/internal/draw"
	"github.com/tomz197/cannonade/internal/physics"
	"gonum.org/v1/gonum/spatial/r2"
)

// ShellColor is the color of every shell.
var ShellColor = draw.Black

// NewInertShell returns a shell that has not been fired.
func NewInertShell() *Body {
	return &Body{Color: ShellColor, Role: RoleShell}
}

// NewShell returns a live shell.
func NewShell(pos, vel r2.Vec, radius float64) *Body {
	return &Body{
		Pos:    pos,
		Vel:    vel,
		Radius: radius,
		Color:  ShellColor,
		Alive:  true,
		Role:   RoleShell,
	}
}

// Cannon is the fixed emplacement in the bottom-left corner.
type Cannon struct {
	Base r2.Vec
	Aim  r2.Vec // Barrel vector from Base to the muzzle

	length  float64
	width   float64
	minDist float64
	color   draw.RGB
}

// NewCannon creates a cannon sitting at (0, bounds.Height).
func NewCannon(cfg config.CannonConfig, bounds physics.Bounds) *Cannon {
	c := &Cannon{
		Base:    r2.Vec{X: 0, Y: bounds.Height},
		length:  cfg.AimLength,
		width:   cfg.BarrelWidth,
		minDist: cfg.MinAimDistance,
		color:   ShellColor,
	}
	aim := r2.Vec{X: cfg.InitialAimX, Y: cfg.InitialAimY}
	if !usableAim(aim) {
		aim = r2.Vec{X: 1, Y: -1}
	}
	c.Aim = r2.Scale(cfg.AimLength/r2.Norm(aim), aim)
	return c
}

func usableAim(aim r2.Vec) bool {
	n := r2.Norm(aim)
	return n > 0 && physics.Finite(aim) && !math.IsInf(n, 0)
}

// AimAt points the barrel at pointer. A pointer on top of the base or with
// non-finite coordinates leaves the aim unchanged; the return value reports
// whether the aim was updated.
func (c *Cannon) AimAt(pointer r2.Vec) bool {
	if !physics.Finite(pointer) {
		return false
	}
	d := r2.Sub(pointer, c.Base)
	dist := r2.Norm(d)
	if dist < c.minDist || dist == 0 {
		return false
	}
	c.Aim = r2.Scale(c.length/dist, d)
	return true
}

// Tip returns the muzzle position.
func (c *Cannon) Tip() r2.Vec {
	return r2.Add(c.Base, c.Aim)
}

// ShellRadius returns the radius of shells this cannon fires.
func (c *Cannon) ShellRadius() float64 {
	return c.width / 2
}

// Fire launches a shell from the muzzle along the barrel with speed power/10.
// It returns nil when the barrel has no direction to fire along.
func (c *Cannon) Fire(power float64) *Body {
	if !usableAim(c.Aim) {
		return nil
	}
	dir := r2.Unit(c.Aim)
	return NewShell(c.Tip(), r2.Scale(power/10, dir), c.ShellRadius())
}

// Draw renders the barrel as a bundle of parallel lines as wide as the barrel.
func (c *Cannon) Draw(ctx DrawContext) error {
	n := r2.Norm(c.Aim)
	if n == 0 {
		return nil
	}
	normal := r2.Vec{X: -c.Aim.Y / n, Y: c.Aim.X / n}
	tip := c.Tip()

	half := c.width / 2
	for off := -half; off <= half; off++ {
		shift := r2.Scale(off, normal)
		from := r2.Add(c.Base, shift)
		to := r2.Add(tip, shift)
		ctx.Canvas.DrawLine(draw.Point{X: from.X, Y: from.Y}, draw.Point{X: to.X, Y: to.Y}, c.color)
	}
	return nil
}

var _ Drawable = (*Cannon)(nil)
