// Package physics provides contact tests and the single-step integrator.
package physics

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Distance calculates the Euclidean distance between two points.
func Distance(a, b r2.Vec) float64 {
	return r2.Norm(r2.Sub(b, a))
}

// DistanceSquared calculates the squared distance between two points.
// Use this when comparing distances to avoid the sqrt cost.
func DistanceSquared(a, b r2.Vec) float64 {
	return r2.Norm2(r2.Sub(b, a))
}

// CirclesTouch reports whether two circles touch or overlap. Circles whose
// edges meet exactly count as touching.
func CirclesTouch(a r2.Vec, ra float64, b r2.Vec, rb float64) bool {
	return Distance(a, b) <= ra+rb
}

// Bounds is the rectangle [0, Width] x [0, Height] bodies bounce inside.
type Bounds struct {
	Width  float64
	Height float64
}

// Fits reports whether a circle lies entirely inside the bounds.
func (b Bounds) Fits(c r2.Vec, radius float64) bool {
	return c.X >= radius && c.X <= b.Width-radius &&
		c.Y >= radius && c.Y <= b.Height-radius
}

// Axis is a bitmask of axes on which a wall reflection happened.
type Axis uint8

const (
	AxisNone Axis = 0
	AxisX    Axis = 1 << 0
	AxisY    Axis = 1 << 1
)

// Step advances a circle by one tick under constant downward gravity g.
//
// The candidate position uses the velocity from before the gravity update;
// vy then gains g*dt. On each axis independently, a candidate that would put
// the circle's edge outside the bounds is discarded (the coordinate stays
// where it was) and that velocity component is negated. The gravity update
// to vy is applied even when the y axis reflects.
func Step(pos, vel r2.Vec, radius, dt, g float64, b Bounds) (r2.Vec, r2.Vec, Axis) {
	next := r2.Vec{
		X: pos.X + vel.X*dt,
		Y: pos.Y + vel.Y*dt + g*dt*dt/2,
	}
	vel.Y += g * dt

	hit := AxisNone
	if next.X < radius || next.X > b.Width-radius {
		next.X = pos.X
		vel.X = -vel.X
		hit |= AxisX
	}
	if next.Y < radius || next.Y > b.Height-radius {
		next.Y = pos.Y
		vel.Y = -vel.Y
		hit |= AxisY
	}
	return next, vel, hit
}

// Finite reports whether both coordinates are finite numbers.
func Finite(v r2.Vec) bool {
	return !math.IsNaN(v.X) && !math.IsInf(v.X, 0) && !math.IsNaN(v.Y) && !math.IsInf(v.Y, 0)
}
