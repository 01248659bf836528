package object

import (
	"math"
	"math/rand"
	"sync"

	"github.com/tomz197/cannonade/internal/config"
	"github.com/tomz197/cannonade/internal/draw"
	"gonum.org/v1/gonum/spatial/r2"
)

// particlePool is a sync.Pool for reusing Particle objects to reduce allocations.
var particlePool = sync.Pool{
	New: func() any {
		return &Particle{}
	},
}

// Spawner receives particles emitted by an effect.
type Spawner interface {
	Spawn(p *Particle)
}

// Particle is a short-lived visual effect. It never collides.
type Particle struct {
	Pos         r2.Vec
	Vel         r2.Vec
	Lifetime    float64 // Seconds remaining
	MaxLifetime float64 // Initial lifetime (for fade calculation)
	Drag        float64 // Velocity decay per tick (1.0 = no drag)
	Color       draw.RGB
	Fade        bool // Whether to fade out over lifetime
}

// NewParticle creates a single particle from the pool.
func NewParticle(pos, vel r2.Vec, lifetime, drag float64, color draw.RGB) *Particle {
	p := particlePool.Get().(*Particle)
	p.Pos = pos
	p.Vel = vel
	p.Lifetime = lifetime
	p.MaxLifetime = lifetime
	p.Drag = drag
	p.Color = color
	p.Fade = true
	return p
}

// Release returns the particle to the pool for reuse.
// Should be called when the particle is removed from the game.
func (p *Particle) Release() {
	particlePool.Put(p)
}

// SpawnDebris emits a circular burst of particles at pos in the given color.
func SpawnDebris(rng *rand.Rand, pos r2.Vec, color draw.RGB, cfg config.DebrisConfig, spawner Spawner) {
	if spawner == nil {
		return
	}

	for i := 0; i < cfg.Count; i++ {
		angle := rng.Float64() * 2 * math.Pi
		// Speed varies 50% to 150%, lifetime 50% to 100%
		spd := cfg.Speed * (0.5 + rng.Float64())
		life := cfg.Lifetime * (0.5 + rng.Float64()*0.5)

		vel := r2.Vec{X: math.Cos(angle) * spd, Y: math.Sin(angle) * spd}
		spawner.Spawn(NewParticle(pos, vel, life, cfg.Drag, color))
	}
}

// Update moves the particle by dt simulated seconds. It returns true once
// the particle has expired.
func (p *Particle) Update(dt float64) bool {
	p.Lifetime -= dt
	if p.Lifetime <= 0 {
		return true
	}

	p.Vel = r2.Scale(p.Drag, p.Vel)
	p.Pos = r2.Add(p.Pos, r2.Scale(dt, p.Vel))
	return false
}

// Visible reports whether the particle is still drawn. Particles disappear
// in the last quarter of their life.
func (p *Particle) Visible() bool {
	if p.Fade && p.MaxLifetime > 0 {
		return p.Lifetime/p.MaxLifetime >= 0.25
	}
	return p.Lifetime > 0
}

// Draw renders the particle as a pixel on the canvas.
func (p *Particle) Draw(ctx DrawContext) error {
	if !p.Visible() {
		return nil
	}
	ctx.Canvas.SetFloat(p.Pos.X, p.Pos.Y, p.Color)
	return nil
}

var _ Drawable = (*Particle)(nil)
