package object

import (
	"math"
	"math/rand"

	"github.com/tomz197/cannonade/internal/config"
	"github.com/tomz197/cannonade/internal/draw"
	"github.com/tomz197/cannonade/internal/physics"
	"gonum.org/v1/gonum/spatial/r2"
)

// TargetColors is the palette targets are painted from.
var TargetColors = []draw.RGB{
	draw.Green,
	draw.Red,
	draw.Blue,
	draw.Cyan,
	draw.Yellow,
	draw.Magenta,
}

// NewTarget creates a target with a random integer radius, position and
// velocity. The circle always lies inside bounds; a radius too large for the
// bounds is shrunk to fit.
func NewTarget(rng *rand.Rand, cfg config.TargetConfig, bounds physics.Bounds) *Body {
	r := intBetween(rng, cfg.MinRadius, cfg.MaxRadius)
	if limit := int(math.Floor(math.Min(bounds.Width, bounds.Height) / 2)); r > limit {
		r = limit
	}
	if r < 0 {
		r = 0
	}

	x := intBetween(rng, r, int(math.Floor(bounds.Width))-r)
	y := intBetween(rng, r, int(math.Floor(bounds.Height))-r)
	vx := intBetween(rng, -cfg.MaxInitialSpeed, cfg.MaxInitialSpeed)
	vy := intBetween(rng, -cfg.MaxInitialSpeed, cfg.MaxInitialSpeed)

	return &Body{
		Pos:    r2.Vec{X: float64(x), Y: float64(y)},
		Vel:    r2.Vec{X: float64(vx), Y: float64(vy)},
		Radius: float64(r),
		Color:  TargetColors[rng.Intn(len(TargetColors))],
		Alive:  true,
		Role:   RoleTarget,
	}
}

// intBetween returns a uniform integer in [lo, hi]. An empty range yields lo.
func intBetween(rng *rand.Rand, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + rng.Intn(hi-lo+1)
}

// TargetSpawner decides, tick by tick, whether a new target appears.
type TargetSpawner struct {
	oneIn int
	cfg   config.TargetConfig
}

// NewTargetSpawner creates a spawner that fires with probability 1/cfg.SpawnOneIn.
func NewTargetSpawner(cfg config.TargetConfig) *TargetSpawner {
	oneIn := cfg.SpawnOneIn
	if oneIn < 1 {
		oneIn = 1
	}
	return &TargetSpawner{oneIn: oneIn, cfg: cfg}
}

// Roll returns a new target when this tick's draw succeeds, nil otherwise.
func (s *TargetSpawner) Roll(rng *rand.Rand, bounds physics.Bounds) *Body {
	if rng.Intn(s.oneIn) != 0 {
		return nil
	}
	return NewTarget(rng, s.cfg, bounds)
}
