package input

import (
	"time"

	"github.com/tomz197/cannonade/internal/config"
)

// chargeTick is the granularity at which a held button gains power.
const chargeTick = 10 * time.Millisecond

// Power maps how long the fire button was held to a shell power.
// Power grows by cfg.PowerStep per tick, capped at cfg.MaxTicks ticks.
func Power(held time.Duration, cfg config.ChargeConfig) float64 {
	if held < 0 {
		held = 0
	}
	ticks := min(int(held/chargeTick), cfg.MaxTicks)
	return cfg.BasePower + float64(ticks-cfg.TickOffset)*cfg.PowerStep
}

// Charge tracks a press/release pair of the fire button.
type Charge struct {
	cfg     config.ChargeConfig
	start   time.Time
	holding bool
}

// NewCharge creates a charge tracker using the given constants.
func NewCharge(cfg config.ChargeConfig) *Charge {
	return &Charge{cfg: cfg}
}

// Press starts charging. A second press restarts the charge.
func (c *Charge) Press(at time.Time) {
	c.start = at
	c.holding = true
}

// Release ends the charge and returns the resulting power. A release with no
// preceding press is ignored and reports false.
func (c *Charge) Release(at time.Time) (float64, bool) {
	if !c.holding {
		return 0, false
	}
	c.holding = false
	return Power(at.Sub(c.start), c.cfg), true
}

// Holding reports whether the button is currently held.
func (c *Charge) Holding() bool {
	return c.holding
}

// Preview returns the power a release at now would produce.
func (c *Charge) Preview(now time.Time) float64 {
	if !c.holding {
		return 0
	}
	return Power(now.Sub(c.start), c.cfg)
}

// Apply feeds a frame's button transitions through the tracker and returns
// the power of the last completed shot, if any.
func (c *Charge) Apply(buttons []Button) (float64, bool) {
	var power float64
	fired := false
	for _, b := range buttons {
		switch b.Action {
		case MouseActionPress:
			c.Press(b.At)
		case MouseActionRelease:
			if p, ok := c.Release(b.At); ok {
				power, fired = p, true
			}
		}
	}
	return power, fired
}
