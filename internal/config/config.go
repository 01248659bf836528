package config

import (
	_ "embed"
	"errors"
	"fmt"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrInvalid is wrapped by every validation failure returned from Validate.
var ErrInvalid = errors.New("invalid config")

// Config holds all tunable game parameters.
type Config struct {
	Screen  ScreenConfig  `yaml:"screen"`
	Loop    LoopConfig    `yaml:"loop"`
	Physics PhysicsConfig `yaml:"physics"`
	Target  TargetConfig  `yaml:"target"`
	Cannon  CannonConfig  `yaml:"cannon"`
	Charge  ChargeConfig  `yaml:"charge"`
	Match   MatchConfig   `yaml:"match"`
	Debris  DebrisConfig  `yaml:"debris"`
	Audio   AudioConfig   `yaml:"audio"`
}

// ScreenConfig is the logical play field. Game objects live in these units;
// frontends scale them to whatever the terminal offers.
type ScreenConfig struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// LoopConfig controls frame pacing.
type LoopConfig struct {
	TickRate int `yaml:"tick_rate"` // Ticks per second
}

// TickTime returns the target duration of one tick.
func (l LoopConfig) TickTime() time.Duration {
	if l.TickRate <= 0 {
		return 0
	}
	return time.Second / time.Duration(l.TickRate)
}

// PhysicsConfig holds the integration constants.
type PhysicsConfig struct {
	DT      float64 `yaml:"dt"`      // Simulated time per tick
	Gravity float64 `yaml:"gravity"` // Downward acceleration (screen y grows downward)
}

// TargetConfig holds target spawn parameters.
type TargetConfig struct {
	MinRadius       int `yaml:"min_radius"`
	MaxRadius       int `yaml:"max_radius"`
	MaxInitialSpeed int `yaml:"max_initial_speed"` // Per-axis bound, velocity drawn from [-v, v]
	SpawnOneIn      int `yaml:"spawn_one_in"`      // A target spawns with probability 1/SpawnOneIn per tick
	InitialCount    int `yaml:"initial_count"`     // Targets present when the match starts
}

// CannonConfig holds the emplacement geometry.
type CannonConfig struct {
	AimLength      float64 `yaml:"aim_length"`
	BarrelWidth    float64 `yaml:"barrel_width"` // Shell radius is half of this
	MinAimDistance float64 `yaml:"min_aim_distance"`
	InitialAimX    float64 `yaml:"initial_aim_x"`
	InitialAimY    float64 `yaml:"initial_aim_y"`
}

// ChargeConfig maps button hold time to launch power:
// power = BasePower + (min(ticks, MaxTicks) - TickOffset) * PowerStep.
type ChargeConfig struct {
	BasePower  float64 `yaml:"base_power"`
	PowerStep  float64 `yaml:"power_step"`
	TickOffset int     `yaml:"tick_offset"`
	MaxTicks   int     `yaml:"max_ticks"`
}

// MatchConfig holds session timing and scoring.
type MatchConfig struct {
	Duration     time.Duration `yaml:"duration"`
	GameOverHold time.Duration `yaml:"game_over_hold"` // How long the final frame stays up
	ScorePerHit  int           `yaml:"score_per_hit"`
}

// DebrisConfig shapes the particle burst shown when a target is hit.
type DebrisConfig struct {
	Count    int     `yaml:"count"`
	Speed    float64 `yaml:"speed"`
	Lifetime float64 `yaml:"lifetime"` // Simulated seconds, aged by physics.dt each tick
	Drag     float64 `yaml:"drag"`     // Velocity factor per tick (1.0 = no drag)
}

// AudioConfig controls sound effects.
type AudioConfig struct {
	Enabled    bool    `yaml:"enabled"`
	SampleRate int     `yaml:"sample_rate"`
	Volume     float64 `yaml:"volume"` // Base-2 exponent, 0 = unchanged
}

// Default returns the embedded defaults.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used. The result is validated.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := Merge(cfg, data); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Merge overlays YAML data onto cfg. Only keys present in data are changed.
func Merge(cfg *Config, data []byte) error {
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}
	return nil
}

// Validate checks that the configuration can produce a playable match.
func (c *Config) Validate() error {
	switch {
	case c.Screen.Width <= 0 || c.Screen.Height <= 0:
		return fmt.Errorf("%w: screen size %gx%g must be positive", ErrInvalid, c.Screen.Width, c.Screen.Height)
	case c.Loop.TickRate <= 0:
		return fmt.Errorf("%w: tick_rate must be positive, got %d", ErrInvalid, c.Loop.TickRate)
	case c.Physics.DT <= 0:
		return fmt.Errorf("%w: dt must be positive, got %g", ErrInvalid, c.Physics.DT)
	case c.Target.MinRadius <= 0 || c.Target.MaxRadius < c.Target.MinRadius:
		return fmt.Errorf("%w: target radius range [%d, %d]", ErrInvalid, c.Target.MinRadius, c.Target.MaxRadius)
	case float64(2*c.Target.MaxRadius) > c.Screen.Width || float64(2*c.Target.MaxRadius) > c.Screen.Height:
		return fmt.Errorf("%w: target max_radius %d does not fit a %gx%g screen", ErrInvalid, c.Target.MaxRadius, c.Screen.Width, c.Screen.Height)
	case c.Target.MaxInitialSpeed < 0:
		return fmt.Errorf("%w: max_initial_speed must not be negative", ErrInvalid)
	case c.Target.SpawnOneIn < 1:
		return fmt.Errorf("%w: spawn_one_in must be at least 1, got %d", ErrInvalid, c.Target.SpawnOneIn)
	case c.Target.InitialCount < 0:
		return fmt.Errorf("%w: initial_count must not be negative", ErrInvalid)
	case c.Cannon.AimLength <= 0 || c.Cannon.BarrelWidth <= 0:
		return fmt.Errorf("%w: cannon aim_length and barrel_width must be positive", ErrInvalid)
	case c.Cannon.MinAimDistance <= 0:
		return fmt.Errorf("%w: min_aim_distance must be positive", ErrInvalid)
	case !validAim(c.Cannon.InitialAimX, c.Cannon.InitialAimY):
		return fmt.Errorf("%w: initial aim (%g, %g) must be a finite non-zero vector", ErrInvalid, c.Cannon.InitialAimX, c.Cannon.InitialAimY)
	case c.Charge.PowerStep < 0 || c.Charge.MaxTicks < 0:
		return fmt.Errorf("%w: charge power_step and max_ticks must not be negative", ErrInvalid)
	case c.Match.Duration <= 0:
		return fmt.Errorf("%w: match duration must be positive", ErrInvalid)
	case c.Match.GameOverHold < 0:
		return fmt.Errorf("%w: game_over_hold must not be negative", ErrInvalid)
	case c.Match.ScorePerHit < 0:
		return fmt.Errorf("%w: score_per_hit must not be negative", ErrInvalid)
	case c.Debris.Count < 0 || c.Debris.Drag < 0 || c.Debris.Drag > 1:
		return fmt.Errorf("%w: debris count >= 0 and drag in [0, 1] required", ErrInvalid)
	case c.Audio.Enabled && c.Audio.SampleRate <= 0:
		return fmt.Errorf("%w: audio sample_rate must be positive", ErrInvalid)
	}
	return nil
}

func validAim(x, y float64) bool {
	n := math.Hypot(x, y)
	return n > 0 && !math.IsInf(n, 0) && !math.IsNaN(n)
}
