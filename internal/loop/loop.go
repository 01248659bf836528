// Package loop provides the main game loop: it paces ticks, feeds player
// input into a match and hands every frame to a frontend.
package loop

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/tomz197/cannonade/internal/config"
	"github.com/tomz197/cannonade/internal/game"
	"github.com/tomz197/cannonade/internal/input"
	"gonum.org/v1/gonum/spatial/r2"
)

// Frame is one poll worth of player input, with the pointer already in
// logical coordinates.
type Frame struct {
	Quit bool

	Pointer    r2.Vec
	HasPointer bool

	Buttons []input.Button
}

// Frontend is where input comes from and frames go to.
type Frontend interface {
	// Poll returns input gathered since the previous call without blocking.
	Poll(now time.Time) (Frame, error)
	// Render shows the match. charge is the power a release would fire
	// with, or 0 while the button is up.
	Render(view game.View, charge float64) error
}

// Sound plays effects for match events. Implementations must not block.
type Sound interface {
	Fire(power float64)
	Hit()
	GameOver()
}

// Options configures Run. Zero values fall back to defaults.
type Options struct {
	Config    *config.Config
	Logger    *log.Logger
	Sound     Sound
	SessionID string

	// Seed drives target spawning. Zero means unset and picks a seed from
	// the clock, so a seed-0 match cannot be replayed.
	Seed int64

	Now   func() time.Time
	Sleep func(time.Duration)
}

// Result summarizes a finished match.
type Result struct {
	SessionID string
	Score     int
	Completed bool // The match clock ran out
	Quit      bool // The player left early
}

type silence struct{}

func (silence) Fire(float64) {}
func (silence) Hit()         {}
func (silence) GameOver()    {}

func (o *Options) setDefaults() {
	if o.Config == nil {
		o.Config = config.Default()
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
	if o.Sound == nil {
		o.Sound = silence{}
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Sleep == nil {
		o.Sleep = time.Sleep
	}
	if o.SessionID == "" {
		o.SessionID = uuid.NewString()
	}
	if o.Seed == 0 {
		o.Seed = o.Now().UnixNano()
	}
}

// Run plays one match on fe until the clock runs out, the player quits or
// ctx is cancelled. After the clock runs out the final frame stays up for
// the configured hold time.
func Run(ctx context.Context, fe Frontend, opts Options) (Result, error) {
	opts.setDefaults()
	cfg := opts.Config
	logger := opts.Logger.With("session", opts.SessionID)
	tick := cfg.Loop.TickTime()

	sess := game.New(cfg, opts.Seed)
	charge := input.NewCharge(cfg.Charge)
	res := Result{SessionID: opts.SessionID}

	sess.Start(opts.Now())
	logger.Info("match started", "seed", opts.Seed, "duration", cfg.Match.Duration)

	for {
		frameStart := opts.Now()

		if err := ctx.Err(); err != nil {
			logger.Info("match cancelled", "score", sess.Score())
			res.Score = sess.Score()
			return res, nil
		}

		// ===== INPUT PHASE =====
		f, err := fe.Poll(frameStart)
		if err != nil {
			return res, err
		}
		power, fired := charge.Apply(f.Buttons)

		// ===== UPDATE PHASE =====
		ev := sess.Tick(frameStart, game.Input{
			Pointer:    f.Pointer,
			HasPointer: f.HasPointer,
			Fire:       fired,
			Power:      power,
			Quit:       f.Quit,
		})
		dispatch(ev, opts.Sound, logger)

		if sess.Quit() {
			logger.Info("player quit", "score", sess.Score(), "elapsed", sess.Elapsed().Round(time.Millisecond))
			res.Score = sess.Score()
			res.Quit = true
			return res, nil
		}

		// ===== DRAW PHASE =====
		if err := fe.Render(sess.View(), charge.Preview(frameStart)); err != nil {
			return res, err
		}

		if ev.GameOver {
			res.Score = sess.Score()
			res.Completed = true
			quit, err := hold(ctx, fe, sess.View(), opts, logger, tick)
			res.Quit = quit
			return res, err
		}

		// ===== FRAME TIMING =====
		pace(opts, frameStart, tick)
	}
}

func dispatch(ev game.Events, snd Sound, logger *log.Logger) {
	if ev.Fired {
		snd.Fire(ev.Power)
		logger.Debug("shot fired", "power", ev.Power)
	}
	for i := 0; i < ev.Hits; i++ {
		snd.Hit()
	}
	if ev.Hits > 0 {
		logger.Debug("target hit", "hits", ev.Hits)
	}
	if ev.GameOver {
		snd.GameOver()
	}
}

// hold keeps the final frame on screen for the game-over hold time. A quit
// or cancellation ends it early.
func hold(ctx context.Context, fe Frontend, view game.View, opts Options, logger *log.Logger, tick time.Duration) (bool, error) {
	logger.Info("game over", "score", view.Score)

	until := opts.Now().Add(opts.Config.Match.GameOverHold)
	for {
		frameStart := opts.Now()
		if !frameStart.Before(until) || ctx.Err() != nil {
			return false, nil
		}
		f, err := fe.Poll(frameStart)
		if err != nil {
			return false, err
		}
		if f.Quit {
			return true, nil
		}
		if err := fe.Render(view, 0); err != nil {
			return false, err
		}
		pace(opts, frameStart, tick)
	}
}

func pace(opts Options, frameStart time.Time, tick time.Duration) {
	elapsed := opts.Now().Sub(frameStart)
	if elapsed < tick {
		opts.Sleep(tick - elapsed)
	}
}
