package audio

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"github.com/tomz197/cannonade/internal/config"
)

// Player mixes effects into the system speaker. Until Init succeeds every
// method is a no-op, so a machine without audio still runs the game.
type Player struct {
	mu          sync.Mutex
	sr          beep.SampleRate
	volume      float64
	mixer       *beep.Mixer
	logger      *log.Logger
	initialized bool
}

// NewPlayer creates a player for the given settings. logger may be nil.
func NewPlayer(cfg config.AudioConfig, logger *log.Logger) *Player {
	return &Player{
		sr:     beep.SampleRate(cfg.SampleRate),
		volume: cfg.Volume,
		mixer:  &beep.Mixer{},
		logger: logger,
	}
}

// Init opens the speaker.
func (p *Player) Init() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.initialized {
		return nil
	}
	if err := speaker.Init(p.sr, p.sr.N(100*time.Millisecond)); err != nil {
		return err
	}
	speaker.Play(p.mixer)
	p.initialized = true
	return nil
}

// Close stops playback and releases the speaker.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized {
		return
	}
	speaker.Clear()
	speaker.Close()
	p.initialized = false
}

// Fire plays the shot sound.
func (p *Player) Fire(power float64) {
	p.play(func() (beep.Streamer, error) { return FireSound(p.sr, power, p.volume) })
}

// Hit plays the hit chime.
func (p *Player) Hit() {
	p.play(func() (beep.Streamer, error) { return HitSound(p.sr, p.volume) })
}

// GameOver plays the closing phrase.
func (p *Player) GameOver() {
	p.play(func() (beep.Streamer, error) { return GameOverSound(p.sr, p.volume) })
}

func (p *Player) play(build func() (beep.Streamer, error)) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized {
		return
	}
	s, err := build()
	if err != nil {
		if p.logger != nil {
			p.logger.Warn("sound effect failed", "err", err)
		}
		return
	}
	speaker.Lock()
	p.mixer.Add(s)
	speaker.Unlock()
}
