// Package audio plays short synthesized effects for shots, hits and the end
// of a match.
package audio

import (
	"fmt"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
)

// Effect lengths.
const (
	FireDuration     = 120 * time.Millisecond
	HitNoteDuration  = 70 * time.Millisecond
	GameOverNoteTime = 220 * time.Millisecond
)

// Power range mapped onto the shot pitch.
const (
	minPower = 400.0
	maxPower = 1500.0
)

// release fades a stream linearly to silence over its last samples.
type release struct {
	streamer beep.Streamer
	position int
	total    int
	fade     int
}

func newRelease(s beep.Streamer, total, fade int) beep.Streamer {
	if fade > total {
		fade = total
	}
	return &release{streamer: s, total: total, fade: fade}
}

func (r *release) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = r.streamer.Stream(samples)
	fadeStart := r.total - r.fade
	for i := 0; i < n; i++ {
		if r.position >= fadeStart && r.fade > 0 {
			vol := float64(r.total-r.position) / float64(r.fade)
			if vol < 0 {
				vol = 0
			}
			samples[i][0] *= vol
			samples[i][1] *= vol
		}
		r.position++
	}
	return n, ok
}

func (r *release) Err() error { return r.streamer.Err() }

// note is a sine tone of the given length with a short fade-out.
func note(sr beep.SampleRate, freq float64, d time.Duration) (beep.Streamer, error) {
	tone, err := generators.SineTone(sr, freq)
	if err != nil {
		return nil, fmt.Errorf("tone %.0f Hz: %w", freq, err)
	}
	total := sr.N(d)
	return newRelease(beep.Take(total, tone), total, total/3), nil
}

// withVolume scales a stream by 2^vol.
func withVolume(s beep.Streamer, vol float64) beep.Streamer {
	return &effects.Volume{Streamer: s, Base: 2, Volume: vol, Silent: false}
}

// FireSound is a short blip whose pitch drops as power rises.
func FireSound(sr beep.SampleRate, power, vol float64) (beep.Streamer, error) {
	frac := (power - minPower) / (maxPower - minPower)
	frac = min(max(frac, 0), 1)
	s, err := note(sr, 880-440*frac, FireDuration)
	if err != nil {
		return nil, err
	}
	return withVolume(s, vol), nil
}

// HitSound is a rising two-note chime.
func HitSound(sr beep.SampleRate, vol float64) (beep.Streamer, error) {
	return sequence(sr, vol, HitNoteDuration, 660, 990)
}

// GameOverSound is a falling three-note phrase.
func GameOverSound(sr beep.SampleRate, vol float64) (beep.Streamer, error) {
	return sequence(sr, vol, GameOverNoteTime, 523.25, 392, 261.63)
}

func sequence(sr beep.SampleRate, vol float64, d time.Duration, freqs ...float64) (beep.Streamer, error) {
	notes := make([]beep.Streamer, 0, len(freqs))
	for _, f := range freqs {
		s, err := note(sr, f, d)
		if err != nil {
			return nil, err
		}
		notes = append(notes, s)
	}
	return withVolume(beep.Seq(notes...), vol), nil
}
