// Package beep plays short synthesized cues: a shutter tick when a
// capture starts, a softer tick when the image lands on the clipboard
// and a low double beep on failure.
package beep

import (
	"math"
	"sync/atomic"
)

var disabled atomic.Bool

func Disable() { disabled.Store(true) }

func Enabled() bool { return !disabled.Load() }

const sampleRate = 44100

// tone is a decaying sine. A tone with Repeat > 1 is played that many
// times separated by Gap seconds of silence.
type tone struct {
	Freq     float64
	Duration float64
	Volume   float64
	Decay    float64
	Repeat   int
	Gap      float64
}

var (
	shutterTone = tone{Freq: 1500, Duration: 0.03, Volume: 0.5, Decay: 90, Repeat: 1}
	doneTone    = tone{Freq: 900, Duration: 0.05, Volume: 0.4, Decay: 40, Repeat: 1}
	errorTone   = tone{Freq: 350, Duration: 0.08, Volume: 0.6, Decay: 30, Repeat: 2, Gap: 0.05}
)

// mono renders t as mono 16-bit samples. tail pads the end with silence
// for sinks that need their buffer filled before playback starts.
func (t tone) mono(tail float64) []int16 {
	n := int(float64(sampleRate) * t.Duration)
	gap := int(float64(sampleRate) * t.Gap)
	repeat := max(t.Repeat, 1)

	out := make([]int16, 0, n*repeat+gap*(repeat-1)+int(float64(sampleRate)*tail))
	for r := 0; r < repeat; r++ {
		if r > 0 {
			out = append(out, make([]int16, gap)...)
		}
		for i := 0; i < n; i++ {
			sec := float64(i) / float64(sampleRate)
			env := math.Exp(-sec * t.Decay)
			out = append(out, int16(math.Sin(2*math.Pi*t.Freq*sec)*32767*t.Volume*env))
		}
	}
	return append(out, make([]int16, int(float64(sampleRate)*tail))...)
}

// PlayShutter signals an accepted trigger.
func PlayShutter() {
	if Enabled() {
		play(cueShutter)
	}
}

// PlayDone signals that the image is on the clipboard.
func PlayDone() {
	if Enabled() {
		play(cueDone)
	}
}

func PlayError() {
	if Enabled() {
		play(cueError)
	}
}

type cue int

const (
	cueShutter cue = iota
	cueDone
	cueError
)

func (c cue) tone() tone {
	switch c {
	case cueDone:
		return doneTone
	case cueError:
		return errorTone
	}
	return shutterTone
}
