//go:build linux

package beep

import (
	"sync"

	"github.com/jfreymuth/pulse"
	"github.com/jfreymuth/pulse/proto"
)

// pulseTail fills the PulseAudio buffer so short cues are not clipped.
const pulseTail = 0.17

var (
	samples   map[cue][]int16
	soundOnce sync.Once
)

func initSound() {
	samples = make(map[cue][]int16, 3)
	for _, c := range []cue{cueShutter, cueDone, cueError} {
		samples[c] = stereo(c.tone().mono(pulseTail))
	}
}

// stereo interleaves mono samples into L/R pairs to match the sink.
func stereo(mono []int16) []int16 {
	out := make([]int16, len(mono)*2)
	for i, s := range mono {
		out[i*2] = s
		out[i*2+1] = s
	}
	return out
}

func playSamples(buf []int16) {
	if len(buf) == 0 {
		return
	}
	c, err := pulse.NewClient(pulse.ClientApplicationName("snapkey"))
	if err != nil {
		return
	}
	defer c.Close()

	pos := 0
	reader := pulse.Int16Reader(func(out []int16) (int, error) {
		if pos >= len(buf) {
			return 0, pulse.EndOfData
		}
		n := copy(out, buf[pos:])
		pos += n
		return n, nil
	})
	stream, err := c.NewPlayback(reader,
		pulse.PlaybackStereo,
		pulse.PlaybackSampleRate(sampleRate),
		pulse.PlaybackLatency(0.1),
		pulse.PlaybackRawOption(func(p *proto.CreatePlaybackStream) {
			p.ChannelVolumes = proto.ChannelVolumes{uint32(proto.VolumeNorm), uint32(proto.VolumeNorm)}
		}),
	)
	if err != nil {
		return
	}
	defer stream.Close()
	stream.Start()
	stream.Drain()
	stream.Stop()
}

func Init() {
	soundOnce.Do(initSound)
}

func play(c cue) {
	soundOnce.Do(initSound)
	go playSamples(samples[c])
}
