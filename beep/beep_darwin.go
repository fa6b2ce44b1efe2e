//go:build darwin

package beep

import (
	"sync"
	"sync/atomic"

	"github.com/gen2brain/malgo"
)

var (
	malgoCtx  *malgo.AllocatedContext
	device    *malgo.Device
	pcm       map[cue][]byte
	soundOnce sync.Once

	// read by the malgo data callback
	current atomic.Pointer[[]byte]
	pos     atomic.Uint32
	playMu  sync.Mutex
)

func initSound() {
	var err error
	malgoCtx, err = malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return
	}

	pcm = make(map[cue][]byte, 3)
	for _, c := range []cue{cueShutter, cueDone, cueError} {
		pcm[c] = littleEndian(c.tone().mono(0))
	}

	config := malgo.DefaultDeviceConfig(malgo.Playback)
	config.Playback.Format = malgo.FormatS16
	config.Playback.Channels = 1
	config.SampleRate = sampleRate

	device, err = malgo.InitDevice(malgoCtx.Context, config, malgo.DeviceCallbacks{Data: onData})
	if err != nil {
		malgoCtx.Uninit()
		malgoCtx = nil
	}
}

func littleEndian(samples []int16) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		out[i*2] = byte(s)
		out[i*2+1] = byte(s >> 8)
	}
	return out
}

func onData(out, _ []byte, frames uint32) {
	want := frames * 2
	buf := current.Load()
	if buf == nil {
		clear(out)
		return
	}
	p := pos.Load()
	remaining := uint32(len(*buf)) - p
	if remaining == 0 {
		current.Store(nil)
		clear(out)
		return
	}
	n := min(want, remaining)
	copy(out[:n], (*buf)[p:p+n])
	pos.Store(p + n)
	clear(out[n:want])
}

func Init() {
	soundOnce.Do(initSound)
}

func play(c cue) {
	soundOnce.Do(initSound)
	if malgoCtx == nil || device == nil {
		return
	}
	buf := pcm[c]
	if len(buf) == 0 {
		return
	}

	playMu.Lock()
	defer playMu.Unlock()
	pos.Store(0)
	current.Store(&buf)
	if !device.IsStarted() {
		device.Start()
	}
}
