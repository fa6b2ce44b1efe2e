package capture

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClipboard struct {
	mu   sync.Mutex
	img  image.Image
	puts [][]byte
}

func (f *fakeClipboard) GetImage() image.Image {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.img
}

func (f *fakeClipboard) PutPNG(data []byte) {
	f.mu.Lock()
	f.puts = append(f.puts, data)
	f.mu.Unlock()
}

type fakeInjector struct {
	combos []string
	err    error
	onCall func()
}

func (f *fakeInjector) InjectKeystroke(combo string) error {
	f.combos = append(f.combos, combo)
	if f.onCall != nil {
		f.onCall()
	}
	return f.err
}

type funcFilter func(ctx context.Context, png []byte) ([]byte, error)

func (f funcFilter) Process(ctx context.Context, png []byte) ([]byte, error) { return f(ctx, png) }

func solid(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{B: 200, A: 255})
		}
	}
	return img
}

func decode(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	return img
}

func TestCapturePutsPNG(t *testing.T) {
	clip := &fakeClipboard{img: solid(8, 6)}
	var results []Result
	p := New(nil, clip, Options{
		Logger:   zerolog.Nop(),
		OnResult: func(r Result) { results = append(results, r) },
	})

	require.NoError(t, p.Capture())
	require.Len(t, clip.puts, 1)
	out := decode(t, clip.puts[0])
	assert.Equal(t, 8, out.Bounds().Dx())

	require.Len(t, results, 1)
	assert.Equal(t, 8, results[0].Width)
	assert.Equal(t, 6, results[0].Height)
	assert.False(t, results[0].Processed)
	assert.NoError(t, results[0].Err)
}

func TestCaptureNoImage(t *testing.T) {
	clip := &fakeClipboard{}
	var got Result
	p := New(nil, clip, Options{Logger: zerolog.Nop(), OnResult: func(r Result) { got = r }})

	err := p.Capture()
	assert.ErrorIs(t, err, ErrNoImage)
	assert.ErrorIs(t, got.Err, ErrNoImage)
	assert.Empty(t, clip.puts)
}

func TestCaptureSendsCopyKeysFirst(t *testing.T) {
	clip := &fakeClipboard{}
	inj := &fakeInjector{onCall: func() {
		// The screenshot tool copies its selection in response.
		clip.mu.Lock()
		clip.img = solid(3, 3)
		clip.mu.Unlock()
	}}
	var slept time.Duration
	p := New(inj, clip, Options{
		CopyKeys:  "ctrl+c",
		CopyDelay: 150 * time.Millisecond,
		Logger:    zerolog.Nop(),
		Sleep:     func(d time.Duration) { slept += d },
	})

	require.NoError(t, p.Capture())
	assert.Equal(t, []string{"ctrl+c"}, inj.combos)
	assert.Equal(t, 150*time.Millisecond, slept)
	assert.Len(t, clip.puts, 1)
}

func TestCaptureInjectFailure(t *testing.T) {
	clip := &fakeClipboard{img: solid(1, 1)}
	inj := &fakeInjector{err: errors.New("no uinput")}
	p := New(inj, clip, Options{CopyKeys: "ctrl+c", Logger: zerolog.Nop(), Sleep: func(time.Duration) {}})

	err := p.Capture()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "send copy keys")
	assert.Empty(t, clip.puts)
}

func TestCaptureFilter(t *testing.T) {
	clip := &fakeClipboard{img: solid(10, 10)}
	var gotIn []byte
	filter := funcFilter(func(_ context.Context, in []byte) ([]byte, error) {
		gotIn = in
		var buf bytes.Buffer
		require.NoError(t, png.Encode(&buf, solid(5, 4)))
		return buf.Bytes(), nil
	})
	var res Result
	p := New(nil, clip, Options{Filter: filter, Logger: zerolog.Nop(), OnResult: func(r Result) { res = r }})

	require.NoError(t, p.Capture())
	assert.Equal(t, 10, decode(t, gotIn).Bounds().Dx())
	require.Len(t, clip.puts, 1)
	out := decode(t, clip.puts[0])
	assert.Equal(t, 5, out.Bounds().Dx())
	assert.True(t, res.Processed)
	assert.Equal(t, 5, res.Width)
	assert.Equal(t, 4, res.Height)
}

func TestCaptureFilterGarbageOutput(t *testing.T) {
	clip := &fakeClipboard{img: solid(2, 2)}
	filter := funcFilter(func(context.Context, []byte) ([]byte, error) {
		return []byte("not an image"), nil
	})
	p := New(nil, clip, Options{Filter: filter, Logger: zerolog.Nop()})

	err := p.Capture()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode processed image")
	assert.Empty(t, clip.puts)
}

func TestCaptureFilterTimeout(t *testing.T) {
	clip := &fakeClipboard{img: solid(2, 2)}
	filter := funcFilter(func(ctx context.Context, _ []byte) ([]byte, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	p := New(nil, clip, Options{Filter: filter, CommandTimeout: 20 * time.Millisecond, Logger: zerolog.Nop()})

	err := p.Capture()
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
