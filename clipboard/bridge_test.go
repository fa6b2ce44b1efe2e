package clipboard

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBridge(r *fakeRunner, tk *fakeToolkit, wayland bool) *Bridge {
	return NewBridge(zerolog.Nop(), WithRunner(r), WithToolkit(tk), WithWayland(wayland))
}

func TestGetImageFromToolkit(t *testing.T) {
	r := &fakeRunner{}
	tk := &fakeToolkit{data: testPNG(t, 4, 3)}
	b := newTestBridge(r, tk, false)

	img := b.GetImage()
	require.NotNil(t, img)
	assert.Equal(t, 4, img.Bounds().Dx())
	assert.Equal(t, 3, img.Bounds().Dy())
	assert.Empty(t, r.Calls(), "native reader should not run when the toolkit has an image")
}

func TestGetImageTextClipboardReturnsNil(t *testing.T) {
	r := &fakeRunner{outErr: errors.New("target image/png not available")}
	tk := &fakeToolkit{}
	b := newTestBridge(r, tk, false)

	assert.Nil(t, b.GetImage())
}

func TestGetImageUndecodableReturnsNil(t *testing.T) {
	tk := &fakeToolkit{data: []byte("hello, not an image")}
	b := newTestBridge(&fakeRunner{}, tk, false)

	assert.Nil(t, b.GetImage())
}

func TestGetImageRecoversPanic(t *testing.T) {
	tk := &fakeToolkit{panicMsg: "toolkit exploded"}
	b := newTestBridge(&fakeRunner{}, tk, false)

	assert.NotPanics(t, func() {
		assert.Nil(t, b.GetImage())
	})
}

func TestPutPNGFallsBackToToolkit(t *testing.T) {
	r := &fakeRunner{runErr: errors.New("exit status 1")}
	tk := &fakeToolkit{}
	b := newTestBridge(r, tk, false)
	data := testPNG(t, 2, 2)

	b.PutPNG(data)

	writes := tk.Writes()
	require.Len(t, writes, 1)
	assert.Equal(t, data, writes[0])
}

func TestPutPNGTotalFailureSwallowed(t *testing.T) {
	r := &fakeRunner{runErr: errors.New("exit status 1")}
	tk := &fakeToolkit{writeErr: errors.New("no display")}
	b := newTestBridge(r, tk, false)

	assert.NotPanics(t, func() { b.PutPNG(testPNG(t, 1, 1)) })
	assert.Error(t, b.putPNG(testPNG(t, 1, 1)))
}

func TestPutPNGEmpty(t *testing.T) {
	r := &fakeRunner{}
	tk := &fakeToolkit{}
	b := newTestBridge(r, tk, false)

	b.PutPNG(nil)
	assert.Empty(t, r.Calls())
	assert.Empty(t, tk.Writes())
}

func TestIsWayland(t *testing.T) {
	t.Setenv("XDG_SESSION_TYPE", "")
	t.Setenv("WAYLAND_DISPLAY", "")
	assert.False(t, IsWayland())

	t.Setenv("WAYLAND_DISPLAY", "wayland-0")
	assert.True(t, IsWayland())

	t.Setenv("WAYLAND_DISPLAY", "")
	t.Setenv("XDG_SESSION_TYPE", "wayland")
	assert.True(t, IsWayland())
}
