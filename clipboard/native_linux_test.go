package clipboard

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPutPNGX11UsesXclipWithTempFile(t *testing.T) {
	r := &fakeRunner{}
	tk := &fakeToolkit{}
	b := newTestBridge(r, tk, false)
	data := testPNG(t, 2, 2)

	b.PutPNG(data)

	calls := r.Calls()
	require.Len(t, calls, 1)
	c := calls[0]
	assert.Equal(t, "xclip", c.name)
	assert.Equal(t, []string{"-selection", "clipboard", "-t", "image/png", "-i"}, c.args[:5])
	assert.Equal(t, data, c.file)
	assert.Nil(t, c.stdin)
	assert.Empty(t, tk.Writes())

	_, err := os.Stat(c.args[5])
	assert.True(t, os.IsNotExist(err), "temp file should be removed")
}

func TestPutPNGWaylandUsesWlCopy(t *testing.T) {
	r := &fakeRunner{}
	tk := &fakeToolkit{}
	b := newTestBridge(r, tk, true)
	data := testPNG(t, 2, 2)

	b.PutPNG(data)

	calls := r.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "wl-copy", calls[0].name)
	assert.Equal(t, []string{"--type", "image/png"}, calls[0].args)
	assert.Equal(t, data, calls[0].stdin)
	assert.Empty(t, tk.Writes())
}

func TestPutPNGMissingXclipFallsBack(t *testing.T) {
	r := &fakeRunner{missing: map[string]bool{"xclip": true}}
	tk := &fakeToolkit{}
	b := newTestBridge(r, tk, false)

	b.PutPNG(testPNG(t, 1, 1))

	assert.Empty(t, r.Calls())
	assert.Len(t, tk.Writes(), 1)
}

func TestGetImageNativeFallback(t *testing.T) {
	r := &fakeRunner{output: testPNG(t, 5, 5)}
	b := newTestBridge(r, &fakeToolkit{}, true)

	img := b.GetImage()
	require.NotNil(t, img)
	assert.Equal(t, 5, img.Bounds().Dx())

	calls := r.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "wl-paste", calls[0].name)
}
