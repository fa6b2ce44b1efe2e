package clipboard

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"time"

	"github.com/rs/zerolog"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const defaultTimeout = 5 * time.Second

var errNoNative = errors.New("no native clipboard utility for this platform")

// Bridge moves images between the system clipboard and this process.
// Reads and writes never propagate errors to the caller: failures are
// logged and surface as a nil image or a no-op write.
type Bridge struct {
	runner  Runner
	toolkit Toolkit
	log     zerolog.Logger
	wayland bool
	timeout time.Duration
}

type Option func(*Bridge)

func WithRunner(r Runner) Option { return func(b *Bridge) { b.runner = r } }

func WithToolkit(t Toolkit) Option { return func(b *Bridge) { b.toolkit = t } }

// WithWayland overrides session detection.
func WithWayland(on bool) Option { return func(b *Bridge) { b.wayland = on } }

func WithTimeout(d time.Duration) Option { return func(b *Bridge) { b.timeout = d } }

func NewBridge(logger zerolog.Logger, opts ...Option) *Bridge {
	b := &Bridge{
		runner:  execRunner{},
		toolkit: &designToolkit{},
		log:     logger,
		wayland: IsWayland(),
		timeout: defaultTimeout,
	}
	for _, o := range opts {
		o(b)
	}
	return b
}

// IsWayland reports whether the session runs under a Wayland compositor.
func IsWayland() bool {
	return os.Getenv("XDG_SESSION_TYPE") == "wayland" || os.Getenv("WAYLAND_DISPLAY") != ""
}

// GetImage returns the clipboard image, or nil when the clipboard holds
// no image or it cannot be decoded.
func (b *Bridge) GetImage() (img image.Image) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error().Interface("panic", r).Msg("clipboard read panicked")
			img = nil
		}
	}()

	data, src, err := b.readImage()
	if err != nil {
		b.log.Debug().Err(err).Msg("no clipboard image")
		return nil
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		b.log.Warn().Err(err).Str("source", src).Int("bytes", len(data)).Msg("clipboard image decode failed")
		return nil
	}
	bounds := img.Bounds()
	b.log.Debug().
		Str("source", src).
		Str("format", format).
		Int("width", bounds.Dx()).
		Int("height", bounds.Dy()).
		Msg("clipboard image read")
	return img
}

func (b *Bridge) readImage() ([]byte, string, error) {
	data, tkErr := b.toolkit.ReadImage()
	if tkErr == nil && len(data) > 0 {
		return data, "toolkit", nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
	defer cancel()
	data, err := b.nativeRead(ctx)
	if err != nil {
		return nil, "", errors.Join(tkErr, err)
	}
	if len(data) == 0 {
		return nil, "", errEmpty
	}
	return data, "native", nil
}

// PutPNG places PNG bytes on the clipboard, trying the platform utility
// first and the in-process toolkit second.
func (b *Bridge) PutPNG(data []byte) {
	if err := b.putPNG(data); err != nil {
		b.log.Error().Err(err).Int("bytes", len(data)).Msg("clipboard write failed")
	}
}

func (b *Bridge) putPNG(data []byte) error {
	if len(data) == 0 {
		return errors.New("empty image")
	}

	ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
	defer cancel()
	nativeErr := b.nativeWrite(ctx, data)
	if nativeErr == nil {
		b.log.Debug().Int("bytes", len(data)).Msg("clipboard image written (native)")
		return nil
	}
	b.log.Warn().Err(nativeErr).Msg("native clipboard write failed, using toolkit")

	if err := b.toolkit.WriteImage(data); err != nil {
		return fmt.Errorf("native: %v; toolkit: %w", nativeErr, err)
	}
	b.log.Debug().Int("bytes", len(data)).Msg("clipboard image written (toolkit)")
	return nil
}

// writeTemp stores data in a temporary file for utilities that read
// from a path. The caller removes it.
func writeTemp(data []byte) (string, error) {
	f, err := os.CreateTemp("", "snapkey-*.png")
	if err != nil {
		return "", err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}
