// Package capture implements the hotkey action: optionally ask the host
// screenshot tool to copy its selection, read the clipboard image, run
// it through a filter and put PNG back on the clipboard.
package capture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"time"

	"github.com/rs/zerolog"

	"snapkey/log"
)

var ErrNoImage = errors.New("clipboard holds no image")

const DefaultCommandTimeout = 30 * time.Second

// Injector sends a keystroke with the hotkey unhooked.
type Injector interface {
	InjectKeystroke(combo string) error
}

type Clipboard interface {
	GetImage() image.Image
	PutPNG(png []byte)
}

type Options struct {
	CopyKeys       string
	CopyDelay      time.Duration
	CommandTimeout time.Duration
	Filter         Filter
	Logger         zerolog.Logger
	Sleep          func(time.Duration)
	OnResult       func(Result)
}

// Result describes one capture for the status panel.
type Result struct {
	Width, Height int
	InBytes       int
	OutBytes      int
	Processed     bool
	Duration      time.Duration
	Err           error
}

type Processor struct {
	inj  Injector
	clip Clipboard
	opts Options
	log  zerolog.Logger
}

func New(inj Injector, clip Clipboard, opts Options) *Processor {
	if opts.Filter == nil {
		opts.Filter = Noop()
	}
	if opts.CommandTimeout <= 0 {
		opts.CommandTimeout = DefaultCommandTimeout
	}
	if opts.Sleep == nil {
		opts.Sleep = time.Sleep
	}
	return &Processor{
		inj:  inj,
		clip: clip,
		opts: opts,
		log:  opts.Logger,
	}
}

// Capture runs one action. It is the listener callback.
func (p *Processor) Capture() error {
	start := time.Now()
	res, err := p.capture()
	res.Duration = time.Since(start)
	res.Err = err

	if err == nil {
		log.Capture(log.CaptureMetrics{
			Width:     res.Width,
			Height:    res.Height,
			InBytes:   res.InBytes,
			OutBytes:  res.OutBytes,
			Processed: res.Processed,
			TotalMs:   float64(res.Duration.Microseconds()) / 1000,
		})
	}
	if p.opts.OnResult != nil {
		p.opts.OnResult(res)
	}
	return err
}

func (p *Processor) capture() (Result, error) {
	var res Result

	if p.opts.CopyKeys != "" {
		if p.inj == nil {
			return res, errors.New("copy keys configured without an injector")
		}
		if err := p.inj.InjectKeystroke(p.opts.CopyKeys); err != nil {
			return res, fmt.Errorf("send copy keys: %w", err)
		}
		if p.opts.CopyDelay > 0 {
			p.opts.Sleep(p.opts.CopyDelay)
		}
	}

	img := p.clip.GetImage()
	if img == nil {
		p.log.Warn().Msg("no image on clipboard")
		return res, ErrNoImage
	}
	bounds := img.Bounds()
	res.Width, res.Height = bounds.Dx(), bounds.Dy()

	in, err := encodePNG(img)
	if err != nil {
		return res, err
	}
	res.InBytes = len(in)

	out := in
	if _, isNoop := p.opts.Filter.(noop); !isNoop {
		ctx, cancel := context.WithTimeout(context.Background(), p.opts.CommandTimeout)
		processed, err := p.opts.Filter.Process(ctx, in)
		cancel()
		if err != nil {
			return res, fmt.Errorf("process image: %w", err)
		}
		// Re-encode so whatever the command emits lands as PNG.
		outImg, _, err := image.Decode(bytes.NewReader(processed))
		if err != nil {
			return res, fmt.Errorf("decode processed image: %w", err)
		}
		if out, err = encodePNG(outImg); err != nil {
			return res, err
		}
		b := outImg.Bounds()
		res.Width, res.Height = b.Dx(), b.Dy()
		res.Processed = true
	}
	res.OutBytes = len(out)

	p.clip.PutPNG(out)
	p.log.Info().
		Int("width", res.Width).
		Int("height", res.Height).
		Int("bytes", res.OutBytes).
		Bool("processed", res.Processed).
		Msg("image placed on clipboard")
	return res, nil
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
