// Package doctor runs interactive checks of everything snapkey needs
// from the desktop: the hotkey, keystroke injection and the clipboard.
package doctor

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"time"

	"snapkey/clipboard"
	"snapkey/hotkey"
	"snapkey/keys"
)

const (
	defaultHotkeyWait = 10 * time.Second
	clipboardTimeout  = 3 * time.Second
)

type Options struct {
	Combo   string
	Backend string
	Device  string
	Wayland bool
	Out     io.Writer
}

type ImageClipboard interface {
	GetImage() image.Image
	PutPNG(png []byte)
}

type injector interface {
	Init() error
	Verify() (string, error)
}

type Doctor struct {
	opts       Options
	out        io.Writer
	hotkeyWait time.Duration

	openHotkey func() (hotkey.Hotkey, string, error)
	diagnose   func(backend string) (string, error)
	injector   injector
	copyText   func(string) error
	readText   func() (string, error)
	images     ImageClipboard
}

func New(opts Options, images ImageClipboard) *Doctor {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	return &Doctor{
		opts:       opts,
		out:        out,
		hotkeyWait: defaultHotkeyWait,
		openHotkey: func() (hotkey.Hotkey, string, error) {
			c, err := hotkey.ParseCombo(opts.Combo)
			if err != nil {
				return nil, "", err
			}
			return hotkey.Open(opts.Backend, c, opts.Device, opts.Wayland)
		},
		diagnose: func(backend string) (string, error) {
			if backend == hotkey.BackendEvdev {
				return hotkey.DiagnoseEvdev(opts.Device)
			}
			c, err := hotkey.ParseCombo(opts.Combo)
			if err != nil {
				return "", err
			}
			return hotkey.Diagnose(c)
		},
		injector: keys.New(),
		copyText: clipboard.Copy,
		readText: clipboard.Read,
		images:   images,
	}
}

// Run executes every check and returns an exit code: 0 when all pass.
func (d *Doctor) Run(ctx context.Context) int {
	resetTerminal()

	d.printf("snapkey doctor - interactive system diagnostics\n")
	d.printf("===============================================\n")

	checks := []func(context.Context) bool{
		d.checkHotkey,
		d.checkInjector,
		d.checkTextClipboard,
		d.checkImageClipboard,
	}
	allPass := true
	for _, check := range checks {
		if ctx.Err() != nil {
			d.printf("\nInterrupted\n")
			return 1
		}
		if !check(ctx) {
			allPass = false
		}
	}

	d.printf("\n")
	if allPass {
		d.printf("All checks passed!\n")
		return 0
	}
	d.printf("Some checks failed. See details above.\n")
	return 1
}

func (d *Doctor) printf(format string, args ...any) {
	fmt.Fprintf(d.out, format, args...)
}

func (d *Doctor) checkHotkey(ctx context.Context) bool {
	d.printf("\n[1/4] Hotkey detection\n")

	hk, backend, err := d.openHotkey()
	if err != nil {
		d.printf("  FAIL: %v\n", err)
		return false
	}
	info, err := d.diagnose(backend)
	if err != nil {
		d.printf("  FAIL: %s backend unavailable: %v\n", backend, err)
		if backend == hotkey.BackendEvdev {
			d.printf("  Fix with: sudo usermod -aG input $USER (then log in again)\n")
		}
		return false
	}
	d.printf("  %s\n", info)
	if err := hk.Register(); err != nil {
		d.printf("  FAIL: could not register hotkey (%s backend): %v\n", backend, err)
		if backend == hotkey.BackendEvdev {
			d.printf("  Fix with: sudo usermod -aG input $USER (then log in again)\n")
		}
		return false
	}
	defer hk.Unregister()

	if !hotkey.Suppresses(backend) {
		d.printf("  Note: the %s backend cannot stop the combo reaching the focused app\n", backend)
	}
	d.printf("Press %s...\n", d.opts.Combo)

	select {
	case <-hk.Keydown():
		resetTerminal()
		d.printf("  PASS: hotkey detected (%s backend)\n", backend)
		return true
	case <-time.After(d.hotkeyWait):
		d.printf("  FAIL: timeout waiting for hotkey\n")
		return false
	case <-ctx.Done():
		return false
	}
}

func (d *Doctor) checkInjector(context.Context) bool {
	d.printf("\n[2/4] Keystroke injection\n")

	if err := d.injector.Init(); err != nil {
		d.printf("  FAIL: %v\n", err)
		d.printf("  Fix with: sudo chmod 660 /dev/uinput && sudo chgrp input /dev/uinput\n")
		return false
	}
	msg, err := d.injector.Verify()
	if err != nil {
		d.printf("  FAIL: %v\n", err)
		return false
	}
	d.printf("  PASS: %s\n", msg)
	return true
}

func (d *Doctor) checkTextClipboard(ctx context.Context) bool {
	d.printf("\n[3/4] Clipboard text\n")

	want := fmt.Sprintf("snapkey-doctor-%d", time.Now().UnixNano())
	type result struct {
		got   string
		err   error
		phase string
	}
	ch := make(chan result, 1)
	go func() {
		if err := d.copyText(want); err != nil {
			ch <- result{err: err, phase: "write"}
			return
		}
		got, err := d.readText()
		if err != nil {
			ch <- result{err: err, phase: "read"}
			return
		}
		ch <- result{got: got}
	}()

	select {
	case res := <-ch:
		if res.err != nil {
			d.printf("  FAIL: clipboard %s failed: %v\n", res.phase, res.err)
			return false
		}
		if res.got != want {
			d.printf("  FAIL: clipboard mismatch: wrote %q, got %q\n", want, res.got)
			return false
		}
		d.printf("  PASS: clipboard write/read verified\n")
		return true
	case <-time.After(clipboardTimeout):
		d.printf("  FAIL: clipboard timed out (clipboard tool hung - display not accessible?)\n")
		return false
	case <-ctx.Done():
		return false
	}
}

func (d *Doctor) checkImageClipboard(ctx context.Context) bool {
	d.printf("\n[4/4] Clipboard image\n")

	const w, h = 3, 2
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		d.printf("  FAIL: encode test image: %v\n", err)
		return false
	}

	ch := make(chan image.Image, 1)
	go func() {
		d.images.PutPNG(buf.Bytes())
		ch <- d.images.GetImage()
	}()

	select {
	case got := <-ch:
		if got == nil {
			d.printf("  FAIL: image written but could not be read back (see diagnostics log)\n")
			return false
		}
		if b := got.Bounds(); b.Dx() != w || b.Dy() != h {
			d.printf("  FAIL: image mismatch: wrote %dx%d, got %dx%d\n", w, h, b.Dx(), b.Dy())
			return false
		}
		d.printf("  PASS: PNG write/read verified\n")
		return true
	case <-time.After(clipboardTimeout):
		d.printf("  FAIL: clipboard image timed out\n")
		return false
	case <-ctx.Done():
		return false
	}
}
