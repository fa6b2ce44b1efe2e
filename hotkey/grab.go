//go:build !linux || x11

package hotkey

import (
	"fmt"
	"sync"
	"time"

	"golang.design/x/hotkey"
)

const unregisterTimeout = 500 * time.Millisecond

const grabAvailable = true

// grabHotkey grabs the combination through golang.design/x/hotkey
// (X11 XGrabKey, Carbon RegisterEventHotKey, Win32 RegisterHotKey).
// A grab always consumes the key press.
//
// Where releaseOnUnregister is false (X11) Unregister only mutes
// forwarding: the library's ungrab blocks until the next physical
// press, and grabbing again while that ungrab is pending fails with
// BadAccess.
type grabHotkey struct {
	mods    []hotkey.Modifier
	key     hotkey.Key
	name    string
	keydown chan struct{}

	mu    sync.Mutex
	hk    *hotkey.Hotkey
	done  chan struct{}
	muted bool
}

// New creates a grab backend for c.
func New(c Combo) (Hotkey, error) {
	mods := make([]hotkey.Modifier, 0, len(c.Mods))
	for _, m := range c.Mods {
		mod, ok := modifierMap[m]
		if !ok {
			return nil, fmt.Errorf("%w: %s not supported on this platform", ErrUnknownModifier, m)
		}
		mods = append(mods, mod)
	}
	key, ok := keyMap[c.Key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKey, c.Key)
	}
	return &grabHotkey{
		mods:    mods,
		key:     key,
		name:    c.String(),
		keydown: make(chan struct{}, 1),
	}, nil
}

func (h *grabHotkey) Register() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.hk != nil {
		h.muted = false
		return nil
	}

	hk := hotkey.New(h.mods, h.key)
	if err := hk.Register(); err != nil {
		return fmt.Errorf("grab %s: %w", h.name, err)
	}
	h.hk = hk
	h.muted = false
	h.done = make(chan struct{})
	go h.forward(hk, h.done)
	return nil
}

// forward relays key-down events until the registration ends. Key-up
// events are drained so the library never blocks on them.
func (h *grabHotkey) forward(hk *hotkey.Hotkey, done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case _, ok := <-hk.Keydown():
			if !ok {
				return
			}
			h.mu.Lock()
			muted := h.muted
			h.mu.Unlock()
			if muted {
				continue
			}
			select {
			case h.keydown <- struct{}{}:
			default:
			}
		case _, ok := <-hk.Keyup():
			if !ok {
				return
			}
		}
	}
}

func (h *grabHotkey) Unregister() error {
	h.mu.Lock()
	hk := h.hk
	if hk == nil || h.muted {
		h.mu.Unlock()
		return nil
	}
	if !releaseOnUnregister {
		h.muted = true
		h.mu.Unlock()
		return nil
	}
	close(h.done)
	h.hk = nil
	h.done = nil
	h.mu.Unlock()

	errCh := make(chan error, 1)
	go func() { errCh <- hk.Unregister() }()
	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("ungrab %s: %w", h.name, err)
		}
		return nil
	case <-time.After(unregisterTimeout):
		// Forwarding already stopped and a later Register creates a new
		// grab, so the pending ungrab only leaks its goroutine.
		return fmt.Errorf("ungrab %s: timed out after %s", h.name, unregisterTimeout)
	}
}

// Registered reports whether key presses are being forwarded.
func (h *grabHotkey) Registered() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.hk != nil && !h.muted
}

func (h *grabHotkey) Keydown() <-chan struct{} {
	return h.keydown
}

// Diagnose tries to grab c and releases it again. On X11 a grab cannot
// be released promptly, so only the key mapping is checked there.
func Diagnose(c Combo) (string, error) {
	hk, err := New(c)
	if err != nil {
		return "", err
	}
	if !releaseOnUnregister {
		return fmt.Sprintf("X11 grab backend ready (%s)", c), nil
	}
	if err := hk.Register(); err != nil {
		return "", err
	}
	if err := hk.Unregister(); err != nil {
		return "", err
	}
	return fmt.Sprintf("global grab available (%s)", c), nil
}

// keyMap maps canonical key names to golang.design/x/hotkey keys.
var keyMap = map[string]hotkey.Key{
	"space":  hotkey.KeySpace,
	"enter":  hotkey.KeyReturn,
	"esc":    hotkey.KeyEscape,
	"delete": hotkey.KeyDelete,
	"tab":    hotkey.KeyTab,
	"left":   hotkey.KeyLeft,
	"right":  hotkey.KeyRight,
	"up":     hotkey.KeyUp,
	"down":   hotkey.KeyDown,
	"f1":     hotkey.KeyF1,
	"f2":     hotkey.KeyF2,
	"f3":     hotkey.KeyF3,
	"f4":     hotkey.KeyF4,
	"f5":     hotkey.KeyF5,
	"f6":     hotkey.KeyF6,
	"f7":     hotkey.KeyF7,
	"f8":     hotkey.KeyF8,
	"f9":     hotkey.KeyF9,
	"f10":    hotkey.KeyF10,
	"f11":    hotkey.KeyF11,
	"f12":    hotkey.KeyF12,
	"f13":    hotkey.KeyF13,
	"f14":    hotkey.KeyF14,
	"f15":    hotkey.KeyF15,
	"f16":    hotkey.KeyF16,
	"f17":    hotkey.KeyF17,
	"f18":    hotkey.KeyF18,
	"f19":    hotkey.KeyF19,
	"f20":    hotkey.KeyF20,
	"a":      hotkey.KeyA,
	"b":      hotkey.KeyB,
	"c":      hotkey.KeyC,
	"d":      hotkey.KeyD,
	"e":      hotkey.KeyE,
	"f":      hotkey.KeyF,
	"g":      hotkey.KeyG,
	"h":      hotkey.KeyH,
	"i":      hotkey.KeyI,
	"j":      hotkey.KeyJ,
	"k":      hotkey.KeyK,
	"l":      hotkey.KeyL,
	"m":      hotkey.KeyM,
	"n":      hotkey.KeyN,
	"o":      hotkey.KeyO,
	"p":      hotkey.KeyP,
	"q":      hotkey.KeyQ,
	"r":      hotkey.KeyR,
	"s":      hotkey.KeyS,
	"t":      hotkey.KeyT,
	"u":      hotkey.KeyU,
	"v":      hotkey.KeyV,
	"w":      hotkey.KeyW,
	"x":      hotkey.KeyX,
	"y":      hotkey.KeyY,
	"z":      hotkey.KeyZ,
	"0":      hotkey.Key0,
	"1":      hotkey.Key1,
	"2":      hotkey.Key2,
	"3":      hotkey.Key3,
	"4":      hotkey.Key4,
	"5":      hotkey.Key5,
	"6":      hotkey.Key6,
	"7":      hotkey.Key7,
	"8":      hotkey.Key8,
	"9":      hotkey.Key9,
}
