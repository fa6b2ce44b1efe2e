//go:build linux

package hotkey

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	evdev "github.com/holoplot/go-evdev"
)

const (
	keyPress   = 1
	keyRelease = 0
)

// modifierCodes lists the left and right evdev codes of each modifier.
var modifierCodes = map[Modifier][2]evdev.EvCode{
	ModCtrl:  {29, 97},
	ModShift: {42, 54},
	ModAlt:   {56, 100},
	ModSuper: {125, 126},
}

// evdevHotkey reads /dev/input directly. It works under Wayland where
// grabs are unavailable, but it only observes keys: the combination is
// always delivered to the focused application as well.
// Requires the user to be in the 'input' group.
type evdevHotkey struct {
	combo   Combo
	keyCode evdev.EvCode
	device  string
	keydown chan struct{}

	mu      sync.Mutex
	devices []*evdev.InputDevice
	stop    chan struct{}
}

// NewEvdev creates an evdev backend for c. device selects one input
// device; empty means every keyboard found under /dev/input.
func NewEvdev(c Combo, device string) (Hotkey, error) {
	code, ok := keyCodes[c.Key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKey, c.Key)
	}
	return &evdevHotkey{
		combo:   c,
		keyCode: evdev.EvCode(code),
		device:  device,
		keydown: make(chan struct{}, 1),
	}, nil
}

func (h *evdevHotkey) Register() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stop != nil {
		return nil
	}

	devices, err := openKeyboards(h.device)
	if err != nil {
		return err
	}
	h.devices = devices
	h.stop = make(chan struct{})
	for _, dev := range devices {
		go h.readEvents(dev, h.stop)
	}
	return nil
}

func (h *evdevHotkey) readEvents(dev *evdev.InputDevice, stop <-chan struct{}) {
	held := make(map[evdev.EvCode]bool)
	var keyHeld bool

	for {
		ev, err := dev.ReadOne()
		if err != nil {
			return
		}
		select {
		case <-stop:
			return
		default:
		}
		if ev.Type != evdev.EV_KEY {
			continue
		}

		// value 2 is key repeat and is ignored
		switch ev.Value {
		case keyPress:
			held[ev.Code] = true
		case keyRelease:
			delete(held, ev.Code)
		default:
			continue
		}

		if ev.Code != h.keyCode {
			continue
		}
		if ev.Value == keyRelease {
			keyHeld = false
			continue
		}
		if keyHeld || !h.modifiersHeld(held) {
			continue
		}
		keyHeld = true
		select {
		case h.keydown <- struct{}{}:
		default:
		}
	}
}

// modifiersHeld reports whether exactly the combo's modifiers are down.
func (h *evdevHotkey) modifiersHeld(held map[evdev.EvCode]bool) bool {
	for mod, codes := range modifierCodes {
		down := held[codes[0]] || held[codes[1]]
		if down != h.combo.Has(mod) {
			return false
		}
	}
	return true
}

func (h *evdevHotkey) Unregister() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stop == nil {
		return nil
	}
	close(h.stop)
	h.stop = nil

	var errs []error
	for _, dev := range h.devices {
		if err := dev.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", dev.Path(), err))
		}
	}
	h.devices = nil
	return errors.Join(errs...)
}

func (h *evdevHotkey) Registered() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stop != nil
}

func (h *evdevHotkey) Keydown() <-chan struct{} {
	return h.keydown
}

func openKeyboards(devicePath string) ([]*evdev.InputDevice, error) {
	if devicePath != "" {
		dev, err := evdev.Open(devicePath)
		if err != nil {
			return nil, fmt.Errorf("open device %s: %w", devicePath, err)
		}
		return []*evdev.InputDevice{dev}, nil
	}

	paths, err := findKeyboards()
	if err != nil {
		return nil, err
	}

	var devices []*evdev.InputDevice
	for _, path := range paths {
		dev, err := evdev.Open(path)
		if err != nil {
			continue
		}
		if !isKeyboard(dev) {
			_ = dev.Close()
			continue
		}
		devices = append(devices, dev)
	}
	if len(devices) == 0 {
		return nil, fmt.Errorf("could not open any keyboard device (run: sudo usermod -aG input $USER, then re-login)")
	}
	return devices, nil
}

// findKeyboards lists /dev/input/event* sorted numerically.
func findKeyboards() ([]string, error) {
	matches, err := filepath.Glob("/dev/input/event*")
	if err != nil {
		return nil, fmt.Errorf("glob /dev/input/event*: %w", err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no input devices found (is user in 'input' group?)")
	}
	sort.Slice(matches, func(i, j int) bool {
		ni, _ := strconv.Atoi(strings.TrimPrefix(matches[i], "/dev/input/event"))
		nj, _ := strconv.Atoi(strings.TrimPrefix(matches[j], "/dev/input/event"))
		return ni < nj
	})
	return matches, nil
}

// isKeyboard accepts devices with letter keys and no relative axes,
// which rules out mice and power buttons.
func isKeyboard(dev *evdev.InputDevice) bool {
	for _, evType := range dev.CapableTypes() {
		if evType == evdev.EV_REL {
			return false
		}
	}
	var hasA, hasZ bool
	for _, code := range dev.CapableEvents(evdev.EV_KEY) {
		switch code {
		case 30: // KEY_A
			hasA = true
		case 44: // KEY_Z
			hasZ = true
		}
	}
	return hasA && hasZ
}

// DiagnoseEvdev checks that at least one keyboard can be opened.
func DiagnoseEvdev(devicePath string) (string, error) {
	devices, err := openKeyboards(devicePath)
	if err != nil {
		return "", err
	}
	opened := devices[0].Path()
	for _, dev := range devices {
		_ = dev.Close()
	}
	if _, err := os.Stat("/dev/uinput"); err != nil {
		return fmt.Sprintf("%d keyboard(s), opened %s (no /dev/uinput: keystroke injection unavailable)", len(devices), opened), nil
	}
	return fmt.Sprintf("%d keyboard(s), opened %s", len(devices), opened), nil
}
