package hotkey

import "fmt"

const (
	BackendAuto  = "auto"
	BackendGrab  = "grab"
	BackendEvdev = "evdev"
)

// Open picks a backend by name and returns it with the name actually
// used. In auto mode Wayland sessions, and linux builds without the x11
// tag, get evdev; everything else grabs.
func Open(backend string, c Combo, device string, wayland bool) (Hotkey, string, error) {
	if backend == BackendAuto || backend == "" {
		backend = autoBackend(wayland)
	}

	switch backend {
	case BackendGrab:
		hk, err := New(c)
		return hk, backend, err
	case BackendEvdev:
		hk, err := NewEvdev(c, device)
		return hk, backend, err
	default:
		return nil, "", fmt.Errorf("unknown hotkey backend %q (use auto, grab or evdev)", backend)
	}
}

func autoBackend(wayland bool) string {
	if wayland || !grabAvailable {
		return BackendEvdev
	}
	return BackendGrab
}

// Suppresses reports whether a backend keeps the combination from
// reaching the focused application.
func Suppresses(backend string) bool {
	return backend == BackendGrab
}
