//go:build linux && !x11

package hotkey

import "errors"

// The X11 grab is opt-in on linux: golang.design/x/hotkey opens the
// display in its init and panics when there is none.
const grabAvailable = false

var errNoGrab = errors.New("grab backend not built in (rebuild with -tags x11)")

func New(Combo) (Hotkey, error) {
	return nil, errNoGrab
}

func Diagnose(Combo) (string, error) {
	return "", errNoGrab
}
