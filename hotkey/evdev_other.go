//go:build !linux

package hotkey

import "errors"

var errNoEvdev = errors.New("evdev backend is only available on linux")

func NewEvdev(Combo, string) (Hotkey, error) {
	return nil, errNoEvdev
}

func DiagnoseEvdev(string) (string, error) {
	return "", errNoEvdev
}
