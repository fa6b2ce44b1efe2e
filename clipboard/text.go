package clipboard

import (
	"errors"

	cb "github.com/atotto/clipboard"
)

// ErrNoTextClipboard means no xclip, xsel, wl-clipboard or termux tool was found.
var ErrNoTextClipboard = errors.New("no text clipboard utility available (install xclip or wl-clipboard)")

// Read returns the clipboard as text.
func Read() (string, error) {
	if cb.Unsupported {
		return "", ErrNoTextClipboard
	}
	return cb.ReadAll()
}

// Copy replaces the clipboard with text.
func Copy(text string) error {
	if cb.Unsupported {
		return ErrNoTextClipboard
	}
	return cb.WriteAll(text)
}
