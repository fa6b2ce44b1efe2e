package hotkey

import (
	"errors"
	"fmt"
	"strings"
)

// Hotkey provides global shortcut registration with key-down events.
// Register and Unregister may be called repeatedly; the Keydown channel
// stays the same across registrations. Registered reports what the
// backend holds, which is how callers resync after a failed call.
type Hotkey interface {
	Register() error
	Unregister() error
	Registered() bool
	Keydown() <-chan struct{}
}

var (
	ErrEmptyCombo      = errors.New("empty hotkey combo")
	ErrUnknownKey      = errors.New("unknown key")
	ErrUnknownModifier = errors.New("unknown modifier")
)

type Modifier int

const (
	ModCtrl Modifier = iota
	ModShift
	ModAlt
	ModSuper
)

func (m Modifier) String() string {
	switch m {
	case ModCtrl:
		return "ctrl"
	case ModShift:
		return "shift"
	case ModAlt:
		return "alt"
	case ModSuper:
		return "super"
	}
	return fmt.Sprintf("mod(%d)", int(m))
}

var modifierNames = map[string]Modifier{
	"ctrl":    ModCtrl,
	"control": ModCtrl,
	"shift":   ModShift,
	"alt":     ModAlt,
	"option":  ModAlt,
	"super":   ModSuper,
	"win":     ModSuper,
	"cmd":     ModSuper,
	"meta":    ModSuper,
}

// keyAliases folds alternative spellings onto the canonical key name.
var keyAliases = map[string]string{
	"return": "enter",
	"escape": "esc",
	"del":    "delete",
}

// Combo is a parsed key combination: zero or more modifiers plus one key.
// Key is the canonical lower-case key name ("s", "f5", "space").
type Combo struct {
	Mods []Modifier
	Key  string
}

func (c Combo) Has(m Modifier) bool {
	for _, mod := range c.Mods {
		if mod == m {
			return true
		}
	}
	return false
}

func (c Combo) String() string {
	parts := make([]string, 0, len(c.Mods)+1)
	for _, m := range c.Mods {
		parts = append(parts, m.String())
	}
	parts = append(parts, c.Key)
	return strings.Join(parts, "+")
}

// ParseCombo parses a combo string like "ctrl+alt+s" or "Shift+F5".
// Parsing is case-insensitive and ignores whitespace around parts.
// Duplicate modifiers are collapsed.
func ParseCombo(s string) (Combo, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return Combo{}, ErrEmptyCombo
	}

	parts := strings.Split(s, "+")
	keyStr := strings.TrimSpace(parts[len(parts)-1])
	if alias, ok := keyAliases[keyStr]; ok {
		keyStr = alias
	}
	if !IsKnownKey(keyStr) {
		return Combo{}, fmt.Errorf("%w: %q", ErrUnknownKey, keyStr)
	}

	var c Combo
	for _, part := range parts[:len(parts)-1] {
		part = strings.TrimSpace(part)
		mod, ok := modifierNames[part]
		if !ok {
			return Combo{}, fmt.Errorf("%w: %q (valid: ctrl, shift, alt, super)", ErrUnknownModifier, part)
		}
		if !c.Has(mod) {
			c.Mods = append(c.Mods, mod)
		}
	}
	c.Key = keyStr
	return c, nil
}

// IsKnownKey reports whether name is a key every backend can bind.
func IsKnownKey(name string) bool {
	_, ok := keyCodes[name]
	return ok
}

// keyCodes lists the bindable keys with their evdev codes. The grab
// backend keeps its own table keyed by the same names.
var keyCodes = map[string]uint16{
	"esc": 1, "1": 2, "2": 3, "3": 4, "4": 5, "5": 6, "6": 7, "7": 8, "8": 9, "9": 10, "0": 11,
	"tab": 15,
	"q": 16, "w": 17, "e": 18, "r": 19, "t": 20, "y": 21, "u": 22, "i": 23, "o": 24, "p": 25,
	"enter": 28,
	"a": 30, "s": 31, "d": 32, "f": 33, "g": 34, "h": 35, "j": 36, "k": 37, "l": 38,
	"z": 44, "x": 45, "c": 46, "v": 47, "b": 48, "n": 49, "m": 50,
	"space": 57,
	"f1": 59, "f2": 60, "f3": 61, "f4": 62, "f5": 63, "f6": 64, "f7": 65, "f8": 66, "f9": 67, "f10": 68,
	"f11": 87, "f12": 88,
	"up": 103, "left": 105, "right": 106, "down": 108, "delete": 111,
	"f13": 183, "f14": 184, "f15": 185, "f16": 186, "f17": 187, "f18": 188, "f19": 189, "f20": 190,
}
