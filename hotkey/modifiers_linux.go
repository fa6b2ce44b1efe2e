//go:build linux && x11

package hotkey

import "golang.design/x/hotkey"

// X11: Alt is Mod1, Super is Mod4.
var modifierMap = map[Modifier]hotkey.Modifier{
	ModCtrl:  hotkey.ModCtrl,
	ModShift: hotkey.ModShift,
	ModAlt:   hotkey.Mod1,
	ModSuper: hotkey.Mod4,
}

// XUngrabKey through the library waits for the next key event.
const releaseOnUnregister = false
