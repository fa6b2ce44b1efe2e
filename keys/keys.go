// Package keys synthesizes keystrokes.
package keys

import (
	"fmt"
	"sync"

	"github.com/micmonay/keybd_event"

	"snapkey/hotkey"
)

// Injector presses and releases a key combination.
type Injector interface {
	PressAndRelease(combo string) error
}

// KeyBonding injects through keybd_event (uinput on linux, CGEvent on
// macOS, SendInput on Windows). The underlying device is created on
// first use and reused.
type KeyBonding struct {
	mu   sync.Mutex
	once sync.Once
	kb   keybd_event.KeyBonding
	err  error
}

func New() *KeyBonding {
	return &KeyBonding{}
}

// Init creates the virtual keyboard. It is safe to call more than once.
func (k *KeyBonding) Init() error {
	k.once.Do(func() {
		k.kb, k.err = keybd_event.NewKeyBonding()
		if k.err == nil {
			settleDevice()
		}
	})
	return k.err
}

func (k *KeyBonding) PressAndRelease(combo string) error {
	c, err := hotkey.ParseCombo(combo)
	if err != nil {
		return err
	}
	vk, ok := vkCodes[c.Key]
	if !ok {
		return fmt.Errorf("%w: %q cannot be injected", hotkey.ErrUnknownKey, c.Key)
	}
	if err := k.Init(); err != nil {
		return fmt.Errorf("keyboard init: %w", err)
	}

	k.mu.Lock()
	defer k.mu.Unlock()
	k.kb.Clear()
	k.kb.SetKeys(vk)
	k.kb.HasCTRL(c.Has(hotkey.ModCtrl))
	k.kb.HasSHIFT(c.Has(hotkey.ModShift))
	k.kb.HasALT(c.Has(hotkey.ModAlt))
	k.kb.HasSuper(c.Has(hotkey.ModSuper))
	if err := k.kb.Launching(); err != nil {
		return fmt.Errorf("inject %s: %w", c, err)
	}
	return nil
}

// Verify checks that the virtual keyboard can be created.
func (k *KeyBonding) Verify() (string, error) {
	if err := k.Init(); err != nil {
		return "", err
	}
	return "keyboard event binding OK", nil
}

var vkCodes = map[string]int{
	"a": keybd_event.VK_A, "b": keybd_event.VK_B, "c": keybd_event.VK_C, "d": keybd_event.VK_D,
	"e": keybd_event.VK_E, "f": keybd_event.VK_F, "g": keybd_event.VK_G, "h": keybd_event.VK_H,
	"i": keybd_event.VK_I, "j": keybd_event.VK_J, "k": keybd_event.VK_K, "l": keybd_event.VK_L,
	"m": keybd_event.VK_M, "n": keybd_event.VK_N, "o": keybd_event.VK_O, "p": keybd_event.VK_P,
	"q": keybd_event.VK_Q, "r": keybd_event.VK_R, "s": keybd_event.VK_S, "t": keybd_event.VK_T,
	"u": keybd_event.VK_U, "v": keybd_event.VK_V, "w": keybd_event.VK_W, "x": keybd_event.VK_X,
	"y": keybd_event.VK_Y, "z": keybd_event.VK_Z,
	"0": keybd_event.VK_0, "1": keybd_event.VK_1, "2": keybd_event.VK_2, "3": keybd_event.VK_3,
	"4": keybd_event.VK_4, "5": keybd_event.VK_5, "6": keybd_event.VK_6, "7": keybd_event.VK_7,
	"8": keybd_event.VK_8, "9": keybd_event.VK_9,
	"f1": keybd_event.VK_F1, "f2": keybd_event.VK_F2, "f3": keybd_event.VK_F3, "f4": keybd_event.VK_F4,
	"f5": keybd_event.VK_F5, "f6": keybd_event.VK_F6, "f7": keybd_event.VK_F7, "f8": keybd_event.VK_F8,
	"f9": keybd_event.VK_F9, "f10": keybd_event.VK_F10, "f11": keybd_event.VK_F11, "f12": keybd_event.VK_F12,
	"space": keybd_event.VK_SPACE,
	"enter": keybd_event.VK_ENTER,
	"esc":   keybd_event.VK_ESC,
	"tab":   keybd_event.VK_TAB,
}
