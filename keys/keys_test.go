package keys

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"snapkey/hotkey"
)

func TestPressAndReleaseRejectsBadCombo(t *testing.T) {
	k := New()
	// Parsing fails before the virtual keyboard is created.
	assert.ErrorIs(t, k.PressAndRelease("ctrl+nope"), hotkey.ErrUnknownKey)
	assert.ErrorIs(t, k.PressAndRelease(""), hotkey.ErrEmptyCombo)
}

func TestPressAndReleaseRejectsNonInjectableKey(t *testing.T) {
	k := New()
	// f20 can be grabbed but has no virtual key code.
	assert.ErrorIs(t, k.PressAndRelease("ctrl+f20"), hotkey.ErrUnknownKey)
}

func TestInjectableKeysAreBindable(t *testing.T) {
	for name := range vkCodes {
		assert.True(t, hotkey.IsKnownKey(name), "injectable key %q unknown to parser", name)
	}
}

func TestFakeRecords(t *testing.T) {
	var seen string
	f := &Fake{OnPress: func(c string) { seen = c }}
	assert.NoError(t, f.PressAndRelease("ctrl+c"))
	assert.Equal(t, "ctrl+c", seen)
	assert.Equal(t, []string{"ctrl+c"}, f.Combos())
}
