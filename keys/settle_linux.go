//go:build linux

package keys

import "time"

// settleDevice gives udev and the compositor time to pick up the new
// uinput device; keystrokes sent earlier are lost.
func settleDevice() {
	time.Sleep(2 * time.Second)
}
