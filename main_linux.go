//go:build linux

package main

// X11 and evdev have no main-thread requirement.
func main() {
	run()
}
