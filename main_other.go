//go:build !linux

package main

import (
	"runtime"

	"golang.design/x/hotkey/mainthread"
)

func init() {
	runtime.LockOSThread()
}

// Cocoa and Win32 deliver hotkey events on the main thread.
func main() {
	mainthread.Init(run)
}
