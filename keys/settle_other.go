//go:build !linux

package keys

func settleDevice() {}
