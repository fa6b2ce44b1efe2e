//go:build windows

package log

import (
	"os"
	"path/filepath"
)

// getDefaultDir returns %LocalAppData%\snapkey\Logs.
func getDefaultDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "snapkey", "Logs"), nil
}
