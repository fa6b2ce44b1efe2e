package log

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupLogDir(t *testing.T) string {
	t.Helper()
	tmp := t.TempDir()
	SetDir(tmp)
	t.Cleanup(func() { Close(); SetDir("") })
	return tmp
}

func readDiag(t *testing.T, dir string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, diagFileName))
	require.NoError(t, err)
	return string(data)
}

func TestResolveDirFlag(t *testing.T) {
	got, err := ResolveDir("/tmp/mylog")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/mylog", got)
}

func TestResolveDirFlagRelative(t *testing.T) {
	got, err := ResolveDir("logs")
	require.NoError(t, err)
	wd, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(wd, "logs"), got)
}

func TestResolveDirEnv(t *testing.T) {
	t.Setenv("SNAPKEY_LOG_PATH", "/tmp/snapkey-env-log")
	got, err := ResolveDir("")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/snapkey-env-log", got)
}

func TestResolveDirDefault(t *testing.T) {
	t.Setenv("SNAPKEY_LOG_PATH", "")
	got, err := ResolveDir("")
	require.NoError(t, err)
	assert.NotEmpty(t, got)
}

func TestInitCreatesFile(t *testing.T) {
	tmp := setupLogDir(t)
	require.NoError(t, Init(Options{}))
	_, err := os.Stat(filepath.Join(tmp, diagFileName))
	assert.NoError(t, err)
}

func TestConsoleMirror(t *testing.T) {
	tmp := setupLogDir(t)
	var console bytes.Buffer
	require.NoError(t, Init(Options{Console: true, Stderr: &console}))

	Warnf("hook %s failed", "ctrl+s")

	assert.Contains(t, console.String(), "hook ctrl+s failed")
	assert.Contains(t, readDiag(t, tmp), "hook ctrl+s failed")
}

func TestDebugLevelFiltered(t *testing.T) {
	tmp := setupLogDir(t)
	require.NoError(t, Init(Options{}))

	l := Logger("listener")
	l.Debug().Msg("hidden")
	l.Info().Msg("shown")

	out := readDiag(t, tmp)
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "component=listener")
}

func TestSessionEnd(t *testing.T) {
	tmp := setupLogDir(t)
	require.NoError(t, Init(Options{}))

	SessionEnd(SessionStats{Accepted: 3, Dropped: 7, Failed: 1, Uptime: time.Minute})

	out := readDiag(t, tmp)
	assert.Contains(t, out, "session_end")
	assert.Contains(t, out, "dropped=7")
}

func TestLoggerBeforeInit(t *testing.T) {
	setupLogDir(t)
	l := Logger("listener")
	l.Info().Msg("nowhere") // must not panic
	Info("nowhere")
}

func TestCloseIdempotent(t *testing.T) {
	setupLogDir(t)
	require.NoError(t, Init(Options{}))
	Close()
	Close() // should not panic
}
