package log

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/term"
)

const diagFileName = "diagnostics_log.txt"

var (
	diagLog  = zerolog.Nop()
	diagFile *os.File
	logMu    sync.Mutex
	logReady bool
	pid      int
	dir      string
)

// Options selects the log sinks. The diagnostics file is always written;
// Console additionally mirrors every line to Stderr.
type Options struct {
	Console bool
	Debug   bool
	Stderr  io.Writer
}

func ResolveDir(flagPath string) (string, error) {
	// Priority 1: -logpath flag
	if flagPath != "" {
		return absPath(flagPath)
	}

	// Priority 2: SNAPKEY_LOG_PATH environment variable
	if envPath := os.Getenv("SNAPKEY_LOG_PATH"); envPath != "" {
		return absPath(envPath)
	}

	// Priority 3: Default OS-specific location
	return getDefaultDir()
}

func absPath(p string) (string, error) {
	if filepath.IsAbs(p) {
		return p, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(wd, p), nil
}

func SetDir(d string) {
	dir = d
}

func Dir() string {
	return dir
}

func EnsureDir() error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	return nil
}

func Init(opts Options) error {
	logMu.Lock()
	defer logMu.Unlock()

	if err := EnsureDir(); err != nil {
		return err
	}

	pid = os.Getpid()

	var err error
	diagFile, err = os.OpenFile(filepath.Join(dir, diagFileName), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}

	writers := []io.Writer{zerolog.ConsoleWriter{
		Out:        diagFile,
		TimeFormat: "2006-01-02 15:04:05",
		NoColor:    true,
	}}
	if opts.Console {
		out := opts.Stderr
		if out == nil {
			out = os.Stderr
		}
		writers = append(writers, zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: "15:04:05",
			NoColor:    !isTerminal(out),
		})
	}

	level := zerolog.InfoLevel
	if opts.Debug {
		level = zerolog.DebugLevel
	}
	diagLog = zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(level).
		With().Timestamp().Int("pid", pid).Logger()

	logReady = true
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func Close() {
	logMu.Lock()
	defer logMu.Unlock()
	if diagFile != nil {
		diagFile.Close()
		diagFile = nil
	}
	diagLog = zerolog.Nop()
	logReady = false
}

// Logger returns the diagnostics logger tagged with component. Before
// Init it returns a no-op logger.
func Logger(component string) zerolog.Logger {
	logMu.Lock()
	defer logMu.Unlock()
	return diagLog.With().Str("component", component).Logger()
}

func Info(msg string) {
	if logReady {
		diagLog.Info().Msg(msg)
	}
}

func Infof(format string, args ...any) {
	if logReady {
		diagLog.Info().Msg(fmt.Sprintf(format, args...))
	}
}

func Error(msg string) {
	if logReady {
		diagLog.Error().Msg(msg)
	}
}

func Errorf(format string, args ...any) {
	if logReady {
		diagLog.Error().Msg(fmt.Sprintf(format, args...))
	}
}

func Warn(msg string) {
	if logReady {
		diagLog.Warn().Msg(msg)
	}
}

func Warnf(format string, args ...any) {
	if logReady {
		diagLog.Warn().Msg(fmt.Sprintf(format, args...))
	}
}

func SessionStart(combo, backend string, suppress bool) {
	if !logReady {
		return
	}
	diagLog.Info().
		Str("hotkey", combo).
		Str("backend", backend).
		Bool("suppress", suppress).
		Msg("session_start")
}

type SessionStats struct {
	Accepted int
	Dropped  int
	Failed   int
	Uptime   time.Duration
}

func SessionEnd(s SessionStats) {
	if !logReady {
		return
	}
	diagLog.Info().
		Int("accepted", s.Accepted).
		Int("dropped", s.Dropped).
		Int("failed", s.Failed).
		Dur("uptime", s.Uptime).
		Msg("session_end")
}

type CaptureMetrics struct {
	Width, Height int
	InBytes       int
	OutBytes      int
	Processed     bool
	TotalMs       float64
}

func Capture(m CaptureMetrics) {
	if !logReady {
		return
	}
	diagLog.Info().
		Int("width", m.Width).
		Int("height", m.Height).
		Int("in_bytes", m.InBytes).
		Int("out_bytes", m.OutBytes).
		Bool("processed", m.Processed).
		Float64("total_ms", m.TotalMs).
		Msg("capture")
}

// Trigger records an accepted hotkey press.
func Trigger(combo string) {
	if !logReady {
		return
	}
	diagLog.Info().Str("hotkey", combo).Msg("trigger")
}

// Dropped records a hotkey press rejected by the debounce gate.
func Dropped(reason string, sinceLast time.Duration) {
	if !logReady {
		return
	}
	diagLog.Debug().Str("reason", reason).Dur("since_last", sinceLast).Msg("trigger_dropped")
}
