package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	"snapkey/beep"
	"snapkey/capture"
	"snapkey/clipboard"
	"snapkey/config"
	"snapkey/doctor"
	"snapkey/hotkey"
	"snapkey/keys"
	"snapkey/listener"
	"snapkey/log"
	"snapkey/shutdown"
	"snapkey/tui"
)

var version = "dev"

type flags struct {
	configPath string
	saveConfig bool
	combo      string
	suppress   bool
	backend    string
	device     string
	interval   time.Duration
	copyKeys   string
	copyDelay  time.Duration
	command    string
	noSound    bool
	tui        bool
	doctor     bool
	version    bool
	test       bool
	debug      bool
	logPath    string
}

func parseFlags(fs *flag.FlagSet, args []string) (*flags, map[string]bool, error) {
	f := &flags{}
	fs.StringVar(&f.configPath, "config", config.DefaultPath(), "config file path")
	fs.BoolVar(&f.saveConfig, "save-config", false, "write the effective settings to -config and exit")
	fs.StringVar(&f.combo, "hotkey", "", "trigger combo, e.g. ctrl+alt+s")
	fs.BoolVar(&f.suppress, "suppress", true, "keep the combo from reaching the focused app (grab backend only)")
	fs.StringVar(&f.backend, "backend", "", "hotkey backend: auto, grab or evdev")
	fs.StringVar(&f.device, "device", "", "evdev keyboard device (default: all keyboards)")
	fs.DurationVar(&f.interval, "interval", 0, "minimum time between accepted triggers")
	fs.StringVar(&f.copyKeys, "copy-keys", "", "combo sent before reading the clipboard, e.g. ctrl+c")
	fs.DurationVar(&f.copyDelay, "copy-delay", 0, "wait after sending copy keys")
	fs.StringVar(&f.command, "command", "", "shell command that filters the PNG (stdin to stdout)")
	fs.BoolVar(&f.noSound, "no-sound", false, "disable audible feedback")
	fs.BoolVar(&f.tui, "tui", false, "show the terminal status panel")
	fs.BoolVar(&f.doctor, "doctor", false, "run system diagnostics and exit")
	fs.BoolVar(&f.version, "version", false, "print version and exit")
	fs.BoolVar(&f.test, "test", false, "test mode (fake hotkey, stdin-driven)")
	fs.BoolVar(&f.debug, "debug", false, "enable debug-level logging (dropped triggers, hook and clipboard details)")
	fs.StringVar(&f.logPath, "logpath", "", "log directory path (default: OS-specific location, use ./ for current dir)")
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	set := make(map[string]bool)
	fs.Visit(func(fl *flag.Flag) { set[fl.Name] = true })
	return f, set, nil
}

// applyFlags overrides file settings with the flags given on the
// command line.
func applyFlags(cfg *config.Config, f *flags, set map[string]bool) {
	if set["hotkey"] {
		cfg.Hotkey.Combo = f.combo
	}
	if set["suppress"] {
		cfg.Hotkey.Suppress = f.suppress
	}
	if set["backend"] {
		cfg.Hotkey.Backend = f.backend
	}
	if set["device"] {
		cfg.Hotkey.Device = f.device
	}
	if set["interval"] {
		cfg.Hotkey.TriggerInterval = config.Duration{Duration: f.interval}
	}
	if set["copy-keys"] {
		cfg.Capture.CopyKeys = f.copyKeys
	}
	if set["copy-delay"] {
		cfg.Capture.CopyDelay = config.Duration{Duration: f.copyDelay}
	}
	if set["command"] {
		cfg.Capture.Command = f.command
	}
	if set["no-sound"] {
		cfg.Sound.Enabled = !f.noSound
	}
}

func fatalf(format string, args ...any) {
	log.Errorf(format, args...)
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	log.Close()
	os.Exit(1)
}

func run() {
	f, set, err := parseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		os.Exit(2)
	}

	if f.version {
		fmt.Printf("snapkey %s\n", version)
		os.Exit(0)
	}

	logPath, err := log.ResolveDir(f.logPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to resolve log directory: %v\n", err)
		os.Exit(1)
	}
	log.SetDir(logPath)
	if err := log.EnsureDir(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not create log directory: %v\n", err)
	}
	setCrashOutput()

	// The panel owns the terminal; everything else mirrors log lines to stderr.
	if err := log.Init(log.Options{Console: !f.tui && !f.doctor, Debug: f.debug}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not init logging: %v\n", err)
	}
	defer log.Close()

	cfg, err := config.Load(f.configPath)
	if err != nil {
		fatalf("%v", err)
	}
	applyFlags(cfg, f, set)
	if err := cfg.Validate(); err != nil {
		fatalf("invalid settings: %v", err)
	}

	if f.saveConfig {
		if err := config.Save(f.configPath, cfg); err != nil {
			fatalf("save config: %v", err)
		}
		log.Infof("saved config to %s", f.configPath)
		fmt.Printf("Saved %s\n", f.configPath)
		return
	}

	if !cfg.Sound.Enabled || f.test {
		beep.Disable()
	}

	wayland := clipboard.IsWayland()
	bridge := clipboard.NewBridge(log.Logger("clipboard"))

	ctx, stop := shutdown.Context(context.Background())
	defer stop()

	if f.doctor {
		code := doctor.New(doctor.Options{
			Combo:   cfg.Hotkey.Combo,
			Backend: cfg.Hotkey.Backend,
			Device:  cfg.Hotkey.Device,
			Wayland: wayland,
		}, bridge).Run(ctx)
		log.Close()
		os.Exit(code)
	}

	if f.test {
		stats := runTestMode(ctx, os.Stdin, os.Stdout, cfg, bridge, keys.New())
		log.SessionEnd(stats)
		return
	}

	combo, _ := hotkey.ParseCombo(cfg.Hotkey.Combo)
	hk, backend, err := hotkey.Open(cfg.Hotkey.Backend, combo, cfg.Hotkey.Device, wayland)
	if err != nil {
		fatalf("hotkey backend: %v", err)
	}
	if cfg.Hotkey.Suppress && !hotkey.Suppresses(backend) {
		log.Warnf("%s backend cannot suppress %s; the focused app will also see it", backend, combo)
	}
	if !cfg.Hotkey.Suppress && hotkey.Suppresses(backend) {
		log.Warnf("%s backend always consumes %s; suppress=false is not supported", backend, combo)
	}

	injector := keys.New()
	if cfg.Capture.CopyKeys != "" {
		if err := injector.Init(); err != nil {
			fatalf("keystroke injection unavailable (needed for copy_keys): %v", err)
		}
	}

	var panel *tui.Program
	if f.tui {
		panel = tui.New(tui.Info{
			Combo:    combo.String(),
			Backend:  backend,
			Suppress: hotkey.Suppresses(backend),
			CopyKeys: cfg.Capture.CopyKeys,
			Version:  version,
		})
	}

	start := time.Now()
	l, proc := newApp(cfg, hk, bridge, injector, panel, nil)
	log.SessionStart(combo.String(), backend, hotkey.Suppresses(backend))

	if panel != nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithCancel(ctx)
		defer cancel()
		go func() {
			if err := panel.Run(); err != nil {
				log.Errorf("TUI error: %v", err)
			}
			cancel()
		}()
		panel.Send(tui.StateMsg{State: listener.Running})
	} else {
		fmt.Fprintf(os.Stderr, "snapkey %s: press %s to capture, Ctrl+C to quit\n", version, combo)
	}

	if err := l.Run(ctx, proc.Capture); err != nil {
		fatalf("%v", err)
	}
	panel.Quit()

	s := l.Stats()
	log.SessionEnd(log.SessionStats{
		Accepted: s.Accepted,
		Dropped:  s.Dropped,
		Failed:   s.Failed,
		Uptime:   time.Since(start),
	})
}

// newApp builds the listener and the capture action it triggers. The
// processor needs the listener to inject copy keys with the hotkey
// unhooked, so the two are created together. onResult may be nil.
func newApp(cfg *config.Config, hk hotkey.Hotkey, clip capture.Clipboard, inj keys.Injector, panel *tui.Program, onResult func(capture.Result)) (*listener.Listener, *capture.Processor) {
	l := listener.New(hk, listener.Options{
		Combo:    cfg.Hotkey.Combo,
		Suppress: cfg.Hotkey.Suppress,
		Interval: cfg.Hotkey.TriggerInterval.Duration,
		Injector: inj,
		Logger:   log.Logger("listener"),
		OnEvent: func(ev listener.Event) {
			switch ev.Kind {
			case listener.EventTriggered:
				log.Trigger(cfg.Hotkey.Combo)
				beep.PlayShutter()
			case listener.EventDropped:
				log.Dropped(ev.Reason, ev.Since)
			case listener.EventFailed:
				beep.PlayError()
			}
			panel.Send(tui.EventMsg{Event: ev})
		},
	})
	proc := capture.New(l, clip, capture.Options{
		CopyKeys:       cfg.Capture.CopyKeys,
		CopyDelay:      cfg.Capture.CopyDelay.Duration,
		CommandTimeout: cfg.Capture.CommandTimeout.Duration,
		Filter:         capture.NewFilter(cfg.Capture.Command),
		Logger:         log.Logger("capture"),
		OnResult: func(r capture.Result) {
			if r.Err == nil {
				beep.PlayDone()
			}
			panel.Send(tui.CaptureMsg{Result: r})
			if onResult != nil {
				onResult(r)
			}
		},
	})
	return l, proc
}

func setCrashOutput() {
	crashPath := filepath.Join(log.Dir(), "crash_log.txt")
	crashFile, err := os.OpenFile(crashPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return
	}
	fmt.Fprintf(crashFile, "\n=== Session %s [pid=%d] ===\n", time.Now().Format("2006-01-02 15:04:05"), os.Getpid())
	debug.SetCrashOutput(crashFile, debug.CrashOptions{})
}
