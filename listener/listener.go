// Package listener runs a global hotkey and dispatches a debounced
// callback for each accepted press.
package listener

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"snapkey/hotkey"
	"snapkey/keys"
)

const (
	DefaultInterval    = 500 * time.Millisecond
	DefaultSettle      = 50 * time.Millisecond
	DefaultJoinTimeout = time.Second
)

var ErrAlreadyRunning = errors.New("listener already running")

type State int

const (
	Stopped State = iota
	Running
	Stopping
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Running:
		return "running"
	case Stopping:
		return "stopping"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// HookError reports a failed register or remove call on the backend.
type HookError struct {
	Op  string
	Err error
}

func (e *HookError) Error() string {
	return "hotkey " + e.Op + ": " + e.Err.Error()
}

func (e *HookError) Unwrap() error { return e.Err }

type Options struct {
	// Combo is used for log lines only; the backend is already bound.
	Combo    string
	Suppress bool

	Interval    time.Duration
	Settle      time.Duration
	JoinTimeout time.Duration

	Injector keys.Injector
	Logger   zerolog.Logger

	// Now and Sleep default to the time package.
	Now   func() time.Time
	Sleep func(time.Duration)

	// OnEvent, when set, observes triggers, drops and failures. It is
	// called without the listener lock held.
	OnEvent func(Event)
}

type Stats struct {
	Accepted int
	Dropped  int
	Failed   int
}

type Listener struct {
	hk   hotkey.Hotkey
	opts Options
	log  zerolog.Logger

	mu          sync.Mutex
	state       State
	processing  bool
	lastTrigger time.Time
	callback    func() error
	stop        chan struct{}
	stats       Stats

	// hookMu serialises backend calls so a slow Register never holds mu.
	hookMu     sync.Mutex
	registered bool
}

func New(hk hotkey.Hotkey, opts Options) *Listener {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Settle <= 0 {
		opts.Settle = DefaultSettle
	}
	if opts.JoinTimeout <= 0 {
		opts.JoinTimeout = DefaultJoinTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Sleep == nil {
		opts.Sleep = time.Sleep
	}
	return &Listener{
		hk:   hk,
		opts: opts,
		log:  opts.Logger,
	}
}

// Run registers the hotkey and blocks until ctx is done or Stop is
// called. cb runs once per accepted press. A registration failure is
// logged and Run keeps going without a hook.
func (l *Listener) Run(ctx context.Context, cb func() error) error {
	l.mu.Lock()
	if l.state != Stopped {
		l.mu.Unlock()
		return ErrAlreadyRunning
	}
	l.state = Running
	l.processing = false
	l.lastTrigger = time.Time{}
	l.callback = cb
	l.stop = make(chan struct{})
	stop := l.stop
	l.mu.Unlock()

	l.log.Info().
		Str("hotkey", l.opts.Combo).
		Bool("suppress", l.opts.Suppress).
		Dur("interval", l.opts.Interval).
		Msg("listener started")

	done := make(chan struct{})
	go l.loop(stop, done)

	select {
	case <-ctx.Done():
		l.Stop()
	case <-stop:
	}

	select {
	case <-done:
	case <-time.After(l.opts.JoinTimeout):
		l.log.Warn().Dur("timeout", l.opts.JoinTimeout).Msg("listener goroutine did not exit in time")
	}

	l.mu.Lock()
	l.state = Stopped
	l.callback = nil
	stats := l.stats
	l.mu.Unlock()

	l.log.Info().
		Int("accepted", stats.Accepted).
		Int("dropped", stats.Dropped).
		Int("failed", stats.Failed).
		Msg("listener stopped")
	return nil
}

// Stop asks Run to return. It is safe to call from any goroutine and
// more than once.
func (l *Listener) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state != Running {
		return
	}
	l.state = Stopping
	close(l.stop)
}

func (l *Listener) loop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	l.registerHook()
	keydown := l.hk.Keydown()
	for {
		select {
		case <-stop:
			l.removeHook()
			return
		case <-keydown:
			// Each press gets its own goroutine so a press arriving while
			// the callback runs reaches the gate and is dropped.
			go l.fire()
		}
	}
}

func (l *Listener) fire() {
	now := l.opts.Now()

	l.mu.Lock()
	if l.state != Running {
		l.mu.Unlock()
		return
	}
	since := now.Sub(l.lastTrigger)
	var reason string
	switch {
	case !l.lastTrigger.IsZero() && since < l.opts.Interval:
		reason = "debounce"
	case l.processing:
		reason = "busy"
	}
	if reason != "" {
		l.stats.Dropped++
		l.mu.Unlock()
		l.emit(Event{Kind: EventDropped, At: now, Reason: reason, Since: since})
		return
	}
	l.processing = true
	l.lastTrigger = now
	l.stats.Accepted++
	cb := l.callback
	l.mu.Unlock()

	var err error
	defer func() {
		l.mu.Lock()
		l.processing = false
		if err != nil {
			l.stats.Failed++
		}
		l.mu.Unlock()
		if err != nil {
			l.log.Error().Err(err).Msg("hotkey callback failed")
			l.emit(Event{Kind: EventFailed, At: l.opts.Now(), Err: err})
			return
		}
		l.emit(Event{Kind: EventDone, At: l.opts.Now(), Elapsed: l.opts.Now().Sub(now)})
	}()

	l.emit(Event{Kind: EventTriggered, At: now})
	err = invoke(cb)
}

func invoke(cb func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("callback panic: %v", r)
		}
	}()
	if cb == nil {
		return nil
	}
	return cb()
}

func (l *Listener) registerHook() error {
	l.hookMu.Lock()
	defer l.hookMu.Unlock()
	return l.registerLocked()
}

// rehook registers the hotkey again unless a stop is under way. The
// state check happens under hookMu so it cannot race the loop's final
// removeHook.
func (l *Listener) rehook() {
	l.hookMu.Lock()
	defer l.hookMu.Unlock()
	if l.State() != Running {
		return
	}
	l.registerLocked()
}

func (l *Listener) registerLocked() error {
	if l.registered {
		return nil
	}
	if err := l.hk.Register(); err != nil {
		l.registered = l.hk.Registered()
		herr := &HookError{Op: "register", Err: err}
		l.log.Error().Err(err).Str("hotkey", l.opts.Combo).Msg("hotkey register failed")
		l.emit(Event{Kind: EventHookError, At: l.opts.Now(), Err: herr})
		return herr
	}
	l.registered = true
	l.log.Debug().Str("hotkey", l.opts.Combo).Msg("hotkey registered")
	return nil
}

// removeHook is a no-op when nothing is registered. After a failed
// removal registered follows what the backend still holds.
func (l *Listener) removeHook() error {
	l.hookMu.Lock()
	defer l.hookMu.Unlock()
	if !l.registered {
		return nil
	}
	if err := l.hk.Unregister(); err != nil {
		l.registered = l.hk.Registered()
		herr := &HookError{Op: "remove", Err: err}
		l.log.Warn().Err(err).Str("hotkey", l.opts.Combo).Bool("still_registered", l.registered).Msg("hotkey remove failed")
		l.emit(Event{Kind: EventHookError, At: l.opts.Now(), Err: herr})
		return herr
	}
	l.registered = false
	l.log.Debug().Str("hotkey", l.opts.Combo).Msg("hotkey removed")
	return nil
}

// InjectKeystroke sends combo as a synthetic press and release. The
// hotkey is unhooked around the injection so a combo that overlaps it
// cannot retrigger, and is hooked again afterwards if the listener is
// still running, even when the injector fails or panics.
func (l *Listener) InjectKeystroke(combo string) error {
	combo = strings.ToLower(strings.TrimSpace(combo))
	if l.opts.Injector == nil {
		return errors.New("no keystroke injector configured")
	}

	l.removeHook()
	defer l.rehook()

	err := l.opts.Injector.PressAndRelease(combo)
	l.opts.Sleep(l.opts.Settle)
	if err != nil {
		l.log.Error().Err(err).Str("combo", combo).Msg("keystroke injection failed")
		return fmt.Errorf("inject %s: %w", combo, err)
	}
	l.log.Debug().Str("combo", combo).Msg("keystroke injected")
	return nil
}

func (l *Listener) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Processing reports whether a callback is running.
func (l *Listener) Processing() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.processing
}

// Registered reports whether the hotkey is currently hooked.
func (l *Listener) Registered() bool {
	l.hookMu.Lock()
	defer l.hookMu.Unlock()
	return l.registered
}

func (l *Listener) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stats
}

func (l *Listener) emit(ev Event) {
	if l.opts.OnEvent != nil {
		l.opts.OnEvent(ev)
	}
}
