package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"snapkey/capture"
	"snapkey/config"
	"snapkey/hotkey"
	"snapkey/keys"
	"snapkey/log"
)

const testWaitTimeout = 5 * time.Second

// runTestMode drives the listener with a fake hotkey from line commands:
//
//	KEYDOWN    simulate one press
//	WAIT       block until the next capture finishes
//	SLEEP <ms> pause
//	QUIT       stop
//
// Each finished capture prints CAPTURED <w>x<h> or FAILED <error>.
func runTestMode(ctx context.Context, in io.Reader, out io.Writer, cfg *config.Config, clip capture.Clipboard, inj keys.Injector) log.SessionStats {
	start := time.Now()
	hk := hotkey.NewFake()
	results := make(chan capture.Result, 16)

	l, proc := newApp(cfg, hk, clip, inj, nil, func(r capture.Result) {
		if r.Err != nil {
			fmt.Fprintf(out, "FAILED %v\n", r.Err)
		} else {
			fmt.Fprintf(out, "CAPTURED %dx%d\n", r.Width, r.Height)
		}
		select {
		case results <- r:
		default:
		}
	})
	log.SessionStart(cfg.Hotkey.Combo, "fake", cfg.Hotkey.Suppress)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	done := make(chan struct{})
	go func() {
		defer close(done)
		l.Run(ctx, proc.Capture)
	}()

	scanner := bufio.NewScanner(in)
loop:
	for scanner.Scan() {
		cmd := strings.TrimSpace(scanner.Text())
		switch {
		case cmd == "KEYDOWN":
			hk.SimKeydown()
		case cmd == "WAIT":
			select {
			case <-results:
			case <-time.After(testWaitTimeout):
				fmt.Fprintln(out, "TIMEOUT")
			case <-ctx.Done():
				break loop
			}
		case cmd == "QUIT":
			break loop
		case strings.HasPrefix(cmd, "SLEEP "):
			if ms, err := strconv.Atoi(strings.TrimSpace(cmd[6:])); err == nil {
				time.Sleep(time.Duration(ms) * time.Millisecond)
			}
		}
	}

	cancel()
	<-done
	// The last callback may still be unwinding when Run returns.
	for deadline := time.Now().Add(testWaitTimeout); l.Processing() && time.Now().Before(deadline); {
		time.Sleep(5 * time.Millisecond)
	}
	s := l.Stats()
	return log.SessionStats{Accepted: s.Accepted, Dropped: s.Dropped, Failed: s.Failed, Uptime: time.Since(start)}
}
