package capture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"
)

// waitDelay bounds how long a killed command may hold its pipes open.
const waitDelay = time.Second

// Filter transforms PNG bytes before they go back on the clipboard.
type Filter interface {
	Process(ctx context.Context, png []byte) ([]byte, error)
}

type noop struct{}

func (noop) Process(_ context.Context, png []byte) ([]byte, error) { return png, nil }

// Noop returns png unchanged.
func Noop() Filter { return noop{} }

// Command pipes the image through a shell command. The command reads
// PNG on stdin and writes an image on stdout.
type Command struct {
	Line string
}

func NewFilter(command string) Filter {
	if strings.TrimSpace(command) == "" {
		return Noop()
	}
	return &Command{Line: command}
}

func (c *Command) Process(ctx context.Context, png []byte) ([]byte, error) {
	name, args := shell(c.Line)
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = bytes.NewReader(png)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay

	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("command timed out: %w", ctx.Err())
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("command failed: %w: %s", err, msg)
		}
		return nil, fmt.Errorf("command failed: %w", err)
	}
	if stdout.Len() == 0 {
		return nil, errors.New("command produced no output")
	}
	return stdout.Bytes(), nil
}

func shell(line string) (string, []string) {
	if runtime.GOOS == "windows" {
		return "cmd", []string{"/C", line}
	}
	return "sh", []string{"-c", line}
}
