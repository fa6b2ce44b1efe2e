package clipboard

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Runner runs clipboard utilities.
type Runner interface {
	// Output runs name and returns its stdout.
	Output(ctx context.Context, stdin []byte, name string, args ...string) ([]byte, error)
	// Run runs name with stdout and stderr discarded. Tools like xclip
	// and wl-copy fork a child that keeps serving the selection; a
	// captured pipe would keep Run waiting on that child.
	Run(ctx context.Context, stdin []byte, name string, args ...string) error
	LookPath(name string) (string, error)
}

type execRunner struct{}

func (execRunner) Output(ctx context.Context, stdin []byte, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return out, nil
}

func (execRunner) Run(ctx context.Context, stdin []byte, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

func (execRunner) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}
