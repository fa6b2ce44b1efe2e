package clipboard

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type call struct {
	name  string
	args  []string
	stdin []byte
	file  []byte // contents of a trailing path argument, read during the call
}

type fakeRunner struct {
	mu      sync.Mutex
	calls   []call
	output  []byte
	outErr  error
	runErr  error
	missing map[string]bool
}

func (f *fakeRunner) record(stdin []byte, name string, args []string) {
	c := call{name: name, args: args, stdin: stdin}
	if len(args) > 0 {
		if data, err := os.ReadFile(args[len(args)-1]); err == nil {
			c.file = data
		}
	}
	f.mu.Lock()
	f.calls = append(f.calls, c)
	f.mu.Unlock()
}

func (f *fakeRunner) Output(_ context.Context, stdin []byte, name string, args ...string) ([]byte, error) {
	f.record(stdin, name, args)
	return f.output, f.outErr
}

func (f *fakeRunner) Run(_ context.Context, stdin []byte, name string, args ...string) error {
	f.record(stdin, name, args)
	return f.runErr
}

func (f *fakeRunner) LookPath(name string) (string, error) {
	if f.missing[name] {
		return "", errors.New("executable file not found in $PATH")
	}
	return "/usr/bin/" + name, nil
}

func (f *fakeRunner) Calls() []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]call(nil), f.calls...)
}

type fakeToolkit struct {
	mu       sync.Mutex
	data     []byte
	readErr  error
	writeErr error
	writes   [][]byte
	panicMsg string
}

func (f *fakeToolkit) ReadImage() ([]byte, error) {
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return nil, f.readErr
	}
	if len(f.data) == 0 {
		return nil, errEmpty
	}
	return f.data, nil
}

func (f *fakeToolkit) WriteImage(data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes = append(f.writes, data)
	return f.writeErr
}

func (f *fakeToolkit) Writes() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]byte(nil), f.writes...)
}

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}
