//go:build !windows

package capture

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFilterEmptyIsNoop(t *testing.T) {
	f := NewFilter("   ")
	out, err := f.Process(context.Background(), []byte("png"))
	require.NoError(t, err)
	assert.Equal(t, []byte("png"), out)
}

func TestCommandPipesStdin(t *testing.T) {
	f := NewFilter("cat")
	out, err := f.Process(context.Background(), []byte("image bytes"))
	require.NoError(t, err)
	assert.Equal(t, []byte("image bytes"), out)
}

func TestCommandFailureIncludesStderr(t *testing.T) {
	f := NewFilter("echo broken >&2; exit 3")
	_, err := f.Process(context.Background(), []byte("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
}

func TestCommandEmptyOutput(t *testing.T) {
	f := NewFilter("cat >/dev/null")
	_, err := f.Process(context.Background(), []byte("x"))
	assert.ErrorContains(t, err, "no output")
}

func TestCommandTimeout(t *testing.T) {
	f := NewFilter("sleep 5")
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := f.Process(ctx, []byte("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timed out")
	assert.Less(t, time.Since(start), 3*time.Second)
}
