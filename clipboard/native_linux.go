package clipboard

import (
	"context"
	"fmt"
	"os"
)

func (b *Bridge) nativeRead(ctx context.Context) ([]byte, error) {
	if b.wayland {
		if _, err := b.runner.LookPath("wl-paste"); err != nil {
			return nil, fmt.Errorf("wl-paste not found (install wl-clipboard): %w", err)
		}
		return b.runner.Output(ctx, nil, "wl-paste", "--no-newline", "--type", "image/png")
	}
	if _, err := b.runner.LookPath("xclip"); err != nil {
		return nil, fmt.Errorf("xclip not found (install xclip): %w", err)
	}
	return b.runner.Output(ctx, nil, "xclip", "-selection", "clipboard", "-t", "image/png", "-o")
}

func (b *Bridge) nativeWrite(ctx context.Context, data []byte) error {
	if b.wayland {
		if _, err := b.runner.LookPath("wl-copy"); err != nil {
			return fmt.Errorf("wl-copy not found (install wl-clipboard): %w", err)
		}
		return b.runner.Run(ctx, data, "wl-copy", "--type", "image/png")
	}

	if _, err := b.runner.LookPath("xclip"); err != nil {
		return fmt.Errorf("xclip not found (install xclip): %w", err)
	}
	// xclip reads the whole file before forking, so it is safe to remove
	// once Run returns.
	path, err := writeTemp(data)
	if err != nil {
		return fmt.Errorf("temp file: %w", err)
	}
	defer os.Remove(path)
	return b.runner.Run(ctx, nil, "xclip", "-selection", "clipboard", "-t", "image/png", "-i", path)
}
