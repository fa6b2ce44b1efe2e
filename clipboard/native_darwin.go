package clipboard

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
)

// osascript prints PNG data as «data PNGf89504E47...».
var (
	pngfPrefix = []byte("«data PNGf")
	pngfSuffix = []byte("»")
)

func (b *Bridge) nativeRead(ctx context.Context) ([]byte, error) {
	out, err := b.runner.Output(ctx, nil, "osascript", "-e", "the clipboard as «class PNGf»")
	if err != nil {
		return nil, err
	}
	return decodePNGf(out)
}

func decodePNGf(out []byte) ([]byte, error) {
	out = bytes.TrimSpace(out)
	if !bytes.HasPrefix(out, pngfPrefix) || !bytes.HasSuffix(out, pngfSuffix) {
		return nil, errors.New("clipboard holds no PNG data")
	}
	raw := out[len(pngfPrefix) : len(out)-len(pngfSuffix)]
	data := make([]byte, hex.DecodedLen(len(raw)))
	if _, err := hex.Decode(data, raw); err != nil {
		return nil, fmt.Errorf("decode osascript output: %w", err)
	}
	return data, nil
}

func (b *Bridge) nativeWrite(ctx context.Context, data []byte) error {
	path, err := writeTemp(data)
	if err != nil {
		return fmt.Errorf("temp file: %w", err)
	}
	defer os.Remove(path)
	script := fmt.Sprintf("set the clipboard to (read (POSIX file %q) as «class PNGf»)", path)
	return b.runner.Run(ctx, nil, "osascript", "-e", script)
}
