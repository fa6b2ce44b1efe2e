package clipboard

import "context"

func (b *Bridge) nativeRead(ctx context.Context) ([]byte, error) {
	return nil, errNoNative
}

func (b *Bridge) nativeWrite(ctx context.Context, data []byte) error {
	return errNoNative
}
