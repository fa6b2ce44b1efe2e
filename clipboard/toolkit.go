package clipboard

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.design/x/clipboard"
)

// Toolkit is the in-process clipboard used when the shell path fails.
type Toolkit interface {
	ReadImage() ([]byte, error)
	WriteImage(png []byte) error
}

var errEmpty = errors.New("clipboard holds no image")

// ownershipWait bounds how long WriteImage waits for the selection to be
// taken; on X11 the data is served from this process until then.
const ownershipWait = 100 * time.Millisecond

type designToolkit struct {
	once    sync.Once
	initErr error
}

func (t *designToolkit) init() error {
	t.once.Do(func() {
		t.initErr = clipboard.Init()
	})
	if t.initErr != nil {
		return fmt.Errorf("clipboard unavailable: %w", t.initErr)
	}
	return nil
}

func (t *designToolkit) ReadImage() ([]byte, error) {
	if err := t.init(); err != nil {
		return nil, err
	}
	data := clipboard.Read(clipboard.FmtImage)
	if len(data) == 0 {
		return nil, errEmpty
	}
	return data, nil
}

func (t *designToolkit) WriteImage(png []byte) error {
	if err := t.init(); err != nil {
		return err
	}
	changed := clipboard.Write(clipboard.FmtImage, png)
	select {
	case <-changed:
		return errors.New("clipboard image was replaced immediately")
	case <-time.After(ownershipWait):
		return nil
	}
}
