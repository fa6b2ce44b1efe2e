package keys

import "sync"

// Fake records injected combos and returns Err from every call.
type Fake struct {
	mu     sync.Mutex
	combos []string
	Err    error
	// OnPress, if set, runs inside PressAndRelease before it returns.
	OnPress func(combo string)
}

func (f *Fake) PressAndRelease(combo string) error {
	f.mu.Lock()
	f.combos = append(f.combos, combo)
	err, hook := f.Err, f.OnPress
	f.mu.Unlock()
	if hook != nil {
		hook(combo)
	}
	return err
}

func (f *Fake) Combos() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.combos...)
}
