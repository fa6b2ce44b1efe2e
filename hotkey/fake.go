package hotkey

import "sync"

// FakeHotkey is an in-memory Hotkey for tests and the -test driver.
// RegisterErr and UnregisterErr, when set, are returned by the next
// calls. A failed Unregister keeps the hook unless DropOnUnregisterErr
// is set, which mimics a backend that lets go and still reports a
// timeout.
type FakeHotkey struct {
	keydown chan struct{}

	mu                  sync.Mutex
	registered          bool
	registers           int
	unregisters         int
	RegisterErr         error
	UnregisterErr       error
	DropOnUnregisterErr bool
}

func NewFake() *FakeHotkey {
	return &FakeHotkey{keydown: make(chan struct{}, 16)}
}

func (f *FakeHotkey) Register() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.registers++
	if f.RegisterErr != nil {
		return f.RegisterErr
	}
	f.registered = true
	return nil
}

func (f *FakeHotkey) Unregister() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unregisters++
	if f.UnregisterErr != nil {
		if f.DropOnUnregisterErr {
			f.registered = false
		}
		return f.UnregisterErr
	}
	f.registered = false
	return nil
}

func (f *FakeHotkey) Keydown() <-chan struct{} { return f.keydown }

// SimKeydown delivers one key-down event. Events are dropped when the
// buffer is full, like a backend under key repeat.
func (f *FakeHotkey) SimKeydown() {
	select {
	case f.keydown <- struct{}{}:
	default:
	}
}

func (f *FakeHotkey) SetRegisterErr(err error) {
	f.mu.Lock()
	f.RegisterErr = err
	f.mu.Unlock()
}

// SetUnregisterErr makes Unregister fail with err. drop says whether the
// failed call still releases the hook.
func (f *FakeHotkey) SetUnregisterErr(err error, drop bool) {
	f.mu.Lock()
	f.UnregisterErr = err
	f.DropOnUnregisterErr = drop
	f.mu.Unlock()
}

func (f *FakeHotkey) Registered() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.registered
}

// Counts returns how many times Register and Unregister were called.
func (f *FakeHotkey) Counts() (registers, unregisters int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.registers, f.unregisters
}
