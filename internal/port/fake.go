package port

import (
	"sync"
)

// FakePort records writes for test assertions.
// Safe for concurrent use: the sender writes while tests inspect.
type FakePort struct {
	mu sync.Mutex

	writes [][]byte
	closed bool

	// FailAfter, if > 0, makes write number FailAfter+1 and later fail with WriteError.
	FailAfter int

	// WriteError is returned once writes start failing.
	WriteError error

	// Short, if set, makes Write report one byte less than requested.
	Short bool

	// PanicOnWrite, if set, makes Write panic with this value.
	PanicOnWrite interface{}
}

// NewFakePort creates a FakePort that accepts every write.
func NewFakePort() *FakePort {
	return &FakePort{}
}

// Write records b or returns the configured failure.
func (f *FakePort) Write(b []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.PanicOnWrite != nil {
		panic(f.PanicOnWrite)
	}
	if f.WriteError != nil && len(f.writes) >= f.FailAfter {
		return 0, f.WriteError
	}

	cp := make([]byte, len(b))
	copy(cp, b)
	f.writes = append(f.writes, cp)

	if f.Short && len(b) > 0 {
		return len(b) - 1, nil
	}
	return len(b), nil
}

// Writes returns a copy of all successful writes.
func (f *FakePort) Writes() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]byte, len(f.writes))
	copy(out, f.writes)
	return out
}

// Closed reports whether Close was called.
func (f *FakePort) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// Close marks the port as closed.
func (f *FakePort) Close() error {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	return nil
}
