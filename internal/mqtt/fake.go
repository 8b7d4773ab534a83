package mqtt

import "sync"

// FakePublisher records published frames for test assertions.
// Safe for concurrent use.
type FakePublisher struct {
	mu sync.Mutex

	// Lines contains the frame lines passed to PublishFrame.
	Lines []string

	// Payloads contains the formatted payloads.
	Payloads [][]byte

	// PublishError, if set, will be returned by PublishFrame.
	PublishError error

	// Closed tracks if Close was called.
	Closed bool

	// Connected controls the return value of IsConnected.
	Connected bool
}

// NewFakePublisher creates a FakePublisher for testing.
func NewFakePublisher() *FakePublisher {
	return &FakePublisher{}
}

// PublishFrame records the frame.
func (f *FakePublisher) PublishFrame(line string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.PublishError != nil {
		return f.PublishError
	}
	f.Lines = append(f.Lines, line)
	f.Payloads = append(f.Payloads, FormatPayload(line))
	return nil
}

// Published returns a copy of the recorded payloads as strings.
func (f *FakePublisher) Published() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.Payloads))
	for i, p := range f.Payloads {
		out[i] = string(p)
	}
	return out
}

// Close marks the publisher as closed.
func (f *FakePublisher) Close() error {
	f.mu.Lock()
	f.Closed = true
	f.mu.Unlock()
	return nil
}

// IsConnected reports whether the fake publisher is "connected".
func (f *FakePublisher) IsConnected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Connected
}

// Reset clears recorded frames.
func (f *FakePublisher) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Lines = nil
	f.Payloads = nil
	f.Closed = false
	f.PublishError = nil
	f.Connected = false
}
