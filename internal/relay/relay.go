// Package relay carries send outcomes from the sender goroutine to the
// controller goroutine through a bounded FIFO.
package relay

import (
	"log"
	"sync"
	"time"

	"github.com/sweeney/board-sim/internal/ring"
)

// DefaultCapacity is the maximum number of pending events.
const DefaultCapacity = 10

// Kind distinguishes successful and failed send attempts.
type Kind string

const (
	KindSent   Kind = "SENT"
	KindFailed Kind = "FAILED"
)

// Event is the outcome of one send attempt.
type Event struct {
	Time  time.Time
	Kind  Kind
	Frame string // frame text without newline (KindSent)
	Err   string // failure description (KindFailed)
}

// Relay is a fixed-capacity FIFO. When full, Push overwrites the oldest
// pending event. Push, TryTake and Drain never block.
type Relay struct {
	mu       sync.Mutex
	ring     *ring.Buffer[Event]
	overflow bool // true if any event was dropped since the relay was last empty
	dropped  uint64
}

// New creates a Relay holding at most capacity events.
// A capacity below 1 uses DefaultCapacity.
func New(capacity int) *Relay {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	return &Relay{ring: ring.New[Event](capacity)}
}

// Push appends e, dropping the oldest pending event if the relay is full.
func (r *Relay) Push(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.ring.Push(e) {
		r.dropped++
		if !r.overflow {
			log.Printf("relay: full (%d events), dropping oldest", r.ring.Cap())
			r.overflow = true
		}
	}
}

// TryTake removes and returns the oldest pending event.
// ok is false if the relay is empty.
func (r *Relay) TryTake() (e Event, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok = r.ring.Pop()
	if r.ring.Len() == 0 {
		r.overflow = false
	}
	return e, ok
}

// Drain removes and returns all pending events, oldest first.
// Returns nil if the relay is empty.
func (r *Relay) Drain() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.overflow = false
	return r.ring.DrainAll()
}

// Len returns the number of pending events.
func (r *Relay) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ring.Len()
}

// Cap returns the relay capacity.
func (r *Relay) Cap() int {
	return r.ring.Cap()
}

// Dropped returns the total number of events overwritten since creation.
func (r *Relay) Dropped() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dropped
}
