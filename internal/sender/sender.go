// Package sender runs the periodic transmit loop: every period it snapshots
// the board, encodes a frame, writes it to the port and posts the outcome
// to the relay. Any failure stops the loop for good.
package sender

import (
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sweeney/board-sim/internal/board"
	"github.com/sweeney/board-sim/internal/frame"
	"github.com/sweeney/board-sim/internal/port"
	"github.com/sweeney/board-sim/internal/relay"
)

// DefaultPeriod is the time between ticks.
const DefaultPeriod = 2 * time.Second

// ErrAlreadyStarted is returned by a second call to Start.
var ErrAlreadyStarted = errors.New("sender: already started")

// Status is the sender lifecycle state.
type Status string

const (
	StatusIdle    Status = "IDLE"
	StatusRunning Status = "RUNNING"
	StatusStopped Status = "STOPPED"
)

// Source is the board state the sender reads from. The sender never
// mutates it; a failure reaches the controller through the relay.
type Source interface {
	Snapshot() board.Snapshot
}

// Option configures a Sender.
type Option func(*Sender)

// WithPeriod sets the tick period.
func WithPeriod(d time.Duration) Option {
	return func(s *Sender) { s.period = d }
}

// WithSleep replaces time.Sleep, for tests.
func WithSleep(fn func(time.Duration)) Option {
	return func(s *Sender) { s.sleep = fn }
}

// WithClock replaces time.Now for event timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Sender) { s.now = now }
}

// Sender owns the output port while running.
type Sender struct {
	src    Source
	out    port.Port
	events *relay.Relay

	period time.Duration
	sleep  func(time.Duration)
	now    func() time.Time

	running atomic.Bool
	started atomic.Bool
	done    chan struct{}

	mu      sync.Mutex
	status  Status
	lastErr error
	sent    uint64
}

// New creates a Sender. It does not start transmitting until Start.
func New(src Source, out port.Port, events *relay.Relay, opts ...Option) *Sender {
	s := &Sender{
		src:    src,
		out:    out,
		events: events,
		period: DefaultPeriod,
		sleep:  time.Sleep,
		now:    time.Now,
		done:   make(chan struct{}),
		status: StatusIdle,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Start launches the transmit goroutine. A Sender can be started once.
func (s *Sender) Start() error {
	if !s.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}
	s.running.Store(true)
	s.setStatus(StatusRunning, nil)
	log.Printf("sender: started, period=%v", s.period)
	go s.loop()
	return nil
}

// Stop asks the loop to exit and waits up to timeout for it.
// The loop only notices at the end of its current sleep, so it may still
// be running when Stop returns false. Stop on a never-started Sender returns true.
func (s *Sender) Stop(timeout time.Duration) bool {
	if !s.started.Load() {
		return true
	}
	s.running.Store(false)

	select {
	case <-s.done:
		return true
	case <-time.After(timeout):
		log.Printf("sender: did not exit within %v", timeout)
		return false
	}
}

// Done is closed when the loop has exited.
func (s *Sender) Done() <-chan struct{} {
	return s.done
}

// Status returns the lifecycle state.
func (s *Sender) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Err returns the error that stopped the loop, if any.
func (s *Sender) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Sent returns the number of frames written successfully.
func (s *Sender) Sent() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sent
}

func (s *Sender) setStatus(st Status, err error) {
	s.mu.Lock()
	s.status = st
	if err != nil {
		s.lastErr = err
	}
	s.mu.Unlock()
}

func (s *Sender) loop() {
	defer close(s.done)

	for s.running.Load() {
		if err := s.tick(); err != nil {
			s.events.Push(relay.Event{Time: s.now(), Kind: relay.KindFailed, Err: err.Error()})
			s.running.Store(false)
			s.setStatus(StatusStopped, err)
			log.Printf("sender: stopped on error: %v", err)
			return
		}
		s.sleep(s.period)
	}

	s.setStatus(StatusStopped, nil)
	log.Printf("sender: stopped")
}

// tick performs one transmission. A non-nil error ends the loop.
func (s *Sender) tick() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("unexpected failure: %v", r)
		}
	}()

	snap := s.src.Snapshot()
	if !snap.SendingActive {
		return nil
	}

	line := frame.Line(snap)
	buf := []byte(line + "\n")
	n, werr := s.out.Write(buf)
	if werr == nil && n < len(buf) {
		werr = io.ErrShortWrite
	}
	if werr != nil {
		return fmt.Errorf("serial write: %w", werr)
	}

	s.mu.Lock()
	s.sent++
	s.mu.Unlock()
	s.events.Push(relay.Event{Time: s.now(), Kind: relay.KindSent, Frame: line})
	return nil
}
