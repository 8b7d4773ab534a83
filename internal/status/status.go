// Package status holds the simulator's display model: the data console,
// the event console and the status bar. The controller writes it; the
// HTTP server reads snapshots.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/board-sim/internal/board"
)

// DefaultHistory is the number of lines kept per console.
const DefaultHistory = 200

// Config contains daemon configuration for display.
type Config struct {
	Port     string
	Baud     int
	PeriodMs int64
	PollMs   int64
	Broker   string // empty = MQTT mirror disabled
	Topic    string
	HTTPAddr string
}

// Line is one console entry.
type Line struct {
	Time time.Time
	Text string
}

// Snapshot is a point-in-time view of the display.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	Board         board.Snapshot
	Data          []Line
	Events        []Line
	StatusBar     string
	SenderStatus  string
	SenderError   string
	Sent          uint64
	Dropped       uint64
	MQTTConnected bool
	StartTime     time.Time
	Now           time.Time
	Config        Config
}

// Uptime returns the duration since the simulator started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Console holds mutable display state behind an RWMutex.
type Console struct {
	mu      sync.RWMutex
	history int
	snap    Snapshot
}

// NewConsole creates a Console with the given start time and config.
func NewConsole(startTime time.Time, cfg Config) *Console {
	return &Console{
		history: DefaultHistory,
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// AppendData adds a sent frame to the data console.
func (c *Console) AppendData(t time.Time, text string) {
	c.mu.Lock()
	c.snap.Data = appendBounded(c.snap.Data, Line{Time: t, Text: text}, c.history)
	c.mu.Unlock()
}

// AppendEvent adds a line to the event console.
func (c *Console) AppendEvent(t time.Time, text string) {
	c.mu.Lock()
	c.snap.Events = appendBounded(c.snap.Events, Line{Time: t, Text: text}, c.history)
	c.mu.Unlock()
}

// SetStatusBar replaces the status bar text.
func (c *Console) SetStatusBar(text string) {
	c.mu.Lock()
	c.snap.StatusBar = text
	c.mu.Unlock()
}

// SetBoard records the latest board state.
func (c *Console) SetBoard(b board.Snapshot) {
	c.mu.Lock()
	c.snap.Board = b
	c.mu.Unlock()
}

// SetSender records sender progress.
func (c *Console) SetSender(status string, sent, dropped uint64, err error) {
	c.mu.Lock()
	c.snap.SenderStatus = status
	c.snap.Sent = sent
	c.snap.Dropped = dropped
	if err != nil {
		c.snap.SenderError = err.Error()
	}
	c.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (c *Console) SetMQTTConnected(connected bool) {
	c.mu.Lock()
	c.snap.MQTTConnected = connected
	c.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the display.
// The Now field is set to the current time at the moment of the call.
func (c *Console) Snapshot() Snapshot {
	c.mu.RLock()
	s := c.snap
	s.Data = append([]Line(nil), c.snap.Data...)
	s.Events = append([]Line(nil), c.snap.Events...)
	c.mu.RUnlock()
	s.Now = time.Now()
	return s
}

func appendBounded(lines []Line, l Line, max int) []Line {
	lines = append(lines, l)
	if len(lines) > max {
		// Copy down so the backing array does not grow without bound.
		n := copy(lines, lines[len(lines)-max:])
		lines = lines[:n]
	}
	return lines
}
