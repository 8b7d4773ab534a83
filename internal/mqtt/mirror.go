package mqtt

import (
	"log"

	"github.com/sweeney/board-sim/internal/port"
)

// Mirror is a port.Port that writes to an inner port and then publishes
// each complete write to MQTT. Only the inner port's errors are returned;
// publish errors are logged.
type Mirror struct {
	inner port.Port
	pub   Publisher
}

// NewMirror wraps inner so that every frame is also published via pub.
func NewMirror(inner port.Port, pub Publisher) *Mirror {
	return &Mirror{inner: inner, pub: pub}
}

// Write writes b to the inner port and publishes it on success.
func (m *Mirror) Write(b []byte) (int, error) {
	n, err := m.inner.Write(b)
	if err != nil || n < len(b) {
		return n, err
	}
	if perr := m.pub.PublishFrame(string(b)); perr != nil {
		log.Printf("mqtt: mirror publish error: %v", perr)
	}
	return n, nil
}

// Close closes the inner port. The publisher is owned by the caller.
func (m *Mirror) Close() error {
	return m.inner.Close()
}
