package mqtt

import (
	"log"

	"github.com/sweeney/board-sim/internal/ring"
)

// DefaultBufferSize is the number of messages kept while disconnected.
const DefaultBufferSize = 100

// bufferedMsg stores a serialized MQTT message for replay after reconnection.
type bufferedMsg struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// offlineBuffer holds messages produced while disconnected, dropping the
// oldest when full. Not safe for concurrent use; the caller synchronizes.
type offlineBuffer struct {
	ring     *ring.Buffer[bufferedMsg]
	overflow bool // true if any message was dropped since last drain
}

func newOfflineBuffer(capacity int) *offlineBuffer {
	return &offlineBuffer{ring: ring.New[bufferedMsg](capacity)}
}

func (b *offlineBuffer) push(msg bufferedMsg) {
	if b.ring.Push(msg) && !b.overflow {
		log.Printf("mqtt: buffer full (%d messages), dropping oldest", b.ring.Cap())
		b.overflow = true
	}
}

func (b *offlineBuffer) drainAll() []bufferedMsg {
	b.overflow = false
	return b.ring.DrainAll()
}

func (b *offlineBuffer) len() int {
	return b.ring.Len()
}
