// Package mqtt publishes telemetry frames to an MQTT broker, with abstraction
// for testing.
package mqtt

import (
	"github.com/sweeney/board-sim/internal/frame"
)

// DefaultTopic is the topic frames are published to.
const DefaultTopic = "amerike/cyber/iot/device_data_semicolon"

// DefaultBroker is the public broker used by the course projects.
const DefaultBroker = "tcp://broker.emqx.io:1883"

// Publisher publishes frame lines to MQTT.
type Publisher interface {
	// PublishFrame sends one frame line (with or without trailing newline).
	// Returns error if publishing fails (should not crash the process).
	PublishFrame(line string) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// FormatPayload returns the MQTT payload for a frame line: the same fields
// separated by ';' instead of ','.
func FormatPayload(line string) []byte {
	return []byte(frame.Semicolon(line))
}
