// Package port provides the serial-like output channel frames are written to.
// The real implementation uses a serial port; the fake records writes for tests.
package port

import (
	"io"
	"os"
)

// Port is a byte stream the sender writes frames to.
type Port interface {
	// Write sends b to the device. A returned error is fatal to the sender.
	Write(b []byte) (int, error)

	// Close releases the device.
	Close() error
}

// DefaultBaud matches the baud rate of the board firmware.
const DefaultBaud = 9600

// Stdout returns a Port writing to standard output. Close is a no-op.
func Stdout() Port {
	return writerPort{w: os.Stdout}
}

type writerPort struct {
	w io.Writer
}

func (p writerPort) Write(b []byte) (int, error) { return p.w.Write(b) }
func (p writerPort) Close() error                { return nil }
