package port

import (
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/tarm/serial"
)

// RealPort reads from and writes to a serial device.
type RealPort struct {
	port   *serial.Port
	name   string
	closed atomic.Bool
}

// Open opens the named serial device at the given baud rate.
func Open(name string, baud int) (*RealPort, error) {
	cfg := &serial.Config{
		Name:        name,
		Baud:        baud,
		Parity:      serial.ParityNone,
		ReadTimeout: time.Second,
	}
	p, err := serial.OpenPort(cfg)
	if err != nil {
		return nil, fmt.Errorf("open serial %s: %w", name, err)
	}
	return &RealPort{port: p, name: name}, nil
}

// Write sends b to the device.
func (p *RealPort) Write(b []byte) (int, error) {
	n, err := p.port.Write(b)
	if err != nil {
		return n, fmt.Errorf("write %s: %w", p.name, err)
	}
	return n, nil
}

// Read blocks until bytes arrive or the port is closed. Read timeouts of
// the underlying device are retried, so Read never reports io.EOF while
// the port is open.
func (p *RealPort) Read(b []byte) (int, error) {
	for {
		n, err := p.port.Read(b)
		if n > 0 || (err != nil && !errors.Is(err, io.EOF)) {
			return n, err
		}
		if p.closed.Load() {
			return 0, io.EOF
		}
	}
}

// Name returns the device path.
func (p *RealPort) Name() string {
	return p.name
}

// Close closes the device.
func (p *RealPort) Close() error {
	p.closed.Store(true)
	return p.port.Close()
}
