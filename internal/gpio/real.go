//go:build linux

package gpio

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// RealReader reads the sensor inputs using Linux GPIO character device.
type RealReader struct {
	chip      *gpiocdev.Chip
	motionPin *gpiocdev.Line
	lightPin  *gpiocdev.Line
}

// NewRealReader requests the motion and light lines as inputs.
func NewRealReader(pinMotion, pinLight int) (*RealReader, error) {
	chip, err := gpiocdev.NewChip("gpiochip0")
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	// Pull-down so a disconnected sensor reads as no motion / light not blocked.
	motion, err := chip.RequestLine(pinMotion, gpiocdev.AsInput, gpiocdev.WithPullDown)
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request motion pin %d: %w", pinMotion, err)
	}

	light, err := chip.RequestLine(pinLight, gpiocdev.AsInput, gpiocdev.WithPullDown)
	if err != nil {
		motion.Close()
		chip.Close()
		return nil, fmt.Errorf("request light pin %d: %w", pinLight, err)
	}

	return &RealReader{
		chip:      chip,
		motionPin: motion,
		lightPin:  light,
	}, nil
}

// Read returns (motion detected, light blocked). Both inputs are active high.
func (r *RealReader) Read() (bool, bool, error) {
	m, err := r.motionPin.Value()
	if err != nil {
		return false, false, fmt.Errorf("read motion pin: %w", err)
	}

	l, err := r.lightPin.Value()
	if err != nil {
		return false, false, fmt.Errorf("read light pin: %w", err)
	}

	return m == 1, l == 1, nil
}

// Close releases the lines and the chip.
func (r *RealReader) Close() error {
	var errs []error

	if r.motionPin != nil {
		if err := r.motionPin.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close motion pin: %w", err))
		}
	}
	if r.lightPin != nil {
		if err := r.lightPin.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close light pin: %w", err))
		}
	}
	if r.chip != nil {
		if err := r.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
