// Package gpio reads the board's physical inputs with hardware abstraction.
// The real implementation uses Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

// Reader reads the motion and light sensor inputs.
type Reader interface {
	// Read returns the logical states (motion detected, light blocked).
	Read() (motion bool, lightBlocked bool, err error)

	// Close releases GPIO resources.
	Close() error
}

// Default pin definitions (BCM numbering)
const (
	DefaultPinMotion = 17 // PIR output, high = motion
	DefaultPinLight  = 27 // LDR comparator output, high = dark
)
