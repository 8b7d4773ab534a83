// Package board holds the simulated sensor/actuator board state.
// This package has NO external dependencies (no serial, MQTT, GPIO or time).
package board

// NumLEDs is the number of individually switchable LEDs on the board.
const NumLEDs = 10

// MaxIDLen is the maximum length of the RFID identifier.
const MaxIDLen = 10

// Value bounds for the analog sensors.
const (
	MinTemperature = -10.0
	MaxTemperature = 50.0
	MinHumidity    = 0.0
	MaxHumidity    = 100.0
)

// Defaults applied by New.
const (
	DefaultTemperature = 22.5
	DefaultHumidity    = 45.0
	DefaultID          = "ID0001ABC"
)

// Snapshot is a point-in-time copy of the board state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	Motion       bool
	LightBlocked bool
	Temperature  float64
	Humidity     float64
	UltraLED     bool
	LEDs         [NumLEDs]bool
	Buzzer       bool
	ID           string

	// SendingActive gates transmission by the sender.
	SendingActive bool

	// ManualStop is set when the ultra-bright LED was switched off by hand
	// while light was not blocked.
	ManualStop bool
}

// Default returns the startup snapshot.
func Default() Snapshot {
	return Snapshot{
		LightBlocked:  true,
		Temperature:   DefaultTemperature,
		Humidity:      DefaultHumidity,
		ID:            DefaultID,
		SendingActive: true,
	}
}

// LEDCount returns how many of the LEDs are on.
func (s Snapshot) LEDCount() int {
	n := 0
	for _, on := range s.LEDs {
		if on {
			n++
		}
	}
	return n
}
