// Package frame encodes board snapshots into the line-oriented telemetry
// frame written to the serial port, and parses such lines back.
//
// Field order:
//
//	motion,light,temperature,humidity,ultra,ledbits,buzzer,id
//
// Booleans are 0/1, temperature and humidity use two decimals, ledbits is
// one character per LED starting at LED 1.
package frame

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/sweeney/board-sim/internal/board"
)

// NumFields is the number of comma-separated fields in a frame.
const NumFields = 8

var (
	ErrFieldCount = errors.New("frame: wrong number of fields")
	ErrBool       = errors.New("frame: boolean field must be 0 or 1")
	ErrLEDBits    = errors.New("frame: led bits must be 10 characters of 0/1")
	ErrRange      = errors.New("frame: value out of range")
	ErrID         = errors.New("frame: invalid identifier")
)

// Line returns the frame text for s without the trailing newline.
func Line(s board.Snapshot) string {
	var b strings.Builder
	b.Grow(48)
	b.WriteByte(bit(s.Motion))
	b.WriteByte(',')
	b.WriteByte(bit(s.LightBlocked))
	b.WriteByte(',')
	b.WriteString(strconv.FormatFloat(s.Temperature, 'f', 2, 64))
	b.WriteByte(',')
	b.WriteString(strconv.FormatFloat(s.Humidity, 'f', 2, 64))
	b.WriteByte(',')
	b.WriteByte(bit(s.UltraLED))
	b.WriteByte(',')
	b.WriteString(LEDBits(s.LEDs))
	b.WriteByte(',')
	b.WriteByte(bit(s.Buzzer))
	b.WriteByte(',')
	b.WriteString(s.ID)
	return b.String()
}

// Encode returns the newline-terminated frame for s.
func Encode(s board.Snapshot) []byte {
	return []byte(Line(s) + "\n")
}

// LEDBits renders the LED states as a string of 0/1, LED 1 first.
func LEDBits(leds [board.NumLEDs]bool) string {
	buf := make([]byte, board.NumLEDs)
	for i, on := range leds {
		buf[i] = bit(on)
	}
	return string(buf)
}

// Semicolon converts a frame line into the ';'-delimited form published to MQTT.
func Semicolon(line string) string {
	return strings.ReplaceAll(strings.TrimSpace(line), ",", ";")
}

// Parse decodes a frame line (with or without trailing newline).
// Only the frame fields are restored; SendingActive and ManualStop are zero.
func Parse(line string) (board.Snapshot, error) {
	var s board.Snapshot

	fields := strings.Split(strings.TrimRight(line, "\r\n"), ",")
	if len(fields) != NumFields {
		return s, fmt.Errorf("%w: got %d, want %d", ErrFieldCount, len(fields), NumFields)
	}

	var err error
	if s.Motion, err = parseBit(fields[0]); err != nil {
		return s, fmt.Errorf("motion: %w", err)
	}
	if s.LightBlocked, err = parseBit(fields[1]); err != nil {
		return s, fmt.Errorf("light: %w", err)
	}
	if s.Temperature, err = strconv.ParseFloat(fields[2], 64); err != nil {
		return s, fmt.Errorf("temperature: %w", err)
	}
	if !board.ValidTemperature(s.Temperature) {
		return s, fmt.Errorf("temperature %v: %w", s.Temperature, ErrRange)
	}
	if s.Humidity, err = strconv.ParseFloat(fields[3], 64); err != nil {
		return s, fmt.Errorf("humidity: %w", err)
	}
	if !board.ValidHumidity(s.Humidity) {
		return s, fmt.Errorf("humidity %v: %w", s.Humidity, ErrRange)
	}
	if s.UltraLED, err = parseBit(fields[4]); err != nil {
		return s, fmt.Errorf("ultra: %w", err)
	}
	if s.LEDs, err = parseLEDBits(fields[5]); err != nil {
		return s, err
	}
	if s.Buzzer, err = parseBit(fields[6]); err != nil {
		return s, fmt.Errorf("buzzer: %w", err)
	}
	if !board.ValidID(fields[7]) {
		return s, fmt.Errorf("%w: %q", ErrID, fields[7])
	}
	s.ID = fields[7]

	return s, nil
}

func bit(b bool) byte {
	if b {
		return '1'
	}
	return '0'
}

func parseBit(f string) (bool, error) {
	switch f {
	case "0":
		return false, nil
	case "1":
		return true, nil
	}
	return false, ErrBool
}

func parseLEDBits(f string) ([board.NumLEDs]bool, error) {
	var leds [board.NumLEDs]bool
	if len(f) != board.NumLEDs {
		return leds, ErrLEDBits
	}
	for i := 0; i < len(f); i++ {
		switch f[i] {
		case '0':
		case '1':
			leds[i] = true
		default:
			return leds, ErrLEDBits
		}
	}
	return leds, nil
}
