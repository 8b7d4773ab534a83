package control

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrUnknownCommand is returned for a command or field name that does not exist.
	ErrUnknownCommand = errors.New("unknown command")

	// ErrUsage is returned for a command with missing or malformed arguments.
	ErrUsage = errors.New("bad arguments")
)

// Command names.
const (
	CmdSet     = "set"
	CmdLED     = "led"
	CmdStopLED = "stop-led"
	CmdToggle  = "toggle"
	CmdStatus  = "status"
	CmdStop    = "stop"
)

// Settable fields for "set".
const (
	FieldMotion   = "motion"
	FieldLight    = "light"
	FieldTemp     = "temp"
	FieldHumidity = "humidity"
	FieldBuzzer   = "buzzer"
	FieldUltra    = "ultra"
	FieldID       = "id"
)

// Command is a parsed input line.
type Command struct {
	Name  string
	Field string // "set" only
	Index int    // "led" only, 0-based
	Value string
}

// Usage describes the accepted command lines.
const Usage = `commands:
  set motion|light|buzzer|ultra <0|1>
  set temp <-10..50>
  set humidity <0..100>
  set id <up to 10 letters/digits, may be empty>
  led <1-10> <0|1>
  stop-led
  toggle
  status
  stop`

var aliases = map[string]string{
	"quit":  CmdStop,
	"exit":  CmdStop,
	"pause": CmdToggle,
}

// Parse parses one command line. Names are case-insensitive; the id value
// keeps its case.
func Parse(line string) (Command, error) {
	f := strings.Fields(line)
	if len(f) == 0 {
		return Command{}, fmt.Errorf("%w: empty line", ErrUsage)
	}

	name := strings.ToLower(f[0])
	if a, ok := aliases[name]; ok {
		name = a
	}

	switch name {
	case CmdSet:
		if len(f) < 2 {
			return Command{}, fmt.Errorf("%w: set <field> <value>", ErrUsage)
		}
		field := strings.ToLower(f[1])
		if field == FieldID {
			// "set id" with no value clears the identifier.
			if len(f) > 3 {
				return Command{}, fmt.Errorf("%w: id must be a single word", ErrUsage)
			}
			c := Command{Name: CmdSet, Field: field}
			if len(f) == 3 {
				c.Value = f[2]
			}
			return c, nil
		}
		if len(f) != 3 {
			return Command{}, fmt.Errorf("%w: set %s <value>", ErrUsage, field)
		}
		return Command{Name: CmdSet, Field: field, Value: f[2]}, nil

	case CmdLED:
		if len(f) != 3 {
			return Command{}, fmt.Errorf("%w: led <1-10> <0|1>", ErrUsage)
		}
		n, err := strconv.Atoi(f[1])
		if err != nil {
			return Command{}, fmt.Errorf("%w: led number %q", ErrUsage, f[1])
		}
		return Command{Name: CmdLED, Index: n - 1, Value: f[2]}, nil

	case CmdStopLED, CmdToggle, CmdStatus, CmdStop:
		if len(f) != 1 {
			return Command{}, fmt.Errorf("%w: %s takes no arguments", ErrUsage, name)
		}
		return Command{Name: name}, nil
	}

	return Command{}, fmt.Errorf("%w: %q", ErrUnknownCommand, f[0])
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "1", "on", "true":
		return true, nil
	case "0", "off", "false":
		return false, nil
	}
	return false, fmt.Errorf("%w: %q is not 0 or 1", ErrUsage, s)
}

func parseNumber(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrUsage, s)
	}
	return v, nil
}
