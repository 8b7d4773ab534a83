package control

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		line string
		want Command
	}{
		{"set motion 1", Command{Name: CmdSet, Field: FieldMotion, Value: "1"}},
		{"SET Temp 23.5", Command{Name: CmdSet, Field: FieldTemp, Value: "23.5"}},
		{"set id Abc123", Command{Name: CmdSet, Field: FieldID, Value: "Abc123"}},
		{"set id", Command{Name: CmdSet, Field: FieldID, Value: ""}},
		{"led 10 1", Command{Name: CmdLED, Index: 9, Value: "1"}},
		{"stop-led", Command{Name: CmdStopLED}},
		{"toggle", Command{Name: CmdToggle}},
		{"pause", Command{Name: CmdToggle}},
		{"  status  ", Command{Name: CmdStatus}},
		{"quit", Command{Name: CmdStop}},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := Parse(tt.line)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		line string
		want error
	}{
		{"", ErrUsage},
		{"set", ErrUsage},
		{"set motion", ErrUsage},
		{"set id a b", ErrUsage},
		{"led x 1", ErrUsage},
		{"led 1", ErrUsage},
		{"toggle now", ErrUsage},
		{"reboot", ErrUnknownCommand},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			_, err := Parse(tt.line)
			if !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestParseBool(t *testing.T) {
	for _, s := range []string{"1", "on", "TRUE"} {
		if v, err := parseBool(s); err != nil || !v {
			t.Errorf("parseBool(%q): got (%v, %v)", s, v, err)
		}
	}
	for _, s := range []string{"0", "off", "false"} {
		if v, err := parseBool(s); err != nil || v {
			t.Errorf("parseBool(%q): got (%v, %v)", s, v, err)
		}
	}
	if _, err := parseBool("2"); !errors.Is(err, ErrUsage) {
		t.Errorf("parseBool(2): got %v, want ErrUsage", err)
	}
}
