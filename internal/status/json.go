package status

import (
	"encoding/json"
	"time"

	"github.com/sweeney/board-sim/internal/frame"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Board         BoardJSON  `json:"board"`
	Frame         string     `json:"frame"`
	StatusBar     string     `json:"status_bar"`
	Sender        SenderJSON `json:"sender"`
	UptimeSeconds int64      `json:"uptime_seconds"`
	StartTime     string     `json:"start_time"`
	Timestamp     string     `json:"timestamp"`
	MQTT          MQTTStatus `json:"mqtt"`
	Data          []LineJSON `json:"data"`
	Events        []LineJSON `json:"events"`
	Config        ConfigJSON `json:"config"`
}

// BoardJSON is the JSON representation of the board state.
type BoardJSON struct {
	Motion        bool    `json:"motion"`
	LightBlocked  bool    `json:"light_blocked"`
	Temperature   float64 `json:"temperature"`
	Humidity      float64 `json:"humidity"`
	UltraLED      bool    `json:"ultra_led"`
	LEDs          string  `json:"leds"`
	Buzzer        bool    `json:"buzzer"`
	ID            string  `json:"id"`
	SendingActive bool    `json:"sending_active"`
}

// SenderJSON reports sender progress.
type SenderJSON struct {
	Status  string `json:"status"`
	Sent    uint64 `json:"sent"`
	Dropped uint64 `json:"dropped_events"`
	Error   string `json:"error,omitempty"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Enabled   bool   `json:"enabled"`
	Connected bool   `json:"connected"`
	Broker    string `json:"broker,omitempty"`
	Topic     string `json:"topic,omitempty"`
}

// LineJSON is one console line.
type LineJSON struct {
	Time string `json:"time"`
	Text string `json:"text"`
}

// ConfigJSON is the JSON representation of simulator config.
type ConfigJSON struct {
	Port     string `json:"port"`
	Baud     int    `json:"baud"`
	PeriodMs int64  `json:"period_ms"`
	PollMs   int64  `json:"poll_ms"`
	HTTPAddr string `json:"http_addr"`
}

func buildLines(lines []Line) []LineJSON {
	out := make([]LineJSON, 0, len(lines))
	for _, l := range lines {
		out = append(out, LineJSON{Time: l.Time.UTC().Format(time.RFC3339), Text: l.Text})
	}
	return out
}

// FormatJSON returns the JSON status for the web endpoint.
func FormatJSON(snap Snapshot) []byte {
	b := snap.Board
	inner := StatusInner{
		Board: BoardJSON{
			Motion:        b.Motion,
			LightBlocked:  b.LightBlocked,
			Temperature:   b.Temperature,
			Humidity:      b.Humidity,
			UltraLED:      b.UltraLED,
			LEDs:          frame.LEDBits(b.LEDs),
			Buzzer:        b.Buzzer,
			ID:            b.ID,
			SendingActive: b.SendingActive,
		},
		Frame:     frame.Line(b),
		StatusBar: snap.StatusBar,
		Sender: SenderJSON{
			Status:  snap.SenderStatus,
			Sent:    snap.Sent,
			Dropped: snap.Dropped,
			Error:   snap.SenderError,
		},
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT: MQTTStatus{
			Enabled:   snap.Config.Broker != "",
			Connected: snap.MQTTConnected,
			Broker:    snap.Config.Broker,
			Topic:     snap.Config.Topic,
		},
		Data:   buildLines(snap.Data),
		Events: buildLines(snap.Events),
		Config: ConfigJSON{
			Port:     snap.Config.Port,
			Baud:     snap.Config.Baud,
			PeriodMs: snap.Config.PeriodMs,
			PollMs:   snap.Config.PollMs,
			HTTPAddr: snap.Config.HTTPAddr,
		},
	}

	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}
