package mqtt

import (
	"errors"
	"testing"

	"github.com/sweeney/board-sim/internal/port"
)

const defaultLine = "0,1,22.50,45.00,0,0000000000,0,ID0001ABC"

func TestFormatPayload(t *testing.T) {
	got := string(FormatPayload(defaultLine + "\n"))
	want := "0;1;22.50;45.00;0;0000000000;0;ID0001ABC"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestDefaultTopic(t *testing.T) {
	if DefaultTopic != "amerike/cyber/iot/device_data_semicolon" {
		t.Errorf("unexpected topic: %s", DefaultTopic)
	}
}

func TestFakePublisher(t *testing.T) {
	f := NewFakePublisher()
	if err := f.PublishFrame(defaultLine); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(f.Lines) != 1 || f.Lines[0] != defaultLine {
		t.Errorf("lines: got %v", f.Lines)
	}
	if got := f.Published(); len(got) != 1 || got[0] != "0;1;22.50;45.00;0;0000000000;0;ID0001ABC" {
		t.Errorf("payloads: got %v", got)
	}
}

func TestFakePublisherError(t *testing.T) {
	f := NewFakePublisher()
	f.PublishError = errors.New("simulated error")
	if err := f.PublishFrame(defaultLine); err == nil {
		t.Error("expected error")
	}
	if len(f.Lines) != 0 {
		t.Errorf("expected no lines recorded on error, got %d", len(f.Lines))
	}
}

func TestFakePublisherReset(t *testing.T) {
	f := NewFakePublisher()
	f.PublishFrame(defaultLine)
	f.Close()
	f.Connected = true
	f.PublishError = errors.New("error")

	f.Reset()

	if len(f.Lines) != 0 || len(f.Payloads) != 0 {
		t.Error("frames should be cleared")
	}
	if f.Closed || f.Connected || f.PublishError != nil {
		t.Errorf("flags should be reset: %+v", f)
	}
}

func TestMirrorWritesAndPublishes(t *testing.T) {
	p := port.NewFakePort()
	pub := NewFakePublisher()
	m := NewMirror(p, pub)

	n, err := m.Write([]byte(defaultLine + "\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != len(defaultLine)+1 {
		t.Errorf("n: got %d", n)
	}
	if len(p.Writes()) != 1 {
		t.Errorf("port writes: got %d, want 1", len(p.Writes()))
	}
	if got := pub.Published(); len(got) != 1 || got[0] != "0;1;22.50;45.00;0;0000000000;0;ID0001ABC" {
		t.Errorf("published: got %v", got)
	}
}

func TestMirrorPortErrorNotPublished(t *testing.T) {
	p := port.NewFakePort()
	p.WriteError = errors.New("EIO")
	pub := NewFakePublisher()
	m := NewMirror(p, pub)

	if _, err := m.Write([]byte(defaultLine + "\n")); err == nil {
		t.Fatal("port error must be returned")
	}
	if len(pub.Published()) != 0 {
		t.Error("failed write must not be published")
	}
}

func TestMirrorPublishErrorIgnored(t *testing.T) {
	p := port.NewFakePort()
	pub := NewFakePublisher()
	pub.PublishError = errors.New("broker down")
	m := NewMirror(p, pub)

	if _, err := m.Write([]byte(defaultLine + "\n")); err != nil {
		t.Errorf("publish errors must not fail the write, got %v", err)
	}
}

func TestMirrorClose(t *testing.T) {
	p := port.NewFakePort()
	pub := NewFakePublisher()
	m := NewMirror(p, pub)
	m.Close()
	if !p.Closed() {
		t.Error("inner port should be closed")
	}
	if pub.Closed {
		t.Error("publisher is owned by the caller and must stay open")
	}
}
