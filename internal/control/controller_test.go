package control

import (
	"errors"
	"os"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/sweeney/board-sim/internal/board"
	"github.com/sweeney/board-sim/internal/gpio"
	"github.com/sweeney/board-sim/internal/relay"
	"github.com/sweeney/board-sim/internal/sender"
	"github.com/sweeney/board-sim/internal/status"
)

var testTime = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

type fakeSender struct {
	status sender.Status
	sent   uint64
	err    error
}

func (f *fakeSender) Status() sender.Status { return f.status }
func (f *fakeSender) Sent() uint64          { return f.sent }
func (f *fakeSender) Err() error            { return f.err }

type fixture struct {
	state   *board.State
	relay   *relay.Relay
	console *status.Console
	sender  *fakeSender
	ctrl    *Controller
}

func newFixture(t *testing.T, reader gpio.Reader) *fixture {
	t.Helper()
	f := &fixture{
		state:   board.New(),
		relay:   relay.New(relay.DefaultCapacity),
		console: status.NewConsole(testTime, status.Config{Port: "/dev/ttyS0"}),
		sender:  &fakeSender{status: sender.StatusRunning},
	}
	f.ctrl = New(Config{
		State:    f.state,
		Relay:    f.relay,
		Console:  f.console,
		Sender:   f.sender,
		GPIO:     reader,
		PortName: "/dev/ttyS0",
		Now:      func() time.Time { return testTime },
	})
	return f
}

func (f *fixture) handle(t *testing.T, line string) string {
	t.Helper()
	reply, err := f.ctrl.Handle(line)
	if err != nil {
		t.Fatalf("%q: unexpected error: %v", line, err)
	}
	return reply
}

func TestPollEmptyRelay(t *testing.T) {
	f := newFixture(t, nil)
	f.ctrl.Poll()
	f.ctrl.Poll()

	snap := f.console.Snapshot()
	if len(snap.Data) != 0 || len(snap.Events) != 0 {
		t.Errorf("empty poll should not touch consoles: %+v", snap)
	}
	if snap.SenderStatus != "RUNNING" {
		t.Errorf("sender status: got %q", snap.SenderStatus)
	}
}

func TestPollDrainsInOrder(t *testing.T) {
	f := newFixture(t, nil)
	f.relay.Push(relay.Event{Time: testTime, Kind: relay.KindSent, Frame: "a"})
	f.relay.Push(relay.Event{Time: testTime, Kind: relay.KindSent, Frame: "b"})
	f.relay.Push(relay.Event{Time: testTime, Kind: relay.KindFailed, Err: "serial write: EIO"})

	f.ctrl.Poll()

	if f.relay.Len() != 0 {
		t.Errorf("relay should be empty after poll, len=%d", f.relay.Len())
	}
	snap := f.console.Snapshot()
	if len(snap.Data) != 2 || snap.Data[0].Text != "a" || snap.Data[1].Text != "b" {
		t.Errorf("data console: got %+v", snap.Data)
	}
	if len(snap.Events) != 1 || !strings.Contains(snap.Events[0].Text, "EIO") {
		t.Errorf("event console: got %+v", snap.Events)
	}
	if !strings.Contains(snap.StatusBar, "sending stopped") {
		t.Errorf("status bar: got %q", snap.StatusBar)
	}
	if f.state.Snapshot().SendingActive {
		t.Error("a failure event must disable sending")
	}
}

func TestSetCommandsMutateState(t *testing.T) {
	f := newFixture(t, nil)

	f.handle(t, "set motion 1")
	f.handle(t, "set temp 30.25")
	f.handle(t, "set humidity 80")
	f.handle(t, "set buzzer on")
	f.handle(t, "set id XYZ")
	f.handle(t, "led 1 1")
	f.handle(t, "led 10 1")

	s := f.state.Snapshot()
	if !s.Motion || s.Temperature != 30.25 || s.Humidity != 80 || !s.Buzzer || s.ID != "XYZ" {
		t.Errorf("state: got %+v", s)
	}
	if !s.LEDs[0] || !s.LEDs[9] {
		t.Errorf("LEDs: got %v", s.LEDs)
	}

	// Display reflects the latest state and logs one line per action.
	snap := f.console.Snapshot()
	if snap.Board.ID != "XYZ" {
		t.Errorf("display board id: got %q", snap.Board.ID)
	}
	if len(snap.Events) != 7 {
		t.Errorf("event lines: got %d, want 7", len(snap.Events))
	}
}

func TestValidationRejectionsAreSilent(t *testing.T) {
	f := newFixture(t, nil)

	for _, line := range []string{
		"set temp 51",
		"set temp -10.5",
		"set humidity 101",
		"set id ABCDEFGHIJK",
		"set id AB-1",
		"set ultra 1", // light is blocked
	} {
		reply, err := f.ctrl.Handle(line)
		if err != nil {
			t.Errorf("%q: rejection should be silent, got %v", line, err)
		}
		if reply != "" {
			t.Errorf("%q: reply %q, want empty", line, reply)
		}
	}

	s := f.state.Snapshot()
	def := board.Default()
	if s.Temperature != def.Temperature || s.Humidity != def.Humidity || s.ID != def.ID || s.UltraLED {
		t.Errorf("state changed after rejected input: %+v", s)
	}
	if n := len(f.console.Snapshot().Events); n != 0 {
		t.Errorf("rejections should not log events, got %d", n)
	}
	if f.relay.Len() != 0 {
		t.Error("rejections must not emit relay events")
	}
}

func TestMalformedCommandsReturnErrors(t *testing.T) {
	f := newFixture(t, nil)
	for _, line := range []string{"set temp hot", "set motion maybe", "led 11 1", "set color red", "fly"} {
		if _, err := f.ctrl.Handle(line); err == nil {
			t.Errorf("%q: expected error", line)
		}
	}
}

func TestLightToggleScenario(t *testing.T) {
	f := newFixture(t, nil)

	f.handle(t, "set light 0")
	if !f.state.Snapshot().UltraLED {
		t.Fatal("light 1->0 should switch ultra LED on")
	}

	f.handle(t, "stop-led")
	if f.state.Snapshot().UltraLED {
		t.Fatal("stop-led should switch ultra LED off")
	}

	f.handle(t, "set light 1")
	if f.state.Snapshot().UltraLED {
		t.Error("light 0->1 must force ultra LED off regardless of manual stop")
	}

	f.handle(t, "set light 0")
	if !f.state.Snapshot().UltraLED {
		t.Error("ultra LED should come back on after a block/unblock cycle")
	}
}

func TestStopLEDWhileBlockedIsNoop(t *testing.T) {
	f := newFixture(t, nil)
	f.handle(t, "stop-led")
	if f.state.Snapshot().ManualStop {
		t.Error("stop-led while blocked should not latch a manual stop")
	}
}

func TestToggle(t *testing.T) {
	f := newFixture(t, nil)

	reply := f.handle(t, "toggle")
	if f.state.Snapshot().SendingActive {
		t.Error("toggle should pause sending")
	}
	if reply != "Data sending paused." {
		t.Errorf("reply: got %q", reply)
	}

	reply = f.handle(t, "toggle")
	if !f.state.Snapshot().SendingActive {
		t.Error("second toggle should resume sending")
	}
	if !strings.Contains(reply, "/dev/ttyS0") {
		t.Errorf("reply: got %q", reply)
	}
}

func TestToggleAfterSenderFailure(t *testing.T) {
	f := newFixture(t, nil)
	f.relay.Push(relay.Event{Time: testTime, Kind: relay.KindFailed, Err: "gone"})
	f.ctrl.Poll()

	reply := f.handle(t, "toggle")
	if !strings.Contains(reply, "restart required") {
		t.Errorf("reply: got %q", reply)
	}
}

func TestStatusCommand(t *testing.T) {
	f := newFixture(t, nil)
	reply := f.handle(t, "status")
	if !strings.HasPrefix(reply, "0,1,22.50,45.00,0,0000000000,0,ID0001ABC") {
		t.Errorf("reply: got %q", reply)
	}
	if !strings.Contains(reply, "sender=RUNNING") {
		t.Errorf("reply: got %q", reply)
	}
}

func TestStopCommand(t *testing.T) {
	f := newFixture(t, nil)
	if _, err := f.ctrl.Handle("stop"); !errors.Is(err, ErrStopped) {
		t.Errorf("got %v, want ErrStopped", err)
	}
}

func TestPollReadsGPIOChanges(t *testing.T) {
	reader := gpio.NewFakeReader([]gpio.Sample{
		{Motion: false, LightBlocked: true},
		{Motion: true, LightBlocked: true},
		{Motion: true, LightBlocked: false},
	})
	f := newFixture(t, reader)

	f.ctrl.Poll()
	s := f.state.Snapshot()
	if s.Motion || !s.LightBlocked {
		t.Fatalf("poll 1: got motion=%v light=%v", s.Motion, s.LightBlocked)
	}

	f.ctrl.Poll()
	if !f.state.Snapshot().Motion {
		t.Error("poll 2: motion should be set")
	}

	f.ctrl.Poll()
	s = f.state.Snapshot()
	if s.LightBlocked || !s.UltraLED {
		t.Errorf("poll 3: got light=%v ultra=%v, want false/true", s.LightBlocked, s.UltraLED)
	}

	// Unchanged inputs do not re-dispatch.
	before := len(f.console.Snapshot().Events)
	f.ctrl.Poll()
	if after := len(f.console.Snapshot().Events); after != before {
		t.Errorf("unchanged GPIO logged %d new events", after-before)
	}
}

func TestPollDebouncesGPIO(t *testing.T) {
	reader := gpio.NewFakeReader([]gpio.Sample{
		{Motion: false, LightBlocked: true},
		{Motion: false, LightBlocked: true},
		{Motion: true, LightBlocked: true}, // bounce
		{Motion: false, LightBlocked: true},
		{Motion: true, LightBlocked: true},
		{Motion: true, LightBlocked: true},
		{Motion: true, LightBlocked: true},
	})
	now := testTime
	st := board.New()
	ctrl := New(Config{
		State:    st,
		Relay:    relay.New(relay.DefaultCapacity),
		Console:  status.NewConsole(testTime, status.Config{}),
		GPIO:     reader,
		Debounce: 250 * time.Millisecond,
		Now:      func() time.Time { return now },
	})

	poll := func() {
		ctrl.Poll()
		now = now.Add(100 * time.Millisecond)
	}

	for i := 0; i < 5; i++ {
		poll()
		if st.Snapshot().Motion {
			t.Fatalf("poll %d: motion applied before it held for 250ms", i+1)
		}
	}
	poll()
	poll()
	poll()
	if !st.Snapshot().Motion {
		t.Error("motion should be applied once it held for 250ms")
	}
}

func TestPollGPIOErrorDoesNotMutate(t *testing.T) {
	reader := gpio.NewFakeReader([]gpio.Sample{{Motion: true}})
	reader.ReadError = errors.New("line busy")
	f := newFixture(t, reader)

	f.ctrl.Poll()
	if f.state.Snapshot().Motion {
		t.Error("failed GPIO read must not change state")
	}
}

func TestRunStopsOnCommand(t *testing.T) {
	f := newFixture(t, nil)
	requests := make(chan Request, 4)
	tick := make(chan time.Time)
	sig := make(chan os.Signal)

	reply := make(chan string, 1)
	requests <- Request{Line: "set motion 1"}
	requests <- Request{Line: "stop", Reply: reply}

	f.relay.Push(relay.Event{Time: testTime, Kind: relay.KindSent, Frame: "last"})

	if err := f.ctrl.Run(requests, tick, sig); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := <-reply; got != "stopping" {
		t.Errorf("reply: got %q", got)
	}
	if !f.state.Snapshot().Motion {
		t.Error("command before stop should have been applied")
	}
	// Pending events are drained on the way out.
	if data := f.console.Snapshot().Data; len(data) != 1 || data[0].Text != "last" {
		t.Errorf("data console: got %+v", data)
	}
}

func TestRunStopsOnSignal(t *testing.T) {
	f := newFixture(t, nil)
	sig := make(chan os.Signal, 1)
	sig <- syscall.SIGTERM

	done := make(chan error, 1)
	go func() { done <- f.ctrl.Run(nil, nil, sig) }()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not return after signal")
	}
}

func TestRunPollsOnTick(t *testing.T) {
	f := newFixture(t, nil)
	tick := make(chan time.Time)
	sig := make(chan os.Signal, 1)
	requests := make(chan Request)

	done := make(chan error, 1)
	go func() { done <- f.ctrl.Run(requests, tick, sig) }()

	f.relay.Push(relay.Event{Time: testTime, Kind: relay.KindSent, Frame: "tick"})
	tick <- testTime

	reply := make(chan string, 1)
	requests <- Request{Line: "status", Reply: reply}
	<-reply

	sig <- syscall.SIGINT
	<-done

	if data := f.console.Snapshot().Data; len(data) != 1 || data[0].Text != "tick" {
		t.Errorf("data console: got %+v", data)
	}
}

func TestRunRepliesWithErrors(t *testing.T) {
	f := newFixture(t, nil)
	requests := make(chan Request, 2)
	reply := make(chan string, 1)
	requests <- Request{Line: "fly", Reply: reply}
	requests <- Request{Line: "stop"}

	f.ctrl.Run(requests, nil, nil)

	if got := <-reply; !strings.HasPrefix(got, "error: unknown command") {
		t.Errorf("reply: got %q", got)
	}
}
