// Package control runs the controlling side of the simulator: it applies
// input commands to the board state and, on a fixed poll schedule, drains
// send outcomes from the relay into the display.
//
// Everything here runs on the controller goroutine. Input sources (stdin,
// HTTP, GPIO) only hand over requests; they never touch state or display.
package control

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/sweeney/board-sim/internal/board"
	"github.com/sweeney/board-sim/internal/debounce"
	"github.com/sweeney/board-sim/internal/frame"
	"github.com/sweeney/board-sim/internal/gpio"
	"github.com/sweeney/board-sim/internal/relay"
	"github.com/sweeney/board-sim/internal/sender"
	"github.com/sweeney/board-sim/internal/status"
)

// DefaultPollInterval is how often the relay is drained.
const DefaultPollInterval = 100 * time.Millisecond

// ErrStopped is returned by Dispatch for the stop command; Run treats it as a clean exit.
var ErrStopped = errors.New("stop requested")

// SenderStatus reports sender progress for display.
type SenderStatus interface {
	Status() sender.Status
	Sent() uint64
	Err() error
}

// ConnectionStatus reports whether the MQTT mirror is connected.
type ConnectionStatus interface {
	IsConnected() bool
}

// Request is a command line from an input source.
// Reply, if non-nil, receives one response line; it should be buffered.
type Request struct {
	Line  string
	Reply chan<- string
}

// Config holds the collaborators of a Controller. State, Relay and Console are required.
type Config struct {
	State   *board.State
	Relay   *relay.Relay
	Console *status.Console

	Sender SenderStatus     // optional
	MQTT   ConnectionStatus // optional
	GPIO   gpio.Reader      // optional

	// Debounce is how long a GPIO level must hold before it is applied.
	Debounce time.Duration

	PortName string
	Now      func() time.Time
}

type handler func(c *Controller, cmd Command) (string, error)

// Controller owns the board state and the display.
type Controller struct {
	state    *board.State
	relay    *relay.Relay
	console  *status.Console
	sender   SenderStatus
	mqtt     ConnectionStatus
	gpio     gpio.Reader
	portName string
	now      func() time.Time

	handlers map[string]handler

	debounce   *debounce.Detector
	gpioFailed bool
	senderDown bool
}

// New creates a Controller.
func New(cfg Config) *Controller {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	c := &Controller{
		state:    cfg.State,
		relay:    cfg.Relay,
		console:  cfg.Console,
		sender:   cfg.Sender,
		mqtt:     cfg.MQTT,
		gpio:     cfg.GPIO,
		portName: cfg.PortName,
		now:      now,
	}
	if c.gpio != nil {
		c.debounce = debounce.New(cfg.Debounce)
	}
	c.handlers = map[string]handler{
		CmdSet:     (*Controller).handleSet,
		CmdLED:     (*Controller).handleLED,
		CmdStopLED: (*Controller).handleStopLED,
		CmdToggle:  (*Controller).handleToggle,
		CmdStatus:  (*Controller).handleStatus,
		CmdStop:    (*Controller).handleStop,
	}
	c.console.SetBoard(c.state.Snapshot())
	return c
}

// Run processes requests and polls the relay until a stop command or a signal.
func (c *Controller) Run(requests <-chan Request, tick <-chan time.Time, sig <-chan os.Signal) error {
	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			c.logAction(fmt.Sprintf("received %v, shutting down", s))
			c.Poll()
			return nil

		case req, ok := <-requests:
			if !ok {
				// Input closed (EOF on stdin): keep running until signalled.
				requests = nil
				continue
			}
			reply, err := c.Handle(req.Line)
			if errors.Is(err, ErrStopped) {
				respond(req.Reply, "stopping")
				c.Poll()
				return nil
			}
			if err != nil {
				reply = "error: " + err.Error()
			}
			respond(req.Reply, reply)

		case <-tick:
			c.Poll()
		}
	}
}

func respond(ch chan<- string, msg string) {
	if ch == nil {
		return
	}
	select {
	case ch <- msg:
	default:
	}
}

// Handle parses and dispatches one command line.
func (c *Controller) Handle(line string) (string, error) {
	cmd, err := Parse(line)
	if err != nil {
		return "", err
	}
	return c.Dispatch(cmd)
}

// Dispatch applies a parsed command. Values rejected by the board validators
// are absorbed: the state is unchanged and no error is returned.
func (c *Controller) Dispatch(cmd Command) (string, error) {
	h, ok := c.handlers[cmd.Name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Name)
	}
	reply, err := h(c, cmd)
	c.console.SetBoard(c.state.Snapshot())
	return reply, err
}

// Poll drains every pending event from the relay into the display, in order,
// then refreshes the status fields. It never blocks.
func (c *Controller) Poll() {
	for {
		e, ok := c.relay.TryTake()
		if !ok {
			break
		}
		c.apply(e)
	}

	c.pollGPIO()

	c.console.SetBoard(c.state.Snapshot())
	if c.sender != nil {
		c.console.SetSender(string(c.sender.Status()), c.sender.Sent(), c.relay.Dropped(), c.sender.Err())
	}
	if c.mqtt != nil {
		c.console.SetMQTTConnected(c.mqtt.IsConnected())
	}
}

func (c *Controller) apply(e relay.Event) {
	switch e.Kind {
	case relay.KindSent:
		c.console.AppendData(e.Time, e.Frame)
	case relay.KindFailed:
		c.senderDown = true
		c.state.SetSendingActive(false)
		c.console.AppendEvent(e.Time, "send error: "+e.Err)
		c.console.SetStatusBar("Serial write error: " + e.Err + " (sending stopped)")
	default:
		log.Printf("control: ignoring event of kind %q", e.Kind)
	}
}

func (c *Controller) pollGPIO() {
	if c.gpio == nil {
		return
	}
	motion, light, err := c.gpio.Read()
	if err != nil {
		if !c.gpioFailed {
			log.Printf("gpio read error: %v", err)
			c.gpioFailed = true
		}
		return
	}
	c.gpioFailed = false

	for _, ch := range c.debounce.Process(debounce.Sample{Motion: motion, LightBlocked: light, Time: c.now()}) {
		field := FieldMotion
		if ch.Input == debounce.InputLight {
			field = FieldLight
		}
		c.Dispatch(Command{Name: CmdSet, Field: field, Value: bitString(ch.Value)})
	}
}

// Announce writes a line to the event console and the status bar.
func (c *Controller) Announce(msg string) {
	c.logAction(msg)
	c.console.SetStatusBar(msg)
}

func (c *Controller) logAction(msg string) {
	c.console.AppendEvent(c.now(), msg)
}

func (c *Controller) handleSet(cmd Command) (string, error) {
	switch cmd.Field {
	case FieldMotion:
		on, err := parseBool(cmd.Value)
		if err != nil {
			return "", err
		}
		c.state.SetMotion(on)
		c.logAction(fmt.Sprintf("motion set to %s", bitString(on)))

	case FieldLight:
		blocked, err := parseBool(cmd.Value)
		if err != nil {
			return "", err
		}
		c.state.SetLightBlocked(blocked)
		if blocked {
			c.logAction("light blocked: ultra LED switched off")
		} else if c.state.Snapshot().UltraLED {
			c.logAction("light unblocked: ultra LED switched on")
		} else {
			c.logAction("light unblocked: ultra LED stays off (stopped manually)")
		}

	case FieldBuzzer:
		on, err := parseBool(cmd.Value)
		if err != nil {
			return "", err
		}
		c.state.SetBuzzer(on)
		c.logAction(fmt.Sprintf("buzzer set to %s", bitString(on)))

	case FieldUltra:
		on, err := parseBool(cmd.Value)
		if err != nil {
			return "", err
		}
		if !c.state.SetUltraLED(on) {
			log.Printf("control: ultra LED cannot be switched on while light is blocked")
			return "", nil
		}
		c.logAction(fmt.Sprintf("ultra LED set to %s", bitString(on)))

	case FieldTemp:
		v, err := parseNumber(cmd.Value)
		if err != nil {
			return "", err
		}
		if !c.state.SetTemperature(v) {
			log.Printf("control: temperature %v rejected", v)
			return "", nil
		}
		c.logAction(fmt.Sprintf("temperature set to %.2f°C", v))

	case FieldHumidity:
		v, err := parseNumber(cmd.Value)
		if err != nil {
			return "", err
		}
		if !c.state.SetHumidity(v) {
			log.Printf("control: humidity %v rejected", v)
			return "", nil
		}
		c.logAction(fmt.Sprintf("humidity set to %.2f%%", v))

	case FieldID:
		if !c.state.SetID(cmd.Value) {
			log.Printf("control: id %q rejected", cmd.Value)
			return "", nil
		}
		c.logAction(fmt.Sprintf("id set to %q", cmd.Value))

	default:
		return "", fmt.Errorf("%w: field %q", ErrUnknownCommand, cmd.Field)
	}
	return "ok", nil
}

func (c *Controller) handleLED(cmd Command) (string, error) {
	on, err := parseBool(cmd.Value)
	if err != nil {
		return "", err
	}
	if !c.state.SetLED(cmd.Index, on) {
		return "", fmt.Errorf("%w: led must be 1-%d", ErrUsage, board.NumLEDs)
	}
	c.logAction(fmt.Sprintf("LED %d set to %s", cmd.Index+1, bitString(on)))
	return "ok", nil
}

func (c *Controller) handleStopLED(Command) (string, error) {
	if c.state.Snapshot().LightBlocked {
		// Already off; nothing to stop.
		return "ok", nil
	}
	c.state.StopUltraLED()
	c.logAction("ultra LED stopped manually")
	return "ok", nil
}

func (c *Controller) handleToggle(Command) (string, error) {
	active := c.state.ToggleSending()
	var msg string
	if active {
		msg = fmt.Sprintf("Resuming data sending to %s...", c.portName)
		c.logAction("sending ENABLED")
	} else {
		msg = "Data sending paused."
		c.logAction("sending DISABLED")
	}
	if active && c.senderDown {
		// The loop does not come back after a failure.
		msg = "Sender stopped after an error; restart required"
	}
	c.console.SetStatusBar(msg)
	return msg, nil
}

func (c *Controller) handleStatus(Command) (string, error) {
	snap := c.state.Snapshot()
	st := "unknown"
	if c.sender != nil {
		st = string(c.sender.Status())
	}
	return fmt.Sprintf("%s sending=%v sender=%s", frame.Line(snap), snap.SendingActive, st), nil
}

func (c *Controller) handleStop(Command) (string, error) {
	c.logAction("shutting down")
	return "", ErrStopped
}

func bitString(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
