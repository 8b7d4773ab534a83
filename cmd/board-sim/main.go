// Command board-sim simulates an IoT sensor board: it writes a telemetry
// frame to a serial port every period and accepts commands that change the
// simulated sensors and actuators.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/daemon"
	"github.com/google/uuid"
	"github.com/mattn/go-isatty"

	"github.com/sweeney/board-sim/internal/board"
	"github.com/sweeney/board-sim/internal/control"
	"github.com/sweeney/board-sim/internal/debounce"
	"github.com/sweeney/board-sim/internal/gpio"
	"github.com/sweeney/board-sim/internal/mqtt"
	"github.com/sweeney/board-sim/internal/port"
	"github.com/sweeney/board-sim/internal/relay"
	"github.com/sweeney/board-sim/internal/sender"
	"github.com/sweeney/board-sim/internal/status"
	"github.com/sweeney/board-sim/internal/web"
)

// Environment overrides for flag defaults.
const (
	envSerialPort = "SIMULADOR_SERIAL_PORT"
	envBroker     = "MQTT_BROKER_URL"
	envTopic      = "MQTT_TOPIC_OUTPUT"
)

const (
	defaultSerialPort = "/dev/ttyS0"
	stopWait          = time.Second
)

type config struct {
	Port      string
	Baud      int
	Period    time.Duration
	Poll      time.Duration
	HTTPAddr  string
	Broker    string
	Topic     string
	GPIO      bool
	Debounce  time.Duration
	PinMotion int
	PinLight  int
}

func main() {
	var cfg config
	configPath := flag.String("config", "", "Optional HCL config file; command-line flags take precedence")
	flag.StringVar(&cfg.Port, "port", envOr(envSerialPort, defaultSerialPort), `Serial port to write frames to ("-" for stdout)`)
	flag.IntVar(&cfg.Baud, "baud", port.DefaultBaud, "Serial baud rate")
	flag.DurationVar(&cfg.Period, "period", sender.DefaultPeriod, "Interval between frames")
	flag.DurationVar(&cfg.Poll, "poll", control.DefaultPollInterval, "Event relay poll interval")
	flag.StringVar(&cfg.HTTPAddr, "http", ":8080", "HTTP status address (empty to disable)")
	flag.StringVar(&cfg.Broker, "mqtt-broker", os.Getenv(envBroker), "MQTT broker to mirror frames to (empty to disable)")
	flag.StringVar(&cfg.Topic, "topic", envOr(envTopic, mqtt.DefaultTopic), "MQTT topic for mirrored frames")
	flag.BoolVar(&cfg.GPIO, "gpio", false, "Read motion and light-blocked from GPIO inputs")
	flag.DurationVar(&cfg.Debounce, "debounce", debounce.DefaultHold, "How long a GPIO level must hold before it is applied")
	flag.IntVar(&cfg.PinMotion, "pin-motion", gpio.DefaultPinMotion, "BCM pin number for the motion sensor")
	flag.IntVar(&cfg.PinLight, "pin-light", gpio.DefaultPinLight, "BCM pin number for the light sensor")

	flag.Parse()

	if *configPath != "" {
		fc, err := loadConfigFile(*configPath)
		if err != nil {
			log.Fatalf("fatal: %v", err)
		}
		if err := applyFile(&cfg, fc, setFlags(flag.CommandLine)); err != nil {
			log.Fatalf("fatal: %v", err)
		}
	}

	if err := validateConfig(cfg); err != nil {
		log.Fatalf("fatal: %v", err)
	}
	if err := run(cfg); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func validateConfig(cfg config) error {
	if cfg.Port == "" {
		return fmt.Errorf("--port must not be empty")
	}
	if cfg.Baud <= 0 {
		return fmt.Errorf("--baud must be positive, got %d", cfg.Baud)
	}
	if cfg.Period <= 0 {
		return fmt.Errorf("--period must be positive, got %v", cfg.Period)
	}
	if cfg.Poll <= 0 {
		return fmt.Errorf("--poll must be positive, got %v", cfg.Poll)
	}
	if cfg.Debounce < 0 {
		return fmt.Errorf("--debounce must not be negative, got %v", cfg.Debounce)
	}
	if cfg.Broker != "" && cfg.Topic == "" {
		return fmt.Errorf("--topic must not be empty when --mqtt-broker is set")
	}
	return nil
}

func openPort(name string, baud int) (port.Port, error) {
	if name == "-" {
		return port.Stdout(), nil
	}
	p, err := port.Open(name, baud)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func run(cfg config) error {
	serial, err := openPort(cfg.Port, cfg.Baud)
	if err != nil {
		return fmt.Errorf("open serial port: %w", err)
	}
	log.Printf("serial port %s open at %d baud", cfg.Port, cfg.Baud)

	out := serial
	var mqttStatus control.ConnectionStatus
	if cfg.Broker != "" {
		pub, err := mqtt.NewRealPublisher(cfg.Broker, "board-sim-"+uuid.NewString()[:8], cfg.Topic)
		if err != nil {
			// The serial feed is the product; the mirror is optional.
			log.Printf("mqtt mirror disabled: %v", err)
		} else {
			defer pub.Close()
			out = mqtt.NewMirror(serial, pub)
			mqttStatus = pub
		}
	}

	var reader gpio.Reader
	if cfg.GPIO {
		r, err := gpio.NewRealReader(cfg.PinMotion, cfg.PinLight)
		if err != nil {
			out.Close()
			return fmt.Errorf("init gpio: %w", err)
		}
		defer r.Close()
		reader = r
	}

	state := board.New()
	events := relay.New(relay.DefaultCapacity)
	console := status.NewConsole(time.Now(), status.Config{
		Port:     cfg.Port,
		Baud:     cfg.Baud,
		PeriodMs: cfg.Period.Milliseconds(),
		PollMs:   cfg.Poll.Milliseconds(),
		Broker:   cfg.Broker,
		Topic:    cfg.Topic,
		HTTPAddr: cfg.HTTPAddr,
	})

	snd := sender.New(state, out, events, sender.WithPeriod(cfg.Period))
	ctrl := control.New(control.Config{
		State:    state,
		Relay:    events,
		Console:  console,
		Sender:   snd,
		MQTT:     mqttStatus,
		GPIO:     reader,
		Debounce: cfg.Debounce,
		PortName: cfg.Port,
	})

	requests := make(chan control.Request, 8)

	if cfg.HTTPAddr != "" {
		srv := web.New(cfg.HTTPAddr, console, requests)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", cfg.HTTPAddr)
	}

	if err := snd.Start(); err != nil {
		out.Close()
		return fmt.Errorf("start sender: %w", err)
	}
	ctrl.Announce(fmt.Sprintf("Sending data to %s every %v", cfg.Port, cfg.Period))
	log.Printf("started: port=%s period=%v poll=%v broker=%q", cfg.Port, cfg.Period, cfg.Poll, cfg.Broker)
	sdnotify(daemon.SdNotifyReady)

	// Replies go to stderr when frames own stdout.
	var replies io.Writer = os.Stdout
	if cfg.Port == "-" {
		replies = os.Stderr
	}
	done := make(chan struct{})
	go readInput(os.Stdin, replies, requests, done, isatty.IsTerminal(os.Stdin.Fd()))

	ticker := time.NewTicker(cfg.Poll)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	runErr := ctrl.Run(requests, ticker.C, sigCh)
	close(done)
	sdnotify(daemon.SdNotifyStopping)

	shutdown(snd, out, stopWait)
	return runErr
}

// stopper is the part of the sender used during shutdown.
type stopper interface {
	Stop(timeout time.Duration) bool
}

// shutdown stops the sender and closes the output port. The port is closed
// even if the sender did not stop in time.
func shutdown(snd stopper, out port.Port, wait time.Duration) {
	if !snd.Stop(wait) {
		log.Printf("sender did not stop within %v, closing port anyway", wait)
	}
	if err := out.Close(); err != nil {
		log.Printf("close port: %v", err)
	}
	log.Printf("shutdown complete")
}

// sdnotify reports service state to systemd. It is a no-op outside systemd.
func sdnotify(state string) {
	if _, err := daemon.SdNotify(false, state); err != nil {
		log.Printf("sdnotify: %v", err)
	}
}

// readInput forwards command lines from r to the controller and prints each
// reply to w. It returns at EOF or when done is closed.
func readInput(r io.Reader, w io.Writer, requests chan<- control.Request, done <-chan struct{}, interactive bool) {
	if interactive {
		fmt.Fprintln(w, control.Usage)
	}

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if line == "help" || line == "?" {
			fmt.Fprintln(w, control.Usage)
			continue
		}

		reply := make(chan string, 1)
		select {
		case requests <- control.Request{Line: line, Reply: reply}:
		case <-done:
			return
		}
		select {
		case msg := <-reply:
			if msg != "" {
				fmt.Fprintln(w, msg)
			}
		case <-done:
			return
		}
	}
	if err := sc.Err(); err != nil {
		log.Printf("stdin: %v", err)
	}
}
