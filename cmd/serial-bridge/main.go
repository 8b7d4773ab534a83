// Command serial-bridge reads telemetry frames from a serial port, appends
// each line to a log file and publishes it to MQTT in semicolon form.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/daemon"
	"github.com/google/uuid"

	"github.com/sweeney/board-sim/internal/frame"
	"github.com/sweeney/board-sim/internal/mqtt"
	"github.com/sweeney/board-sim/internal/port"
)

const (
	envSerialPort = "SERIAL_PORT_PATH"
	envBroker     = "MQTT_BROKER_URL"
	envTopic      = "MQTT_TOPIC_OUTPUT"
	envLogFile    = "LOG_FILE_PATH"
)

const defaultLogFile = "./serial_data_log.txt"

// logTimeFormat is UTC with milliseconds, e.g. 2026-01-01T12:00:00.000Z.
const logTimeFormat = "2006-01-02T15:04:05.000Z"

func main() {
	serialPath := flag.String("port", os.Getenv(envSerialPort), "Serial port to read frames from")
	baud := flag.Int("baud", port.DefaultBaud, "Serial baud rate")
	broker := flag.String("mqtt-broker", envOr(envBroker, mqtt.DefaultBroker), "MQTT broker address")
	topic := flag.String("topic", envOr(envTopic, mqtt.DefaultTopic), "MQTT topic to publish to")
	logFile := flag.String("log-file", envOr(envLogFile, defaultLogFile), "File each received line is appended to")
	publishInvalid := flag.Bool("publish-invalid", false, "Also publish lines that are not valid frames")

	flag.Parse()

	if *serialPath == "" {
		log.Fatalf("fatal: --port (or %s) is required", envSerialPort)
	}
	if *broker == "" || *topic == "" {
		log.Fatalf("fatal: --mqtt-broker and --topic are required")
	}
	if err := run(*serialPath, *baud, *broker, *topic, *logFile, *publishInvalid); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func run(serialPath string, baud int, broker, topic, logFile string, publishInvalid bool) error {
	lf, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer lf.Close()

	pub, err := mqtt.NewRealPublisher(broker, "serial-bridge-"+uuid.NewString()[:8], topic)
	if err != nil {
		return err
	}
	defer pub.Close()

	sp, err := port.Open(serialPath, baud)
	if err != nil {
		return fmt.Errorf("open serial port: %w", err)
	}
	log.Printf("serial port %s open at %d baud", serialPath, baud)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		s := <-sigCh
		log.Printf("received %v, shutting down", s)
		daemon.SdNotify(false, daemon.SdNotifyStopping)
		// Unblocks the reader.
		sp.Close()
	}()

	log.Printf("started: port=%s broker=%s topic=%s log=%s", serialPath, broker, topic, logFile)
	if _, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
		log.Printf("sdnotify: %v", err)
	}
	b := &bridge{log: lf, pub: pub, now: time.Now, publishInvalid: publishInvalid}
	err = b.run(sp)
	sp.Close()
	log.Printf("bridge stopped: %d lines, %d published, %d invalid", b.lines, b.published, b.invalid)
	return err
}

// bridge copies lines from a serial reader to a log file and a publisher.
type bridge struct {
	log            io.Writer
	pub            mqtt.Publisher
	now            func() time.Time
	publishInvalid bool

	lines     int
	published int
	invalid   int
}

// run processes lines until r is exhausted. A clean end of input returns nil.
func (b *bridge) run(r io.Reader) error {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		b.handle(sc.Text())
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read serial: %w", err)
	}
	return nil
}

func (b *bridge) handle(raw string) {
	line := strings.TrimSpace(raw)
	b.lines++

	if _, err := io.WriteString(b.log, logEntry(b.now(), line)); err != nil {
		log.Printf("log file: %v", err)
	}
	if line == "" {
		return
	}

	if _, err := frame.Parse(line); err != nil {
		b.invalid++
		log.Printf("invalid frame %q: %v", line, err)
		if !b.publishInvalid {
			return
		}
	}

	if err := b.pub.PublishFrame(line); err != nil {
		log.Printf("publish error: %v", err)
		return
	}
	b.published++
}

func logEntry(t time.Time, line string) string {
	return fmt.Sprintf("%s - RX_SERIAL: %s\n", t.UTC().Format(logTimeFormat), line)
}
