package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl"
)

// fileConfig is the optional HCL configuration file. Flags given on the
// command line take precedence; empty values in the file are ignored.
//
//	port        = "/dev/ttyUSB0"
//	period      = "1s"
//	mqtt_broker = "tcp://localhost:1883"
type fileConfig struct {
	Port      string `hcl:"port"`
	Baud      int    `hcl:"baud"`
	Period    string `hcl:"period"`
	Poll      string `hcl:"poll"`
	HTTP      string `hcl:"http"`
	Broker    string `hcl:"mqtt_broker"`
	Topic     string `hcl:"topic"`
	GPIO      bool   `hcl:"gpio"`
	Debounce  string `hcl:"debounce"`
	PinMotion int    `hcl:"pin_motion"`
	PinLight  int    `hcl:"pin_light"`
}

func loadConfigFile(path string) (fileConfig, error) {
	var fc fileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, fmt.Errorf("read config: %w", err)
	}
	if err := hcl.Unmarshal(b, &fc); err != nil {
		return fc, fmt.Errorf("parse config %s: %w", path, err)
	}
	return fc, nil
}

// setFlags returns the names of the flags given on the command line.
func setFlags(fs *flag.FlagSet) map[string]bool {
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set
}

// applyFile copies values from fc into cfg for every flag not in set.
func applyFile(cfg *config, fc fileConfig, set map[string]bool) error {
	str := func(name, v string, dst *string) {
		if v != "" && !set[name] {
			*dst = v
		}
	}
	num := func(name string, v int, dst *int) {
		if v != 0 && !set[name] {
			*dst = v
		}
	}
	dur := func(name, v string, dst *time.Duration) error {
		if v == "" || set[name] {
			return nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config %s: %w", name, err)
		}
		*dst = d
		return nil
	}

	str("port", fc.Port, &cfg.Port)
	num("baud", fc.Baud, &cfg.Baud)
	str("http", fc.HTTP, &cfg.HTTPAddr)
	str("mqtt-broker", fc.Broker, &cfg.Broker)
	str("topic", fc.Topic, &cfg.Topic)
	num("pin-motion", fc.PinMotion, &cfg.PinMotion)
	num("pin-light", fc.PinLight, &cfg.PinLight)
	if fc.GPIO && !set["gpio"] {
		cfg.GPIO = true
	}

	if err := dur("period", fc.Period, &cfg.Period); err != nil {
		return err
	}
	if err := dur("poll", fc.Poll, &cfg.Poll); err != nil {
		return err
	}
	return dur("debounce", fc.Debounce, &cfg.Debounce)
}
