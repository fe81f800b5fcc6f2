// Package config loads the settings shared by the demo programs from flags,
// falling back to PI_* environment variables and then to defaults.
package config

import (
	"flag"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/joeyede/pi-stoplight/gpio"
)

// Default pins are header positions; the BCM number follows each one.
const (
	DefaultTriggerPin = "P1_3"  // GPIO2
	DefaultEchoPin    = "P1_24" // GPIO8
	DefaultGreenPin   = "P1_21" // GPIO9
	DefaultYellowPin  = "P1_26" // GPIO7
	DefaultRedPin     = "P1_5"  // GPIO3
)

// Config holds runtime settings.
type Config struct {
	Backend string
	Chip    string

	TriggerPin string
	EchoPin    string
	GreenPin   string
	YellowPin  string
	RedPin     string

	Readings int           // ranging cycles to run
	Interval time.Duration // delay between ranging cycles
	Cycles   int           // stop-light sequences to run

	LogLevel    logrus.Level
	SimDistance int // centimeters, sim backend only
}

// Load parses args for the program called name.
func Load(name string, args []string) (Config, error) {
	var (
		cfg      Config
		interval string
		level    string
	)

	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.StringVar(&cfg.Backend, "backend", getEnv("PI_GPIO_BACKEND", gpio.BackendPeriph), "GPIO backend (periph/rpio/cdev/sim)")
	fs.StringVar(&cfg.Chip, "chip", getEnv("PI_GPIO_CHIP", gpio.DefaultChip), "GPIO character device for the cdev backend")
	fs.StringVar(&cfg.TriggerPin, "trigger", getEnv("PI_TRIGGER_PIN", DefaultTriggerPin), "sensor trigger pin")
	fs.StringVar(&cfg.EchoPin, "echo", getEnv("PI_ECHO_PIN", DefaultEchoPin), "sensor echo pin")
	fs.StringVar(&cfg.GreenPin, "green", getEnv("PI_GREEN_PIN", DefaultGreenPin), "green LED pin")
	fs.StringVar(&cfg.YellowPin, "yellow", getEnv("PI_YELLOW_PIN", DefaultYellowPin), "yellow LED pin")
	fs.StringVar(&cfg.RedPin, "red", getEnv("PI_RED_PIN", DefaultRedPin), "red LED pin")
	fs.StringVar(&interval, "interval", getEnv("PI_INTERVAL", "100ms"), "delay between readings")
	fs.StringVar(&level, "log-level", getEnv("PI_LOG_LEVEL", "info"), "log level")

	readings, err := getEnvInt("PI_READINGS", 200)
	if err != nil {
		return cfg, err
	}
	cycles, err := getEnvInt("PI_CYCLES", 5)
	if err != nil {
		return cfg, err
	}
	distance, err := getEnvInt("PI_SIM_DISTANCE", 80)
	if err != nil {
		return cfg, err
	}
	fs.IntVar(&cfg.Readings, "count", readings, "number of readings")
	fs.IntVar(&cfg.Cycles, "cycles", cycles, "number of stop-light cycles")
	fs.IntVar(&cfg.SimDistance, "sim-distance", distance, "simulated distance in cm (sim backend)")

	if err := fs.Parse(args); err != nil {
		return cfg, err
	}

	if cfg.Interval, err = time.ParseDuration(interval); err != nil {
		return cfg, errors.Wrap(err, "interval")
	}
	if cfg.Interval < 0 {
		return cfg, errors.Errorf("interval %s is negative", cfg.Interval)
	}
	if cfg.LogLevel, err = logrus.ParseLevel(level); err != nil {
		return cfg, errors.Wrap(err, "log level")
	}
	if cfg.Readings < 0 {
		return cfg, errors.Errorf("count %d is negative", cfg.Readings)
	}
	if cfg.Cycles < 0 {
		return cfg, errors.Errorf("cycles %d is negative", cfg.Cycles)
	}
	return cfg, nil
}

// GPIO returns the board configuration.
func (c Config) GPIO() gpio.Config {
	return gpio.Config{
		Backend: c.Backend,
		Chip:    c.Chip,
		Sim: gpio.SimConfig{
			Trigger:  c.TriggerPin,
			Echo:     c.EchoPin,
			Distance: c.SimDistance,
		},
	}
}

// Logger returns a logger writing to w at the configured level.
func (c Config) Logger(w io.Writer) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(w)
	log.SetLevel(c.LogLevel)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return log
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.Wrapf(err, "%s", key)
	}
	return n, nil
}
