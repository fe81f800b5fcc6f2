// Command rangetest prints distance readings from an HC-SR04 sensor.
package main

import (
	"context"
	"flag"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/joeyede/pi-stoplight/config"
	"github.com/joeyede/pi-stoplight/internal/demo"
)

func main() {
	os.Exit(run(os.Args, os.Stdout, os.Stderr))
}

// run returns the exit code so deferred cleanup happens before the process
// exits.
func run(args []string, stdout, stderr io.Writer) int {
	cfg, err := config.Load(args[0], args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return 2
	}
	if err != nil {
		log := logrus.New()
		log.SetOutput(stderr)
		log.WithError(err).Error("Invalid configuration")
		return 1
	}
	log := cfg.Logger(stderr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := demo.RangeTest(ctx, cfg, stdout, log); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Error("Range test failed")
		return 1
	}
	return 0
}
