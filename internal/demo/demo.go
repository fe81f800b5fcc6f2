// Package demo runs the stop-light and ultrasonic demos against a board.
package demo

import (
	"context"
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/joeyede/pi-stoplight/config"
	"github.com/joeyede/pi-stoplight/gpio"
	"github.com/joeyede/pi-stoplight/ranger"
	"github.com/joeyede/pi-stoplight/stoplight"
)

// Blink cycles the stop light cfg.Cycles times and leaves it dark.
func Blink(ctx context.Context, cfg config.Config, log logrus.FieldLogger) (err error) {
	board, err := gpio.Open(cfg.GPIO(), log)
	if err != nil {
		return err
	}
	defer closeBoard(board, &err)

	lights, err := openLights(board, cfg)
	if err != nil {
		return err
	}
	return stoplight.NewSequencer(lights, log).Run(ctx, cfg.Cycles)
}

// RangeTest prints cfg.Readings distance readings to out.
func RangeTest(ctx context.Context, cfg config.Config, out io.Writer, log logrus.FieldLogger) (err error) {
	board, err := gpio.Open(cfg.GPIO(), log)
	if err != nil {
		return err
	}
	defer closeBoard(board, &err)

	finder, err := openFinder(board, cfg, log)
	if err != nil {
		return err
	}
	return ranger.Repeat(ctx, finder, cfg.Readings, cfg.Interval, func(i int, r ranger.Reading, err error) {
		r, err = ranger.Resolve(r, err)
		if err != nil {
			logReadingError(log, i, err)
			return
		}
		fmt.Fprintln(out, r)
	})
}

// RangeLights prints readings like RangeTest and shows the matching signal
// on the stop light. The lights are turned off before returning.
func RangeLights(ctx context.Context, cfg config.Config, out io.Writer, log logrus.FieldLogger) (err error) {
	board, err := gpio.Open(cfg.GPIO(), log)
	if err != nil {
		return err
	}
	defer closeBoard(board, &err)

	lights, err := openLights(board, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if oerr := lights.Off(); oerr != nil && err == nil {
			err = oerr
		}
	}()

	finder, err := openFinder(board, cfg, log)
	if err != nil {
		return err
	}
	return ranger.Repeat(ctx, finder, cfg.Readings, cfg.Interval, func(i int, r ranger.Reading, err error) {
		r, err = ranger.Resolve(r, err)
		if err != nil {
			// Keep whatever is lit; the next cycle will correct it.
			logReadingError(log, i, err)
			return
		}
		if err := lights.Show(stoplight.SignalFor(r.Centimeters)); err != nil {
			log.WithError(err).WithField("cycle", i).Error("Failed to update lights")
		}
		fmt.Fprintln(out, r)
	})
}

func openLights(board *gpio.Board, cfg config.Config) (*stoplight.Lights, error) {
	green, err := board.Output(cfg.GreenPin)
	if err != nil {
		return nil, err
	}
	yellow, err := board.Output(cfg.YellowPin)
	if err != nil {
		return nil, err
	}
	red, err := board.Output(cfg.RedPin)
	if err != nil {
		return nil, err
	}
	return stoplight.NewLights(green, yellow, red)
}

func openFinder(board *gpio.Board, cfg config.Config, log logrus.FieldLogger) (*ranger.RangeFinder, error) {
	trigger, err := board.Output(cfg.TriggerPin)
	if err != nil {
		return nil, err
	}
	echo, err := board.Input(cfg.EchoPin)
	if err != nil {
		return nil, err
	}
	return ranger.New(trigger, echo, ranger.WithLogger(log))
}

func logReadingError(log logrus.FieldLogger, cycle int, err error) {
	entry := log.WithError(err).WithField("cycle", cycle)
	if errors.Is(err, ranger.ErrEchoTimeout) {
		entry.Warn("No reading")
		return
	}
	entry.Error("Reading failed")
}

func closeBoard(b *gpio.Board, err *error) {
	if cerr := b.Close(); cerr != nil && *err == nil {
		*err = cerr
	}
}
