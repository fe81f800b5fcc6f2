//go:build linux
// +build linux

package gpio

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/stianeikeland/go-rpio/v4"
	"periph.io/x/conn/v3/gpio"
)

// rpioDriver maps the GPIO registers through /dev/gpiomem.
type rpioDriver struct{}

func newRpio() (driver, error) {
	if err := rpio.Open(); err != nil {
		return nil, err
	}
	return rpioDriver{}, nil
}

func (rpioDriver) pin(name string) (rpio.Pin, error) {
	bcm, err := BCM(name)
	if err != nil {
		return 0, err
	}
	return rpio.Pin(bcm), nil
}

func (d rpioDriver) output(name string) (Line, error) {
	p, err := d.pin(name)
	if err != nil {
		return nil, err
	}
	p.Output()
	p.Low()
	return rpioLine{p}, nil
}

func (d rpioDriver) input(name string) (Line, error) {
	p, err := d.pin(name)
	if err != nil {
		return nil, err
	}
	p.Input()
	p.PullDown()
	return rpioLine{p}, nil
}

func (rpioDriver) close() error {
	return errors.Wrap(rpio.Close(), "rpio: close")
}

type rpioLine struct {
	pin rpio.Pin
}

func (l rpioLine) String() string {
	return fmt.Sprintf("GPIO%d", uint8(l.pin))
}

func (l rpioLine) Out(level gpio.Level) error {
	if level {
		l.pin.High()
	} else {
		l.pin.Low()
	}
	return nil
}

func (l rpioLine) Read() gpio.Level {
	return l.pin.Read() == rpio.High
}
