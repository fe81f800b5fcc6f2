package gpio

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
	"periph.io/x/host/v3/rpi"
)

type periphDriver struct {
	pins []gpio.PinIO
}

func newPeriph(log logrus.FieldLogger) (driver, error) {
	// Initialize host
	if _, err := host.Init(); err != nil {
		return nil, err
	}
	if !rpi.Present() {
		log.Warn("host is not a Raspberry Pi; pin names may not resolve")
	}
	return &periphDriver{}, nil
}

func (d *periphDriver) lookup(name string) (gpio.PinIO, error) {
	// Header positions go through their BCM name; anything else is left to
	// the registry so aliases keep working.
	reg := name
	if bcm, err := BCM(name); err == nil {
		reg = fmt.Sprintf("GPIO%d", bcm)
	}
	p := gpioreg.ByName(reg)
	if p == nil {
		return nil, errors.Errorf("no GPIO pin named %s", name)
	}
	d.pins = append(d.pins, p)
	return p, nil
}

func (d *periphDriver) output(name string) (Line, error) {
	p, err := d.lookup(name)
	if err != nil {
		return nil, err
	}
	if err := p.Out(gpio.Low); err != nil {
		return nil, err
	}
	return p, nil
}

func (d *periphDriver) input(name string) (Line, error) {
	p, err := d.lookup(name)
	if err != nil {
		return nil, err
	}
	if err := p.In(gpio.PullDown, gpio.NoEdge); err != nil {
		return nil, err
	}
	return p, nil
}

func (d *periphDriver) close() error {
	var first error
	for _, p := range d.pins {
		if err := p.Halt(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
