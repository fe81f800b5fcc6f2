//go:build linux
// +build linux

package gpio

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/warthog618/go-gpiocdev"
	"periph.io/x/conn/v3/gpio"
)

const consumer = "pi-stoplight"

// DefaultChip is the character device carrying the header GPIOs.
const DefaultChip = "gpiochip0"

type cdevDriver struct {
	chip  *gpiocdev.Chip
	lines []*gpiocdev.Line
}

func newCdev(chip string) (driver, error) {
	if chip == "" {
		chip = DefaultChip
	}
	c, err := gpiocdev.NewChip(chip, gpiocdev.WithConsumer(consumer))
	if err != nil {
		return nil, err
	}
	return &cdevDriver{chip: c}, nil
}

func (d *cdevDriver) request(name string, opts ...gpiocdev.LineReqOption) (Line, error) {
	offset, err := BCM(name)
	if err != nil {
		return nil, err
	}
	l, err := d.chip.RequestLine(offset, opts...)
	if err != nil {
		return nil, err
	}
	d.lines = append(d.lines, l)
	return &cdevLine{line: l, name: fmt.Sprintf("%s:%d", d.chip.Name, offset)}, nil
}

func (d *cdevDriver) output(name string) (Line, error) {
	return d.request(name, gpiocdev.AsOutput(0))
}

func (d *cdevDriver) input(name string) (Line, error) {
	return d.request(name, gpiocdev.AsInput, gpiocdev.WithPullDown)
}

func (d *cdevDriver) close() error {
	var first error
	for _, l := range d.lines {
		// revert line to input on the way out.
		if err := l.Reconfigure(gpiocdev.AsInput); err != nil && first == nil {
			first = errors.Wrap(err, "revert line")
		}
		if err := l.Close(); err != nil && first == nil {
			first = err
		}
	}
	if err := d.chip.Close(); err != nil && first == nil {
		first = errors.Wrap(err, "close chip")
	}
	return first
}

type cdevLine struct {
	line *gpiocdev.Line
	name string
}

func (l *cdevLine) String() string {
	return l.name
}

func (l *cdevLine) Out(level gpio.Level) error {
	v := 0
	if level {
		v = 1
	}
	return l.line.SetValue(v)
}

// Read reports Low when the line cannot be read.
func (l *cdevLine) Read() gpio.Level {
	v, err := l.line.Value()
	if err != nil {
		return gpio.Low
	}
	return v == 1
}
