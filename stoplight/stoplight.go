// Package stoplight drives a green, yellow and red LED as a traffic light.
package stoplight

import (
	"github.com/pkg/errors"
	"periph.io/x/conn/v3/gpio"
)

// Signal is the light currently shown. At most one LED is lit.
type Signal int

const (
	AllOff Signal = iota
	Safe
	Caution
	Danger
)

func (s Signal) String() string {
	switch s {
	case AllOff:
		return "off"
	case Safe:
		return "green"
	case Caution:
		return "yellow"
	case Danger:
		return "red"
	}
	return "unknown"
}

// SignalFor maps a distance in centimeters to a signal. Negative distances
// are invalid and turn everything off.
func SignalFor(cm int64) Signal {
	switch {
	case cm > 50:
		return Safe
	case cm > 25:
		return Caution
	case cm > -1:
		return Danger
	default:
		return AllOff
	}
}

// Output is one LED line. gpio.PinOut satisfies it.
type Output interface {
	Out(l gpio.Level) error
}

// Lights is a set of three LEDs.
type Lights struct {
	green   Output
	yellow  Output
	red     Output
	current Signal
}

// NewLights returns Lights on the given lines with every LED off.
func NewLights(green, yellow, red Output) (*Lights, error) {
	if green == nil || yellow == nil || red == nil {
		return nil, errors.New("stoplight: green, yellow and red lines are required")
	}
	l := &Lights{green: green, yellow: yellow, red: red}
	if err := l.Off(); err != nil {
		return nil, err
	}
	return l, nil
}

// Show lights the LED for s and turns the other two off. If a line fails,
// every LED that can still be driven is turned off and Current reports
// AllOff.
func (l *Lights) Show(s Signal) error {
	levels := [3]gpio.Level{s == Safe, s == Caution, s == Danger}
	outs := []Output{l.green, l.yellow, l.red}
	for i, out := range outs {
		if err := out.Out(levels[i]); err != nil {
			for _, o := range outs {
				_ = o.Out(gpio.Low)
			}
			l.current = AllOff
			return errors.Wrapf(err, "stoplight: show %s", s)
		}
	}
	l.current = s
	return nil
}

// Off turns every LED off.
func (l *Lights) Off() error {
	return l.Show(AllOff)
}

// Current returns the last signal shown.
func (l *Lights) Current() Signal {
	return l.current
}
