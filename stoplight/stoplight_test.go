package stoplight

import (
	"context"
	"errors"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
)

func TestSignalFor(t *testing.T) {
	c := qt.New(t)
	tests := []struct {
		cm   int64
		want Signal
	}{
		{400, Safe},
		{51, Safe},
		{50, Caution},
		{26, Caution},
		{25, Danger},
		{0, Danger},
		{-1, AllOff},
		{-5, AllOff},
	}
	for _, test := range tests {
		c.Check(SignalFor(test.cm), qt.Equals, test.want, qt.Commentf("cm=%d", test.cm))
	}
}

func TestSignalString(t *testing.T) {
	c := qt.New(t)
	c.Assert(Safe.String(), qt.Equals, "green")
	c.Assert(Caution.String(), qt.Equals, "yellow")
	c.Assert(Danger.String(), qt.Equals, "red")
	c.Assert(AllOff.String(), qt.Equals, "off")
	c.Assert(Signal(9).String(), qt.Equals, "unknown")
}

type pins struct {
	green, yellow, red *gpiotest.Pin
}

func newPins() pins {
	return pins{
		green:  &gpiotest.Pin{N: "green", L: gpio.High},
		yellow: &gpiotest.Pin{N: "yellow", L: gpio.High},
		red:    &gpiotest.Pin{N: "red", L: gpio.High},
	}
}

func (p pins) levels() [3]gpio.Level {
	return [3]gpio.Level{p.green.Read(), p.yellow.Read(), p.red.Read()}
}

func TestNewLightsStartsOff(t *testing.T) {
	c := qt.New(t)
	p := newPins()
	l, err := NewLights(p.green, p.yellow, p.red)
	c.Assert(err, qt.IsNil)
	c.Assert(p.levels(), qt.Equals, [3]gpio.Level{gpio.Low, gpio.Low, gpio.Low})
	c.Assert(l.Current(), qt.Equals, AllOff)
}

func TestNewLightsRequiresLines(t *testing.T) {
	c := qt.New(t)
	p := newPins()
	_, err := NewLights(p.green, nil, p.red)
	c.Assert(err, qt.ErrorMatches, "stoplight: green, yellow and red lines are required")
}

func TestShowLightsExactlyOne(t *testing.T) {
	c := qt.New(t)
	p := newPins()
	l, err := NewLights(p.green, p.yellow, p.red)
	c.Assert(err, qt.IsNil)

	want := map[Signal][3]gpio.Level{
		Safe:    {gpio.High, gpio.Low, gpio.Low},
		Caution: {gpio.Low, gpio.High, gpio.Low},
		Danger:  {gpio.Low, gpio.Low, gpio.High},
		AllOff:  {gpio.Low, gpio.Low, gpio.Low},
	}
	for _, s := range []Signal{Danger, Safe, Caution, AllOff, Caution} {
		c.Assert(l.Show(s), qt.IsNil)
		c.Assert(p.levels(), qt.Equals, want[s], qt.Commentf("signal %s", s))
		c.Assert(l.Current(), qt.Equals, s)
	}
}

type brokenPin struct{}

func (brokenPin) Out(gpio.Level) error { return errors.New("no such pin") }

func TestShowError(t *testing.T) {
	c := qt.New(t)
	p := newPins()
	l, err := NewLights(p.green, p.yellow, p.red)
	c.Assert(err, qt.IsNil)
	l.red = brokenPin{}

	err = l.Show(Danger)
	c.Assert(err, qt.ErrorMatches, "stoplight: show red: no such pin")
	c.Assert(l.Current(), qt.Equals, AllOff)
}

func TestShowErrorTurnsOff(t *testing.T) {
	c := qt.New(t)
	p := newPins()
	l, err := NewLights(p.green, p.yellow, p.red)
	c.Assert(err, qt.IsNil)
	c.Assert(l.Show(Caution), qt.IsNil)

	l.green = brokenPin{}
	err = l.Show(Safe)
	c.Assert(err, qt.ErrorMatches, "stoplight: show green: no such pin")
	// Yellow was never reached by the failed Show but is still turned off.
	c.Assert(p.yellow.Read(), qt.Equals, gpio.Low)
	c.Assert(p.red.Read(), qt.Equals, gpio.Low)
	c.Assert(l.Current(), qt.Equals, AllOff)
}

func TestSequencerRun(t *testing.T) {
	c := qt.New(t)
	p := newPins()
	l, err := NewLights(p.green, p.yellow, p.red)
	c.Assert(err, qt.IsNil)

	logger, _ := test.NewNullLogger()
	s := NewSequencer(l, logger)

	var holds []time.Duration
	var seen []Signal
	s.wait = func(ctx context.Context, d time.Duration) error {
		holds = append(holds, d)
		seen = append(seen, l.Current())
		return nil
	}

	c.Assert(s.Run(context.Background(), 2), qt.IsNil)
	c.Assert(seen, qt.DeepEquals, []Signal{Safe, Caution, Danger, Safe, Caution, Danger})
	c.Assert(holds, qt.DeepEquals, []time.Duration{
		time.Second, 2 * time.Second, 5 * time.Second,
		time.Second, 2 * time.Second, 5 * time.Second,
	})
	c.Assert(p.levels(), qt.Equals, [3]gpio.Level{gpio.Low, gpio.Low, gpio.Low})
}

func TestSequencerCancelledTurnsOff(t *testing.T) {
	c := qt.New(t)
	p := newPins()
	l, err := NewLights(p.green, p.yellow, p.red)
	c.Assert(err, qt.IsNil)

	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	s := NewSequencer(l, logger)
	s.Phases = []Phase{{Safe, time.Hour}, {Danger, time.Hour}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = s.Run(ctx, 5)
	c.Assert(err, qt.ErrorIs, context.Canceled)
	c.Assert(p.levels(), qt.Equals, [3]gpio.Level{gpio.Low, gpio.Low, gpio.Low})
	c.Assert(hook.AllEntries(), qt.HasLen, 1)
	c.Assert(hook.LastEntry().Data["signal"], qt.Equals, Safe)
}
