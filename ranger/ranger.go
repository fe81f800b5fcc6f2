// Package ranger takes distance readings from an HC-SR04 style ultrasonic
// sensor wired to one trigger output and one echo input.
package ranger

import (
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/gpio"
)

const (
	// DefaultSettle is held low before the trigger pulse for a clean rising edge.
	DefaultSettle = 3 * time.Microsecond
	// DefaultPulse is the trigger pulse width. The datasheet asks for at least 10µs.
	DefaultPulse = 10 * time.Microsecond
	// DefaultStartTimeout bounds the wait for the echo line to go high.
	DefaultStartTimeout = 10 * time.Millisecond
	// DefaultEchoTimeout bounds the echo pulse. The sensor answers "nothing in
	// range" with a pulse of about 38ms.
	DefaultEchoTimeout = 40 * time.Millisecond
)

var (
	// ErrEchoNotStarted means the echo line never went high. Seen when an
	// object is too close or the sensor does not answer.
	ErrEchoNotStarted = errors.New("echo did not start")
	// ErrEchoTimeout means the echo line went high but never came back low.
	ErrEchoTimeout = errors.New("timeout waiting for echo reading")
)

// Output is a line the finder drives. gpio.PinOut satisfies it.
type Output interface {
	Out(l gpio.Level) error
}

// Input is a line the finder senses. gpio.PinIn satisfies it.
type Input interface {
	Read() gpio.Level
}

// Measurer takes one reading per call.
type Measurer interface {
	Measure() (Reading, error)
}

// RangeFinder owns a trigger and an echo line for its lifetime.
type RangeFinder struct {
	trigger Output
	echo    Input

	settle       time.Duration
	pulse        time.Duration
	startTimeout time.Duration
	echoTimeout  time.Duration

	now  func() time.Time
	hold func(time.Duration)
	log  logrus.FieldLogger
}

// Option configures a RangeFinder.
type Option func(*RangeFinder)

// WithStartTimeout sets how long to wait for the echo pulse to begin.
func WithStartTimeout(d time.Duration) Option {
	return func(r *RangeFinder) { r.startTimeout = d }
}

// WithEchoTimeout sets the longest echo pulse accepted.
func WithEchoTimeout(d time.Duration) Option {
	return func(r *RangeFinder) { r.echoTimeout = d }
}

// WithSettle sets the low time before the trigger pulse.
func WithSettle(d time.Duration) Option {
	return func(r *RangeFinder) { r.settle = d }
}

// WithPulse sets the trigger pulse width.
func WithPulse(d time.Duration) Option {
	return func(r *RangeFinder) { r.pulse = d }
}

// WithClock replaces the monotonic clock and the microsecond hold used while
// firing the trigger.
func WithClock(now func() time.Time, hold func(time.Duration)) Option {
	return func(r *RangeFinder) {
		r.now = now
		r.hold = hold
	}
}

// WithLogger sets the logger used for per-reading debug output.
func WithLogger(l logrus.FieldLogger) Option {
	return func(r *RangeFinder) { r.log = l }
}

// New returns a RangeFinder on the given lines and drives the trigger low.
func New(trigger Output, echo Input, opts ...Option) (*RangeFinder, error) {
	if trigger == nil || echo == nil {
		return nil, errors.New("ranger: trigger and echo lines are required")
	}
	r := &RangeFinder{
		trigger:      trigger,
		echo:         echo,
		settle:       DefaultSettle,
		pulse:        DefaultPulse,
		startTimeout: DefaultStartTimeout,
		echoTimeout:  DefaultEchoTimeout,
		now:          time.Now,
		hold:         spin,
		log:          logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if err := r.trigger.Out(gpio.Low); err != nil {
		return nil, errors.Wrap(err, "ranger: drive trigger low")
	}
	return r, nil
}

// Measure fires the trigger and times the echo pulse. It returns
// ErrEchoNotStarted or ErrEchoTimeout when a wait phase runs out. The
// trigger line is low when Measure returns.
func (r *RangeFinder) Measure() (reading Reading, err error) {
	defer func() {
		if lerr := r.trigger.Out(gpio.Low); lerr != nil && err == nil {
			err = errors.Wrap(lerr, "ranger: release trigger")
		}
	}()

	if err := r.fire(); err != nil {
		return Reading{}, err
	}

	start, ok := r.await(gpio.High, r.startTimeout)
	if !ok {
		return Reading{}, ErrEchoNotStarted
	}
	end, ok := r.await(gpio.Low, r.echoTimeout)
	if !ok {
		return Reading{}, ErrEchoTimeout
	}

	reading = FromEcho(end.Sub(start))
	r.log.WithField("echo", reading.Echo).Debug("echo timed")
	return reading, nil
}

func (r *RangeFinder) fire() error {
	if err := r.trigger.Out(gpio.Low); err != nil {
		return errors.Wrap(err, "ranger: trigger low")
	}
	r.hold(r.settle)

	if err := r.trigger.Out(gpio.High); err != nil {
		return errors.Wrap(err, "ranger: trigger high")
	}
	r.hold(r.pulse)

	if err := r.trigger.Out(gpio.Low); err != nil {
		return errors.Wrap(err, "ranger: trigger low")
	}
	return nil
}

// await polls the echo line until it reads want or timeout elapses. It
// returns the time the level was observed.
func (r *RangeFinder) await(want gpio.Level, timeout time.Duration) (time.Time, bool) {
	deadline := r.now().Add(timeout)
	for {
		if r.echo.Read() == want {
			return r.now(), true
		}
		if r.now().After(deadline) {
			return time.Time{}, false
		}
	}
}

// spin busy-waits; time.Sleep cannot hold a few microseconds.
func spin(d time.Duration) {
	for start := time.Now(); time.Since(start) < d; {
	}
}
