package gpio

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/gpio"
)

// Backend names accepted in Config.Backend.
const (
	BackendPeriph = "periph"
	BackendRpio   = "rpio"
	BackendCdev   = "cdev"
	BackendSim    = "sim"
)

// Line is a provisioned pin. Outputs are driven with Out, inputs are sensed
// with Read.
type Line interface {
	String() string
	Out(l gpio.Level) error
	Read() gpio.Level
}

type driver interface {
	output(name string) (Line, error)
	input(name string) (Line, error)
	close() error
}

// Config selects the backend that owns the pins.
type Config struct {
	Backend string
	// Chip is the character device used by the cdev backend.
	Chip string
	Sim  SimConfig
}

// Board hands out lines from one backend and releases them together.
type Board struct {
	backend string
	drv     driver
	log     logrus.FieldLogger

	mu      sync.Mutex
	outputs []Line
	closed  bool
}

// Open initializes the backend named in cfg.
func Open(cfg Config, log logrus.FieldLogger) (*Board, error) {
	backend := cfg.Backend
	if backend == "" {
		backend = BackendPeriph
	}

	var (
		drv driver
		err error
	)
	switch backend {
	case BackendPeriph:
		drv, err = newPeriph(log)
	case BackendRpio:
		drv, err = newRpio()
	case BackendCdev:
		drv, err = newCdev(cfg.Chip)
	case BackendSim:
		drv = newSim(cfg.Sim, log)
	default:
		return nil, errors.Errorf("gpio: unknown backend %q", backend)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "gpio: open %s", backend)
	}

	log.WithField("backend", backend).Info("GPIO initialized")
	return &Board{backend: backend, drv: drv, log: log}, nil
}

// Output provisions name as an output driven low.
func (b *Board) Output(name string) (Line, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, errors.New("gpio: board closed")
	}

	l, err := b.drv.output(name)
	if err != nil {
		return nil, errors.Wrapf(err, "gpio: output %s", name)
	}
	if err := l.Out(gpio.Low); err != nil {
		return nil, errors.Wrapf(err, "gpio: drive %s low", name)
	}
	b.outputs = append(b.outputs, l)
	b.log.WithField("pin", l.String()).Debug("output provisioned")
	return l, nil
}

// Input provisions name as a pulled-down input.
func (b *Board) Input(name string) (Line, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, errors.New("gpio: board closed")
	}

	l, err := b.drv.input(name)
	if err != nil {
		return nil, errors.Wrapf(err, "gpio: input %s", name)
	}
	b.log.WithField("pin", l.String()).Debug("input provisioned")
	return l, nil
}

// Close drives every output low and releases the backend. Calling it
// again does nothing.
func (b *Board) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true

	var first error
	for _, l := range b.outputs {
		if err := l.Out(gpio.Low); err != nil && first == nil {
			first = errors.Wrapf(err, "gpio: drive %s low", l)
		}
	}
	if err := b.drv.close(); err != nil && first == nil {
		first = errors.Wrapf(err, "gpio: close %s", b.backend)
	}
	b.log.WithField("backend", b.backend).Info("GPIO released")
	return first
}
