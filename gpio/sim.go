package gpio

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/gpio"
)

// SimConfig describes the sensor the sim backend pretends is wired up.
type SimConfig struct {
	// Trigger and Echo name the pins the simulated HC-SR04 sits on.
	Trigger string
	Echo    string
	// Distance is the simulated object distance in centimeters. Zero or less
	// means the sensor never answers.
	Distance int
}

// Echo timing of the simulated sensor.
const (
	simLatency       = 200 * time.Microsecond
	simPerCentimeter = 58 * time.Microsecond // 29µs each way
)

// simDriver stands in for real pins on a desktop.
type simDriver struct {
	cfg    SimConfig
	log    logrus.FieldLogger
	sensor *simSensor
}

func newSim(cfg SimConfig, log logrus.FieldLogger) *simDriver {
	log.WithField("distance", cfg.Distance).Info("Initializing simulated GPIO")
	return &simDriver{
		cfg:    cfg,
		log:    log,
		sensor: &simSensor{distance: cfg.Distance, now: time.Now},
	}
}

func (d *simDriver) output(name string) (Line, error) {
	p := &simPin{name: name, log: d.log}
	if name == d.cfg.Trigger {
		p.onFall = d.sensor.ping
	}
	return p, nil
}

func (d *simDriver) input(name string) (Line, error) {
	if name == d.cfg.Echo {
		return &simEcho{name: name, sensor: d.sensor}, nil
	}
	return &simPin{name: name, log: d.log}, nil
}

func (d *simDriver) close() error {
	d.log.Debug("simulated GPIO closed")
	return nil
}

type simPin struct {
	name   string
	log    logrus.FieldLogger
	onFall func()

	mu    sync.Mutex
	level gpio.Level
}

func (p *simPin) String() string {
	return p.name
}

func (p *simPin) Out(l gpio.Level) error {
	p.mu.Lock()
	prev := p.level
	p.level = l
	p.mu.Unlock()

	if prev == l {
		return nil
	}
	if p.onFall != nil && prev == gpio.High {
		p.onFall()
		return nil
	}
	if p.onFall == nil {
		p.log.WithFields(logrus.Fields{"pin": p.name, "level": l}).Debug("sim: pin changed")
	}
	return nil
}

func (p *simPin) Read() gpio.Level {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.level
}

// simSensor answers each trigger pulse with one echo pulse whose width
// matches the configured distance.
type simSensor struct {
	distance int
	now      func() time.Time

	mu   sync.Mutex
	fell time.Time
}

func (s *simSensor) ping() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fell = s.now()
}

func (s *simSensor) level() gpio.Level {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.distance <= 0 || s.fell.IsZero() {
		return gpio.Low
	}
	rise := s.fell.Add(simLatency)
	fall := rise.Add(time.Duration(s.distance) * simPerCentimeter)
	now := s.now()
	return gpio.Level(!now.Before(rise) && now.Before(fall))
}

type simEcho struct {
	name   string
	sensor *simSensor
}

func (e *simEcho) String() string {
	return e.name
}

// Out on an input does nothing.
func (e *simEcho) Out(gpio.Level) error {
	return nil
}

func (e *simEcho) Read() gpio.Level {
	return e.sensor.level()
}
