package stoplight

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Phase holds one signal for a while.
type Phase struct {
	Signal Signal
	Hold   time.Duration
}

// DefaultSequence is green for a second, yellow for two, red for five.
var DefaultSequence = []Phase{
	{Safe, time.Second},
	{Caution, 2 * time.Second},
	{Danger, 5 * time.Second},
}

// Sequencer cycles Lights through a list of phases.
type Sequencer struct {
	Lights *Lights
	Phases []Phase
	Log    logrus.FieldLogger

	wait func(context.Context, time.Duration) error
}

// NewSequencer returns a Sequencer running DefaultSequence.
func NewSequencer(l *Lights, log logrus.FieldLogger) *Sequencer {
	return &Sequencer{
		Lights: l,
		Phases: DefaultSequence,
		Log:    log,
		wait:   sleep,
	}
}

// Run shows every phase in order, cycles times. All LEDs are off when Run
// returns, including when ctx is cancelled part way.
func (s *Sequencer) Run(ctx context.Context, cycles int) (err error) {
	defer func() {
		if oerr := s.Lights.Off(); oerr != nil && err == nil {
			err = oerr
		}
	}()

	if err := s.Lights.Off(); err != nil {
		return err
	}
	for cycle := 0; cycle < cycles; cycle++ {
		for _, p := range s.Phases {
			if err := s.Lights.Show(p.Signal); err != nil {
				return err
			}
			s.Log.WithFields(logrus.Fields{
				"cycle":  cycle,
				"signal": p.Signal,
			}).Debug("phase")
			if err := s.wait(ctx, p.Hold); err != nil {
				return err
			}
		}
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
