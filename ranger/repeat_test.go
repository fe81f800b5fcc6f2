package ranger

import (
	"context"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
)

type scripted struct {
	results []error
	calls   int
}

func (s *scripted) Measure() (Reading, error) {
	err := s.results[s.calls%len(s.results)]
	s.calls++
	if err != nil {
		return Reading{}, err
	}
	return FromEcho(time.Millisecond), nil
}

func TestRepeatKeepsGoingOnErrors(t *testing.T) {
	c := qt.New(t)
	m := &scripted{results: []error{nil, ErrEchoNotStarted, ErrEchoTimeout}}

	var got []error
	err := Repeat(context.Background(), m, 7, time.Microsecond, func(i int, r Reading, err error) {
		c.Check(i, qt.Equals, len(got))
		got = append(got, err)
	})
	c.Assert(err, qt.IsNil)
	c.Assert(m.calls, qt.Equals, 7)
	c.Assert(got[1], qt.ErrorIs, ErrEchoNotStarted)
	c.Assert(got[2], qt.ErrorIs, ErrEchoTimeout)
	c.Assert(got[6], qt.IsNil)
}

func TestRepeatCancelled(t *testing.T) {
	c := qt.New(t)
	m := &scripted{results: []error{nil}}
	ctx, cancel := context.WithCancel(context.Background())

	err := Repeat(ctx, m, 200, time.Hour, func(i int, r Reading, err error) {
		cancel()
	})
	c.Assert(err, qt.ErrorIs, context.Canceled)
	c.Assert(m.calls, qt.Equals, 1)
}

func TestRepeatZero(t *testing.T) {
	c := qt.New(t)
	m := &scripted{results: []error{nil}}
	err := Repeat(context.Background(), m, 0, time.Hour, func(int, Reading, error) {
		c.Fatal("unexpected reading")
	})
	c.Assert(err, qt.IsNil)
	c.Assert(m.calls, qt.Equals, 0)
}
