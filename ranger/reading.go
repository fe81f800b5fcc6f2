package ranger

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
)

const (
	// Sound covers an inch in 73.746µs (1130 ft/s).
	microsecondsPerInch = 73.746
	// and a centimeter in 29µs (340 m/s).
	microsecondsPerCentimeter = 29

	tooCloseMessage = "DANGER WILL ROBINSON! TOO CLOSE!"
)

// Reading is one distance measurement. The echo covers the round trip, so
// distances are half of what the echo time represents.
type Reading struct {
	Echo        time.Duration
	Inches      int64
	Centimeters int64
	// TooClose marks the sentinel returned when no echo started.
	TooClose bool
}

func (r Reading) String() string {
	if r.TooClose {
		return tooCloseMessage
	}
	return fmt.Sprintf("%din, %dcm", r.Inches, r.Centimeters)
}

// Inches converts an echo time in microseconds, truncating.
func Inches(us int64) int64 {
	return int64(float64(us) / microsecondsPerInch / 2)
}

// Centimeters converts an echo time in microseconds, truncating.
func Centimeters(us int64) int64 {
	return us / microsecondsPerCentimeter / 2
}

// FromEcho builds a Reading from a measured echo pulse. Sub-microsecond
// remainders are dropped.
func FromEcho(d time.Duration) Reading {
	us := d.Microseconds()
	return Reading{
		Echo:        d,
		Inches:      Inches(us),
		Centimeters: Centimeters(us),
	}
}

// NoReading is the sentinel used in place of a reading when the echo never
// started. It counts as zero distance.
func NoReading() Reading {
	return Reading{TooClose: true}
}

// Resolve turns ErrEchoNotStarted into NoReading. Every other error is
// returned unchanged.
func Resolve(r Reading, err error) (Reading, error) {
	if errors.Is(err, ErrEchoNotStarted) {
		return NoReading(), nil
	}
	return r, err
}
