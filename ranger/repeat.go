package ranger

import (
	"context"
	"time"
)

// Repeat takes n readings from m, one every interval, and hands each result
// to fn. Reading errors never stop the loop. Repeat returns early with the
// context's error if ctx is done between readings.
func Repeat(ctx context.Context, m Measurer, n int, every time.Duration, fn func(i int, r Reading, err error)) error {
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		r, err := m.Measure()
		fn(i, r, err)

		if i == n-1 {
			break
		}
		t := time.NewTimer(every)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
	return nil
}
