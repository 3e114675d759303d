package clock

import (
	"time"

	"hangtimer/internal/domain"
)

// System implements domain.Clock with the wall clock. time.Now carries a
// monotonic reading, so engine durations are immune to clock adjustments.
type System struct{}

// Now returns time.Now().
func (System) Now() time.Time {
	return time.Now()
}

// NewTicker wraps time.NewTicker.
func (System) NewTicker(d time.Duration) domain.Ticker {
	return systemTicker{time.NewTicker(d)}
}

type systemTicker struct {
	t *time.Ticker
}

func (s systemTicker) C() <-chan time.Time { return s.t.C }
func (s systemTicker) Stop()               { s.t.Stop() }
