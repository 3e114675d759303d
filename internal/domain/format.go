package domain

import (
	"fmt"
	"math"
	"time"
)

// FormatHMS renders whole seconds as m:ss, or h:mm:ss past an hour.
func FormatHMS(seconds float64) string {
	s := int(math.Max(0, math.Floor(seconds)))
	h := s / 3600
	m := (s % 3600) / 60
	sec := s % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, sec)
	}
	return fmt.Sprintf("%d:%02d", m, sec)
}

// FormatClock renders a stopwatch reading as mm:ss.cc, or hh:mm:ss.cc past an hour.
func FormatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	ms := d.Milliseconds()
	total := ms / 1000
	cs := (ms % 1000) / 10
	m := total / 60
	h := m / 60
	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d.%02d", h, m%60, total%60, cs)
	}
	return fmt.Sprintf("%02d:%02d.%02d", m, total%60, cs)
}
