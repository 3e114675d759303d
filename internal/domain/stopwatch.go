package domain

import "time"

// Lap is one recorded stopwatch split.
type Lap struct {
	Index int           `json:"index"`
	Time  time.Duration `json:"time"`
	Split time.Duration `json:"split"`
}

// Stopwatch accumulates running time across pauses and records laps.
// Like Engine it is driven by explicit timestamps and is not goroutine safe.
type Stopwatch struct {
	accumulated time.Duration
	startedAt   time.Time
	running     bool
	laps        []Lap
}

// Running reports whether the stopwatch is counting.
func (sw *Stopwatch) Running() bool {
	return sw.running
}

// Start resumes counting at now.
func (sw *Stopwatch) Start(now time.Time) {
	if sw.running {
		return
	}
	sw.startedAt = now
	sw.running = true
}

// Pause stops counting and keeps the accumulated time.
func (sw *Stopwatch) Pause(now time.Time) {
	if !sw.running {
		return
	}
	sw.accumulated += now.Sub(sw.startedAt)
	sw.running = false
}

// Toggle pauses a running stopwatch and starts a stopped one.
func (sw *Stopwatch) Toggle(now time.Time) {
	if sw.running {
		sw.Pause(now)
		return
	}
	sw.Start(now)
}

// Reset clears time and laps.
func (sw *Stopwatch) Reset() {
	*sw = Stopwatch{}
}

// Elapsed returns the total counted time at now.
func (sw *Stopwatch) Elapsed(now time.Time) time.Duration {
	if !sw.running {
		return sw.accumulated
	}
	return sw.accumulated + now.Sub(sw.startedAt)
}

// Lap records a split while running and returns it.
func (sw *Stopwatch) Lap(now time.Time) (Lap, bool) {
	if !sw.running {
		return Lap{}, false
	}
	elapsed := sw.Elapsed(now)
	split := elapsed
	if len(sw.laps) > 0 {
		split = elapsed - sw.laps[len(sw.laps)-1].Time
	}
	lap := Lap{Index: len(sw.laps) + 1, Time: elapsed, Split: split}
	sw.laps = append(sw.laps, lap)
	return lap, true
}

// Laps returns the recorded laps, newest first.
func (sw *Stopwatch) Laps() []Lap {
	out := make([]Lap, len(sw.laps))
	for i, lap := range sw.laps {
		out[len(sw.laps)-1-i] = lap
	}
	return out
}
