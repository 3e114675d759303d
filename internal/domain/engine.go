package domain

import (
	"math"
	"time"
)

// State represents the current engine mode.
type State string

const (
	StateIdle     State = "idle"
	StateRunning  State = "running"
	StatePaused   State = "paused"
	StateFinished State = "finished"
)

// Options tune engine behaviour that differs between timer flavours.
type Options struct {
	// CountdownInPrepare enables 3-2-1 cues at the end of prepare segments.
	CountdownInPrepare bool
	// CatchUp lets a single tick advance through every segment it spans
	// instead of one transition per tick.
	CatchUp bool
	// RestartThreshold is the elapsed time above which SkipBackward restarts
	// the current segment instead of retreating.
	RestartThreshold time.Duration
}

// DefaultOptions returns the options used when none are configured.
func DefaultOptions() Options {
	return Options{
		CountdownInPrepare: true,
		RestartThreshold:   time.Second,
	}
}

const countdownFrom = 3

// Engine walks a segment sequence in wall-clock time.
//
// Engine is not safe for concurrent use: ticks and control calls must be
// serialized by the caller onto a single loop. Control methods never fail;
// calls that are invalid in the current state are no-ops.
type Engine struct {
	sequence []Segment
	options  Options
	sink     Notifier

	running     bool
	started     bool
	finished    bool
	index       int
	elapsed     float64
	accumulated float64
	anchor      time.Time

	// lastSecond is the ceiling of the remaining time last evaluated for
	// countdown cues in the current segment.
	lastSecond   int
	announced    SegmentKind
	hasAnnounced bool
}

// NewEngine creates an idle engine over seq. sink may be nil.
func NewEngine(seq []Segment, options Options, sink Notifier) *Engine {
	if options.RestartThreshold <= 0 {
		options.RestartThreshold = time.Second
	}
	engine := &Engine{
		sequence: seq,
		options:  options,
		sink:     sink,
	}
	engine.HardReset()
	return engine
}

// SetOptions replaces the options without touching position.
func (e *Engine) SetOptions(options Options) {
	if options.RestartThreshold <= 0 {
		options.RestartThreshold = time.Second
	}
	e.options = options
}

// Options returns the active options.
func (e *Engine) Options() Options {
	return e.options
}

// Load replaces the sequence and hard-resets the engine.
func (e *Engine) Load(seq []Segment) {
	e.sequence = seq
	e.HardReset()
}

// Sequence returns the segments the engine walks.
func (e *Engine) Sequence() []Segment {
	return e.sequence
}

// State reports the engine mode.
func (e *Engine) State() State {
	switch {
	case e.finished:
		return StateFinished
	case e.running:
		return StateRunning
	case e.started:
		return StatePaused
	default:
		return StateIdle
	}
}

// Start begins or resumes the current segment.
func (e *Engine) Start(now time.Time) {
	if e.running || e.finished || e.index >= len(e.sequence) {
		return
	}
	e.running = true
	e.started = true
	e.anchor = now.Add(-secondsToDuration(e.elapsed))
}

// Pause freezes the elapsed time of the current segment.
func (e *Engine) Pause(now time.Time) {
	if !e.running {
		return
	}
	e.elapsed = e.liveElapsed(now)
	e.running = false
}

// Toggle pauses a running engine and starts any other.
func (e *Engine) Toggle(now time.Time) {
	if e.running {
		e.Pause(now)
		return
	}
	e.Start(now)
}

// Tick advances the engine to now. It does nothing unless running.
func (e *Engine) Tick(now time.Time) {
	flush := true
	for e.running {
		if e.index >= len(e.sequence) {
			e.running = false
			return
		}
		seg := e.sequence[e.index]
		e.announce(seg, now)

		duration := float64(seg.Seconds)
		elapsed := math.Max(0, now.Sub(e.anchor).Seconds())
		if elapsed < duration {
			e.elapsed = elapsed
			e.countdown(seg, int(math.Ceil(duration-elapsed)), now)
			return
		}

		if flush {
			e.countdown(seg, 0, now)
		}
		carried := e.anchor.Add(seg.Duration())
		e.advance(now)
		if !e.options.CatchUp {
			return
		}
		e.anchor = carried
		flush = false
	}
}

// SkipForward moves to the start of the next segment. Skipping past the last
// segment finishes the sequence.
func (e *Engine) SkipForward(now time.Time) {
	if !e.started || e.finished {
		return
	}
	if e.index+1 >= len(e.sequence) {
		e.index = len(e.sequence)
		e.elapsed = 0
		e.accumulated = secondsBefore(e.sequence, e.index)
		e.finish(now)
		return
	}
	e.moveTo(e.index+1, now)
}

// SkipBackward restarts the current segment when more than the restart
// threshold has elapsed, and otherwise moves to the previous segment.
func (e *Engine) SkipBackward(now time.Time) {
	if !e.started {
		return
	}
	if !e.finished && e.liveElapsed(now) > e.options.RestartThreshold.Seconds() {
		e.elapsed = 0
		e.anchor = now
		e.resetCountdown()
		return
	}
	e.finished = false
	index := e.index - 1
	if index < 0 {
		index = 0
	}
	e.moveTo(index, now)
}

// HardReset returns the engine to idle at the first segment.
func (e *Engine) HardReset() {
	e.running = false
	e.started = false
	e.finished = false
	e.index = 0
	e.elapsed = 0
	e.accumulated = 0
	e.anchor = time.Time{}
	e.hasAnnounced = false
	e.resetCountdown()
}

// Snapshot returns the state as of the last tick or control call.
func (e *Engine) Snapshot() Snapshot {
	snap := Snapshot{
		State:                    e.State(),
		Running:                  e.running,
		Finished:                 e.finished,
		SegmentIndex:             e.index,
		SegmentCount:             len(e.sequence),
		ElapsedInSegment:         e.elapsed,
		AccumulatedBeforeSegment: e.accumulated,
		TotalSeconds:             TotalSeconds(e.sequence),
	}
	if e.index < len(e.sequence) {
		seg := e.sequence[e.index]
		snap.Segment = &seg
		if seg.Seconds > 0 {
			snap.SegmentProgress = math.Min(1, e.elapsed/float64(seg.Seconds))
		}
	}
	if e.index+1 < len(e.sequence) {
		next := e.sequence[e.index+1]
		snap.Next = &next
	}
	if snap.TotalSeconds > 0 {
		snap.OverallProgress = math.Min(1, (e.accumulated+e.elapsed)/float64(snap.TotalSeconds))
	}
	return snap
}

func (e *Engine) advance(now time.Time) {
	seg := e.sequence[e.index]
	e.accumulated += float64(seg.Seconds)
	e.elapsed = 0
	e.anchor = now
	e.index++
	if e.index >= len(e.sequence) {
		e.finish(now)
		return
	}
	e.resetCountdown()
	next := e.sequence[e.index]
	e.startEvent(next, now)
}

func (e *Engine) finish(now time.Time) {
	e.running = false
	e.finished = true
	e.resetCountdown()
	e.emit(Event{Type: EventSequenceFinished, Index: e.index, At: now})
}

func (e *Engine) moveTo(index int, now time.Time) {
	e.index = index
	e.elapsed = 0
	e.accumulated = secondsBefore(e.sequence, index)
	e.resetCountdown()
	if e.running {
		e.anchor = now
	}
}

// announce emits a segment start the first time a kind is observed, which
// covers the first segment and segments reached by skipping.
func (e *Engine) announce(seg Segment, now time.Time) {
	if e.hasAnnounced && e.announced == seg.Kind {
		return
	}
	e.startEvent(seg, now)
}

func (e *Engine) startEvent(seg Segment, now time.Time) {
	e.announced = seg.Kind
	e.hasAnnounced = true
	e.emit(Event{Type: EventSegmentStart, Index: e.index, Kind: seg.Kind, Label: seg.Label, At: now})
}

// countdown emits every cue in {3,2,1} crossed since the last evaluation, in
// descending order, so coarse ticks neither skip nor repeat a cue.
func (e *Engine) countdown(seg Segment, remaining int, now time.Time) {
	if remaining >= e.lastSecond {
		return
	}
	if seg.Kind != KindPrepare || e.options.CountdownInPrepare {
		high := min(e.lastSecond-1, countdownFrom)
		low := max(remaining, 1)
		for second := high; second >= low; second-- {
			e.emit(Event{
				Type:   EventCountdown,
				Second: second,
				Index:  e.index,
				Kind:   seg.Kind,
				Label:  seg.Label,
				At:     now,
			})
		}
	}
	e.lastSecond = remaining
}

func (e *Engine) resetCountdown() {
	if e.index < len(e.sequence) {
		e.lastSecond = e.sequence[e.index].Seconds + 1
		return
	}
	e.lastSecond = 0
}

func (e *Engine) liveElapsed(now time.Time) float64 {
	if !e.running || e.index >= len(e.sequence) {
		return e.elapsed
	}
	elapsed := math.Max(0, now.Sub(e.anchor).Seconds())
	return math.Min(elapsed, float64(e.sequence[e.index].Seconds))
}

func (e *Engine) emit(event Event) {
	if e.sink == nil {
		return
	}
	defer func() {
		_ = recover()
	}()
	e.sink.Notify(event)
}

func secondsToDuration(seconds float64) time.Duration {
	return time.Duration(seconds * float64(time.Second))
}
