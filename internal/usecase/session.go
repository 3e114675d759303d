package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"hangtimer/internal/domain"
	"hangtimer/internal/logging"
)

// ErrSessionStopped is returned when the session loop is not running.
var ErrSessionStopped = errors.New("session loop is not running")

// Action is a control command understood by the session.
type Action string

const (
	ActionToggle Action = "toggle"
	ActionStart  Action = "start"
	ActionPause  Action = "pause"
	ActionNext   Action = "next"
	ActionPrev   Action = "prev"
	ActionReset  Action = "reset"
)

// ParseAction validates a control action name.
func ParseAction(s string) (Action, error) {
	switch a := Action(strings.ToLower(strings.TrimSpace(s))); a {
	case ActionToggle, ActionStart, ActionPause, ActionNext, ActionPrev, ActionReset:
		return a, nil
	default:
		return "", fmt.Errorf("%w: %q", domain.ErrUnknownAction, s)
	}
}

// UpdateType tells subscribers what an Update carries.
type UpdateType string

const (
	UpdateEvent    UpdateType = "event"
	UpdateSnapshot UpdateType = "snapshot"
)

// Update is pushed to subscribers after engine activity.
type Update struct {
	Type     UpdateType       `json:"type"`
	Event    *domain.Event    `json:"event,omitempty"`
	Snapshot *domain.Snapshot `json:"snapshot,omitempty"`
}

// SessionUseCase is the primary port for running a timer.
type SessionUseCase interface {
	Start(ctx context.Context)
	Do(action Action) (domain.Snapshot, error)
	LoadConfig(title string, cfg domain.WorkoutConfig) (domain.Snapshot, error)
	LoadWorkout(w domain.Workout, prepareSeconds int) (domain.Snapshot, error)
	LoadSequence(title string, seq []domain.Segment) (domain.Snapshot, error)
	ApplyOptions(opts domain.Options) error
	Snapshot() domain.Snapshot
	Sequence() []domain.Segment
	Title() string
	Subscribe(buffer int) (<-chan Update, func())
}

// sessionInteractor owns the engine. Every engine call happens on the loop
// goroutine; readers get copies published under mu.
type sessionInteractor struct {
	clock    domain.Clock
	sink     domain.Notifier
	interval time.Duration

	engine  *domain.Engine
	pending []domain.Event

	cmdCh chan command
	done  chan struct{}
	once  sync.Once

	mu       sync.RWMutex
	snapshot domain.Snapshot
	sequence []domain.Segment
	title    string
	running  bool

	subMu       sync.Mutex
	subscribers map[int]chan Update
	nextSub     int
}

type command struct {
	name     string
	apply    func(e *domain.Engine, now time.Time) error
	resultCh chan error
}

// NewSessionUseCase creates a session over an initial sequence.
// sink may be nil. interval is the frame period of the tick loop.
func NewSessionUseCase(
	clock domain.Clock,
	sink domain.Notifier,
	interval time.Duration,
	title string,
	seq []domain.Segment,
	opts domain.Options,
) SessionUseCase {
	if interval <= 0 {
		interval = 16 * time.Millisecond
	}
	s := &sessionInteractor{
		clock:       clock,
		sink:        sink,
		interval:    interval,
		cmdCh:       make(chan command),
		done:        make(chan struct{}),
		subscribers: map[int]chan Update{},
		title:       title,
	}
	s.engine = domain.NewEngine(seq, opts, domain.NotifierFunc(func(e domain.Event) {
		s.pending = append(s.pending, e)
	}))
	s.publish()
	return s
}

// Start launches the loop until ctx is cancelled. Calling it twice is a no-op.
func (s *sessionInteractor) Start(ctx context.Context) {
	s.once.Do(func() {
		s.mu.Lock()
		s.running = true
		s.mu.Unlock()
		go s.loop(ctx)
	})
}

func (s *sessionInteractor) loop(ctx context.Context) {
	defer close(s.done)
	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.mu.Lock()
			s.running = false
			s.mu.Unlock()
			return
		case cmd := <-s.cmdCh:
			err := cmd.apply(s.engine, s.clock.Now())
			if err == nil {
				logging.Debugf("session: %s -> %s", cmd.name, s.engine.State())
			}
			s.dispatch()
			cmd.resultCh <- err
		case <-ticker.C():
			if s.engine.State() != domain.StateRunning {
				continue
			}
			s.engine.Tick(s.clock.Now())
			s.dispatch()
		}
	}
}

// dispatch forwards buffered engine events and publishes a fresh snapshot.
func (s *sessionInteractor) dispatch() {
	events := s.pending
	s.pending = nil
	for _, e := range events {
		logging.Tracef("session: %s %q", e.Name(), e.Label)
		s.notify(e)
		event := e
		s.broadcast(Update{Type: UpdateEvent, Event: &event})
	}
	snap := s.publish()
	s.broadcast(Update{Type: UpdateSnapshot, Snapshot: &snap})
}

// notify hands e to the sink. A panicking sink is logged and the loop keeps running.
func (s *sessionInteractor) notify(e domain.Event) {
	if s.sink == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			logging.Warnf("session: sink panicked on %s: %v", e.Name(), r)
		}
	}()
	s.sink.Notify(e)
}

func (s *sessionInteractor) publish() domain.Snapshot {
	snap := s.engine.Snapshot()
	seq := s.engine.Sequence()
	s.mu.Lock()
	s.snapshot = snap
	s.sequence = seq
	s.mu.Unlock()
	return snap
}

func (s *sessionInteractor) broadcast(u Update) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subscribers {
		select {
		case ch <- u:
		default:
			// Slow subscriber, drop.
		}
	}
}

func (s *sessionInteractor) submit(name string, apply func(e *domain.Engine, now time.Time) error) (domain.Snapshot, error) {
	s.mu.RLock()
	running := s.running
	s.mu.RUnlock()
	if !running {
		return domain.Snapshot{}, ErrSessionStopped
	}

	ch := make(chan error, 1)
	select {
	case s.cmdCh <- command{name: name, apply: apply, resultCh: ch}:
	case <-s.done:
		return domain.Snapshot{}, ErrSessionStopped
	}
	if err := <-ch; err != nil {
		return domain.Snapshot{}, err
	}
	return s.Snapshot(), nil
}

// Do runs a control action on the loop.
func (s *sessionInteractor) Do(action Action) (domain.Snapshot, error) {
	var apply func(e *domain.Engine, now time.Time)
	switch action {
	case ActionToggle:
		apply = (*domain.Engine).Toggle
	case ActionStart:
		apply = (*domain.Engine).Start
	case ActionPause:
		apply = (*domain.Engine).Pause
	case ActionNext:
		apply = (*domain.Engine).SkipForward
	case ActionPrev:
		apply = (*domain.Engine).SkipBackward
	case ActionReset:
		apply = func(e *domain.Engine, _ time.Time) { e.HardReset() }
	default:
		return domain.Snapshot{}, fmt.Errorf("%w: %q", domain.ErrUnknownAction, action)
	}
	return s.submit(string(action), func(e *domain.Engine, now time.Time) error {
		apply(e, now)
		return nil
	})
}

// LoadConfig validates cfg and replaces the running sequence.
func (s *sessionInteractor) LoadConfig(title string, cfg domain.WorkoutConfig) (domain.Snapshot, error) {
	if err := cfg.Validate(); err != nil {
		return domain.Snapshot{}, err
	}
	return s.LoadSequence(title, domain.BuildSequence(cfg))
}

// LoadWorkout replaces the running sequence with a multi-exercise workout.
func (s *sessionInteractor) LoadWorkout(w domain.Workout, prepareSeconds int) (domain.Snapshot, error) {
	if err := w.Validate(); err != nil {
		return domain.Snapshot{}, err
	}
	return s.LoadSequence(w.Name, domain.BuildWorkoutSequence(w.Clamp(), prepareSeconds))
}

// LoadSequence swaps in seq and hard-resets the engine.
func (s *sessionInteractor) LoadSequence(title string, seq []domain.Segment) (domain.Snapshot, error) {
	return s.submit("load", func(e *domain.Engine, _ time.Time) error {
		e.Load(seq)
		s.mu.Lock()
		s.title = title
		s.mu.Unlock()
		return nil
	})
}

// ApplyOptions changes engine options without moving the position.
func (s *sessionInteractor) ApplyOptions(opts domain.Options) error {
	_, err := s.submit("options", func(e *domain.Engine, _ time.Time) error {
		e.SetOptions(opts)
		return nil
	})
	return err
}

// Snapshot returns the state published after the last tick or command.
func (s *sessionInteractor) Snapshot() domain.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// Sequence returns the loaded segments.
func (s *sessionInteractor) Sequence() []domain.Segment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Segment, len(s.sequence))
	copy(out, s.sequence)
	return out
}

// Title names the loaded plan.
func (s *sessionInteractor) Title() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.title
}

// Subscribe returns a channel of updates and a cancel func. Updates are
// dropped when the channel buffer is full.
func (s *sessionInteractor) Subscribe(buffer int) (<-chan Update, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Update, buffer)

	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subscribers[id] = ch
	s.subMu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subscribers, id)
			s.subMu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// EngineOptions derives engine options from timer settings.
func EngineOptions(settings domain.Settings) domain.Options {
	opts := domain.DefaultOptions()
	opts.CountdownInPrepare = settings.CountdownInPrepare
	opts.CatchUp = settings.CatchUp
	return opts
}
