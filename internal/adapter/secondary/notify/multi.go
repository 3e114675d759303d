package notify

import "hangtimer/internal/domain"

// Multi fans each event out to several sinks in order.
type Multi []domain.Notifier

// Notify forwards event to every sink. A panicking sink does not stop the rest.
func (m Multi) Notify(event domain.Event) {
	for _, sink := range m {
		if sink == nil {
			continue
		}
		func() {
			defer func() { _ = recover() }()
			sink.Notify(event)
		}()
	}
}

// Noop implements domain.Notifier with no-op behavior.
// Useful for testing or headless environments.
type Noop struct{}

// Notify does nothing.
func (Noop) Notify(domain.Event) {}
