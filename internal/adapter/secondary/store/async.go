package store

import (
	"sort"
	"sync"

	"hangtimer/internal/domain"
	"hangtimer/internal/logging"
)

// AsyncWriter wraps a KeyValueStore so Set never blocks on disk. Writes are
// coalesced per key (latest value wins) and flushed by a background goroutine.
// Reads see pending values before they reach the backing store.
type AsyncWriter struct {
	next domain.KeyValueStore

	mu       sync.Mutex
	pending  map[string]string
	inflight map[string]string
	closed   bool

	wake     chan struct{}
	flushReq chan chan struct{}
	stop     chan struct{}
	done     chan struct{}
}

// NewAsyncWriter starts the background writer for next.
func NewAsyncWriter(next domain.KeyValueStore) *AsyncWriter {
	w := &AsyncWriter{
		next:     next,
		pending:  map[string]string{},
		inflight: map[string]string{},
		wake:     make(chan struct{}, 1),
		flushReq: make(chan chan struct{}),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go w.loop()
	return w
}

// Get returns the newest value for key, pending or stored.
func (w *AsyncWriter) Get(key string) (string, error) {
	w.mu.Lock()
	if v, ok := w.pending[key]; ok {
		w.mu.Unlock()
		return v, nil
	}
	if v, ok := w.inflight[key]; ok {
		w.mu.Unlock()
		return v, nil
	}
	w.mu.Unlock()
	return w.next.Get(key)
}

// Set queues value for key. After Close it writes through synchronously.
func (w *AsyncWriter) Set(key, value string) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return w.next.Set(key, value)
	}
	w.pending[key] = value
	w.mu.Unlock()

	select {
	case w.wake <- struct{}{}:
	default:
	}
	return nil
}

// Flush blocks until every queued write has been attempted.
func (w *AsyncWriter) Flush() {
	reply := make(chan struct{})
	select {
	case w.flushReq <- reply:
		<-reply
	case <-w.done:
	}
}

// Close flushes pending writes and stops the writer. It is safe to call twice.
func (w *AsyncWriter) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		<-w.done
		return nil
	}
	w.closed = true
	w.mu.Unlock()

	close(w.stop)
	<-w.done
	return nil
}

func (w *AsyncWriter) loop() {
	defer close(w.done)
	for {
		select {
		case <-w.wake:
			w.drain()
		case reply := <-w.flushReq:
			w.drain()
			close(reply)
		case <-w.stop:
			w.drain()
			return
		}
	}
}

func (w *AsyncWriter) drain() {
	w.mu.Lock()
	batch := w.pending
	w.pending = map[string]string{}
	for k, v := range batch {
		w.inflight[k] = v
	}
	w.mu.Unlock()

	keys := make([]string, 0, len(batch))
	for k := range batch {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := w.next.Set(k, batch[k]); err != nil {
			logging.Warnf("store: write %s failed: %v", k, err)
		} else {
			logging.Tracef("store: wrote %s (%d bytes)", k, len(batch[k]))
		}
	}

	w.mu.Lock()
	for _, k := range keys {
		if w.inflight[k] == batch[k] {
			delete(w.inflight, k)
		}
	}
	w.mu.Unlock()
}
