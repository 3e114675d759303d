package notify

import (
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"sync"

	"github.com/godbus/dbus/v5"

	"hangtimer/internal/domain"
	"hangtimer/internal/logging"
)

const appName = "hangtimer"

// ErrNoDesktop indicates no notification service is reachable.
var ErrNoDesktop = errors.New("no desktop notification service")

// poster delivers one desktop notification.
type poster interface {
	Post(title, body string) error
	Close() error
}

// Desktop posts segment starts and completion as desktop notifications.
// Delivery happens on a background goroutine so Notify never blocks; when
// the queue is full the event is dropped.
type Desktop struct {
	poster poster
	queue  chan domain.Event
	done   chan struct{}

	mu     sync.Mutex
	closed bool
}

// NewDesktop connects to the platform notification service: the session
// D-Bus on Linux, osascript on macOS.
func NewDesktop() (*Desktop, error) {
	var (
		p   poster
		err error
	)
	switch runtime.GOOS {
	case "darwin":
		p, err = newAppleScriptPoster()
	default:
		p, err = newDBusPoster()
	}
	if err != nil {
		return nil, err
	}
	return newDesktop(p), nil
}

func newDesktop(p poster) *Desktop {
	d := &Desktop{
		poster: p,
		queue:  make(chan domain.Event, 16),
		done:   make(chan struct{}),
	}
	go d.loop()
	return d
}

// Notify queues event for delivery. Countdown cues are not posted.
func (d *Desktop) Notify(event domain.Event) {
	if event.Type == domain.EventCountdown {
		return
	}
	if event.Type == domain.EventSegmentStart && event.Kind == domain.KindPrepare {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	select {
	case d.queue <- event:
	default:
		logging.Debugf("desktop: queue full, dropping %s", event.Name())
	}
}

// Close drains the queue and releases the connection. Events notified after
// Close are dropped.
func (d *Desktop) Close() error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()
	<-d.done
	return d.poster.Close()
}

func (d *Desktop) loop() {
	defer close(d.done)
	for event := range d.queue {
		title, body := desktopMessage(event)
		if err := d.poster.Post(title, body); err != nil {
			logging.Warnf("desktop: notify failed: %v", err)
		}
	}
}

func desktopMessage(event domain.Event) (string, string) {
	switch event.Type {
	case domain.EventSequenceFinished:
		return "Workout complete", "Nice work."
	}
	switch event.Kind {
	case domain.KindWork:
		return "Hang", event.Label
	case domain.KindSetRest:
		return "Set rest", event.Label
	default:
		return "Rest", event.Label
	}
}

// dbusPoster talks to org.freedesktop.Notifications on the session bus.
type dbusPoster struct {
	conn   *dbus.Conn
	lastID uint32
}

func newDBusPoster() (*dbusPoster, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("%w: connect session bus: %v", ErrNoDesktop, err)
	}
	return &dbusPoster{conn: conn}, nil
}

// Post replaces the previous notification so the desktop shows only the
// current segment.
func (p *dbusPoster) Post(title, body string) error {
	obj := p.conn.Object("org.freedesktop.Notifications", "/org/freedesktop/Notifications")
	call := obj.Call("org.freedesktop.Notifications.Notify", 0,
		appName,       // app_name
		p.lastID,      // replaces_id
		"chronometer", // app_icon
		title,         // summary
		body,          // body
		[]string{},    // actions
		map[string]dbus.Variant{ // hints
			"urgency": dbus.MakeVariant(byte(1)),
		},
		int32(5000), // expire_timeout
	)
	if call.Err != nil {
		return fmt.Errorf("notify: %w", call.Err)
	}
	var id uint32
	if err := call.Store(&id); err == nil {
		p.lastID = id
	}
	return nil
}

func (p *dbusPoster) Close() error {
	return p.conn.Close()
}

// appleScriptPoster uses macOS osascript.
type appleScriptPoster struct{}

func newAppleScriptPoster() (*appleScriptPoster, error) {
	if _, err := exec.LookPath("osascript"); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoDesktop, err)
	}
	return &appleScriptPoster{}, nil
}

// Post runs `display notification` through osascript.
func (a *appleScriptPoster) Post(title, body string) error {
	script := fmt.Sprintf("display notification %s with title %s", appleQuote(body), appleQuote(appName+": "+title))
	cmd := exec.Command("osascript", "-e", script)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("osascript failed: %w, output: %s", err, string(output))
	}
	return nil
}

func (a *appleScriptPoster) Close() error { return nil }

func appleQuote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}
