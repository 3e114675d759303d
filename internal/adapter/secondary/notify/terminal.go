package notify

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"hangtimer/internal/domain"
)

// audibleThreshold is the scaled volume below which no bell is rung.
const audibleThreshold = 0.05

// Terminal renders cues as text and rings the terminal bell.
type Terminal struct {
	mu       sync.Mutex
	w        io.Writer
	enabled  bool
	volume   float64
	theme    string
	showText bool
}

// NewTerminal creates a terminal sink configured from settings.
func NewTerminal(w io.Writer, settings domain.Settings, showText bool) *Terminal {
	t := &Terminal{w: w, showText: showText}
	t.Apply(settings)
	return t
}

// Apply updates sound preferences.
func (t *Terminal) Apply(settings domain.Settings) {
	settings = settings.Normalize()
	t.mu.Lock()
	defer t.mu.Unlock()
	t.enabled = settings.SoundEnabled
	t.volume = settings.Volume
	t.theme = settings.Theme
}

// SetEnabled toggles sound without touching the other preferences.
func (t *Terminal) SetEnabled(enabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.enabled = enabled
}

// Enabled reports whether cues are rendered.
func (t *Terminal) Enabled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.enabled
}

// Notify writes the cue for event. Write errors are ignored.
func (t *Terminal) Notify(event domain.Event) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.enabled {
		return
	}
	tones := Cue(t.theme, event)
	if len(tones) == 0 {
		return
	}

	var b strings.Builder
	if t.showText {
		parts := make([]string, len(tones))
		for i, tone := range tones {
			parts[i] = fmt.Sprintf("%dHz %s %dms", tone.Freq, tone.Wave, tone.Duration.Milliseconds())
		}
		fmt.Fprintf(&b, "\r\n[%s] %s\r\n", event.Name(), strings.Join(parts, " + "))
	}
	for _, tone := range tones {
		if tone.Volume*t.volume >= audibleThreshold {
			b.WriteByte('\a')
		}
	}
	if b.Len() > 0 {
		_, _ = io.WriteString(t.w, b.String())
	}
}
