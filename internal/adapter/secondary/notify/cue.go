package notify

import (
	"time"

	"hangtimer/internal/domain"
)

// Waveform names an oscillator shape.
type Waveform string

const (
	Sine     Waveform = "sine"
	Square   Waveform = "square"
	Triangle Waveform = "triangle"
)

// Tone is one beep of a cue.
type Tone struct {
	Freq     int
	Duration time.Duration
	Wave     Waveform
	Volume   float64
}

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }

// cueTables maps theme -> event name -> tones. Prepare starts are silent.
var cueTables = map[string]map[string][]Tone{
	domain.ThemeClassic: {
		"countdown-3":           {{900, ms(120), Sine, 0.9}},
		"countdown-2":           {{900, ms(120), Sine, 0.9}},
		"countdown-1":           {{1200, ms(140), Sine, 1.0}},
		"segment-start:work":    {{1400, ms(180), Sine, 1.0}},
		"segment-start:rest":    {{600, ms(160), Sine, 0.9}},
		"segment-start:setrest": {{520, ms(220), Sine, 0.9}},
		"sequence-finished":     {{900, ms(500), Sine, 1.0}},
	},
	domain.ThemeDigital: {
		"countdown-3":           {{800, ms(100), Square, 0.7}},
		"countdown-2":           {{800, ms(100), Square, 0.7}},
		"countdown-1":           {{1500, ms(120), Square, 0.9}},
		"segment-start:work":    {{1800, ms(120), Square, 1.0}, {1200, ms(80), Square, 0.8}},
		"segment-start:rest":    {{500, ms(140), Square, 0.8}},
		"segment-start:setrest": {{440, ms(160), Square, 0.8}},
		"sequence-finished":     {{1000, ms(400), Square, 0.9}},
	},
	domain.ThemeGong: {
		"countdown-3":           {{600, ms(180), Triangle, 0.8}},
		"countdown-2":           {{600, ms(180), Triangle, 0.8}},
		"countdown-1":           {{600, ms(180), Triangle, 0.8}},
		"segment-start:work":    {{700, ms(220), Triangle, 1.0}, {350, ms(180), Triangle, 0.8}},
		"segment-start:rest":    {{300, ms(220), Triangle, 0.9}},
		"segment-start:setrest": {{260, ms(260), Triangle, 0.9}},
		"sequence-finished":     {{420, ms(500), Triangle, 1.0}, {210, ms(500), Triangle, 0.8}},
	},
}

// Cue returns the tones for event under theme, falling back to classic.
func Cue(theme string, event domain.Event) []Tone {
	table, ok := cueTables[theme]
	if !ok {
		table = cueTables[domain.ThemeClassic]
	}
	return table[event.Name()]
}
