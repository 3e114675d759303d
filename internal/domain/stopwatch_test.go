package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStopwatch_AccumulatesAcrossPauses(t *testing.T) {
	var sw Stopwatch

	sw.Start(at(0))
	sw.Pause(at(2))
	sw.Pause(at(3))
	assert.Equal(t, 2*time.Second, sw.Elapsed(at(10)))

	sw.Toggle(at(10))
	assert.True(t, sw.Running())
	assert.Equal(t, 3500*time.Millisecond, sw.Elapsed(at(11.5)))
}

func TestStopwatch_Laps(t *testing.T) {
	var sw Stopwatch

	_, ok := sw.Lap(at(0))
	assert.False(t, ok, "lap ignored while stopped")

	sw.Start(at(0))
	first, ok := sw.Lap(at(5))
	require.True(t, ok)
	second, _ := sw.Lap(at(8))

	assert.Equal(t, Lap{Index: 1, Time: 5 * time.Second, Split: 5 * time.Second}, first)
	assert.Equal(t, Lap{Index: 2, Time: 8 * time.Second, Split: 3 * time.Second}, second)
	assert.Equal(t, []Lap{second, first}, sw.Laps())

	sw.Reset()
	assert.Empty(t, sw.Laps())
	assert.False(t, sw.Running())
	assert.Zero(t, sw.Elapsed(at(20)))
}

func TestFormatHMS(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{0, "0:00"},
		{-3, "0:00"},
		{59.9, "0:59"},
		{541, "9:01"},
		{3725, "1:02:05"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatHMS(tt.seconds))
		})
	}
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "00:00.00", FormatClock(-time.Second))
	assert.Equal(t, "01:05.43", FormatClock(65*time.Second+430*time.Millisecond))
	assert.Equal(t, "01:00:01.00", FormatClock(time.Hour+time.Second))
}

func TestSettings_Normalize(t *testing.T) {
	s := Settings{Volume: 4, Theme: "disco", PrepareSeconds: -1}.Normalize()
	assert.Equal(t, 1.0, s.Volume)
	assert.Equal(t, ThemeClassic, s.Theme)
	assert.Equal(t, 0, s.PrepareSeconds)
}
