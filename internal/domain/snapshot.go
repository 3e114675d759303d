package domain

import (
	"fmt"
	"math"
)

// Snapshot represents a consistent view of the engine for presentation layers.
type Snapshot struct {
	State                    State    `json:"state"`
	Running                  bool     `json:"running"`
	Finished                 bool     `json:"finished"`
	SegmentIndex             int      `json:"segmentIndex"`
	SegmentCount             int      `json:"segmentCount"`
	Segment                  *Segment `json:"segment,omitempty"`
	Next                     *Segment `json:"next,omitempty"`
	ElapsedInSegment         float64  `json:"elapsedInSegment"`
	AccumulatedBeforeSegment float64  `json:"accumulatedBeforeSegment"`
	TotalSeconds             int      `json:"totalSeconds"`
	SegmentProgress          float64  `json:"segmentProgress"`
	OverallProgress          float64  `json:"overallProgress"`
}

// RemainingInSegment returns the seconds left in the current segment.
func (s Snapshot) RemainingInSegment() float64 {
	if s.Segment == nil {
		return 0
	}
	return math.Max(0, float64(s.Segment.Seconds)-s.ElapsedInSegment)
}

// RemainingDisplay rounds the segment remainder up so a running segment
// never shows zero.
func (s Snapshot) RemainingDisplay() int {
	return int(math.Ceil(s.RemainingInSegment()))
}

// OverallRemaining returns the seconds left in the whole sequence.
func (s Snapshot) OverallRemaining() float64 {
	return math.Max(0, float64(s.TotalSeconds)-s.AccumulatedBeforeSegment-s.ElapsedInSegment)
}

// String renders a one-line status for terminals and logs.
func (s Snapshot) String() string {
	label := "-"
	if s.Segment != nil {
		label = s.Segment.Label
	}
	return fmt.Sprintf("[%s] %s %s | %s / %s",
		s.State,
		label,
		FormatHMS(float64(s.RemainingDisplay())),
		FormatHMS(math.Ceil(s.OverallRemaining())),
		FormatHMS(float64(s.TotalSeconds)),
	)
}
