package domain

import "fmt"

// BuildSequence turns a config into its ordered segment list.
// Zero-length prepare, rest and set rest phases are omitted. The config is
// expected to be validated or clamped by the caller.
func BuildSequence(cfg WorkoutConfig) []Segment {
	seq := make([]Segment, 0, sequenceCapacity(cfg))
	if cfg.PrepareSeconds > 0 {
		seq = append(seq, Segment{Kind: KindPrepare, Label: "Prepare", Seconds: cfg.PrepareSeconds})
	}
	for set := 1; set <= cfg.Sets; set++ {
		for rep := 1; rep <= cfg.Reps; rep++ {
			seq = append(seq, Segment{
				Kind:    KindWork,
				Label:   fmt.Sprintf("Hang %d/%d (set %d/%d)", rep, cfg.Reps, set, cfg.Sets),
				Seconds: cfg.WorkSeconds,
			})
			if rep < cfg.Reps && cfg.RestSeconds > 0 {
				seq = append(seq, Segment{
					Kind:    KindRest,
					Label:   fmt.Sprintf("Rest %d/%d (set %d/%d)", rep, cfg.Reps, set, cfg.Sets),
					Seconds: cfg.RestSeconds,
				})
			}
		}
		if set < cfg.Sets && cfg.SetRestSeconds > 0 {
			seq = append(seq, Segment{
				Kind:    KindSetRest,
				Label:   fmt.Sprintf("Set rest %d/%d", set, cfg.Sets),
				Seconds: cfg.SetRestSeconds,
			})
		}
	}
	return seq
}

// BuildWorkoutSequence sequences a multi-exercise workout. Each set is a work
// segment followed by the exercise rest, except after the very last set.
func BuildWorkoutSequence(w Workout, prepareSeconds int) []Segment {
	var seq []Segment
	if prepareSeconds > 0 {
		seq = append(seq, Segment{Kind: KindPrepare, Label: "Prepare", Seconds: prepareSeconds})
	}
	for i, ex := range w.Exercises {
		lastExercise := i == len(w.Exercises)-1
		name := ex.Name
		if name == "" {
			name = fmt.Sprintf("Exercise %d", i+1)
		}
		for set := 1; set <= ex.Sets; set++ {
			seq = append(seq, Segment{
				Kind:    KindWork,
				Label:   fmt.Sprintf("%s %d/%d", name, set, ex.Sets),
				Seconds: ex.WorkSeconds,
			})
			if ex.RestSeconds <= 0 || (lastExercise && set == ex.Sets) {
				continue
			}
			kind := KindRest
			if set == ex.Sets {
				kind = KindSetRest
			}
			seq = append(seq, Segment{
				Kind:    kind,
				Label:   fmt.Sprintf("Rest %d/%d (%s)", set, ex.Sets, name),
				Seconds: ex.RestSeconds,
			})
		}
	}
	return seq
}

// TotalSeconds sums the durations of a sequence.
func TotalSeconds(seq []Segment) int {
	total := 0
	for _, s := range seq {
		total += s.Seconds
	}
	return total
}

// secondsBefore sums the durations of the segments strictly before index.
func secondsBefore(seq []Segment, index int) float64 {
	if index > len(seq) {
		index = len(seq)
	}
	return float64(TotalSeconds(seq[:index]))
}

func sequenceCapacity(cfg WorkoutConfig) int {
	if cfg.Sets < 1 || cfg.Reps < 1 {
		return 1
	}
	return 1 + cfg.Sets*cfg.Reps*2 + cfg.Sets
}
