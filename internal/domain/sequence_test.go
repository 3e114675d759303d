package domain

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSequence_StandardRepeater(t *testing.T) {
	cfg := WorkoutConfig{PrepareSeconds: 10, WorkSeconds: 7, RestSeconds: 3, Reps: 6, Sets: 3, SetRestSeconds: 180}

	seq := BuildSequence(cfg)

	require.Len(t, seq, 36)
	assert.Equal(t, 541, TotalSeconds(seq))
	assert.Equal(t, Segment{Kind: KindPrepare, Label: "Prepare", Seconds: 10}, seq[0])
	assert.Equal(t, Segment{Kind: KindWork, Label: "Hang 1/6 (set 1/3)", Seconds: 7}, seq[1])
	assert.Equal(t, Segment{Kind: KindRest, Label: "Rest 1/6 (set 1/3)", Seconds: 3}, seq[2])
	assert.Equal(t, Segment{Kind: KindSetRest, Label: "Set rest 1/3", Seconds: 180}, seq[12])
	assert.Equal(t, Segment{Kind: KindWork, Label: "Hang 6/6 (set 3/3)", Seconds: 7}, seq[35])
}

func TestBuildSequence_OmitsZeroPhases(t *testing.T) {
	tests := []struct {
		name string
		cfg  WorkoutConfig
		want []SegmentKind
	}{
		{
			name: "no prepare",
			cfg:  WorkoutConfig{WorkSeconds: 5, RestSeconds: 2, Reps: 2, Sets: 1},
			want: []SegmentKind{KindWork, KindRest, KindWork},
		},
		{
			name: "no rest",
			cfg:  WorkoutConfig{PrepareSeconds: 3, WorkSeconds: 5, Reps: 3, Sets: 1},
			want: []SegmentKind{KindPrepare, KindWork, KindWork, KindWork},
		},
		{
			name: "no set rest",
			cfg:  WorkoutConfig{WorkSeconds: 5, RestSeconds: 1, Reps: 2, Sets: 2},
			want: []SegmentKind{KindWork, KindRest, KindWork, KindWork, KindRest, KindWork},
		},
		{
			name: "single rep single set",
			cfg:  WorkoutConfig{WorkSeconds: 5, RestSeconds: 1, Reps: 1, Sets: 1, SetRestSeconds: 60},
			want: []SegmentKind{KindWork},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seq := BuildSequence(tt.cfg)
			kinds := make([]SegmentKind, len(seq))
			for i, s := range seq {
				kinds[i] = s.Kind
				assert.Positive(t, s.Seconds)
			}
			assert.Equal(t, tt.want, kinds)
		})
	}
}

func TestBuildSequence_TotalMatchesFormula(t *testing.T) {
	for prep := 0; prep <= 10; prep += 5 {
		for rest := 0; rest <= 4; rest += 2 {
			for reps := 1; reps <= 4; reps++ {
				for sets := 1; sets <= 3; sets++ {
					cfg := WorkoutConfig{
						PrepareSeconds: prep, WorkSeconds: 7, RestSeconds: rest,
						Reps: reps, Sets: sets, SetRestSeconds: 30,
					}
					want := prep + sets*(reps*7+(reps-1)*rest) + (sets-1)*30
					assert.Equal(t, want, TotalSeconds(BuildSequence(cfg)), fmt.Sprintf("%+v", cfg))
				}
			}
		}
	}
}

func TestBuildSequence_NoRestWhenRestZero(t *testing.T) {
	seq := BuildSequence(WorkoutConfig{WorkSeconds: 7, Reps: 6, Sets: 3, SetRestSeconds: 60})
	for _, s := range seq {
		assert.NotEqual(t, KindRest, s.Kind)
	}
}

func TestBuildSequence_Deterministic(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, BuildSequence(cfg), BuildSequence(cfg))
}

func TestBuildWorkoutSequence(t *testing.T) {
	w, err := FindWorkout(BuiltinWorkouts(), "repeater-7-3")
	require.NoError(t, err)

	seq := BuildWorkoutSequence(w, 5)

	require.Len(t, seq, 26)
	assert.Equal(t, 130, TotalSeconds(seq))
	assert.Equal(t, KindPrepare, seq[0].Kind)
	assert.Equal(t, "Four fingers (20mm) 1/6", seq[1].Label)
	assert.Equal(t, KindRest, seq[2].Kind)
	assert.Equal(t, KindSetRest, seq[12].Kind, "rest after the last set of an exercise")
	last := seq[len(seq)-1]
	assert.Equal(t, KindWork, last.Kind, "no trailing rest")
	assert.Equal(t, "Active break 1/1", last.Label)
}

func TestBuildWorkoutSequence_NoPrepare(t *testing.T) {
	w := Workout{Exercises: []Exercise{{WorkSeconds: 4, RestSeconds: 0, Sets: 2}}}
	seq := BuildWorkoutSequence(w, 0)
	require.Len(t, seq, 2)
	assert.Equal(t, "Exercise 1 1/2", seq[0].Label)
}

func TestWorkoutConfig_Validate(t *testing.T) {
	tests := []struct {
		name string
		cfg  WorkoutConfig
		want error
	}{
		{"valid", DefaultConfig(), nil},
		{"zero work", WorkoutConfig{Reps: 1, Sets: 1}, ErrInvalidWork},
		{"zero reps", WorkoutConfig{WorkSeconds: 1, Sets: 1}, ErrInvalidReps},
		{"zero sets", WorkoutConfig{WorkSeconds: 1, Reps: 1}, ErrInvalidSets},
		{"negative rest", WorkoutConfig{WorkSeconds: 1, Reps: 1, Sets: 1, RestSeconds: -1}, ErrNegativeDuration},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.cfg.Validate(), tt.want)
		})
	}
}

func TestWorkoutConfig_Clamp(t *testing.T) {
	got := WorkoutConfig{PrepareSeconds: -5, WorkSeconds: 0, RestSeconds: 500, Reps: 0, Sets: 99, SetRestSeconds: 5000}.Clamp()
	assert.Equal(t, WorkoutConfig{
		PrepareSeconds: 0, WorkSeconds: 1, RestSeconds: MaxRestSeconds,
		Reps: 1, Sets: MaxSets, SetRestSeconds: MaxSetRestSeconds,
	}, got)
	assert.NoError(t, got.Validate())
}

func TestWorkout_Clamp(t *testing.T) {
	w := Workout{Name: "Huge", Exercises: []Exercise{
		{Name: "Hang", WorkSeconds: 9999999999, RestSeconds: -4, Sets: 1 << 40, Load: "+5kg"},
		{Name: "Crimp", WorkSeconds: 0, RestSeconds: 180, Sets: 0},
	}}

	got := w.Clamp()

	assert.Equal(t, []Exercise{
		{Name: "Hang", WorkSeconds: MaxWorkSeconds, RestSeconds: 0, Sets: MaxSets, Load: "+5kg"},
		{Name: "Crimp", WorkSeconds: 1, RestSeconds: 180, Sets: 1},
	}, got.Exercises)
	assert.Equal(t, 9999999999, w.Exercises[0].WorkSeconds, "original left untouched")
	assert.NoError(t, got.Validate())

	seq := BuildWorkoutSequence(got, 0)
	for _, seg := range seq {
		assert.Positive(t, int64(seg.Duration()))
	}
	assert.Equal(t, MaxSets*MaxWorkSeconds+1, TotalSeconds(seq))
}

func TestWorkout_Validate(t *testing.T) {
	assert.ErrorIs(t, Workout{}.Validate(), ErrEmptyWorkout)
	assert.ErrorIs(t, Workout{Exercises: []Exercise{{WorkSeconds: 0, Sets: 1}}}.Validate(), ErrInvalidWork)
	for _, w := range BuiltinWorkouts() {
		assert.NoError(t, w.Validate(), w.ID)
	}
}

func TestSegmentKind_TextRoundTrip(t *testing.T) {
	for _, k := range []SegmentKind{KindPrepare, KindWork, KindRest, KindSetRest} {
		text, err := k.MarshalText()
		require.NoError(t, err)
		var got SegmentKind
		require.NoError(t, got.UnmarshalText(text))
		assert.Equal(t, k, got)
	}
	var k SegmentKind
	assert.Error(t, k.UnmarshalText([]byte("nap")))
}
