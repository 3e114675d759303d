package domain

// BuiltinPresets returns the immutable presets shipped with the timer.
func BuiltinPresets() []Preset {
	return []Preset{
		{
			ID:      "std-7-3x6x3",
			Name:    "Standard: 7/3 x 6, 3 sets (180s set rest)",
			Builtin: true,
			Config: WorkoutConfig{
				PrepareSeconds: 10, WorkSeconds: 7, RestSeconds: 3,
				Reps: 6, Sets: 3, SetRestSeconds: 180,
			},
		},
		{
			ID:      "quick-10-5x5x2",
			Name:    "Quick: 10/5 x 5, 2 sets (120s set rest)",
			Builtin: true,
			Config: WorkoutConfig{
				PrepareSeconds: 5, WorkSeconds: 10, RestSeconds: 5,
				Reps: 5, Sets: 2, SetRestSeconds: 120,
			},
		},
	}
}

// IsBuiltinPreset reports whether id names a built-in preset.
func IsBuiltinPreset(id string) bool {
	for _, p := range BuiltinPresets() {
		if p.ID == id {
			return true
		}
	}
	return false
}

// BuiltinWorkouts returns the multi-exercise protocols shipped with the timer.
func BuiltinWorkouts() []Workout {
	return []Workout{
		{
			ID:          "repeater-7-3",
			Name:        "Repeater 7/3",
			Description: "Classic Eric Horst protocol. 6 x (7s work + 3s rest), 3 min rest between sets.",
			Builtin:     true,
			Exercises: []Exercise{
				{Name: "Four fingers (20mm)", WorkSeconds: 7, RestSeconds: 3, Sets: 6, Load: "BW"},
				{Name: "Three fingers (20mm)", WorkSeconds: 7, RestSeconds: 3, Sets: 6, Load: "BW"},
				{Name: "Active break", WorkSeconds: 5, RestSeconds: 180, Sets: 1},
			},
		},
		{
			ID:          "maxhang",
			Name:        "MaxHang",
			Description: "Eva Lopez protocol. Maximal load, 10s hang, full 3 min rest between reps.",
			Builtin:     true,
			Exercises: []Exercise{
				{Name: "Max hang (18mm)", WorkSeconds: 10, RestSeconds: 180, Sets: 5, Load: "+%BW"},
				{Name: "Full crimp (open hand)", WorkSeconds: 10, RestSeconds: 180, Sets: 3, Load: "+%BW"},
			},
		},
		{
			ID:          "ben-moon",
			Name:        "Ben Moon",
			Description: "10s work / 5s rest, 10 reps. Intense endurance protocol used by Ben Moon.",
			Builtin:     true,
			Exercises: []Exercise{
				{Name: "Closed grip (20mm)", WorkSeconds: 10, RestSeconds: 5, Sets: 10, Load: "BW"},
				{Name: "Open grip (20mm)", WorkSeconds: 10, RestSeconds: 5, Sets: 10, Load: "BW"},
			},
		},
		{
			ID:          "min-edge",
			Name:        "Min Edge",
			Description: "Strength on a minimal edge. Short, maximal hangs with long recovery.",
			Builtin:     true,
			Exercises: []Exercise{
				{Name: "Hang (10mm)", WorkSeconds: 5, RestSeconds: 120, Sets: 6, Load: "+5-15kg"},
				{Name: "Hang (8mm)", WorkSeconds: 5, RestSeconds: 120, Sets: 4, Load: "+5kg"},
			},
		},
		{
			ID:          "endurance",
			Name:        "Endurance",
			Description: "Aerobic protocol. Long hangs with short breaks to build base finger endurance.",
			Builtin:     true,
			Exercises: []Exercise{
				{Name: "Continuous hang (25mm)", WorkSeconds: 30, RestSeconds: 30, Sets: 8, Load: "BW"},
				{Name: "Alternating hands", WorkSeconds: 20, RestSeconds: 10, Sets: 6, Load: "BW"},
			},
		},
		{
			ID:          "strong-grip",
			Name:        "Strong Grip",
			Description: "Basic strength protocol, a good starting point for advanced climbers.",
			Builtin:     true,
			Exercises: []Exercise{
				{Name: "Hang 20mm", WorkSeconds: 7, RestSeconds: 3, Sets: 6, Load: "0kg"},
				{Name: "Hang 15mm", WorkSeconds: 10, RestSeconds: 60, Sets: 3, Load: "+5kg"},
			},
		},
	}
}

// FindWorkout looks up a workout by id in the given list.
func FindWorkout(workouts []Workout, id string) (Workout, error) {
	for _, w := range workouts {
		if w.ID == id {
			return w, nil
		}
	}
	return Workout{}, ErrWorkoutNotFound
}
