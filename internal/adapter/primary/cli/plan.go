package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"hangtimer/internal/config"
	"hangtimer/internal/domain"
)

var errManySources = errors.New("choose only one of --preset, --workout or --file")

// planCatalog is the lookup surface plan resolution needs.
type planCatalog interface {
	Get(id string) (domain.Preset, error)
	Current() domain.Preset
	Workout(id string) (domain.Workout, error)
	Settings() domain.Settings
}

// resolvedPlan is what a command will run or print.
type resolvedPlan struct {
	Title    string                `json:"title"`
	Config   *domain.WorkoutConfig `json:"config,omitempty"`
	Segments []domain.Segment      `json:"segments"`
}

// planFlags selects a sequence: a preset, a workout, a TOML plan file or
// the current preset, with per-field overrides for interval configs.
type planFlags struct {
	fs      *pflag.FlagSet
	preset  string
	workout string
	file    string

	prepare int
	work    int
	rest    int
	reps    int
	sets    int
	setRest int
}

func (p *planFlags) register(fs *pflag.FlagSet) {
	p.fs = fs
	fs.StringVar(&p.preset, "preset", "", "preset id (see `presets list`)")
	fs.StringVar(&p.workout, "workout", "", "workout id (see `workouts list`)")
	fs.StringVarP(&p.file, "file", "f", "", "TOML plan file")
	p.registerConfig(fs)
}

func (p *planFlags) registerConfig(fs *pflag.FlagSet) {
	p.fs = fs
	fs.IntVar(&p.prepare, "prepare", 0, "prepare seconds")
	fs.IntVar(&p.work, "work", 0, "work seconds per hang")
	fs.IntVar(&p.rest, "rest", 0, "rest seconds between hangs")
	fs.IntVar(&p.reps, "reps", 0, "hangs per set")
	fs.IntVar(&p.sets, "sets", 0, "number of sets")
	fs.IntVar(&p.setRest, "set-rest", 0, "rest seconds between sets")
}

// override applies changed config flags to cfg and reports whether any did.
func (p *planFlags) override(cfg *domain.WorkoutConfig) bool {
	fields := []struct {
		name string
		src  int
		dst  *int
	}{
		{"prepare", p.prepare, &cfg.PrepareSeconds},
		{"work", p.work, &cfg.WorkSeconds},
		{"rest", p.rest, &cfg.RestSeconds},
		{"reps", p.reps, &cfg.Reps},
		{"sets", p.sets, &cfg.Sets},
		{"set-rest", p.setRest, &cfg.SetRestSeconds},
	}
	changed := false
	for _, f := range fields {
		if p.fs != nil && p.fs.Changed(f.name) {
			*f.dst = f.src
			changed = true
		}
	}
	return changed
}

func (p *planFlags) resolve(catalog planCatalog) (resolvedPlan, error) {
	sources := 0
	for _, s := range []string{p.preset, p.workout, p.file} {
		if s != "" {
			sources++
		}
	}
	if sources > 1 {
		return resolvedPlan{}, errManySources
	}

	prepare := catalog.Settings().PrepareSeconds
	if p.fs != nil && p.fs.Changed("prepare") {
		prepare = p.prepare
	}

	switch {
	case p.workout != "":
		w, err := catalog.Workout(p.workout)
		if err != nil {
			return resolvedPlan{}, err
		}
		return workoutPlan(w, prepare)
	case p.file != "":
		plan, err := config.LoadPlan(p.file)
		if err != nil {
			return resolvedPlan{}, err
		}
		if plan.IsWorkout() {
			return workoutPlan(plan.Workout(), plan.PrepareSeconds(prepare))
		}
		return p.configPlan(plan.Name, *plan.Config)
	case p.preset != "":
		preset, err := catalog.Get(p.preset)
		if err != nil {
			return resolvedPlan{}, err
		}
		return p.configPlan(preset.Name, preset.Config)
	default:
		current := catalog.Current()
		return p.configPlan(current.Name, current.Config)
	}
}

func (p *planFlags) configPlan(title string, cfg domain.WorkoutConfig) (resolvedPlan, error) {
	if p.override(&cfg) {
		title = "Custom"
	}
	if err := cfg.Validate(); err != nil {
		return resolvedPlan{}, err
	}
	cfg = cfg.Clamp()
	return resolvedPlan{Title: title, Config: &cfg, Segments: domain.BuildSequence(cfg)}, nil
}

func workoutPlan(w domain.Workout, prepare int) (resolvedPlan, error) {
	if err := w.Validate(); err != nil {
		return resolvedPlan{}, err
	}
	return resolvedPlan{Title: w.Name, Segments: domain.BuildWorkoutSequence(w, prepare)}, nil
}

func newPlanCmd() *cobra.Command {
	var (
		flags  planFlags
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Print the segments of a preset, workout or plan file",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			plan, err := flags.resolve(a.presets)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), plan)
			}
			return printPlan(cmd.OutOrStdout(), plan)
		},
	}
	flags.register(cmd.Flags())
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func printPlan(w io.Writer, plan resolvedPlan) error {
	fmt.Fprintf(w, "%s\n\n", plan.Title)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tKIND\tLABEL\tLENGTH\tSTARTS")
	offset := 0
	for i, seg := range plan.Segments {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			i+1, seg.Kind, seg.Label, domain.FormatHMS(float64(seg.Seconds)), domain.FormatHMS(float64(offset)))
		offset += seg.Seconds
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\nTotal: %s (%d segments)\n", domain.FormatHMS(float64(offset)), len(plan.Segments))
	return err
}

func printJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}
