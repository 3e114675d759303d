package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"hangtimer/internal/config"
	"hangtimer/internal/domain"
)

func newPresetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "presets",
		Short: "List, save, delete and select presets",
	}
	cmd.AddCommand(
		newPresetsListCmd(),
		newPresetsShowCmd(),
		newPresetsSaveCmd(),
		newPresetsDeleteCmd(),
		newPresetsSelectCmd(),
	)
	return cmd
}

func newPresetsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List built-in and saved presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()
			return printPresets(cmd.OutOrStdout(), a.presets.List(), a.presets.Current().ID)
		},
	}
}

func printPresets(w io.Writer, presets []domain.Preset, currentID string) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "\tID\tNAME\tCONFIG\tTOTAL")
	for _, p := range presets {
		mark := ""
		if p.ID == currentID {
			mark = "*"
		}
		total := domain.TotalSeconds(domain.BuildSequence(p.Config))
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", mark, p.ID, p.Name, describeConfig(p.Config), domain.FormatHMS(float64(total)))
	}
	return tw.Flush()
}

func describeConfig(c domain.WorkoutConfig) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%ds/%ds x%d, %d sets", c.WorkSeconds, c.RestSeconds, c.Reps, c.Sets)
	if c.Sets > 1 {
		fmt.Fprintf(&b, ", %s set rest", domain.FormatHMS(float64(c.SetRestSeconds)))
	}
	if c.PrepareSeconds > 0 {
		fmt.Fprintf(&b, ", %ds prepare", c.PrepareSeconds)
	}
	return b.String()
}

func newPresetsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [id]",
		Short: "Show a preset as JSON (the current one by default)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			preset := a.presets.Current()
			if len(args) == 1 {
				if preset, err = a.presets.Get(args[0]); err != nil {
					return err
				}
			}
			return printJSON(cmd.OutOrStdout(), preset)
		},
	}
}

func newPresetsSaveCmd() *cobra.Command {
	var (
		flags planFlags
		from  string
	)
	cmd := &cobra.Command{
		Use:   "save <name>",
		Short: "Save a config under a name (based on the current preset)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			base := a.presets.Current()
			if from != "" {
				if base, err = a.presets.Get(from); err != nil {
					return err
				}
			}
			cfg := base.Config
			flags.override(&cfg)
			preset, err := a.presets.Save(args[0], cfg)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved %s (%s): %s\n", preset.Name, preset.ID, describeConfig(preset.Config))
			return nil
		},
	}
	flags.registerConfig(cmd.Flags())
	cmd.Flags().StringVar(&from, "from", "", "preset id to start from")
	return cmd
}

func newPresetsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a saved preset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.presets.Delete(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		},
	}
}

func newPresetsSelectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "select <id>",
		Short: "Make a preset the default for run and serve",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			preset, err := a.presets.Select(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "selected %s\n", preset.Name)
			return nil
		},
	}
}

func newWorkoutsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workouts",
		Short: "List, show and import multi-exercise workouts",
	}
	cmd.AddCommand(newWorkoutsListCmd(), newWorkoutsShowCmd(), newWorkoutsImportCmd())
	return cmd
}

func newWorkoutsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List built-in and imported workouts",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			prepare := a.presets.Settings().PrepareSeconds
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tEXERCISES\tTOTAL")
			for _, w := range a.presets.Workouts() {
				total := domain.TotalSeconds(domain.BuildWorkoutSequence(w, prepare))
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", w.ID, w.Name, len(w.Exercises), domain.FormatHMS(float64(total)))
			}
			return tw.Flush()
		},
	}
}

func newWorkoutsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a workout's exercises",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			w, err := a.presets.Workout(args[0])
			if err != nil {
				return err
			}
			return printWorkout(cmd.OutOrStdout(), w)
		},
	}
}

func printWorkout(out io.Writer, w domain.Workout) error {
	fmt.Fprintln(out, w.Name)
	if w.Description != "" {
		fmt.Fprintln(out, w.Description)
	}
	fmt.Fprintln(out)
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tEXERCISE\tWORK\tREST\tSETS\tLOAD")
	for i, ex := range w.Exercises {
		fmt.Fprintf(tw, "%d\t%s\t%ds\t%ds\t%d\t%s\n", i+1, ex.Name, ex.WorkSeconds, ex.RestSeconds, ex.Sets, ex.Load)
	}
	return tw.Flush()
}

func newWorkoutsImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.toml>",
		Short: "Save the workout described by a TOML plan file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := config.LoadPlan(args[0])
			if err != nil {
				return err
			}
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			if !plan.IsWorkout() {
				preset, err := a.presets.Save(plan.Name, *plan.Config)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "imported preset %s (%s)\n", preset.Name, preset.ID)
				return nil
			}
			w, err := a.presets.SaveWorkout(plan.Workout())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported workout %s (%s)\n", w.Name, w.ID)
			return nil
		},
	}
}

func newSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change timer settings",
	}
	cmd.AddCommand(newSettingsGetCmd(), newSettingsSetCmd())
	return cmd
}

func newSettingsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get",
		Short: "Print the current settings as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()
			return printJSON(cmd.OutOrStdout(), a.presets.Settings())
		},
	}
}

// settingsFlags are the values `settings set` may change.
type settingsFlags struct {
	sound     string
	volume    float64
	theme     string
	countdown string
	catchUp   string
	prepare   int
}

func newSettingsSetCmd() *cobra.Command {
	var f settingsFlags
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change timer settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			mutate, err := f.mutator(cmd.Flags().Changed)
			if err != nil {
				return err
			}
			settings, err := a.presets.UpdateSettings(mutate)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), settings)
		},
	}
	cmd.Flags().StringVar(&f.sound, "sound", "", "true/false to turn cues on or off")
	cmd.Flags().Float64Var(&f.volume, "volume", 0.6, "cue volume (0-1)")
	cmd.Flags().StringVar(&f.theme, "theme", "", "sound theme: classic, digital or gong")
	cmd.Flags().StringVar(&f.countdown, "countdown-in-prepare", "", "true/false for 3-2-1 cues during prepare")
	cmd.Flags().StringVar(&f.catchUp, "catch-up", "", "true/false to cross several segments per frame after a stall")
	cmd.Flags().IntVar(&f.prepare, "prepare", 5, "prepare seconds before workouts")
	return cmd
}

// mutator validates the changed flags and returns the settings update.
func (f settingsFlags) mutator(changed func(string) bool) (func(*domain.Settings), error) {
	var steps []func(*domain.Settings)
	boolFlag := func(name, value string, set func(*domain.Settings, bool)) error {
		if !changed(name) {
			return nil
		}
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("--%s expects true or false", name)
		}
		steps = append(steps, func(s *domain.Settings) { set(s, b) })
		return nil
	}
	if err := errors.Join(
		boolFlag("sound", f.sound, func(s *domain.Settings, b bool) { s.SoundEnabled = b }),
		boolFlag("countdown-in-prepare", f.countdown, func(s *domain.Settings, b bool) { s.CountdownInPrepare = b }),
		boolFlag("catch-up", f.catchUp, func(s *domain.Settings, b bool) { s.CatchUp = b }),
	); err != nil {
		return nil, err
	}
	if changed("theme") {
		theme := strings.ToLower(f.theme)
		switch theme {
		case domain.ThemeClassic, domain.ThemeDigital, domain.ThemeGong:
		default:
			return nil, fmt.Errorf("unknown theme %q", f.theme)
		}
		steps = append(steps, func(s *domain.Settings) { s.Theme = theme })
	}
	if changed("volume") {
		if f.volume < 0 || f.volume > 1 {
			return nil, errors.New("--volume must be between 0 and 1")
		}
		steps = append(steps, func(s *domain.Settings) { s.Volume = f.volume })
	}
	if changed("prepare") {
		steps = append(steps, func(s *domain.Settings) { s.PrepareSeconds = f.prepare })
	}
	return func(s *domain.Settings) {
		for _, step := range steps {
			step(s)
		}
	}, nil
}
