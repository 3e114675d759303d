package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/google/shlex"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"hangtimer/internal/adapter/secondary/repository"
	"hangtimer/internal/adapter/secondary/store"
	"hangtimer/internal/config"
	"hangtimer/internal/logging"
	"hangtimer/internal/usecase"
)

var (
	cfgPath     string
	verbosity   int
	storePath   string
	storeDriver string
)

// NewRootCmd creates the root CLI command.
// This is the primary adapter that translates CLI inputs to use case calls.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "hangtimer",
		Short:         "Interval timer for hangboard training",
		Long:          "Hangboard repeaters, max hangs and multi-exercise workouts from the terminal or a browser",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&cfgPath, "config", config.DefaultPath(), "path to the config file")
	cmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "increase log detail (-v, -vv, ... up to 4)")
	cmd.PersistentFlags().StringVar(&storePath, "store", "", "path to the timer data store (overrides config)")
	cmd.PersistentFlags().StringVar(&storeDriver, "store-driver", "", "store backend: file or sqlite (overrides config)")
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		logging.SetVerbosity(verbosity)
	}

	cmd.AddCommand(
		newRunCmd(),
		newPlanCmd(),
		newPresetsCmd(),
		newWorkoutsCmd(),
		newSettingsCmd(),
		newStopwatchCmd(),
		newServeCmd(),
		newConfigCmd(),
		newShellCmd(),
	)

	return cmd
}

// app bundles what most commands need: config, the open store and the
// preset use case on top of it.
type app struct {
	cfg     config.Config
	store   *store.Handle
	presets *usecase.PresetUseCase
}

func openApp() (*app, error) {
	cfgStore, err := config.NewFileStore(cfgPath)
	if err != nil {
		return nil, err
	}
	cfg, err := cfgStore.Load()
	if err != nil {
		return nil, err
	}
	if verbosity == 0 {
		if _, count, err := logging.ParseLevel(cfg.LogLevel); err == nil {
			logging.SetVerbosity(count)
		}
	}
	if storeDriver != "" {
		cfg.Store.Driver = storeDriver
	}
	if storePath != "" {
		cfg.Store.Path = storePath
	}
	cfg = config.Normalize(cfg)

	h, err := store.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	logging.Debugf("store: %s at %s", cfg.Store.Driver, cfg.StorePath())
	return &app{
		cfg:     cfg,
		store:   h,
		presets: usecase.NewPresetUseCase(repository.NewKVRepository(h)),
	}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		logging.Warnf("close store: %v", err)
	}
}

func newShellCmd() *cobra.Command {
	var prompt string
	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Start an interactive shell for running subcommands",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInteractiveShell(prompt)
		},
	}
	cmd.Flags().StringVar(&prompt, "prompt", "hangtimer> ", "shell prompt")
	return cmd
}

func runInteractiveShell(prompt string) error {
	historyFile := filepath.Join(os.TempDir(), "hangtimer-shell.history")
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt,
		HistoryFile:     historyFile,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	sessionVerbosity := verbosity
	fmt.Println("Interactive shell. Type 'help' for examples, 'exit' to leave.")

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			fmt.Println()
			continue
		}
		if err == io.EOF {
			fmt.Println()
			return nil
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		switch line {
		case "exit", "quit":
			fmt.Println("Bye!")
			return nil
		case "help":
			printShellHelp()
			continue
		}
		tokens, err := shlex.Split(line)
		if err != nil {
			fmt.Printf("Parse error: %v\n", err)
			continue
		}
		if len(tokens) == 0 {
			continue
		}
		if tokens[0] == "log" {
			if err := handleShellLog(tokens[1:], &sessionVerbosity); err != nil {
				fmt.Printf("log: %v\n", err)
			}
			continue
		}
		if tokens[0] == "shell" {
			fmt.Println("Already in the shell. Enter another command or 'exit'.")
			continue
		}

		verbosity = sessionVerbosity
		if err := executeArgs(tokens); err != nil {
			fmt.Printf("command error: %v\n", err)
		}
		sessionVerbosity = verbosity
	}
}

func executeArgs(args []string) error {
	if len(args) == 0 {
		return nil
	}
	root := NewRootCmd()
	root.SetArgs(args)
	return root.Execute()
}

func handleShellLog(args []string, sessionVerbosity *int) error {
	fs := pflag.NewFlagSet("log", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var vcount int
	var level string
	var show bool
	fs.CountVarP(&vcount, "verbose", "v", "Increase verbosity (-v... up to 4)")
	fs.StringVar(&level, "level", "", "set level (error|warn|info|debug|trace)")
	fs.BoolVarP(&show, "show", "s", false, "show the current level")
	if err := fs.Parse(args); err != nil {
		return err
	}

	switch {
	case show && vcount == 0 && level == "":
		fmt.Printf("log level: %s (-v x%d)\n", logging.LevelName(), logging.Verbosity())
		return nil
	case level != "":
		_, count, err := logging.ParseLevel(level)
		if err != nil {
			return err
		}
		*sessionVerbosity = count
	case vcount > 0:
		*sessionVerbosity = vcount
	default:
		fmt.Printf("log level: %s (-v x%d)\n", logging.LevelName(), logging.Verbosity())
		return nil
	}

	verbosity = *sessionVerbosity
	logging.SetVerbosity(*sessionVerbosity)
	fmt.Printf("log level set to %s (-v x%d)\n", logging.LevelName(), logging.Verbosity())
	return nil
}

func printShellHelp() {
	fmt.Println(`Examples:
  run --preset std-7-3x6x3         # run a preset interactively
  run --work 10 --rest 5 --reps 6  # run a custom repeater
  plan --workout repeater-7-3      # print a workout's segments
  presets list                     # list presets
  presets save "Mine" --work 8     # save the current config under a name
  workouts import plan.toml        # import a workout file
  settings set --theme gong        # change the sound theme
  stopwatch                        # start the stopwatch
  serve --addr 127.0.0.1:8787      # web UI and API
  config set --desktop true        # turn on desktop notifications
  log -vv                          # more log detail
  log --show                       # show the log level
  exit / quit                      # leave the shell`)
}
