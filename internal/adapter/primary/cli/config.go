package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"hangtimer/internal/config"
	"hangtimer/internal/logging"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change the config file",
	}
	cmd.AddCommand(newConfigGetCmd(), newConfigSetCmd())
	return cmd
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get",
		Short: "Print the effective config (YAML)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := config.NewFileStore(cfgPath)
			if err != nil {
				return err
			}
			cfg, err := st.Load()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "# %s\n", st.Path())
			return writeConfig(cmd.OutOrStdout(), cfg)
		},
	}
}

type configFlags struct {
	addr     string
	frameMs  int
	terminal string
	desktop  string
	logLevel string
}

func newConfigSetCmd() *cobra.Command {
	var f configFlags
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Update the config file",
		Long: "Update the config file. Only the flags given are changed; --store-driver and --store\n" +
			"are saved instead of applied as one-off overrides. HANGTIMER_* variables in effect\n" +
			"are saved too.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := config.NewFileStore(cfgPath)
			if err != nil {
				return err
			}
			changed := cmd.Flags().Changed
			if !changed("store-driver") && !changed("store") && !changed("addr") && !changed("frame-ms") &&
				!changed("terminal") && !changed("desktop") && !changed("log-level") {
				return errors.New("nothing to change")
			}
			cfg, err := updateConfig(st, func(cfg *config.Config) error {
				return f.apply(cfg, changed)
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved %s\n", st.Path())
			return writeConfig(cmd.OutOrStdout(), cfg)
		},
	}
	cmd.Flags().StringVar(&f.addr, "addr", config.DefaultWebAddr, "web server listen address")
	cmd.Flags().IntVar(&f.frameMs, "frame-ms", int(config.DefaultFrameInterval.Milliseconds()), "session tick period in milliseconds")
	cmd.Flags().StringVar(&f.terminal, "terminal", "", "terminal bell and banners: true or false")
	cmd.Flags().StringVar(&f.desktop, "desktop", "", "desktop notifications: true or false")
	cmd.Flags().StringVar(&f.logLevel, "log-level", "", "error, warn, info, debug or trace")
	return cmd
}

// apply copies every changed flag onto cfg. The store flags are the root
// persistent ones.
func (f configFlags) apply(cfg *config.Config, changed func(string) bool) error {
	if changed("store-driver") {
		driver := strings.ToLower(storeDriver)
		if driver != config.DriverFile && driver != config.DriverSQLite {
			return fmt.Errorf("unknown store driver %q", storeDriver)
		}
		cfg.Store.Driver = driver
	}
	if changed("store") {
		cfg.Store.Path = storePath
	}
	if changed("addr") {
		if strings.TrimSpace(f.addr) == "" {
			return errors.New("--addr must not be empty")
		}
		cfg.Web.Addr = f.addr
	}
	if changed("frame-ms") {
		if f.frameMs <= 0 {
			return errors.New("--frame-ms must be positive")
		}
		cfg.FrameIntervalMs = f.frameMs
	}
	for _, b := range []struct {
		name, value string
		dst         *bool
	}{
		{"terminal", f.terminal, &cfg.Notify.Terminal},
		{"desktop", f.desktop, &cfg.Notify.Desktop},
	} {
		if !changed(b.name) {
			continue
		}
		v, err := strconv.ParseBool(b.value)
		if err != nil {
			return fmt.Errorf("--%s expects true or false", b.name)
		}
		*b.dst = v
	}
	if changed("log-level") {
		if _, _, err := logging.ParseLevel(f.logLevel); err != nil {
			return err
		}
		cfg.LogLevel = strings.ToLower(f.logLevel)
	}
	return nil
}

// updateConfig loads, mutates, normalizes and saves in one step.
func updateConfig(st config.Store, mutate func(*config.Config) error) (config.Config, error) {
	cfg, err := st.Load()
	if err != nil {
		return config.Config{}, err
	}
	if err := mutate(&cfg); err != nil {
		return config.Config{}, err
	}
	cfg = config.Normalize(cfg)
	if err := st.Save(cfg); err != nil {
		return config.Config{}, fmt.Errorf("save config: %w", err)
	}
	return cfg, nil
}

func writeConfig(w io.Writer, cfg config.Config) error {
	out, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}
