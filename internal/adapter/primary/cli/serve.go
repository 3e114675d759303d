package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"hangtimer/internal/adapter/primary/web"
	"hangtimer/internal/domain"
	"hangtimer/internal/logging"
)

func newServeCmd() *cobra.Command {
	var (
		flags planFlags
		addr  string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web UI, REST API and websocket stream",
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
			if addr == "" {
				addr = a.cfg.Web.Addr
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			terminal, sink, closeSinks := a.sinks(cmd.OutOrStdout(), false)
			defer closeSinks()
			session := a.newSession(plan, sink)
			session.Start(ctx)

			srv := web.NewServer(session, a.presets, addr, logging.Logger())
			srv.OnSettingsChange(func(s domain.Settings) {
				if terminal != nil {
					terminal.Apply(s)
				}
			})
			fmt.Fprintf(cmd.OutOrStdout(), "Hangtimer running at http://%s\n", addr)
			logging.Infof("web UI: http://%s (%s)", addr, plan.Title)

			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = srv.Shutdown(shutdownCtx)
			}()

			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Server shutting down...")
			return nil
		},
	}
	flags.register(cmd.Flags())
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, 127.0.0.1:8787)")
	return cmd
}
