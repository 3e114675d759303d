package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"hangtimer/internal/adapter/secondary/clock"
	"hangtimer/internal/domain"
)

const stopwatchFrame = 50 * time.Millisecond

func newStopwatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stopwatch",
		Short: "Stopwatch with laps (space start/pause, l lap, L laps, r reset, q quit)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()
			return runStopwatch(ctx, clock.System{})
		},
	}
}

func runStopwatch(ctx context.Context, clk domain.Clock) error {
	keys := make(chan rune, 8)
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          domain.FormatClock(0) + " > ",
		InterruptPrompt: "^C",
		FuncFilterInputRune: func(r rune) (rune, bool) {
			if r == 'q' {
				return readline.CharInterrupt, true
			}
			select {
			case keys <- r:
			default:
			}
			return r, false
		},
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var sw domain.Stopwatch
	fmt.Fprintln(rl.Stdout(), "space start/pause  l lap  L laps  r reset  q quit")
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := clk.NewTicker(stopwatchFrame)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				_ = rl.Close()
				return
			case r := <-keys:
				if line := applyStopwatchKey(&sw, r, clk.Now()); line != "" {
					fmt.Fprintln(rl.Stdout(), line)
				}
			case now := <-ticker.C():
				rl.SetPrompt(domain.FormatClock(sw.Elapsed(now)) + " > ")
				rl.Refresh()
			}
		}
	}()

	for {
		if _, err := rl.Readline(); err != nil {
			break
		}
	}
	cancel()
	<-done
	fmt.Fprintln(os.Stdout, domain.FormatClock(sw.Elapsed(clk.Now())))
	printLaps(os.Stdout, sw.Laps())
	return nil
}

// applyStopwatchKey runs one keypress and returns a line to print, if any.
func applyStopwatchKey(sw *domain.Stopwatch, r rune, now time.Time) string {
	switch r {
	case ' ', readline.CharEnter, readline.CharCtrlJ:
		sw.Toggle(now)
	case 'l':
		if lap, ok := sw.Lap(now); ok {
			return fmt.Sprintf("lap %d  %s  (+%s)", lap.Index, domain.FormatClock(lap.Time), domain.FormatClock(lap.Split))
		}
	case 'L':
		var b strings.Builder
		printLaps(&b, sw.Laps())
		return strings.TrimSuffix(b.String(), "\n")
	case 'r':
		sw.Reset()
		return "reset"
	}
	return ""
}

// printLaps writes laps as a table in the order given. Nothing is written
// for an empty list.
func printLaps(w io.Writer, laps []domain.Lap) {
	if len(laps) == 0 {
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "LAP\tTIME\tSPLIT")
	for _, lap := range laps {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", lap.Index, domain.FormatClock(lap.Time), domain.FormatClock(lap.Split))
	}
	tw.Flush()
}
