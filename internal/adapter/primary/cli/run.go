package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"

	"github.com/chzyer/readline"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"hangtimer/internal/adapter/secondary/clock"
	"hangtimer/internal/adapter/secondary/notify"
	"hangtimer/internal/domain"
	"hangtimer/internal/logging"
	"hangtimer/internal/usecase"
)

// Local commands handled by the runner rather than the session.
const (
	keyStatus = "status"
	keyMute   = "mute"
	keyQuit   = "quit"
)

// runKeys maps single keypresses to session actions or local commands.
var runKeys = map[rune]string{
	' ':                string(usecase.ActionToggle),
	readline.CharEnter: string(usecase.ActionToggle),
	readline.CharCtrlJ: string(usecase.ActionToggle),
	'n':                string(usecase.ActionNext),
	'>':                string(usecase.ActionNext),
	'p':                string(usecase.ActionPrev),
	'<':                string(usecase.ActionPrev),
	'r':                string(usecase.ActionReset),
	's':                keyStatus,
	'm':                keyMute,
	'q':                keyQuit,
}

func lookupKey(r rune) (string, bool) {
	key, ok := runKeys[r]
	return key, ok
}

func newRunCmd() *cobra.Command {
	var (
		flags     planFlags
		autostart bool
		cues      bool
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a timer with single-key controls",
		Long: `Run a preset, workout or plan file.

Keys: space/enter start or pause, n or > next, p or < previous,
r reset, s status, m mute, q quit.

When stdin is not a terminal the timer starts immediately and exits when done.`,
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
			if flags.preset != "" {
				if _, err := a.presets.Select(flags.preset); err != nil {
					logging.Warnf("remember preset: %v", err)
				}
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			fd := os.Stdin.Fd()
			if !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd) {
				return runHeadless(ctx, a, plan, cues, cmd.OutOrStdout())
			}
			return runInteractive(ctx, a, plan, autostart, cues)
		},
	}
	flags.register(cmd.Flags())
	cmd.Flags().BoolVar(&autostart, "autostart", false, "start immediately")
	cmd.Flags().BoolVar(&cues, "cues", true, "print a line for every sound cue")
	return cmd
}

// sinks builds the configured notifiers. The returned terminal is nil when
// terminal cues are disabled in config.
func (a *app) sinks(out io.Writer, showText bool) (*notify.Terminal, domain.Notifier, func()) {
	var (
		terminal *notify.Terminal
		multi    notify.Multi
		closers  []func() error
	)
	if a.cfg.Notify.Terminal {
		terminal = notify.NewTerminal(out, a.presets.Settings(), showText)
		multi = append(multi, terminal)
	}
	if a.cfg.Notify.Desktop {
		d, err := notify.NewDesktop()
		if err != nil {
			logging.Warnf("desktop notifications unavailable: %v", err)
		} else {
			multi = append(multi, d)
			closers = append(closers, d.Close)
		}
	}
	cleanup := func() {
		for _, c := range closers {
			if err := c(); err != nil {
				logging.Debugf("close sink: %v", err)
			}
		}
	}
	return terminal, multi, cleanup
}

func (a *app) newSession(plan resolvedPlan, sink domain.Notifier) usecase.SessionUseCase {
	return usecase.NewSessionUseCase(clock.System{}, sink, a.cfg.FrameInterval(),
		plan.Title, plan.Segments, usecase.EngineOptions(a.presets.Settings()))
}

func runHeadless(ctx context.Context, a *app, plan resolvedPlan, cues bool, out io.Writer) error {
	_, sink, closeSinks := a.sinks(out, cues)
	defer closeSinks()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	session := a.newSession(plan, sink)
	session.Start(ctx)
	updates, unsubscribe := session.Subscribe(256)
	defer unsubscribe()

	fmt.Fprintf(out, "%s: %d segments, %s\n", plan.Title, len(plan.Segments),
		domain.FormatHMS(float64(domain.TotalSeconds(plan.Segments))))
	if _, err := session.Do(usecase.ActionStart); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			fmt.Fprintln(out, session.Snapshot().String())
			return nil
		case u, ok := <-updates:
			if !ok {
				return nil
			}
			if u.Type != usecase.UpdateEvent {
				continue
			}
			switch u.Event.Type {
			case domain.EventSegmentStart:
				fmt.Fprintf(out, "%s %s (%s)\n", u.Event.At.Format("15:04:05"), u.Event.Label,
					domain.FormatHMS(float64(plan.Segments[u.Event.Index].Seconds)))
			case domain.EventSequenceFinished:
				fmt.Fprintln(out, "Workout complete.")
				return nil
			}
		}
	}
}

func runInteractive(ctx context.Context, a *app, plan resolvedPlan, autostart, cues bool) error {
	keys := make(chan string, 8)
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "> ",
		InterruptPrompt: "^C",
		FuncFilterInputRune: func(r rune) (rune, bool) {
			key, ok := lookupKey(r)
			if !ok {
				return r, false
			}
			if key == keyQuit {
				return readline.CharInterrupt, true
			}
			select {
			case keys <- key:
			default:
			}
			return r, false
		},
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	terminal, sink, closeSinks := a.sinks(rl.Stdout(), cues)
	defer closeSinks()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	session := a.newSession(plan, sink)
	session.Start(ctx)
	updates, unsubscribe := session.Subscribe(64)
	defer unsubscribe()

	r := &runner{
		session:  session,
		settings: a.presets,
		terminal: terminal,
		out:      rl.Stdout(),
		prompt:   rl,
	}
	fmt.Fprintf(r.out, "%s: %d segments, %s\n", plan.Title, len(plan.Segments),
		domain.FormatHMS(float64(domain.TotalSeconds(plan.Segments))))
	fmt.Fprintln(r.out, "space start/pause  n next  p prev  r reset  s status  m mute  q quit")
	r.refresh(session.Snapshot())
	if autostart {
		r.handleKey(string(usecase.ActionStart))
	}

	go r.watch(ctx, updates)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case key := <-keys:
				r.handleKey(key)
			}
		}
	}()
	go func() {
		<-ctx.Done()
		_ = rl.Close()
	}()

	for {
		if _, err := rl.Readline(); err != nil {
			break
		}
	}
	cancel()
	fmt.Fprintln(os.Stdout, session.Snapshot().String())
	return nil
}

// prompter is the part of readline the runner redraws.
type prompter interface {
	SetPrompt(prompt string)
	Refresh()
}

// settingsStore persists the mute toggle.
type settingsStore interface {
	UpdateSettings(mutate func(*domain.Settings)) (domain.Settings, error)
}

// runner turns keypresses into session calls and keeps the prompt current.
type runner struct {
	session  usecase.SessionUseCase
	settings settingsStore
	terminal *notify.Terminal
	out      io.Writer
	prompt   prompter

	mu   sync.Mutex
	last string
}

func (r *runner) handleKey(key string) {
	switch key {
	case keyStatus:
		fmt.Fprintln(r.out, statusLine(r.session.Title(), r.session.Snapshot()))
	case keyMute:
		r.toggleMute()
	default:
		action, err := usecase.ParseAction(key)
		if err != nil {
			logging.Debugf("run: %v", err)
			return
		}
		snap, err := r.session.Do(action)
		if err != nil {
			logging.Warnf("run: %s: %v", action, err)
			return
		}
		r.refresh(snap)
	}
}

func (r *runner) toggleMute() {
	if r.terminal == nil {
		fmt.Fprintln(r.out, "terminal cues are disabled in config")
		return
	}
	enabled := !r.terminal.Enabled()
	r.terminal.SetEnabled(enabled)
	if _, err := r.settings.UpdateSettings(func(s *domain.Settings) { s.SoundEnabled = enabled }); err != nil {
		logging.Warnf("save sound setting: %v", err)
	}
	if enabled {
		fmt.Fprintln(r.out, "sound on")
	} else {
		fmt.Fprintln(r.out, "sound off")
	}
}

func (r *runner) watch(ctx context.Context, updates <-chan usecase.Update) {
	for {
		select {
		case <-ctx.Done():
			return
		case u, ok := <-updates:
			if !ok {
				return
			}
			switch {
			case u.Type == usecase.UpdateEvent && u.Event.Type == domain.EventSequenceFinished:
				fmt.Fprintln(r.out, "Workout complete. r restarts, q quits.")
			case u.Type == usecase.UpdateSnapshot:
				r.refresh(*u.Snapshot)
			}
		}
	}
}

// refresh redraws the prompt when its text changed, about once a second
// while running.
func (r *runner) refresh(snap domain.Snapshot) {
	p := promptFor(snap)
	r.mu.Lock()
	if p == r.last {
		r.mu.Unlock()
		return
	}
	r.last = p
	r.mu.Unlock()
	r.prompt.SetPrompt(p)
	r.prompt.Refresh()
}

func promptFor(snap domain.Snapshot) string {
	return snap.String() + " > "
}

func statusLine(title string, snap domain.Snapshot) string {
	line := fmt.Sprintf("%s %s (segment %d/%d)", title, snap.String(), snap.SegmentIndex+1, snap.SegmentCount)
	if snap.Next != nil {
		line += " next: " + snap.Next.Label
	}
	return line
}
