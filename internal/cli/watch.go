package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"slidesmith/internal/ui/watch"
)

// runLiveWatch is a test seam for launching the Bubble Tea program.
var runLiveWatch = watch.Run

// runWatch builds the handler for the watch command.
func runWatch(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}

		fs := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		fs.SetOutput(stderr)
		opts := addClientFlags(fs)
		interval := fs.Duration("interval", time.Second, "Poll interval")
		uiMode := fs.String("ui", "auto", "UI mode: auto, live, or plain")
		noColor := fs.Bool("no-color", false, "Disable colored output")
		if err := fs.Parse(args); err != nil {
			return ExitUsage
		}

		decision, err := resolveUIMode(*uiMode, stdout)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return ExitUsage
		}
		if decision.warning != "" {
			fmt.Fprintln(stderr, decision.warning)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		events := watch.Poll(ctx, opts.newClient(), *interval)
		if decision.useLive {
			if err := runLiveWatch(events, watch.Options{NoColor: *noColor}); err != nil {
				fmt.Fprintf(stderr, "Watch error: %v\n", err)
				return ExitError
			}
			return ExitOK
		}
		if err := watch.RunPlain(events, stdout); err != nil {
			fmt.Fprintf(stderr, "Watch error: %v\n", err)
			return ExitError
		}
		return ExitOK
	}
}
