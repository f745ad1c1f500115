package cli

import (
	"flag"
	"fmt"
	"io"

	"slidesmith/internal/ui/watch"
)

// runStatus builds the handler for the status command.
func runStatus(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}

		fs := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		fs.SetOutput(stderr)
		opts := addClientFlags(fs)
		if err := fs.Parse(args); err != nil {
			return ExitUsage
		}

		snapshot, err := opts.newClient().AdmissionSnapshot(commandContext())
		if err != nil {
			printClientError(stderr, err)
			return ExitError
		}
		fmt.Fprint(stdout, watch.FormatSnapshot(snapshot))
		return ExitOK
	}
}
