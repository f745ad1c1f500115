package cli

import (
	"flag"
	"fmt"
	"io"
)

// runList builds the handler for the list command.
func runList(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}

		fs := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		fs.SetOutput(stderr)
		opts := addClientFlags(fs)
		limit := fs.Int("limit", 0, "Maximum presentations to return (server default when 0)")
		offset := fs.Int("offset", 0, "Presentations to skip")
		if err := fs.Parse(args); err != nil {
			return ExitUsage
		}

		presentations, err := opts.newClient().List(commandContext(), *limit, *offset)
		if err != nil {
			printClientError(stderr, err)
			return ExitError
		}
		printPresentationList(stdout, presentations)
		return ExitOK
	}
}

// runSearch builds the handler for the search command.
func runSearch(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
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
		topic := fs.Arg(0)
		if topic == "" {
			fmt.Fprintln(stderr, "Missing <topic>")
			return ExitUsage
		}

		presentations, err := opts.newClient().Search(commandContext(), topic)
		if err != nil {
			printClientError(stderr, err)
			return ExitError
		}
		printPresentationList(stdout, presentations)
		return ExitOK
	}
}
