package cli

import (
	"flag"
	"fmt"
	"io"
)

// runGet builds the handler for the get command.
func runGet(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
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
		id := fs.Arg(0)
		if id == "" {
			fmt.Fprintln(stderr, "Missing <id>")
			return ExitUsage
		}

		p, err := opts.newClient().Get(commandContext(), id)
		if err != nil {
			printClientError(stderr, err)
			return ExitError
		}
		printPresentation(stdout, p)
		return ExitOK
	}
}

// runDelete builds the handler for the delete command.
func runDelete(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
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
		id := fs.Arg(0)
		if id == "" {
			fmt.Fprintln(stderr, "Missing <id>")
			return ExitUsage
		}

		if err := opts.newClient().Delete(commandContext(), id); err != nil {
			printClientError(stderr, err)
			return ExitError
		}
		fmt.Fprintf(stdout, "Deleted %s\n", id)
		return ExitOK
	}
}
