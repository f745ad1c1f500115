package cli

import (
	"flag"
	"fmt"
	"io"
	"os"
)

// runDownload builds the handler for the download command.
func runDownload(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}

		fs := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		fs.SetOutput(stderr)
		opts := addClientFlags(fs)
		out := fs.String("out", "", "Output path (defaults to <id>.pptx)")
		if err := fs.Parse(args); err != nil {
			return ExitUsage
		}
		id := fs.Arg(0)
		if id == "" {
			fmt.Fprintln(stderr, "Missing <id>")
			return ExitUsage
		}

		data, err := opts.newClient().Download(commandContext(), id)
		if err != nil {
			printClientError(stderr, err)
			return ExitError
		}

		path := *out
		if path == "" {
			path = id + ".pptx"
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			fmt.Fprintf(stderr, "Write failed: %v\n", err)
			return ExitError
		}
		fmt.Fprintf(stdout, "Wrote %s (%d bytes)\n", path, len(data))
		return ExitOK
	}
}
