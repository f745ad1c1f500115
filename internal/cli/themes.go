package cli

import (
	"flag"
	"fmt"
	"io"
)

// runThemes builds the handler for the themes command.
func runThemes(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
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

		catalog, err := opts.newClient().Themes(commandContext())
		if err != nil {
			printClientError(stderr, err)
			return ExitError
		}

		fmt.Fprintln(stdout, "Themes:")
		for _, theme := range catalog.Themes {
			fmt.Fprintf(stdout, "  %-10s %-10s font=%s primary=%s accent=%s\n",
				theme.Key, theme.Name, theme.Font, theme.Colors.Primary, theme.Colors.Accent)
		}
		fmt.Fprintln(stdout, "\nAspect ratios:")
		for _, ratio := range catalog.AspectRatios {
			fmt.Fprintf(stdout, "  %-6s %-18s %.2fx%.2f in (%s)\n",
				ratio.Key, ratio.Name, ratio.Width, ratio.Height, ratio.Orientation)
		}
		return ExitOK
	}
}
