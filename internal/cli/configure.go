package cli

import (
	"flag"
	"fmt"
	"io"

	"slidesmith/pkg/deck"
)

// runConfigure builds the handler for the configure command. Only flags the
// caller set are sent, so the server keeps every other setting as is.
func runConfigure(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}

		fs := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		fs.SetOutput(stderr)
		opts := addClientFlags(fs)
		theme := fs.String("theme", "", "Theme name")
		font := fs.String("font", "", "Font family override")
		ratio := fs.String("ratio", "", "Aspect ratio key")
		width := fs.Float64("width", 0, "Custom page width in inches")
		height := fs.Float64("height", 0, "Custom page height in inches")
		if err := fs.Parse(args); err != nil {
			return ExitUsage
		}
		id := fs.Arg(0)
		if id == "" {
			fmt.Fprintln(stderr, "Missing <id>")
			return ExitUsage
		}

		var req deck.ConfigureRequest
		set := false
		fs.Visit(func(f *flag.Flag) {
			switch f.Name {
			case "theme":
				req.Theme = theme
				set = true
			case "font":
				req.Font = font
				set = true
			case "ratio":
				req.AspectRatio = ratio
				set = true
			case "width":
				req.CustomWidth = width
				set = true
			case "height":
				req.CustomHeight = height
				set = true
			}
		})
		if !set {
			fmt.Fprintln(stderr, "Nothing to configure: pass at least one styling flag")
			return ExitUsage
		}
		if err := req.Validate(); err != nil {
			fmt.Fprintf(stderr, "Invalid request: %v\n", err)
			return ExitUsage
		}

		p, err := opts.newClient().Configure(commandContext(), id, req)
		if err != nil {
			printClientError(stderr, err)
			return ExitError
		}
		fmt.Fprintf(stdout, "Configured %s: theme=%s font=%s ratio=%s\n", p.ID, p.Theme, p.Font, p.AspectRatio)
		return ExitOK
	}
}
