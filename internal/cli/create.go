package cli

import (
	"flag"
	"fmt"
	"io"

	"slidesmith/pkg/deck"
)

// runCreate builds the handler for the create command.
func runCreate(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}

		fs := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		fs.SetOutput(stderr)
		opts := addClientFlags(fs)
		topic := fs.String("topic", "", "Presentation topic")
		slides := fs.Int("slides", deck.DefaultNumSlides, "Number of content slides")
		content := fs.String("content", "", "Custom content to incorporate")
		if err := fs.Parse(args); err != nil {
			return ExitUsage
		}
		if *topic == "" {
			fmt.Fprintln(stderr, "Missing --topic")
			return ExitUsage
		}

		req := deck.CreateRequest{
			Topic:         *topic,
			NumSlides:     *slides,
			CustomContent: *content,
		}
		if err := req.Validate(); err != nil {
			fmt.Fprintf(stderr, "Invalid request: %v\n", err)
			return ExitUsage
		}

		p, err := opts.newClient().Create(commandContext(), req)
		if err != nil {
			printClientError(stderr, err)
			return ExitError
		}
		fmt.Fprintf(stdout, "Created %s\n", p.ID)
		printPresentation(stdout, p)
		return ExitOK
	}
}
