package cli

import (
	"fmt"
	"io"
)

const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

type Command struct {
	Name    string
	Summary string
	Usage   []string
	Run     func(args []string, stdout, stderr io.Writer) int
}

func Run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		printUsage(stdout)
		return ExitUsage
	}
	if isHelpArg(args[0]) {
		printUsage(stdout)
		return ExitOK
	}

	cmd := findCommand(args[0])
	if cmd == nil {
		fmt.Fprintf(stderr, "Unknown command: %s\n\n", args[0])
		printUsage(stderr)
		return ExitUsage
	}

	return cmd.Run(args[1:], stdout, stderr)
}

func findCommand(name string) *Command {
	for _, cmd := range commands {
		if cmd.Name == name {
			return cmd
		}
	}
	return nil
}

func isHelpArg(arg string) bool {
	switch arg {
	case "-h", "--help", "help":
		return true
	default:
		return false
	}
}

func wantsHelp(args []string) bool {
	for _, arg := range args {
		switch arg {
		case "-h", "--help":
			return true
		}
	}
	return false
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  slidesmith <command> [options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	for _, cmd := range commands {
		fmt.Fprintf(w, "  %-10s %s\n", cmd.Name, cmd.Summary)
	}
	fmt.Fprintln(w, "\nUse \"slidesmith <command> --help\" for more information.")
}

func printCommandUsage(cmd *Command, w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	for _, line := range cmd.Usage {
		fmt.Fprintf(w, "  %s\n", line)
	}
	if cmd.Summary != "" {
		fmt.Fprintf(w, "\n%s\n", cmd.Summary)
	}
}

func command(name, summary string, usage []string, runner func(cmd *Command) func(args []string, stdout, stderr io.Writer) int) *Command {
	cmd := &Command{
		Name:    name,
		Summary: summary,
		Usage:   usage,
	}
	cmd.Run = runner(cmd)
	return cmd
}

var commands = []*Command{
	command("create", "Generate and store a presentation", []string{
		"slidesmith create --topic <topic> [--slides <n>] [--content <text>]",
	}, runCreate),
	command("get", "Show one presentation", []string{
		"slidesmith get <id>",
	}, runGet),
	command("list", "List stored presentations", []string{
		"slidesmith list [--limit <n>] [--offset <n>]",
	}, runList),
	command("search", "Search presentations by topic", []string{
		"slidesmith search <topic>",
	}, runSearch),
	command("configure", "Restyle a stored presentation", []string{
		"slidesmith configure <id> [--theme <name>] [--font <name>] [--ratio <key>] [--width <inches>] [--height <inches>]",
	}, runConfigure),
	command("download", "Download a presentation as a PPTX file", []string{
		"slidesmith download <id> [--out <path>]",
	}, runDownload),
	command("delete", "Delete a presentation", []string{
		"slidesmith delete <id>",
	}, runDelete),
	command("themes", "List available themes and page geometries", []string{
		"slidesmith themes",
	}, runThemes),
	command("status", "Show admission limits and pool occupancy", []string{
		"slidesmith status",
	}, runStatus),
	command("watch", "Watch admission pool occupancy live", []string{
		"slidesmith watch [--interval <duration>] [--ui auto|live|plain]",
	}, runWatch),
}
