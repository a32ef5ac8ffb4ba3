// Copyright 2026 The Codexbridge Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/pflag"
)

// Command represents a CLI command or subcommand.
type Command struct {
	// Name is the command name as typed by the user (e.g., "status").
	Name string

	// Summary is a one-line description shown in the parent's help listing.
	Summary string

	// Description is a detailed multi-line description shown in the command's
	// own help output.
	Description string

	// Usage is the usage string (e.g., "codexbridge status [flags]").
	// If empty, it is synthesized from the command path and subcommands.
	Usage string

	// Examples are shown in the help output after the description.
	Examples []Example

	// Flags returns a configured *pflag.FlagSet for this command. Called
	// lazily on first use. If nil, the command accepts no flags.
	Flags func() *pflag.FlagSet

	// Subcommands are nested commands dispatched by the first positional arg.
	Subcommands []*Command

	// Run executes the command with the remaining args (after flag parsing).
	// When Subcommands are also set, Run handles the case where no
	// subcommand is named.
	Run func(ctx context.Context, args []string) error

	// Stdout receives requested help output and Stderr receives usage
	// printed alongside an error. Only the root's values matter;
	// subcommands inherit them. Nil means os.Stdout and os.Stderr.
	Stdout io.Writer
	Stderr io.Writer

	// parent is set during dispatch to build the full command path for help.
	parent *Command
}

// Example is a usage example shown in help output.
type Example struct {
	// Description explains what the example does.
	Description string
	// Command is the literal command line.
	Command string
}

// UsageError reports a command line the tree cannot dispatch. Usage
// has already been written to stderr when it is returned.
type UsageError struct {
	Message string
}

func (e *UsageError) Error() string { return e.Message }

// Usagef builds a UsageError. Run functions return it for bad
// positional arguments.
func Usagef(format string, args ...any) *UsageError {
	return &UsageError{Message: fmt.Sprintf(format, args...)}
}

// Execute parses args and dispatches to the appropriate subcommand or Run
// function. This is the main entry point for the command tree.
func (c *Command) Execute(ctx context.Context, args []string) error {
	// Check for help flags before anything else.
	if len(args) > 0 && isHelpFlag(args[0]) {
		c.PrintHelp(c.stdout())
		return nil
	}

	if len(c.Subcommands) > 0 && len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		name := args[0]
		for _, sub := range c.Subcommands {
			if sub.Name == name {
				sub.parent = c
				return sub.Execute(ctx, args[1:])
			}
		}

		// Unknown subcommand: suggest the closest match.
		if suggestion := suggestCommand(name, c.Subcommands); suggestion != "" {
			return c.usageError("unknown command %q (did you mean %q?)", name, suggestion)
		}
		return c.usageError("unknown command %q", name)
	}

	if len(c.Subcommands) > 0 && c.Run == nil {
		if len(args) == 0 {
			return c.usageError("subcommand required")
		}
		return c.usageError("subcommand required (got flag %q)", args[0])
	}

	// Parse flags if defined.
	if c.Flags != nil {
		flagSet := c.Flags()

		// Suppress pflag's own error output and usage dump. We format
		// our own error messages with suggestions.
		flagSet.SetOutput(io.Discard)

		if err := flagSet.Parse(args); err != nil {
			message := err.Error()
			if strings.Contains(message, "unknown") {
				// A fresh flag set for suggestion lookup; the failed
				// parse may have consumed state.
				if suggestion := suggestFlag(args, c.Flags()); suggestion != "" {
					return c.usageError("%s (did you mean %s?)", message, suggestion)
				}
			}
			return c.usageError("%s", message)
		}
		args = flagSet.Args()
	} else if len(args) > 0 && strings.HasPrefix(args[0], "-") {
		return c.usageError("unknown flag %q", args[0])
	}

	if c.Run != nil {
		return c.Run(ctx, args)
	}
	return c.usageError("no action defined for %q", c.fullName())
}

// usageError prints help to stderr and returns the message as a
// UsageError.
func (c *Command) usageError(format string, args ...any) error {
	c.PrintHelp(c.stderr())
	return &UsageError{Message: fmt.Sprintf(format, args...) + fmt.Sprintf("; run '%s --help' for usage", c.fullName())}
}

// PrintHelp writes structured help output to w.
func (c *Command) PrintHelp(w io.Writer) {
	name := c.fullName()

	if c.Description != "" {
		fmt.Fprintf(w, "%s\n\n", c.Description)
	} else if c.Summary != "" {
		fmt.Fprintf(w, "%s\n\n", c.Summary)
	}

	if c.Usage != "" {
		fmt.Fprintf(w, "Usage:\n  %s\n", c.Usage)
	} else if len(c.Subcommands) > 0 {
		fmt.Fprintf(w, "Usage:\n  %s [command] [flags]\n", name)
	} else {
		fmt.Fprintf(w, "Usage:\n  %s [flags]\n", name)
	}

	if len(c.Subcommands) > 0 {
		fmt.Fprintf(w, "\nCommands:\n")
		tw := tabwriter.NewWriter(w, 2, 0, 3, ' ', 0)
		for _, sub := range c.Subcommands {
			fmt.Fprintf(tw, "  %s\t%s\n", sub.Name, sub.Summary)
		}
		tw.Flush()
	}

	if c.Flags != nil {
		var flagHelp strings.Builder
		flagSet := c.Flags()
		flagSet.SetOutput(&flagHelp)
		flagSet.PrintDefaults()
		if flagHelp.Len() > 0 {
			fmt.Fprintf(w, "\nFlags:\n%s", flagHelp.String())
		}
	}

	if len(c.Examples) > 0 {
		fmt.Fprintf(w, "\nExamples:\n")
		for _, example := range c.Examples {
			if example.Description != "" {
				fmt.Fprintf(w, "  # %s\n", example.Description)
			}
			fmt.Fprintf(w, "  %s\n", example.Command)
			if example.Description != "" {
				fmt.Fprintln(w)
			}
		}
	}

	if len(c.Subcommands) > 0 {
		fmt.Fprintf(w, "\nRun '%s <command> --help' for more information on a command.\n", name)
	}
}

// fullName returns the complete command path (e.g., "codexbridge status").
func (c *Command) fullName() string {
	if c.parent == nil {
		return c.Name
	}
	return c.parent.fullName() + " " + c.Name
}

func (c *Command) root() *Command {
	for c.parent != nil {
		c = c.parent
	}
	return c
}

func (c *Command) stdout() io.Writer {
	if out := c.root().Stdout; out != nil {
		return out
	}
	return os.Stdout
}

func (c *Command) stderr() io.Writer {
	if out := c.root().Stderr; out != nil {
		return out
	}
	return os.Stderr
}

// isHelpFlag returns true for common help flag variants.
func isHelpFlag(arg string) bool {
	return arg == "-h" || arg == "--help" || arg == "help"
}
