package cmdutil

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// Positional validators return FlagErrors, so Main prints the command's
// usage after the message. Messages name the operands from the command's
// Use line ("address SERVICE PORT" needs SERVICE PORT).

// NoArgs rejects any positional argument. On a command group the argument
// is reported as an unknown subcommand.
func NoArgs(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return nil
	}
	if cmd.HasSubCommands() {
		return FlagErrorf("unknown command %q for %q", args[0], cmd.CommandPath())
	}
	return FlagErrorf("%q takes no arguments, got %q", cmd.CommandPath(), args[0])
}

// ExactArgs requires exactly n arguments.
func ExactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) == n {
			return nil
		}
		return FlagErrorf("%q needs %s, got %s", cmd.CommandPath(), operands(cmd, n), countArgs(len(args)))
	}
}

// RequiresMinArgs requires at least n arguments.
func RequiresMinArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) >= n {
			return nil
		}
		return FlagErrorf("%q needs %s, got %s", cmd.CommandPath(), operands(cmd, n), countArgs(len(args)))
	}
}

// RequiresMaxArgs allows at most n arguments.
func RequiresMaxArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) <= n {
			return nil
		}
		return FlagErrorf("%q takes at most %s, got %s", cmd.CommandPath(), countArgs(n), countArgs(len(args)))
	}
}

// operands returns the positional part of cmd's Use line, or a count of n
// arguments when the Use line names none.
func operands(cmd *cobra.Command, n int) string {
	fields := strings.Fields(cmd.Use)
	var names []string
	for _, f := range fields[min(1, len(fields)):] {
		if f == "[flags]" || f == "--" {
			continue
		}
		names = append(names, f)
	}
	if len(names) == 0 {
		return countArgs(n)
	}
	return strings.Join(names, " ")
}

func countArgs(n int) string {
	if n == 1 {
		return "1 argument"
	}
	return fmt.Sprintf("%d arguments", n)
}
