// Cmd dispatches the subcommands of the lanyard binaries
package cmd

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"sort"

	"golang.org/x/exp/slices"
)

// CommandLineState holds the commands of a binary
type CommandLineState struct {
	Commands map[string]Command

	// Returns the header (program name, version etc.) printed with help
	GetHeader func() string

	// Defaults to os.Stdout
	Output io.Writer
}

// Returns the vcs.revision the binary was built from, if known
func GetGitCommit() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			if setting.Key == "vcs.revision" {
				return setting.Value
			}
		}
	}

	return ""
}

type Command struct {
	// Returns the exit code of the binary
	Func        func(progname string, args []string) int
	Help        string
	Usage       string
	Example     string
	Subcommands map[string]Command
	ArgValidate func(args []string) error
}

func (c *Command) Validate(args []string) error {
	if c.ArgValidate != nil {
		if err := c.ArgValidate(args); err != nil {
			return fmt.Errorf("invalid arguments: %w", err)
		}
	}

	return nil
}

// ExactArgs returns an ArgValidate requiring n arguments
func ExactArgs(n int, names ...string) func(args []string) error {
	return func(args []string) error {
		if len(args) != n {
			if len(names) > 0 {
				return fmt.Errorf("expected %d argument(s): %v, got %d", n, names, len(args))
			}

			return fmt.Errorf("expected %d argument(s), got %d", n, len(args))
		}

		return nil
	}
}

// FindCommandByArgs resolves args to a command (walking subcommands) and returns the remaining args
func FindCommandByArgs(cmds map[string]Command, args []string) (*Command, []string, error) {
	if len(args) == 0 {
		return nil, args, fmt.Errorf("no command provided")
	}

	c, ok := cmds[args[0]]
	if !ok {
		return nil, args, fmt.Errorf("unknown command: %s", args[0])
	}

	if c.Subcommands == nil {
		return &c, args[1:], nil
	}

	if len(args) < 2 {
		if c.Func != nil {
			return &c, args[1:], nil
		}

		return &c, args, fmt.Errorf("no subcommand provided")
	}

	sub, ok := c.Subcommands[args[1]]

	if !ok {
		return &c, args, fmt.Errorf("unknown subcommand: %s %s", args[0], args[1])
	}

	if sub.Subcommands != nil && len(args) > 2 {
		return FindCommandByArgs(sub.Subcommands, args[2:])
	}

	if sub.Func == nil {
		return &sub, args[2:], fmt.Errorf("no subcommand provided")
	}

	return &sub, args[2:], nil
}

func (c *Command) GetUsage() string {
	initial := c.Help

	if c.Usage != "" {
		initial += "\n\nUsage: " + c.Usage
	}

	if c.Example != "" {
		initial += "\n\nExample: " + c.Example
	}

	if c.Subcommands != nil {
		initial += "\n\nSubcommands:"

		for _, k := range sortedKeys(c.Subcommands) {
			initial += fmt.Sprintf("\n%s: %s", k, c.Subcommands[k].Help)
		}
	}

	return initial
}

func sortedKeys(cmds map[string]Command) []string {
	keys := make([]string, 0, len(cmds))

	for k := range cmds {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}

// CmdListToArray lists the commands, sorted by name
func CmdListToArray(cmds map[string]Command) []string {
	s := []string{"Commands:"}

	for _, k := range sortedKeys(cmds) {
		s = append(s, k+": "+cmds[k].Help)
	}

	return s
}

func CmdList(w io.Writer, cmds map[string]Command) {
	for _, line := range CmdListToArray(cmds) {
		fmt.Fprintln(w, line)
	}
}

func (s *CommandLineState) output() io.Writer {
	if s.Output == nil {
		return os.Stdout
	}

	return s.Output
}

func (s *CommandLineState) header() string {
	if s.GetHeader == nil {
		return ""
	}

	return s.GetHeader()
}

// Exec runs the command named by args and returns the exit code
func (s *CommandLineState) Exec(progname string, args []string) int {
	w := s.output()

	if len(args) == 0 {
		fmt.Fprintf(w, "usage: %s <command> [args]\n\n", progname)
		CmdList(w, s.Commands)
		return 1
	}

	cmd, args, err := FindCommandByArgs(s.Commands, args)

	if slices.Contains(args, "-h") || slices.Contains(args, "--help") {
		fmt.Fprintf(w, "%s\n\n", s.header())
		fmt.Fprintf(w, "structure: %s <command> [args]\n\n", progname)

		if cmd != nil {
			fmt.Fprintf(w, "%s\n\n", cmd.GetUsage())
		} else {
			CmdList(w, s.Commands)
		}

		return 1
	}

	if err != nil {
		fmt.Fprintf(w, "error: %s\n\n", err)

		if cmd != nil {
			fmt.Fprintf(w, "structure: %s [args]\n%s\n\n", progname, cmd.GetUsage())
		} else {
			CmdList(w, s.Commands)
		}

		return 1
	}

	if err := cmd.Validate(args); err != nil {
		fmt.Fprintf(w, "error: %s\n\n", err)
		fmt.Fprintf(w, "structure: %s [args]\n%s\n\n", progname, cmd.GetUsage())
		return 1
	}

	return cmd.Func(progname, args)
}

// Run executes os.Args and exits with the command's exit code
func (s *CommandLineState) Run() {
	os.Exit(s.Exec(os.Args[0], os.Args[1:]))
}
