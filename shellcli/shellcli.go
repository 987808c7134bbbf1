// Shellcli is a small interactive shell used by the lanyard binary
package shellcli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"

	"github.com/go-andiamo/splitter"
)

// ShellCli is a simple shell-like interface with commands
type ShellCli[T any] struct {
	Commands        map[string]*Command[T]
	Splitter        splitter.Splitter
	ArgSplitter     splitter.Splitter
	CaseInsensitive bool
	Prompter        func(*ShellCli[T]) string
	Data            *T

	// Default to os.Stdin and os.Stdout
	Input  io.Reader
	Output io.Writer

	reader *bufio.Reader
}

// Arg is a named argument of a command
type Arg struct {
	Name        string
	Description string
	Default     string
}

// Command is a command for the shell client
type Command[T any] struct {
	Description string
	// Positional arguments are assigned in this order, name=value may be used instead
	Args []Arg
	Run  func(a *ShellCli[T], args map[string]string) error
}

// Out returns the writer commands should print to
func (a *ShellCli[T]) Out() io.Writer {
	if a.Output == nil {
		return os.Stdout
	}

	return a.Output
}

// Returns a help command
func (a *ShellCli[T]) Help() *Command[T] {
	return &Command[T]{
		Description: "Get help for a command",
		Args: []Arg{
			{Name: "command", Description: "Command to get help for"},
		},
		Run: func(a *ShellCli[T], args map[string]string) error {
			w := a.Out()

			if arg := args["command"]; arg != "" {
				cmd, ok := a.Commands[arg]

				if !ok {
					return fmt.Errorf("unknown command: %s", arg)
				}

				fmt.Fprintln(w, "Command:", arg)
				fmt.Fprintln(w, "Description:", cmd.Description)
				fmt.Fprintln(w, "Arguments:")

				for _, arg := range cmd.Args {
					fmt.Fprintf(w, "  %s: %s (default: %q)\n", arg.Name, arg.Description, arg.Default)
				}

				return nil
			}

			names := make([]string, 0, len(a.Commands))

			for name := range a.Commands {
				names = append(names, name)
			}

			sort.Strings(names)

			fmt.Fprintln(w, "Commands:")

			for _, name := range names {
				fmt.Fprintf(w, "  %s: %s\n", name, a.Commands[name].Description)
			}

			fmt.Fprintln(w, "Use 'help <command>' to get help for a specific command")

			return nil
		},
	}
}

// Init initializes the tokenizers
func (a *ShellCli[T]) Init() error {
	var err error
	a.Splitter, err = splitter.NewSplitter(' ', splitter.DoubleQuotes, splitter.SingleQuotes)

	if err != nil {
		return fmt.Errorf("error initializing tokenizer: %w", err)
	}

	a.Splitter.AddDefaultOptions(splitter.IgnoreEmptyFirst, splitter.IgnoreEmptyLast, splitter.TrimSpaces, splitter.UnescapeQuotes)

	a.ArgSplitter, err = splitter.NewSplitter('=', splitter.DoubleQuotes, splitter.SingleQuotes)

	if err != nil {
		return fmt.Errorf("error initializing arg tokenizer: %w", err)
	}

	a.ArgSplitter.AddDefaultOptions(splitter.IgnoreEmptyFirst, splitter.IgnoreEmptyLast, splitter.TrimSpaces, splitter.UnescapeQuotes)

	return nil
}

// Exec executes an already tokenized command
func (a *ShellCli[T]) Exec(cmd []string) error {
	if len(cmd) == 0 {
		return nil
	}

	cmdName := cmd[0]

	if a.CaseInsensitive {
		cmdName = strings.ToLower(cmdName)
	}

	cmdData, ok := a.Commands[cmdName]

	if !ok {
		return fmt.Errorf("unknown command: %s", cmd[0])
	}

	argMap := make(map[string]string, len(cmdData.Args))

	for _, arg := range cmdData.Args {
		if arg.Default != "" {
			argMap[arg.Name] = arg.Default
		}
	}

	for i, arg := range cmd[1:] {
		fields, err := a.ArgSplitter.Split(arg)

		if err != nil {
			return fmt.Errorf("error splitting argument: %w", err)
		}

		switch len(fields) {
		case 1:
			if i >= len(cmdData.Args) {
				return fmt.Errorf("extra argument: %s", fields[0])
			}

			argMap[cmdData.Args[i].Name] = fields[0]
		case 2:
			argMap[fields[0]] = fields[1]
		default:
			return fmt.Errorf("invalid argument: %s", arg)
		}
	}

	return cmdData.Run(a, argMap)
}

// ExecLine tokenizes and executes one line of input
func (a *ShellCli[T]) ExecLine(line string) error {
	line = strings.TrimSpace(line)

	if line == "" {
		return nil
	}

	tokens, err := a.Splitter.Split(line)

	if err != nil {
		return fmt.Errorf("error splitting command: %w", err)
	}

	if len(tokens) == 0 || tokens[0] == "" {
		return nil
	}

	return a.Exec(tokens)
}

// Prompt reads and executes one line, returning io.EOF once input is exhausted
func (a *ShellCli[T]) Prompt() error {
	if a.reader == nil {
		in := a.Input

		if in == nil {
			in = os.Stdin
		}

		a.reader = bufio.NewReader(in)
	}

	if a.Prompter != nil {
		fmt.Fprint(a.Out(), a.Prompter(a))
	}

	line, err := a.reader.ReadString('\n')

	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return err
	}

	return a.ExecLine(line)
}

// AddCommand adds a command to the shell client
func (a *ShellCli[T]) AddCommand(name string, cmd *Command[T]) {
	if a.Commands == nil {
		a.Commands = make(map[string]*Command[T])
	}

	a.Commands[name] = cmd
}

// Run prompts until input ends, ctx is cancelled or an interrupt is received
func (a *ShellCli[T]) Run(ctx context.Context) error {
	if err := a.Init(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	done := make(chan error, 1)

	go func() {
		for {
			err := a.Prompt()

			if errors.Is(err, io.EOF) {
				done <- nil
				return
			}

			if err != nil {
				fmt.Fprintln(a.Out(), "Error:", err)
			}
		}
	}()

	select {
	case <-ctx.Done():
		fmt.Fprintln(a.Out(), "\nExiting...")
		return nil
	case err := <-done:
		return err
	}
}
