package shellcli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type session struct {
	looked []string
}

func newShell(t *testing.T, out *bytes.Buffer) *ShellCli[session] {
	t.Helper()

	s := &ShellCli[session]{
		Data:            &session{},
		Output:          out,
		CaseInsensitive: true,
	}

	require.NoError(t, s.Init())

	s.AddCommand("help", s.Help())
	s.AddCommand("status", &Command[session]{
		Description: "Show a users status",
		Args: []Arg{
			{Name: "id", Description: "The users ID"},
			{Name: "format", Description: "Output format", Default: "text"},
		},
		Run: func(a *ShellCli[session], args map[string]string) error {
			a.Data.looked = append(a.Data.looked, args["id"]+"/"+args["format"])
			return nil
		},
	})

	return s
}

func TestExec(t *testing.T) {
	var out bytes.Buffer
	s := newShell(t, &out)

	require.NoError(t, s.ExecLine("status 94490510688792576"))
	require.NoError(t, s.ExecLine("STATUS 1 format=json"))
	require.NoError(t, s.ExecLine("status format=json id=2"))
	require.NoError(t, s.ExecLine("   "))

	assert.Equal(t, []string{"94490510688792576/text", "1/json", "2/json"}, s.Data.looked)

	assert.EqualError(t, s.ExecLine("status 1 json extra"), "extra argument: extra")
	assert.EqualError(t, s.ExecLine("nope"), "unknown command: nope")
}

func TestHelp(t *testing.T) {
	var out bytes.Buffer
	s := newShell(t, &out)

	require.NoError(t, s.ExecLine("help"))
	assert.Equal(t, "Commands:\n  help: Get help for a command\n  status: Show a users status\nUse 'help <command>' to get help for a specific command\n", out.String())

	out.Reset()
	require.NoError(t, s.ExecLine("help status"))
	assert.Contains(t, out.String(), "format: Output format (default: \"text\")")

	assert.Error(t, s.ExecLine("help nope"))
}

func TestRunUntilEOF(t *testing.T) {
	var out bytes.Buffer
	s := newShell(t, &out)
	s.Input = strings.NewReader("status 1\nbogus\nstatus 2")
	s.Prompter = func(*ShellCli[session]) string { return "> " }

	require.NoError(t, s.Run(context.Background()))

	assert.Equal(t, []string{"1/text", "2/text"}, s.Data.looked)
	assert.Contains(t, out.String(), "Error: unknown command: bogus")
	assert.Equal(t, 4, strings.Count(out.String(), "> "))
}
