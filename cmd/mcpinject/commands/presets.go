package commands

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	cerrors "github.com/cockroachdb/errors"
	"github.com/ktr0731/go-fuzzyfinder"

	"github.com/shesha-tools/mcpinject/internal/errors"
)

// preset is a well-known MCP server that can be registered without typing
// out its command line.
type preset struct {
	Name        string
	Command     string
	Args        []string
	Description string
}

// customPresetName marks the picker entry that prompts for a command line.
const customPresetName = "custom"

var presets = []preset{
	{
		Name:        "agent-browser",
		Command:     "npx",
		Args:        []string{"-y", "@vercel/agent-browser", "mcp"},
		Description: "Browser automation for AI agents",
	},
	{
		Name:        "aistudio",
		Command:     "npx",
		Args:        []string{"-y", "aistudio-mcp-server"},
		Description: "Google AI Studio integration",
	},
	{
		Name:        "notebooklm",
		Command:     "npx",
		Args:        []string{"-y", "notebooklm-mcp-cli"},
		Description: "NotebookLM notebook access",
	},
	{
		Name:        customPresetName,
		Description: "Enter a name and command line by hand",
	},
}

// pickPreset runs the interactive picker and returns the chosen server.
// Aborting the picker is reported as a user error so the command exits
// without touching any file.
func pickPreset(r io.Reader) (*preset, error) {
	idx, err := fuzzyfinder.Find(
		presets,
		func(i int) string {
			return fmt.Sprintf("%s (%s)", presets[i].Name, presets[i].Description)
		},
		fuzzyfinder.WithPreviewWindow(func(i, w, h int) string {
			if i == -1 {
				return ""
			}
			p := presets[i]
			if p.Name == customPresetName {
				return p.Description
			}
			return fmt.Sprintf("Name: %s\nCommand: %s %s\n\n%s",
				p.Name, p.Command, strings.Join(p.Args, " "), p.Description)
		}),
	)
	if err != nil {
		if cerrors.Is(err, fuzzyfinder.ErrAbort) {
			return nil, errors.NewUserError(
				cerrors.New("selection cancelled"),
				"pass <name> <command> [args...] to add non-interactively")
		}
		return nil, cerrors.Wrap(err, "interactive selection failed")
	}

	picked := presets[idx]
	if picked.Name == customPresetName {
		return promptCustomPreset(r)
	}
	return &picked, nil
}

// promptCustomPreset reads a server name and command line from r.
func promptCustomPreset(r io.Reader) (*preset, error) {
	reader := bufio.NewReader(r)

	fmt.Print("Server name: ")
	name, err := reader.ReadString('\n')
	if err != nil {
		return nil, cerrors.Wrap(err, "reading server name")
	}
	name = strings.TrimSpace(name)

	fmt.Print("Command (with arguments): ")
	line, err := reader.ReadString('\n')
	if err != nil {
		return nil, cerrors.Wrap(err, "reading command")
	}
	fields := strings.Fields(line)

	if name == "" || len(fields) == 0 {
		return nil, errors.NewUserError(
			cerrors.New("name and command are both required"),
			"usage: mcpinject add <name> <command> [args...]")
	}

	return &preset{Name: name, Command: fields[0], Args: fields[1:]}, nil
}
