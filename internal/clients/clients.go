package clients

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/adrg/xdg"
	"github.com/cockroachdb/errors"

	mcperrors "github.com/shesha-tools/mcpinject/internal/errors"
)

// Client identifiers for supported IDE/agent clients.
const (
	ClientXcode    = "xcode"
	ClientCodex    = "codex"
	ClientClaude   = "claude"
	ClientCursor   = "cursor"
	ClientVSCode   = "vscode"
	ClientAIStudio = "aistudio"
)

// clientConfigPaths maps client names to their config file locations,
// relative to the user's home directory.
var clientConfigPaths = map[string]string{
	ClientXcode:    "Library/Developer/Xcode/UserData/MCPServers/config.json",
	ClientCodex:    "Library/Application Support/Codex/mcp_servers.json",
	ClientClaude:   "Library/Application Support/Claude/claude_desktop_config.json",
	ClientCursor:   ".cursor/mcp.json",
	ClientVSCode:   ".vscode/mcp_settings.json",
	ClientAIStudio: ".config/aistudio/mcp_servers.json",
}

// clientDisplayNames maps client names to their human-readable form.
var clientDisplayNames = map[string]string{
	ClientXcode:    "Xcode",
	ClientCodex:    "Codex",
	ClientClaude:   "Claude Desktop",
	ClientCursor:   "Cursor",
	ClientVSCode:   "VS Code",
	ClientAIStudio: "AI Studio",
}

// Names returns all known client names in sorted order.
func Names() []string {
	names := make([]string, 0, len(clientConfigPaths))
	for name := range clientConfigPaths {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Valid reports whether name is a known client.
func Valid(name string) bool {
	_, ok := clientConfigPaths[name]
	return ok
}

// DisplayName returns the human-readable name for a client,
// or the name itself if unknown.
func DisplayName(name string) string {
	if display, ok := clientDisplayNames[name]; ok {
		return display
	}
	return name
}

// ConfigPath returns the absolute path of a known client's config file.
func ConfigPath(name string) (string, error) {
	rel, ok := clientConfigPaths[name]
	if !ok {
		return "", errors.Wrapf(mcperrors.ErrUnknownClient, "%q", name)
	}
	return filepath.Join(xdg.Home, rel), nil
}

// Detect returns the known clients whose config file exists on disk,
// in sorted order.
func Detect() []string {
	var detected []string
	for _, name := range Names() {
		path, err := ConfigPath(name)
		if err != nil {
			continue
		}
		if _, err := os.Stat(path); err == nil {
			detected = append(detected, name)
		}
	}
	return detected
}

// Identify returns the client name whose config file matches path, if any.
// Used to decide whether a successful operation should be recorded in the
// global registry.
func Identify(path string) (string, bool) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", false
	}
	for _, name := range Names() {
		known, err := ConfigPath(name)
		if err != nil {
			continue
		}
		if known == abs {
			return name, true
		}
	}
	return "", false
}
