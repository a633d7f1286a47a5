// Package clients knows where supported IDE/agent clients keep their MCP
// configuration files.
//
// The table maps client names (xcode, codex, claude, cursor, vscode,
// aistudio) to config file locations under the user's home directory.
// [Detect] narrows the table to clients actually present on this machine.
//
// The package also maintains the suite-wide registry
// (~/.mcp-tools/config.json): after a successful operation against a known
// client's config, [Sync] records the client → path mapping there so other
// suite tools can find it. Registry updates are best-effort and never affect
// the outcome of the operation that triggered them.
package clients
