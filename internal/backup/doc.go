// Package backup provides the raw-bytes safety net for config mutations.
//
// Before an operation's first write, the target file's current bytes are
// copied to a sidecar in the same directory:
//
//	config.json          the target
//	config.json.backup   its backup
//
// The backup is a plain copy and is deliberately not JSON-validated on
// write; if the mutation pipeline damages the target, the backup is what
// the orchestrator restores from.
//
// # Lifecycle
//
// A backup is created immediately before an operation's first write attempt
// and superseded by the next operation's backup. The core never deletes
// backups on its own; retention is external:
//
//	mgr := backup.NewManager(backup.WithTimestamps(true))
//	backupPath, err := mgr.Backup("~/.cursor/mcp.json")
//	...
//	err = mgr.Prune("~/.cursor/mcp.json", 5) // keep 5 most recent
//
// With timestamps enabled each backup gets its own
// <path>.backup.20060102T150405 name and [Manager.List], [Manager.Prune]
// and [Manager.Restore] manage the set.
package backup
