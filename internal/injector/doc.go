// Package injector orchestrates safe mutations of client configuration
// files.
//
// One operation runs the pipeline
//
//	Idle → Loaded → Mutated → Audited → BackedUp → Written → Done
//
// with Aborted reachable from any non-terminal state. Every abort leaves the
// on-disk file byte-identical to its state at Idle: validation and audit
// failures happen before any write, the backup precedes the first write
// attempt, and the atomic writer only ever replaces the target with a fully
// verified temp file in a single rename.
//
// Concurrent processes racing on the same file are serialized by that rename
// alone. The injector re-checks the target's fingerprint just before the
// rename and re-reads the file after it; if either shows another writer got
// in between, the whole load→mutate→write cycle is retried a bounded number
// of times before the concurrent-modification error is surfaced.
//
//	in := injector.New(path, injector.WithRetries(5))
//	outcome, err := in.Add(ctx, injector.EntrySpec{
//	    Name:    "github",
//	    Command: "npx",
//	    Args:    []string{"-y", "@modelcontextprotocol/server-github"},
//	    Managed: true,
//	})
//
// The returned [Outcome] carries the terminal state, the action taken
// (added, overwritten, removed, absent), and the backup path when one was
// made.
package injector
