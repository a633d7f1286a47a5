package injector

import (
	"context"
	"encoding/json"
	"log/slog"
	"math/rand/v2"
	"os"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/shesha-tools/mcpinject/internal/audit"
	"github.com/shesha-tools/mcpinject/internal/backup"
	"github.com/shesha-tools/mcpinject/internal/document"
	mcperrors "github.com/shesha-tools/mcpinject/internal/errors"
	"github.com/shesha-tools/mcpinject/pkg/fileutil"
)

// DefaultRetries is the default number of additional attempts after a
// concurrent modification is detected.
const DefaultRetries = 5

// retryBaseDelay is the floor of the jittered sleep between attempts.
const retryBaseDelay = 10 * time.Millisecond

// EntrySpec carries the caller-supplied fields for an add operation.
type EntrySpec struct {
	Name    string
	Command string
	Args    []string
	Env     map[string]string

	// Managed stamps the entry with the suite provenance marker.
	Managed bool
}

// Injector sequences one operation against one target file:
// load → mutate → audit → backup → atomic write, restoring from backup if a
// step after the backup damages the target. The in-memory document is owned
// exclusively for the duration of the operation; cross-process safety comes
// from the atomic rename, never from lock files.
type Injector struct {
	path     string
	backups  *backup.Manager
	auditors []audit.Auditor
	retries  int
	logger   *slog.Logger

	// write is swappable for failure injection in tests.
	write func(path string, data []byte, perm os.FileMode, opts ...fileutil.WriteOption) error
}

// Option configures an Injector.
type Option func(*Injector)

// WithBackupManager overrides the backup manager.
func WithBackupManager(m *backup.Manager) Option {
	return func(in *Injector) {
		if m != nil {
			in.backups = m
		}
	}
}

// WithAuditor appends an auditor to run after the structural check.
func WithAuditor(a audit.Auditor) Option {
	return func(in *Injector) {
		if a != nil {
			in.auditors = append(in.auditors, a)
		}
	}
}

// WithRetries sets how many times a concurrently-modified operation is
// retried before surfacing the error.
func WithRetries(n int) Option {
	return func(in *Injector) {
		if n >= 0 {
			in.retries = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(in *Injector) {
		if logger != nil {
			in.logger = logger
		}
	}
}

// New creates an Injector for the given target file.
func New(path string, opts ...Option) *Injector {
	in := &Injector{
		path:     path,
		backups:  backup.NewManager(),
		auditors: []audit.Auditor{audit.NewStructural()},
		retries:  DefaultRetries,
		logger:   slog.Default(),
		write:    fileutil.AtomicWriteFile,
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Path returns the target file.
func (in *Injector) Path() string {
	return in.path
}

// Add adds or overwrites the entry described by spec.
func (in *Injector) Add(ctx context.Context, spec EntrySpec) (*Outcome, error) {
	return in.run(ctx,
		func(doc *document.Document) (*document.Document, Action, bool, error) {
			next, overwrote, err := document.AddEntry(doc, spec.Name, spec.Command, spec.Args, spec.Env, spec.Managed)
			if err != nil {
				return nil, ActionNone, false, err
			}
			action := ActionAdded
			if overwrote {
				action = ActionOverwritten
			}
			return next, action, true, nil
		},
		func(doc *document.Document) bool {
			got := doc.GetEntry(spec.Name)
			return got != nil && got.Command == spec.Command
		})
}

// Remove removes the entry with the given name. Removing an absent entry is
// a successful no-op that leaves the file untouched.
func (in *Injector) Remove(ctx context.Context, name string) (*Outcome, error) {
	return in.run(ctx,
		func(doc *document.Document) (*document.Document, Action, bool, error) {
			next, existed, err := document.RemoveEntry(doc, name)
			if err != nil {
				return nil, ActionNone, false, err
			}
			if !existed {
				return next, ActionAbsent, false, nil
			}
			return next, ActionRemoved, true, nil
		},
		func(doc *document.Document) bool {
			return doc.GetEntry(name) == nil
		})
}

// mutateFunc produces the post-mutation document, the action taken, and
// whether a write is needed at all.
type mutateFunc func(*document.Document) (*document.Document, Action, bool, error)

// confirmFunc checks, on a freshly reloaded document, that the mutation
// survived the rename. A racing writer that loaded before our commit can
// clobber it; confirm failing is treated as concurrent modification.
type confirmFunc func(*document.Document) bool

// run drives the attempt loop. Only concurrent modification is retried;
// every other error kind is terminal for the operation.
func (in *Injector) run(ctx context.Context, mutate mutateFunc, confirm confirmFunc) (*Outcome, error) {
	var lastOut *Outcome

	for attempt := 1; attempt <= in.retries+1; attempt++ {
		if err := ctx.Err(); err != nil {
			out := &Outcome{State: StateAborted, Path: in.path, Err: err, Attempts: attempt - 1}
			return out, err
		}

		out := in.attempt(mutate, confirm)
		out.Attempts = attempt
		if out.Err == nil {
			return out, nil
		}
		if mcperrors.KindOf(out.Err) != mcperrors.KindConcurrentModification {
			return out, out.Err
		}

		lastOut = out
		in.logger.Warn("target changed during operation, retrying",
			slog.String("path", in.path),
			slog.Int("attempt", attempt))

		select {
		case <-ctx.Done():
		case <-time.After(retryBaseDelay + rand.N(4*retryBaseDelay)):
		}
	}

	return lastOut, lastOut.Err
}

// attempt runs one full pipeline pass.
func (in *Injector) attempt(mutate mutateFunc, confirm confirmFunc) *Outcome {
	out := &Outcome{State: StateIdle, Path: in.path}

	// Idle → Loaded
	fp, err := fileutil.TakeFingerprint(in.path)
	if err != nil {
		return out.abort(err)
	}
	doc, err := document.Load(in.path)
	if err != nil {
		return out.abort(err)
	}
	out.State = StateLoaded
	in.logger.Debug("loaded document", slog.String("path", in.path), slog.Int("entries", doc.Len()))

	// Loaded → Mutated
	mutated, action, changed, err := mutate(doc)
	if err != nil {
		return out.abort(err)
	}
	out.Action = action
	if !changed {
		// Nothing to write; the file stays exactly as it was.
		out.State = StateDone
		return out
	}
	out.State = StateMutated

	// Mutated → Audited
	for _, a := range in.auditors {
		if err := a.Audit(doc, mutated); err != nil {
			return out.abort(err)
		}
	}
	out.State = StateAudited

	// Audited → BackedUp. Skipped, not failed, for a brand-new file.
	if fp.Exists {
		backupPath, err := in.backups.Backup(in.path)
		if err != nil && !errors.Is(err, backup.ErrNothingToBackUp) {
			return out.abort(err)
		}
		out.BackupPath = backupPath
	}
	out.State = StateBackedUp

	// BackedUp → Written
	data, err := json.MarshalIndent(mutated, "", "  ")
	if err != nil {
		return out.abort(errors.Wrap(err, "serializing document"))
	}
	data = append(data, '\n')

	err = in.write(in.path, data, 0o644,
		fileutil.WithVerify(func(written []byte) error {
			reparsed, err := document.Parse(written)
			if err != nil {
				return errors.Wrap(err, "reparsing written bytes")
			}
			equal, err := document.Equal(reparsed, mutated)
			if err != nil {
				return err
			}
			if !equal {
				return errors.New("written bytes do not reparse to the document being saved")
			}
			return nil
		}),
		fileutil.WithPreRename(func() error {
			current, err := fileutil.TakeFingerprint(in.path)
			if err != nil {
				return err
			}
			if !current.Equal(fp) {
				return mcperrors.WithKind(
					errors.Newf("%s changed since load", in.path),
					mcperrors.KindConcurrentModification)
			}
			return nil
		}))
	if err != nil {
		in.rollback(out)
		return out.abort(err)
	}
	out.State = StateWritten

	// Written → Done, once the mutation is confirmed on disk.
	final, err := document.Load(in.path)
	if err != nil || !confirm(final) {
		return out.abort(mcperrors.WithKind(
			errors.Newf("%s was rewritten by a concurrent operation", in.path),
			mcperrors.KindConcurrentModification))
	}

	out.State = StateDone
	return out
}

// rollback restores the target from this operation's backup if a failed
// write left it unparsable. The atomic writer fails before the rename, so
// in practice the target is untouched and this is a no-op.
func (in *Injector) rollback(out *Outcome) {
	if out.BackupPath == "" {
		return
	}
	if _, err := document.Load(in.path); err == nil {
		return
	}
	if err := in.backups.Restore(in.path); err != nil {
		in.logger.Error("restoring from backup failed",
			slog.String("path", in.path),
			slog.String("backup", out.BackupPath),
			slog.Any("error", err))
		return
	}
	in.logger.Warn("restored target from backup",
		slog.String("path", in.path),
		slog.String("backup", out.BackupPath))
}

// abort marks the outcome terminal with the given error.
func (o *Outcome) abort(err error) *Outcome {
	o.State = StateAborted
	o.Err = err
	return o
}
