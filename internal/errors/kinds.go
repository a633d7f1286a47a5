package errors

import (
	"os"

	"github.com/cockroachdb/errors"
)

// Kind classifies a failed injection operation. Every error returned by the
// core packages is marked with exactly one Kind; the CLI maps kinds to exit
// codes and suggestions.
type Kind int

// Operation error kinds, in pipeline order.
const (
	// KindNone indicates an unclassified error.
	KindNone Kind = iota

	// KindCorruptInput indicates the target file exists but is not valid JSON.
	KindCorruptInput

	// KindSchemaMismatch indicates the target file parses but the registration
	// map has the wrong fundamental shape (e.g. a list instead of a mapping).
	KindSchemaMismatch

	// KindInvalidArgument indicates caller-supplied entry fields failed
	// validation before any mutation or I/O occurred.
	KindInvalidArgument

	// KindSchemaDrift indicates a top-level field changed its type category
	// between load and save.
	KindSchemaDrift

	// KindBackupFailed indicates the pre-write backup copy could not be made.
	KindBackupFailed

	// KindWriteVerificationFailed indicates the temp file did not reparse to a
	// value equal to the document being written.
	KindWriteVerificationFailed

	// KindNotAtomicRenameCapable indicates the rename would cross filesystems.
	KindNotAtomicRenameCapable

	// KindConcurrentModification indicates the target changed between load and
	// rename; the operation may be retried.
	KindConcurrentModification

	// KindPermissionDenied surfaces an underlying OS permission error.
	KindPermissionDenied
)

// kindNames maps kinds to their string form.
var kindNames = map[Kind]string{
	KindNone:                    "none",
	KindCorruptInput:            "corrupt input",
	KindSchemaMismatch:          "schema mismatch",
	KindInvalidArgument:         "invalid argument",
	KindSchemaDrift:             "schema drift",
	KindBackupFailed:            "backup failed",
	KindWriteVerificationFailed: "write verification failed",
	KindNotAtomicRenameCapable:  "not atomic-rename capable",
	KindConcurrentModification:  "concurrent modification",
	KindPermissionDenied:        "permission denied",
}

// String returns the human-readable name of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// kindMarkers holds one reference error per kind. Marking an error with a
// reference makes errors.Is(err, reference) true without changing its message.
var kindMarkers = map[Kind]error{
	KindCorruptInput:            errors.New("corrupt input"),
	KindSchemaMismatch:          errors.New("schema mismatch"),
	KindInvalidArgument:         errors.New("invalid argument"),
	KindSchemaDrift:             errors.New("schema drift"),
	KindBackupFailed:            errors.New("backup failed"),
	KindWriteVerificationFailed: errors.New("write verification failed"),
	KindNotAtomicRenameCapable:  errors.New("not atomic-rename capable"),
	KindConcurrentModification:  errors.New("concurrent modification"),
	KindPermissionDenied:        errors.New("permission denied"),
}

// allKinds lists kinds in classification order. PermissionDenied comes first
// so an OS-level marking wins over a coarser one applied higher in the stack.
var allKinds = []Kind{
	KindPermissionDenied,
	KindCorruptInput,
	KindSchemaMismatch,
	KindInvalidArgument,
	KindSchemaDrift,
	KindBackupFailed,
	KindWriteVerificationFailed,
	KindNotAtomicRenameCapable,
	KindConcurrentModification,
}

// WithKind marks err with the given kind. Returns nil if err is nil.
func WithKind(err error, kind Kind) error {
	if err == nil {
		return nil
	}
	marker, ok := kindMarkers[kind]
	if !ok {
		return err
	}
	return errors.Mark(err, marker)
}

// KindOf returns the kind err was marked with, or KindNone.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	for _, k := range allKinds {
		if errors.Is(err, kindMarkers[k]) {
			return k
		}
	}
	return KindNone
}

// WithFSKind marks a filesystem error, preferring KindPermissionDenied when
// the underlying cause is an OS permission failure.
func WithFSKind(err error, fallback Kind) error {
	if err == nil {
		return nil
	}
	if os.IsPermission(err) {
		return WithKind(err, KindPermissionDenied)
	}
	return WithKind(err, fallback)
}
