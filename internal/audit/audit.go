// Package audit guards saves against silent shape changes in the target file.
//
// The structural auditor compares the coarse type category (mapping,
// sequence, string, number, boolean, null) of every top-level key present in
// both the previously loaded document and the document about to be written.
// A category change means something rewrote the file's fundamental shape
// between load and save, and the save must abort rather than clobber it.
//
// Auditors are advisory-fatal: they reject, they never repair.
package audit

import (
	"fmt"

	"github.com/shesha-tools/mcpinject/internal/document"
	mcperrors "github.com/shesha-tools/mcpinject/internal/errors"
)

// Auditor inspects an old/new document pair before a save is committed.
// Implementations return nil to allow the save, or a schema-drift error to
// abort it. Additional auditors only enrich drift detection; their absence
// never changes core correctness.
type Auditor interface {
	Audit(oldDoc, newDoc *document.Document) error
}

// DriftError describes a top-level field whose type category changed
// between load and save.
type DriftError struct {
	// Field is the offending top-level key.
	Field string

	// OldType is the field's category in the loaded document.
	OldType string

	// NewType is the field's category in the document about to be written.
	NewType string
}

// Error implements the error interface.
func (e *DriftError) Error() string {
	return fmt.Sprintf("field %q changed from %s to %s between load and save",
		e.Field, e.OldType, e.NewType)
}

// Structural is the core auditor: a coarse type-category diff over top-level
// keys shared by both documents. Keys added or removed by the mutation are
// not drift; only a category change on a surviving key is.
type Structural struct{}

// NewStructural returns the core structural auditor.
func NewStructural() *Structural {
	return &Structural{}
}

// Audit implements Auditor.
func (s *Structural) Audit(oldDoc, newDoc *document.Document) error {
	for _, key := range oldDoc.TopLevelKeys() {
		oldRaw, ok := oldDoc.TopLevelValue(key)
		if !ok {
			continue
		}
		newRaw, ok := newDoc.TopLevelValue(key)
		if !ok {
			continue
		}

		oldKind := document.KindOfValue(oldRaw)
		newKind := document.KindOfValue(newRaw)
		if oldKind != newKind {
			return mcperrors.WithKind(
				&DriftError{Field: key, OldType: oldKind, NewType: newKind},
				mcperrors.KindSchemaDrift)
		}
	}
	return nil
}
