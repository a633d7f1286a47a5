package document

import (
	"strings"

	"github.com/cockroachdb/errors"

	mcperrors "github.com/shesha-tools/mcpinject/internal/errors"
)

// AddEntry returns a copy of doc with the entry at name constructed (or
// overwritten) from the supplied fields, and reports whether an entry with
// that name already existed. The input document is never modified.
//
// Applying the same add twice yields the same final document. Validation
// failures happen before any document mutation.
func AddEntry(doc *Document, name, command string, args []string, env map[string]string, managed bool) (*Document, bool, error) {
	if strings.TrimSpace(name) == "" {
		return nil, false, mcperrors.WithKind(mcperrors.ErrMissingName, mcperrors.KindInvalidArgument)
	}
	if strings.TrimSpace(command) == "" {
		return nil, false, mcperrors.WithKind(mcperrors.ErrMissingCommand, mcperrors.KindInvalidArgument)
	}

	next, err := doc.Clone()
	if err != nil {
		return nil, false, errors.Wrap(err, "adding entry")
	}

	entry := &Entry{
		Name:    name,
		Command: command,
		Args:    args,
	}
	if entry.Args == nil {
		entry.Args = []string{}
	}
	if len(env) > 0 {
		entry.Env = env
	}
	entry.SetManaged(managed)

	overwrote := next.GetEntry(name) != nil
	next.setEntry(entry)

	return next, overwrote, nil
}

// RemoveEntry returns a copy of doc without the entry at name, and reports
// whether the entry existed. Removing an absent name is an idempotent no-op
// that returns the document unmodified.
func RemoveEntry(doc *Document, name string) (*Document, bool, error) {
	if doc.GetEntry(name) == nil {
		return doc, false, nil
	}

	next, err := doc.Clone()
	if err != nil {
		return nil, false, errors.Wrap(err, "removing entry")
	}
	next.deleteEntry(name)

	return next, true, nil
}
