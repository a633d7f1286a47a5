package document

import (
	"encoding/json"
	"os"

	"github.com/cockroachdb/errors"

	mcperrors "github.com/shesha-tools/mcpinject/internal/errors"
	"github.com/shesha-tools/mcpinject/pkg/fileutil"
)

// Load reads and parses the configuration file at path.
//
// A missing file is not an error: it yields a fresh document with an empty
// registration map and touches nothing on disk. An existing file that is not
// valid JSON fails with a corrupt-input error carrying the parse location;
// a file whose registration key is not a mapping fails with a schema
// mismatch. Unknown top-level keys and entry fields are preserved verbatim.
func Load(path string) (*Document, error) {
	data, err := fileutil.ReadFileWithLimit(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return New(), nil
		}
		return nil, mcperrors.WithFSKind(errors.Wrapf(err, "loading %s", path), mcperrors.KindCorruptInput)
	}

	// Probe with encoding/json first: it reports the exact parse location,
	// and distinguishes syntax errors from a non-object root.
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			line, col := offsetToPosition(data, syntaxErr.Offset)
			return nil, mcperrors.WithKind(
				errors.Wrapf(err, "invalid JSON in %s at line %d, column %d", path, line, col),
				mcperrors.KindCorruptInput)
		}
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, mcperrors.WithKind(
				errors.Wrapf(err, "%s: document root is not a JSON object", path),
				mcperrors.KindSchemaMismatch)
		}
		return nil, mcperrors.WithKind(errors.Wrapf(err, "parsing %s", path), mcperrors.KindCorruptInput)
	}

	doc := New()
	if err := doc.UnmarshalJSON(data); err != nil {
		if mcperrors.KindOf(err) != mcperrors.KindNone {
			return nil, errors.Wrapf(err, "loading %s", path)
		}
		return nil, mcperrors.WithKind(errors.Wrapf(err, "parsing %s", path), mcperrors.KindCorruptInput)
	}

	return doc, nil
}

// Parse parses raw bytes into a document. Used by the atomic writer's
// read-back verification.
func Parse(data []byte) (*Document, error) {
	doc := New()
	if err := doc.UnmarshalJSON(data); err != nil {
		return nil, err
	}
	return doc, nil
}

// offsetToPosition converts a byte offset into a 1-based line and column.
func offsetToPosition(data []byte, offset int64) (line, col int) {
	line, col = 1, 1
	for i := int64(0); i < offset && i < int64(len(data)); i++ {
		if data[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return line, col
}
