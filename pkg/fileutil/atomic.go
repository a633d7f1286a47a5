// Package fileutil provides file system utilities including atomic write operations.
package fileutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"syscall"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	mcperrors "github.com/shesha-tools/mcpinject/internal/errors"
)

// tempPattern is the os.CreateTemp pattern for atomic-write temp files.
// SweepTempFiles recognizes stale temp files by this shape.
const tempPattern = ".mcpinject-*.tmp"

// writeOptions holds optional behavior for AtomicWriteFile.
type writeOptions struct {
	verify    func([]byte) error
	preRename func() error
}

// WriteOption configures an atomic write.
type WriteOption func(*writeOptions)

// WithVerify re-reads the temp file after writing and passes its bytes to fn.
// If fn returns an error the write is aborted, the temp file is removed, and
// the error is surfaced as a write-verification failure. The target file is
// untouched.
func WithVerify(fn func([]byte) error) WriteOption {
	return func(o *writeOptions) {
		o.verify = fn
	}
}

// WithPreRename runs fn after the temp file is fully written, immediately
// before the rename. If fn returns an error the write is aborted and the temp
// file is removed. Used to detect concurrent modification of the target.
func WithPreRename(fn func() error) WriteOption {
	return func(o *writeOptions) {
		o.preRename = fn
	}
}

// AtomicWriteFile writes data to a file atomically using a temp file + rename
// pattern. This ensures interrupted writes leave the original file intact.
//
// The temp file is created in the same directory as path; the rename never
// crosses filesystems. A rename that would cross devices is a fatal
// configuration error, never a silent copy+delete fallback.
//
// The caller is responsible for ensuring the parent directory exists.
// Permissions are applied to the final file via the perm parameter.
func AtomicWriteFile(path string, data []byte, perm os.FileMode, opts ...WriteOption) error {
	var o writeOptions
	for _, opt := range opts {
		opt(&o)
	}

	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, tempPattern)
	if err != nil {
		return mcperrors.WithFSKind(errors.Wrap(err, "creating temp file"), mcperrors.KindNone)
	}

	// Track temp file name for cleanup on every exit path short of rename.
	tmpName := tmp.Name()
	defer func() {
		if _, statErr := os.Stat(tmpName); statErr == nil {
			os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return mcperrors.WithFSKind(errors.Wrap(err, "writing temp file"), mcperrors.KindNone)
	}

	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		return mcperrors.WithFSKind(errors.Wrap(err, "setting file permissions"), mcperrors.KindNone)
	}

	if err := tmp.Close(); err != nil {
		return mcperrors.WithFSKind(errors.Wrap(err, "closing temp file"), mcperrors.KindNone)
	}

	if o.verify != nil {
		written, err := os.ReadFile(tmpName)
		if err != nil {
			return mcperrors.WithKind(errors.Wrap(err, "reading back temp file"),
				mcperrors.KindWriteVerificationFailed)
		}
		if err := o.verify(written); err != nil {
			return mcperrors.WithKind(errors.Wrap(err, "verifying temp file"),
				mcperrors.KindWriteVerificationFailed)
		}
	}

	if o.preRename != nil {
		if err := o.preRename(); err != nil {
			return err
		}
	}

	if err := os.Rename(tmpName, path); err != nil {
		if errors.Is(err, syscall.EXDEV) {
			return mcperrors.WithKind(errors.Wrap(err, "rename would cross filesystems"),
				mcperrors.KindNotAtomicRenameCapable)
		}
		return mcperrors.WithFSKind(errors.Wrap(err, "renaming temp file"), mcperrors.KindNone)
	}

	return nil
}

// AtomicWriteJSONWithPerm writes v as indented JSON to path atomically with
// specified permissions. Uses 2-space indentation and appends a trailing
// newline for POSIX compliance.
//
// The caller is responsible for ensuring the parent directory exists.
func AtomicWriteJSONWithPerm(path string, v any, perm os.FileMode) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshaling JSON")
	}

	data = append(data, '\n')

	return AtomicWriteFile(path, data, perm)
}

// AtomicWriteJSON writes v as indented JSON to path atomically.
// The file is created with 0644 permissions.
func AtomicWriteJSON(path string, v any) error {
	return AtomicWriteJSONWithPerm(path, v, 0644)
}

// AtomicWriteYAML writes v as YAML to path atomically with 0644 permissions.
// Appends a trailing newline for POSIX compliance.
func AtomicWriteYAML(path string, v any) (err error) {
	// yaml.Marshal panics on unmarshalable types; recover and return error
	defer func() {
		if r := recover(); r != nil {
			err = errors.Newf("marshaling YAML: %v", r)
		}
	}()

	data, err := yaml.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "marshaling YAML")
	}

	if len(data) > 0 && data[len(data)-1] != '\n' {
		data = append(data, '\n')
	}

	return AtomicWriteFile(path, data, 0644)
}
