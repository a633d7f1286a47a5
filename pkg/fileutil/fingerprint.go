package fileutil

import (
	"os"
	"time"

	"github.com/cockroachdb/errors"
)

// Fingerprint captures the modification state of a file at a point in time.
// Two fingerprints comparing equal means the file was not replaced or
// rewritten in between, to the granularity the filesystem provides.
type Fingerprint struct {
	// Exists reports whether the file existed when the fingerprint was taken.
	Exists bool

	// Size is the file size in bytes. Zero when Exists is false.
	Size int64

	// ModTime is the file's modification time. Zero when Exists is false.
	ModTime time.Time
}

// TakeFingerprint stats path and returns its fingerprint.
// A missing file is not an error; it yields the zero fingerprint.
func TakeFingerprint(path string) (Fingerprint, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Fingerprint{}, nil
		}
		return Fingerprint{}, errors.Wrapf(err, "stat %s", path)
	}
	return Fingerprint{
		Exists:  true,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, nil
}

// Equal reports whether two fingerprints describe the same file state.
func (f Fingerprint) Equal(other Fingerprint) bool {
	return f.Exists == other.Exists &&
		f.Size == other.Size &&
		f.ModTime.Equal(other.ModTime)
}
