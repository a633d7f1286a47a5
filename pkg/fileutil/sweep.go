package fileutil

import (
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
)

// DefaultSweepAge is how old a temp file must be before SweepTempFiles
// removes it. Young temp files may belong to an in-flight write.
const DefaultSweepAge = time.Hour

// SweepTempFiles removes dangling atomic-write temp files in dir that are
// older than olderThan. A crashed process can leave one behind; the write
// contract never depends on this sweep for correctness.
//
// Returns the paths of the files it removed.
func SweepTempFiles(dir string, olderThan time.Duration) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "reading directory %s", dir)
	}

	cutoff := time.Now().Add(-olderThan)

	var removed []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		matched, err := filepath.Match(tempPattern, entry.Name())
		if err != nil || !matched {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		full := filepath.Join(dir, entry.Name())
		if err := os.Remove(full); err != nil {
			continue
		}
		removed = append(removed, full)
	}

	return removed, nil
}
