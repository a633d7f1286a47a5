package injector

import (
	"path/filepath"

	"github.com/shesha-tools/mcpinject/pkg/fileutil"
)

// SweepFor removes stale atomic-write temp files next to the given target.
// A process killed mid-operation can leave one behind; sweeping is
// opportunistic housekeeping, the write contract never depends on it.
func SweepFor(target string) ([]string, error) {
	return fileutil.SweepTempFiles(filepath.Dir(target), fileutil.DefaultSweepAge)
}
