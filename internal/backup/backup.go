package backup

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	mcperrors "github.com/shesha-tools/mcpinject/internal/errors"
	"github.com/shesha-tools/mcpinject/pkg/fileutil"
)

// Suffix is appended to the target file name to form the backup name.
const Suffix = ".backup"

// timestampFormat is used for timestamped backup variants.
const timestampFormat = "20060102T150405"

// Sentinel errors for backup operations.
var (
	// ErrNoBackupsFound indicates no backup exists for the target file.
	ErrNoBackupsFound = errors.New("no backups found")

	// ErrNothingToBackUp indicates the target file does not exist.
	// A brand-new file has nothing worth protecting.
	ErrNothingToBackUp = errors.New("nothing to back up")
)

// Manager creates and manages sidecar backups of a configuration file.
//
// By default a single <path>.backup is kept and overwritten by each
// operation. With timestamps enabled, each backup gets its own
// <path>.backup.<timestamp> and older ones stay until pruned; pruning is
// the caller's concern, never triggered by a backup itself.
type Manager struct {
	suffix      string
	timestamped bool
	now         func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithSuffix overrides the backup name suffix.
func WithSuffix(suffix string) Option {
	return func(m *Manager) {
		if suffix != "" {
			m.suffix = suffix
		}
	}
}

// WithTimestamps switches to timestamped backup variants.
func WithTimestamps(enabled bool) Option {
	return func(m *Manager) {
		m.timestamped = enabled
	}
}

// NewManager creates a backup Manager with the given options.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		suffix: Suffix,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// BackupPath returns the path the next backup of target will be written to.
func (m *Manager) BackupPath(target string) string {
	if m.timestamped {
		return target + m.suffix + "." + m.now().Format(timestampFormat)
	}
	return target + m.suffix
}

// Backup copies the current bytes of target to its backup path, overwriting
// any prior backup at that name, and returns the backup path.
//
// The target must exist; backing up a brand-new file is the caller's signal
// to skip this step, not an error the Manager hides.
func (m *Manager) Backup(target string) (string, error) {
	src, err := os.Open(target)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.Wrapf(ErrNothingToBackUp, "%s", target)
		}
		return "", mcperrors.WithFSKind(errors.Wrapf(err, "opening %s", target), mcperrors.KindBackupFailed)
	}
	defer src.Close()

	backupPath := m.BackupPath(target)

	dst, err := os.OpenFile(backupPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return "", mcperrors.WithFSKind(errors.Wrapf(err, "creating %s", backupPath), mcperrors.KindBackupFailed)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return "", mcperrors.WithFSKind(errors.Wrapf(err, "copying to %s", backupPath), mcperrors.KindBackupFailed)
	}

	if err := dst.Close(); err != nil {
		return "", mcperrors.WithFSKind(errors.Wrapf(err, "closing %s", backupPath), mcperrors.KindBackupFailed)
	}

	return backupPath, nil
}

// Backup describes one existing backup of a target file.
type Backup struct {
	// Path is the backup file's location.
	Path string

	// CreatedAt is the backup's creation time: parsed from the timestamped
	// name when available, otherwise the file's modification time.
	CreatedAt time.Time
}

// List returns all backups of target, newest first.
func (m *Manager) List(target string) ([]Backup, error) {
	dir := filepath.Dir(target)
	prefix := filepath.Base(target) + m.suffix

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoBackupsFound
		}
		return nil, errors.Wrapf(err, "reading directory %s", dir)
	}

	var backups []Backup
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if name != prefix && !strings.HasPrefix(name, prefix+".") {
			continue
		}

		full := filepath.Join(dir, name)
		createdAt := time.Time{}
		if rest, ok := strings.CutPrefix(name, prefix+"."); ok {
			if ts, err := time.ParseInLocation(timestampFormat, rest, time.Local); err == nil {
				createdAt = ts
			} else {
				// Not one of ours (e.g. an unrelated .backup.old file)
				continue
			}
		}
		if createdAt.IsZero() {
			info, err := entry.Info()
			if err != nil {
				continue
			}
			createdAt = info.ModTime()
		}
		backups = append(backups, Backup{Path: full, CreatedAt: createdAt})
	}

	if len(backups) == 0 {
		return nil, ErrNoBackupsFound
	}

	// Sort by date, newest first
	slices.SortFunc(backups, func(a, b Backup) int {
		if a.CreatedAt.After(b.CreatedAt) {
			return -1
		}
		if a.CreatedAt.Before(b.CreatedAt) {
			return 1
		}
		return 0
	})

	return backups, nil
}

// Latest returns the most recent backup of target.
func (m *Manager) Latest(target string) (*Backup, error) {
	backups, err := m.List(target)
	if err != nil {
		return nil, err
	}
	return &backups[0], nil
}

// Prune removes backups of target beyond the most recent keep.
func (m *Manager) Prune(target string, keep int) error {
	if keep < 0 {
		return errors.New("keep must be non-negative")
	}

	backups, err := m.List(target)
	if err != nil {
		if errors.Is(err, ErrNoBackupsFound) {
			return nil // Nothing to prune
		}
		return err
	}

	// Already sorted newest first, delete everything beyond 'keep'
	for i := keep; i < len(backups); i++ {
		if err := os.Remove(backups[i].Path); err != nil {
			return errors.Wrapf(err, "removing backup %s", backups[i].Path)
		}
	}

	return nil
}

// Restore copies the most recent backup's bytes back over target, atomically.
// The restored content is verified byte-for-byte before the rename commits.
func (m *Manager) Restore(target string) error {
	latest, err := m.Latest(target)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(latest.Path)
	if err != nil {
		return errors.Wrapf(err, "reading backup %s", latest.Path)
	}

	err = fileutil.AtomicWriteFile(target, data, 0o644, fileutil.WithVerify(func(written []byte) error {
		if !bytes.Equal(written, data) {
			return errors.New("restored bytes do not match backup")
		}
		return nil
	}))
	return errors.Wrapf(err, "restoring %s", target)
}
