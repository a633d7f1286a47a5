package injector

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/shesha-tools/mcpinject/internal/audit"
	"github.com/shesha-tools/mcpinject/internal/document"
	mcperrors "github.com/shesha-tools/mcpinject/internal/errors"
	"github.com/shesha-tools/mcpinject/internal/logging"
	"github.com/shesha-tools/mcpinject/pkg/fileutil"
)

func newTestInjector(t *testing.T, path string, opts ...Option) *Injector {
	t.Helper()
	opts = append([]Option{WithLogger(logging.NewDiscard())}, opts...)
	return New(path, opts...)
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestAdd_ExistingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	original := `{"theme":"dark","mcpServers":{"existing":{"command":"old"}}}`
	if err := os.WriteFile(path, []byte(original), 0o644); err != nil {
		t.Fatal(err)
	}

	inj := newTestInjector(t, path)
	outcome, err := inj.Add(context.Background(), EntrySpec{
		Name:    "alpha",
		Command: "npx",
		Args:    []string{"-y", "alpha-server"},
		Managed: true,
	})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if outcome.State != StateDone {
		t.Errorf("State = %v, want done", outcome.State)
	}
	if outcome.Action != ActionAdded {
		t.Errorf("Action = %v, want added", outcome.Action)
	}

	// The backup holds the pre-mutation bytes.
	if outcome.BackupPath == "" {
		t.Fatal("no backup recorded for an existing file")
	}
	if got := readFile(t, outcome.BackupPath); got != original {
		t.Errorf("backup = %q, want %q", got, original)
	}

	doc, err := document.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if doc.GetEntry("existing") == nil {
		t.Error("pre-existing entry lost")
	}
	entry := doc.GetEntry("alpha")
	if entry == nil {
		t.Fatal("added entry missing after commit")
	}
	if !entry.Managed() {
		t.Error("added entry not stamped as managed")
	}
	if raw, ok := doc.TopLevelValue("theme"); !ok || string(raw) != `"dark"` {
		t.Errorf("unrelated top-level key damaged: %s", raw)
	}
}

func TestAdd_CreatesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	inj := newTestInjector(t, path)
	outcome, err := inj.Add(context.Background(), EntrySpec{Name: "beta", Command: "uvx", Managed: true})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if outcome.Action != ActionAdded {
		t.Errorf("Action = %v, want added", outcome.Action)
	}

	// A file that did not exist has nothing to back up.
	if outcome.BackupPath != "" {
		t.Errorf("BackupPath = %q, want empty", outcome.BackupPath)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("directory has %d files, want just the target", len(entries))
	}

	doc, err := document.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if doc.GetEntry("beta") == nil {
		t.Error("entry missing from created file")
	}
}

func TestAdd_Overwrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(`{"mcpServers":{"svc":{"command":"old"}}}`), 0o644); err != nil {
		t.Fatal(err)
	}

	inj := newTestInjector(t, path)
	outcome, err := inj.Add(context.Background(), EntrySpec{Name: "svc", Command: "new"})
	if err != nil {
		t.Fatal(err)
	}
	if outcome.Action != ActionOverwritten {
		t.Errorf("Action = %v, want overwritten", outcome.Action)
	}

	doc, _ := document.Load(path)
	if got := doc.GetEntry("svc").Command; got != "new" {
		t.Errorf("Command = %q, want %q", got, "new")
	}
}

func TestAdd_InvalidSpec(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	inj := newTestInjector(t, path)
	_, err := inj.Add(context.Background(), EntrySpec{Name: "", Command: "run"})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if kind := mcperrors.KindOf(err); kind != mcperrors.KindInvalidArgument {
		t.Errorf("kind = %v, want KindInvalidArgument", kind)
	}

	// Validation failures must not create the file.
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("failed add created the target file")
	}
}

func TestAdd_CorruptTargetAborts(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	corrupt := `{"mcpServers":`
	if err := os.WriteFile(path, []byte(corrupt), 0o644); err != nil {
		t.Fatal(err)
	}

	inj := newTestInjector(t, path)
	outcome, err := inj.Add(context.Background(), EntrySpec{Name: "svc", Command: "run"})
	if err == nil {
		t.Fatal("expected error for corrupt target")
	}
	if kind := mcperrors.KindOf(err); kind != mcperrors.KindCorruptInput {
		t.Errorf("kind = %v, want KindCorruptInput", kind)
	}
	if outcome.State != StateAborted {
		t.Errorf("State = %v, want aborted", outcome.State)
	}
	if got := readFile(t, path); got != corrupt {
		t.Errorf("corrupt target was modified: %q", got)
	}
}

func TestRemove(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(`{"mcpServers":{"svc":{"command":"run"},"keep":{"command":"stay"}}}`), 0o644); err != nil {
		t.Fatal(err)
	}

	inj := newTestInjector(t, path)
	outcome, err := inj.Remove(context.Background(), "svc")
	if err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if outcome.Action != ActionRemoved {
		t.Errorf("Action = %v, want removed", outcome.Action)
	}

	doc, _ := document.Load(path)
	if doc.GetEntry("svc") != nil {
		t.Error("entry still present after removal")
	}
	if doc.GetEntry("keep") == nil {
		t.Error("unrelated entry removed")
	}
}

func TestRemove_AbsentIsNoOp(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	original := `{"mcpServers":{"keep":{"command":"stay"}},"custom": [1, 2]}`
	if err := os.WriteFile(path, []byte(original), 0o644); err != nil {
		t.Fatal(err)
	}

	inj := newTestInjector(t, path)
	outcome, err := inj.Remove(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if outcome.Action != ActionAbsent {
		t.Errorf("Action = %v, want absent", outcome.Action)
	}
	if outcome.State != StateDone {
		t.Errorf("State = %v, want done", outcome.State)
	}
	if outcome.BackupPath != "" {
		t.Errorf("no-op removal wrote a backup at %s", outcome.BackupPath)
	}

	// Byte-for-byte untouched, formatting included.
	if got := readFile(t, path); got != original {
		t.Errorf("no-op removal rewrote the file:\n got: %q\nwant: %q", got, original)
	}
}

func TestWriteFailureLeavesTargetIntact(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	original := `{"mcpServers":{"svc":{"command":"run"}}}`
	if err := os.WriteFile(path, []byte(original), 0o644); err != nil {
		t.Fatal(err)
	}

	inj := newTestInjector(t, path)
	inj.write = func(string, []byte, os.FileMode, ...fileutil.WriteOption) error {
		return errors.New("disk full")
	}

	outcome, err := inj.Add(context.Background(), EntrySpec{Name: "new", Command: "x"})
	if err == nil {
		t.Fatal("expected write error")
	}
	if outcome.State != StateAborted {
		t.Errorf("State = %v, want aborted", outcome.State)
	}
	if got := readFile(t, path); got != original {
		t.Errorf("target changed after failed write:\n got: %q\nwant: %q", got, original)
	}
}

type rejectAll struct{}

func (rejectAll) Audit(_, _ *document.Document) error {
	return mcperrors.WithKind(errors.New("rejected"), mcperrors.KindSchemaDrift)
}

func TestAuditRejectionAbortsBeforeBackup(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	original := `{"mcpServers":{}}`
	if err := os.WriteFile(path, []byte(original), 0o644); err != nil {
		t.Fatal(err)
	}

	inj := newTestInjector(t, path, WithAuditor(rejectAll{}))
	outcome, err := inj.Add(context.Background(), EntrySpec{Name: "svc", Command: "run"})
	if err == nil {
		t.Fatal("expected audit error")
	}
	if kind := mcperrors.KindOf(err); kind != mcperrors.KindSchemaDrift {
		t.Errorf("kind = %v, want KindSchemaDrift", kind)
	}
	if outcome.State != StateAborted {
		t.Errorf("State = %v, want aborted", outcome.State)
	}
	if outcome.BackupPath != "" {
		t.Error("backup written for an audited-out operation")
	}
	if got := readFile(t, path); got != original {
		t.Errorf("target changed after audit rejection: %q", got)
	}

	// Audit runs before backup, so no sidecar file may appear.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("directory has %d files, want just the target", len(entries))
	}
}

func TestConcurrentAdds(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(`{"mcpServers":{}}`), 0o644); err != nil {
		t.Fatal(err)
	}

	const writers = 4
	var wg sync.WaitGroup
	errs := make([]error, writers)

	for i := range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			inj := newTestInjector(t, path, WithRetries(50))
			_, errs[i] = inj.Add(context.Background(), EntrySpec{
				Name:    fmt.Sprintf("server-%d", i),
				Command: "npx",
				Managed: true,
			})
		}()
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("writer %d failed: %v", i, err)
		}
	}

	doc, err := document.Load(path)
	if err != nil {
		t.Fatalf("final document unreadable: %v", err)
	}
	for i := range writers {
		name := fmt.Sprintf("server-%d", i)
		if doc.GetEntry(name) == nil {
			t.Errorf("entry %s lost in concurrent adds", name)
		}
	}

	// No stranded temp files.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, entry := range entries {
		if ok, _ := filepath.Match(".mcpinject-*.tmp", entry.Name()); ok {
			t.Errorf("leftover temp file: %s", entry.Name())
		}
	}
}

func TestRun_ContextCancelled(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	inj := newTestInjector(t, path)
	outcome, err := inj.Add(ctx, EntrySpec{Name: "svc", Command: "run"})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if outcome.State != StateAborted {
		t.Errorf("State = %v, want aborted", outcome.State)
	}
}

func TestStructuralAuditIsDefault(t *testing.T) {
	inj := New(filepath.Join(t.TempDir(), "config.json"))
	if len(inj.auditors) != 1 {
		t.Fatalf("auditors = %d, want 1", len(inj.auditors))
	}
	if _, ok := inj.auditors[0].(*audit.Structural); !ok {
		t.Errorf("default auditor is %T, want *audit.Structural", inj.auditors[0])
	}
}

func TestSweepFor(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "config.json")

	stale := filepath.Join(dir, ".mcpinject-old.tmp")
	if err := os.WriteFile(stale, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	old := fileutil.DefaultSweepAge + time.Hour
	past := time.Now().Add(-old)
	if err := os.Chtimes(stale, past, past); err != nil {
		t.Fatal(err)
	}

	swept, err := SweepFor(target)
	if err != nil {
		t.Fatalf("SweepFor failed: %v", err)
	}
	if len(swept) != 1 || swept[0] != stale {
		t.Errorf("swept = %v, want [%s]", swept, stale)
	}
}
