package provider

import (
	"os"
	"path/filepath"
	"testing"

	"ziplock.sh/internal/zerrors"
)

func TestFilesystemWriteIsAtomicAndReadable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "archive.zla")
	fs := NewFilesystem()

	if err := fs.Write(path, []byte("hello")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !fs.Exists(path) {
		t.Fatal("expected file to exist after write")
	}

	// No leftover temp files.
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Fatalf("expected exactly 1 file in dir, got %d", len(entries))
	}

	got, err := fs.Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != "hello" {
		t.Errorf("expected %q, got %q", "hello", got)
	}
}

func TestFilesystemReadMissingFile(t *testing.T) {
	fs := NewFilesystem()
	_, err := fs.Read(filepath.Join(t.TempDir(), "missing.zla"))
	if zerrors.GetCode(err) != zerrors.CodeFileNotFound {
		t.Fatalf("expected CodeFileNotFound, got %v", err)
	}
}

func TestNullProviderSignalsExternalOps(t *testing.T) {
	n := NewNull()
	if n.Integrated() {
		t.Fatal("expected Null provider to report Integrated() == false")
	}
	if _, err := n.Read("anything"); zerrors.GetCode(err) != zerrors.CodeExternalFileOperationsRequired {
		t.Fatalf("expected CodeExternalFileOperationsRequired, got %v", err)
	}
	if err := n.Write("anything", nil); zerrors.GetCode(err) != zerrors.CodeExternalFileOperationsRequired {
		t.Fatalf("expected CodeExternalFileOperationsRequired, got %v", err)
	}
}
