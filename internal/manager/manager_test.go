package manager

import (
	"path/filepath"
	"testing"

	"ziplock.sh/internal/archive"
	"ziplock.sh/internal/filemap"
	"ziplock.sh/internal/model"
	"ziplock.sh/internal/provider"
	"ziplock.sh/internal/zerrors"
)

func newFSManager(t *testing.T) (*Manager, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "vault.zla")
	m := New("ziplock-test", provider.NewFilesystem(), archive.Options{})
	return m, path
}

// S1: create empty, save_as, close, reopen -> empty repository, clean.
func TestCreateSaveCloseReopenEmpty(t *testing.T) {
	m, path := newFSManager(t)
	if err := m.CreateAt(path, "P@ss!"); err != nil {
		t.Fatalf("CreateAt: %v", err)
	}
	if err := m.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	m2 := New("ziplock-test", provider.NewFilesystem(), archive.Options{})
	if err := m2.OpenAt(path, "P@ss!"); err != nil {
		t.Fatalf("OpenAt: %v", err)
	}
	if m2.Repository().IsModified() {
		t.Fatal("expected freshly opened repository to be unmodified")
	}
	if len(m2.Repository().ListCredentials()) != 0 {
		t.Fatal("expected an empty repository")
	}
}

// S2: add credential with a sensitive field, save, close, reopen.
func TestAddSaveCloseReopenPreservesSensitiveField(t *testing.T) {
	m, path := newFSManager(t)
	if err := m.CreateAt(path, "hunter2-vault-pw"); err != nil {
		t.Fatalf("CreateAt: %v", err)
	}

	cred, err := model.NewCredential("c1", "GitHub", "login")
	if err != nil {
		t.Fatalf("NewCredential: %v", err)
	}
	cred.AddField("username", model.NewField("alice", model.FieldUsername, false))
	cred.AddField("password", model.NewField("hunter2", model.FieldPassword, true))
	if err := m.Repository().AddCredential(cred); err != nil {
		t.Fatalf("AddCredential: %v", err)
	}
	if err := m.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := m.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	m2 := New("ziplock-test", provider.NewFilesystem(), archive.Options{})
	if err := m2.OpenAt(path, "hunter2-vault-pw"); err != nil {
		t.Fatalf("OpenAt: %v", err)
	}
	got, err := m2.Repository().GetCredential("c1")
	if err != nil {
		t.Fatalf("GetCredential: %v", err)
	}
	if !got.Fields["password"].Sensitive {
		t.Error("expected password field's sensitive flag to survive the round trip")
	}
	if got.Fields["username"].Value != "alice" {
		t.Errorf("expected username alice, got %q", got.Fields["username"].Value)
	}
}

// S3: open with wrong password -> InvalidPassword, state remains unbound.
func TestOpenWrongPassword(t *testing.T) {
	m, path := newFSManager(t)
	if err := m.CreateAt(path, "correct"); err != nil {
		t.Fatalf("CreateAt: %v", err)
	}
	_ = m.Close()

	m2 := New("ziplock-test", provider.NewFilesystem(), archive.Options{})
	err := m2.OpenAt(path, "wrong")
	if zerrors.GetCode(err) != zerrors.CodeInvalidPassword {
		t.Fatalf("expected CodeInvalidPassword, got %v", err)
	}
	if m2.Repository().IsInitialized() {
		t.Fatal("expected repository to remain uninitialized after a failed open")
	}
}

// S4: truncated archive -> CorruptedArchive.
func TestOpenTruncatedArchive(t *testing.T) {
	m, path := newFSManager(t)
	if err := m.CreateAt(path, "correct"); err != nil {
		t.Fatalf("CreateAt: %v", err)
	}
	_ = m.Close()

	fs := provider.NewFilesystem()
	data, err := fs.Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if err := fs.Write(path, data[:len(data)-1]); err != nil {
		t.Fatalf("Write: %v", err)
	}

	m2 := New("ziplock-test", provider.NewFilesystem(), archive.Options{})
	err = m2.OpenAt(path, "correct")
	if zerrors.GetCode(err) != zerrors.CodeCorruptedArchive {
		t.Fatalf("expected CodeCorruptedArchive, got %v", err)
	}
}

// S5: add credential with empty title -> ValidationError, repository unchanged.
// Builds the Credential directly (bypassing model.NewCredential, the way a
// decoded-from-JSON ABI call or a malformed file-map load would) so this
// actually exercises AddCredential's own title check rather than
// NewCredential's.
func TestAddEmptyTitleRejected(t *testing.T) {
	m, path := newFSManager(t)
	if err := m.CreateAt(path, "pw"); err != nil {
		t.Fatalf("CreateAt: %v", err)
	}

	bad := &model.Credential{ID: "c1", Title: "", CredentialType: "login"}
	if err := m.Repository().AddCredential(bad); zerrors.GetCode(err) != zerrors.CodeValidationError {
		t.Fatalf("expected CodeValidationError for empty title, got %v", err)
	}
	if len(m.Repository().ListCredentials()) != 0 {
		t.Fatal("expected repository to remain empty")
	}
}

// S6: Initialize then LoadFromFiles -> AlreadyInitialized; fresh handle succeeds.
func TestInitializeThenLoadFromFilesFailsOnLiveHandle(t *testing.T) {
	m, _ := newFSManager(t)
	if err := m.Repository().Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	files, err := m.Repository().SerializeToFiles()
	if err != nil {
		t.Fatalf("SerializeToFiles: %v", err)
	}
	if err := m.LoadFromFiles(files, filemap.Options{}); zerrors.GetCode(err) != zerrors.CodeAlreadyInitialized {
		t.Fatalf("expected CodeAlreadyInitialized, got %v", err)
	}

	fresh, _ := newFSManager(t)
	if err := fresh.LoadFromFiles(files, filemap.Options{}); err != nil {
		t.Fatalf("expected LoadFromFiles on a fresh handle to succeed, got %v", err)
	}
}

func TestNullProviderSignalsExternalOps(t *testing.T) {
	m := New("ziplock-test", provider.NewNull(), archive.Options{})
	err := m.CreateAt("ignored", "pw")
	if zerrors.GetCode(err) != zerrors.CodeExternalFileOperationsRequired {
		t.Fatalf("expected CodeExternalFileOperationsRequired, got %v", err)
	}
	if !m.Repository().IsInitialized() {
		t.Fatal("expected the repository to still be initialized in memory")
	}
}
