// Package manager implements the repository manager (spec.md §4.6): the
// coordinator that combines the memory repository, the archive codec,
// and a file operation provider into open/save/close, automatically
// selecting the integrated or external-file-operations strategy based
// on the bound provider (spec.md §5).
package manager

import (
	"log/slog"
	"os"
	"sync"

	"ziplock.sh/internal/archive"
	"ziplock.sh/internal/filemap"
	"ziplock.sh/internal/model"
	"ziplock.sh/internal/provider"
	"ziplock.sh/internal/repository"
	"ziplock.sh/internal/zerrors"
)

// Manager coordinates exactly one Repository plus an optional bound
// Provider (spec.md §3 "Ownership").
type Manager struct {
	mu sync.Mutex

	repo        repository.CredentialRepository
	provider    provider.Provider
	archiveOpts archive.Options

	bound    bool
	location string
	password []byte

	logger *slog.Logger
}

// New creates a manager bound to p. p.Integrated() determines whether
// Open/Save perform real file I/O (desktop) or signal
// ExternalFileOperationsRequired (mobile); each of CreateAt, OpenAt,
// Save and SaveAs checks it when called.
func New(generator string, p provider.Provider, archiveOpts archive.Options) *Manager {
	return &Manager{
		repo:        repository.New(generator),
		provider:    p,
		archiveOpts: archiveOpts,
		logger:      slog.Default().With("component", "manager"),
	}
}

// Repository exposes the underlying credential store for CRUD
// operations (spec.md: "performs CRUD (C7→C4)").
func (m *Manager) Repository() repository.CredentialRepository {
	return m.repo
}

// CreateAt initializes an empty repository and persists it at location.
// On the null (mobile) provider, the repository is still initialized in
// memory, but persistence is the host's job: CreateAt returns
// ExternalFileOperationsRequired and the host is expected to call
// SerializeToFiles, encode/write the archive itself, then MarkSaved.
func (m *Manager) CreateAt(location, password string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.repo.Initialize(); err != nil {
		return err
	}

	if !m.provider.Integrated() {
		return zerrors.New(zerrors.CodeExternalFileOperationsRequired, "host must serialize and write the initial archive")
	}

	if err := m.persistLocked(location, password); err != nil {
		return err
	}
	m.bind(location, password)
	return nil
}

// OpenAt reads, decodes, and loads a repository from location using the
// integrated provider. Callers on a non-integrated provider should
// instead obtain bytes themselves and call LoadFromFiles.
func (m *Manager) OpenAt(location, password string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.provider.Integrated() {
		return zerrors.New(zerrors.CodeExternalFileOperationsRequired, "host must read and decode the archive")
	}

	data, err := m.provider.Read(location)
	if err != nil {
		return err
	}
	files, err := archive.Decode(data, password, m.archiveOpts)
	if err != nil {
		return err
	}
	if err := m.repo.LoadFromFiles(files, filemap.Options{}); err != nil {
		return err
	}
	m.bind(location, password)
	return nil
}

// Save re-encodes and writes the repository to its currently bound
// location. It is an atomic boundary: on failure dirty stays true and
// in-memory state is unchanged; on success dirty is cleared.
func (m *Manager) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.bound {
		return zerrors.New(zerrors.CodeNotInitialized, "manager is not bound to a location")
	}
	if !m.provider.Integrated() {
		return zerrors.New(zerrors.CodeExternalFileOperationsRequired, "host must serialize and write the archive")
	}
	return m.persistLocked(m.location, string(m.password))
}

// SaveAs rebinds the manager to a new location/password and saves there.
func (m *Manager) SaveAs(location, password string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.provider.Integrated() {
		return zerrors.New(zerrors.CodeExternalFileOperationsRequired, "host must serialize and write the archive")
	}
	if err := m.persistLocked(location, password); err != nil {
		return err
	}
	m.bind(location, password)
	return nil
}

// Close discards the in-memory repository and wipes password material.
// The manager handle itself remains usable for a fresh CreateAt/OpenAt.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	zero(m.password)
	m.password = nil
	m.bound = false
	m.location = ""
	m.repo = repository.New("")
	return nil
}

// LoadFromFiles is the external-file-operations entry point (spec.md
// §5): the host has already obtained and decoded archive bytes into a
// file map (e.g. via ExtractTempArchive) and hands it to the core to
// populate the in-memory repository.
func (m *Manager) LoadFromFiles(files filemap.FileMap, opts filemap.Options) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.repo.LoadFromFiles(files, opts)
}

// SerializeToFiles is the external-file-operations counterpart to
// LoadFromFiles: the host will encode and write the returned file map
// itself.
func (m *Manager) SerializeToFiles() (filemap.FileMap, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.repo.SerializeToFiles()
}

// MarkSaved lets an external-file-operations host tell the core its own
// write succeeded, clearing dirty without the core having touched disk.
func (m *Manager) MarkSaved() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.repo.MarkSaved()
}

// CreateTempArchive performs only the archive-codec step, writing the
// encoded bytes to tempPath. It exists for hosts that have no in-process
// 7z implementation of their own but can hand the library a real
// filesystem path obtained some other way (e.g. a cache directory),
// per spec.md §5.
func CreateTempArchive(files filemap.FileMap, password, tempPath string, opts archive.Options) error {
	data, err := archive.Encode(files, password, opts)
	if err != nil {
		return err
	}
	if err := os.WriteFile(tempPath, data, 0o600); err != nil {
		return zerrors.Wrapf(err, zerrors.CodeFileError, "failed to write temp archive to %s", tempPath)
	}
	return nil
}

// ExtractTempArchive is the CreateTempArchive counterpart: it decodes a
// password-encrypted archive already present at tempPath.
func ExtractTempArchive(tempPath, password string, opts archive.Options) (filemap.FileMap, error) {
	data, err := os.ReadFile(tempPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, zerrors.Wrapf(err, zerrors.CodeFileNotFound, "temp archive not found at %s", tempPath)
		}
		return nil, zerrors.Wrapf(err, zerrors.CodeFileError, "failed to read temp archive at %s", tempPath)
	}
	return archive.Decode(data, password, opts)
}

// GetStats passes through to the repository.
func (m *Manager) GetStats() model.Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.repo.GetStats()
}

// persistLocked serializes, encodes, and writes the repository to
// location, holding m.mu. The advisory lock at location+".lock" is
// created with a short bounded retry since a stale lock from a crashed
// process is an expected transient condition (spec.md §5); host tooling
// owns clearing genuinely stuck locks.
func (m *Manager) persistLocked(location, password string) error {
	files, err := m.repo.SerializeToFiles()
	if err != nil {
		return err
	}
	data, err := archive.Encode(files, password, m.archiveOpts)
	if err != nil {
		return err
	}

	lockPath := provider.LockPath(location)
	acquired := false
	err = retryLock(defaultLockRetryConfig(), func() error {
		f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
		if err != nil {
			return err
		}
		f.Close()
		acquired = true
		return nil
	})
	if err != nil {
		return zerrors.Wrapf(err, zerrors.CodeFileError, "could not acquire save lock at %s", lockPath)
	}
	defer func() {
		if acquired {
			os.Remove(lockPath)
		}
	}()

	if err := m.provider.Write(location, data); err != nil {
		return err
	}
	m.repo.MarkSaved()
	m.logger.Debug("repository saved", "location", location)
	return nil
}

func (m *Manager) bind(location, password string) {
	zero(m.password)
	m.location = location
	m.password = []byte(password)
	m.bound = true
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
