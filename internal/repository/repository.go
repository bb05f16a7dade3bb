// Package repository implements the memory repository (spec.md §4.4):
// the single owner of a repository's credential map, its dirty flag, and
// the CRUD guarantees every higher layer depends on.
//
// Grounded on fleetd's internal/repository.deviceRepository: an
// interface plus a mutex-guarded struct, generalized from SQL rows
// backed by *sql.DB to an in-memory map guarded by sync.RWMutex.
package repository

import (
	"log/slog"
	"sort"
	"sync"

	"ziplock.sh/internal/filemap"
	"ziplock.sh/internal/model"
	"ziplock.sh/internal/zerrors"
)

// CredentialRepository is the single owner of a repository's credential
// map (spec.md §3 "Ownership").
type CredentialRepository interface {
	Initialize() error
	LoadFromFiles(files filemap.FileMap, opts filemap.Options) error
	SerializeToFiles() (filemap.FileMap, error)

	AddCredential(c *model.Credential) error
	GetCredential(id string) (*model.Credential, error)
	UpdateCredential(c *model.Credential) error
	DeleteCredential(id string) error
	ListCredentials() []*model.Credential

	IsModified() bool
	MarkSaved()
	ClearCredentials()
	GetStats() model.Stats
	IsInitialized() bool
}

// memoryRepository is the in-memory implementation of
// CredentialRepository.
type memoryRepository struct {
	mu          sync.RWMutex
	initialized bool
	repo        *model.Repository
	generator   string
	logger      *slog.Logger
}

// New creates an uninitialized repository handle. Call Initialize or
// LoadFromFiles before any other operation.
func New(generator string) CredentialRepository {
	return &memoryRepository{
		generator: generator,
		logger:    slog.Default().With("component", "repository"),
	}
}

func (r *memoryRepository) Initialize() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.initialized {
		return zerrors.New(zerrors.CodeAlreadyInitialized, "repository is already initialized")
	}
	r.repo = model.NewRepository(r.generator)
	r.initialized = true
	r.logger.Debug("repository initialized empty")
	return nil
}

func (r *memoryRepository) LoadFromFiles(files filemap.FileMap, opts filemap.Options) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.initialized {
		return zerrors.New(zerrors.CodeAlreadyInitialized, "repository is already initialized")
	}

	repo, err := filemap.Deserialize(files, opts)
	if err != nil {
		return err
	}
	r.repo = repo
	r.repo.Dirty = false
	r.initialized = true
	r.logger.Debug("repository loaded from files", "credentials", len(repo.Credentials))
	return nil
}

func (r *memoryRepository) SerializeToFiles() (filemap.FileMap, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if !r.initialized {
		return nil, zerrors.New(zerrors.CodeNotInitialized, "repository has not been initialized")
	}
	return filemap.Serialize(r.repo)
}

func (r *memoryRepository) AddCredential(c *model.Credential) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.initialized {
		return zerrors.New(zerrors.CodeNotInitialized, "repository has not been initialized")
	}
	if c == nil || c.ID == "" {
		return zerrors.New(zerrors.CodeInvalidParameter, "credential must have a non-empty id")
	}
	if err := model.ValidateTitle(c.Title); err != nil {
		return err
	}
	if _, exists := r.repo.Credentials[c.ID]; exists {
		return zerrors.Newf(zerrors.CodeValidationError, "credential %s already exists", c.ID)
	}

	r.repo.Credentials[c.ID] = c.Clone()
	r.repo.Dirty = true
	r.logger.Debug("credential added", "id", c.ID)
	return nil
}

func (r *memoryRepository) GetCredential(id string) (*model.Credential, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.initialized {
		return nil, zerrors.New(zerrors.CodeNotInitialized, "repository has not been initialized")
	}
	cred, ok := r.repo.Credentials[id]
	if !ok {
		return nil, zerrors.Newf(zerrors.CodeCredentialNotFound, "credential %s not found", id)
	}
	cred.Access()
	return cred.Clone(), nil
}

func (r *memoryRepository) UpdateCredential(c *model.Credential) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.initialized {
		return zerrors.New(zerrors.CodeNotInitialized, "repository has not been initialized")
	}
	if c == nil || c.ID == "" {
		return zerrors.New(zerrors.CodeInvalidParameter, "credential must have a non-empty id")
	}
	if err := model.ValidateTitle(c.Title); err != nil {
		return err
	}
	if _, exists := r.repo.Credentials[c.ID]; !exists {
		return zerrors.Newf(zerrors.CodeCredentialNotFound, "credential %s not found", c.ID)
	}

	updated := c.Clone()
	updated.UpdatedAt = nowUnix()
	r.repo.Credentials[c.ID] = updated
	r.repo.Dirty = true
	r.logger.Debug("credential updated", "id", c.ID)
	return nil
}

func (r *memoryRepository) DeleteCredential(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.initialized {
		return zerrors.New(zerrors.CodeNotInitialized, "repository has not been initialized")
	}
	if _, exists := r.repo.Credentials[id]; !exists {
		return zerrors.Newf(zerrors.CodeCredentialNotFound, "credential %s not found", id)
	}
	delete(r.repo.Credentials, id)
	r.repo.Dirty = true
	r.logger.Debug("credential deleted", "id", id)
	return nil
}

func (r *memoryRepository) ListCredentials() []*model.Credential {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if !r.initialized {
		return nil
	}

	list := make([]*model.Credential, 0, len(r.repo.Credentials))
	for _, c := range r.repo.Credentials {
		list = append(list, c.Clone())
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].UpdatedAt != list[j].UpdatedAt {
			return list[i].UpdatedAt > list[j].UpdatedAt
		}
		return list[i].ID < list[j].ID
	})
	return list
}

func (r *memoryRepository) IsModified() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.initialized && r.repo.Dirty
}

func (r *memoryRepository) MarkSaved() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.initialized {
		r.repo.Dirty = false
	}
}

func (r *memoryRepository) ClearCredentials() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.initialized {
		return
	}
	r.repo.Credentials = make(map[string]*model.Credential)
	r.repo.Dirty = true
	r.logger.Debug("credentials cleared")
}

func (r *memoryRepository) GetStats() model.Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if !r.initialized {
		return model.Stats{IsInitialized: false}
	}
	return model.Stats{
		CredentialCount: len(r.repo.Credentials),
		IsModified:      r.repo.Dirty,
		IsInitialized:   true,
	}
}

func (r *memoryRepository) IsInitialized() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.initialized
}
