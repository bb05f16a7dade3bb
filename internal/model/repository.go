package model

// FormatName and FormatVersion are the fixed values every repository and
// archive file map declares. A v1 implementation refuses to read
// anything with a higher major schema version rather than guess at
// best-effort compatibility (spec.md §9, open question).
const (
	FormatName       = "ziplock"
	FormatVersion    = "1.0"
	SchemaVersion    = 1
	MaxSchemaVersion = 1
)

// Metadata is the repository-level information persisted in
// metadata.yml.
type Metadata struct {
	Format          string `yaml:"format"`
	Version         string `yaml:"version"`
	CreatedAt       string `yaml:"created_at"`
	LastModified    string `yaml:"last_modified"`
	CredentialCount int    `yaml:"credential_count"`
	Generator       string `yaml:"generator"`
	SchemaVersion   int    `yaml:"schema_version"`
}

// Repository is the in-memory credential store and its metadata, per
// spec.md §3. It is always accessed through internal/repository's
// synchronized wrapper; this type itself has no locking.
type Repository struct {
	Format      string
	Version     string
	Credentials map[string]*Credential
	Metadata    Metadata
	Dirty       bool
}

// NewRepository returns an empty, freshly initialized repository.
func NewRepository(generator string) *Repository {
	return &Repository{
		Format:      FormatName,
		Version:     FormatVersion,
		Credentials: make(map[string]*Credential),
		Metadata: Metadata{
			Format:        FormatName,
			Version:       FormatVersion,
			Generator:     generator,
			SchemaVersion: SchemaVersion,
		},
		Dirty: false,
	}
}

// Stats summarizes a repository's state for hosts that don't want to
// walk the full credential map.
type Stats struct {
	CredentialCount int  `json:"credential_count"`
	IsModified      bool `json:"is_modified"`
	IsInitialized   bool `json:"is_initialized"`
}
