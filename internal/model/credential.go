package model

import (
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
	"ziplock.sh/internal/zerrors"
)

// Credential is a single entity in a Repository: a title, a type tag,
// and a set of named Fields.
type Credential struct {
	ID             string           `json:"id" yaml:"id"`
	Title          string           `json:"title" yaml:"title"`
	CredentialType string           `json:"credential_type" yaml:"credential_type"`
	Fields         map[string]Field `json:"fields" yaml:"fields"`
	Tags           []string         `json:"tags" yaml:"tags"`
	Notes          string           `json:"notes,omitempty" yaml:"notes,omitempty"`
	Favorite       bool             `json:"favorite" yaml:"favorite"`
	FolderPath     string           `json:"folder_path,omitempty" yaml:"folder_path,omitempty"`
	CreatedAt      int64            `json:"created_at" yaml:"created_at"`
	UpdatedAt      int64            `json:"updated_at" yaml:"updated_at"`
	AccessedAt     int64            `json:"accessed_at" yaml:"accessed_at"`
}

// NewCredential constructs a Credential, rejecting an empty or
// whitespace/combining-mark-only title. An empty id is replaced by a
// freshly generated UUID so hosts that don't care about id assignment
// never have to.
func NewCredential(id, title, credentialType string) (*Credential, error) {
	if !isMeaningfulTitle(title) {
		return nil, zerrors.New(zerrors.CodeValidationError, "credential title must not be empty")
	}
	if id == "" {
		id = uuid.NewString()
	}

	now := time.Now().Unix()
	return &Credential{
		ID:             id,
		Title:          title,
		CredentialType: credentialType,
		Fields:         make(map[string]Field),
		Tags:           []string{},
		CreatedAt:      now,
		UpdatedAt:      now,
		AccessedAt:     now,
	}, nil
}

// isMeaningfulTitle rejects titles that are empty after trimming
// whitespace, or after Unicode NFC normalization collapse to nothing
// printable (e.g. a string of bare combining marks).
func isMeaningfulTitle(title string) bool {
	normalized := norm.NFC.String(title)
	for _, r := range normalized {
		if !unicode.IsSpace(r) && !unicode.Is(unicode.M, r) {
			return true
		}
	}
	return false
}

// ValidateTitle re-runs NewCredential's title check against an
// already-constructed Credential. Every path that can introduce a
// Credential into a repository without going through NewCredential
// (the C ABI's JSON unmarshal, the file-map codec) must call this at
// its choke point: spec.md §3's "all credential titles are non-empty"
// invariant has to hold regardless of how a Credential was built.
func ValidateTitle(title string) error {
	if !isMeaningfulTitle(title) {
		return zerrors.New(zerrors.CodeValidationError, "credential title must not be empty")
	}
	return nil
}

// AddField inserts or overwrites a field by name. Names are
// case-sensitive and trimmed before comparison/storage.
func (c *Credential) AddField(name string, field Field) {
	name = strings.TrimSpace(name)
	if c.Fields == nil {
		c.Fields = make(map[string]Field)
	}
	c.Fields[name] = field
	c.touch()
}

// RemoveField deletes a field by name, if present.
func (c *Credential) RemoveField(name string) {
	name = strings.TrimSpace(name)
	if _, ok := c.Fields[name]; ok {
		delete(c.Fields, name)
		c.touch()
	}
}

// FieldNames returns field names in deterministic (sorted) order.
func (c *Credential) FieldNames() []string {
	names := make([]string, 0, len(c.Fields))
	for name := range c.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// touch bumps UpdatedAt; called by every mutator.
func (c *Credential) touch() {
	c.UpdatedAt = time.Now().Unix()
}

// Access bumps AccessedAt, called by repository reads that should count
// as access (per spec.md, list/get "may" bump it; the memory repository
// decides when).
func (c *Credential) Access() {
	c.AccessedAt = time.Now().Unix()
}

// Clone returns a deep copy so repository-owned values are never handed
// out by reference.
func (c *Credential) Clone() *Credential {
	fields := make(map[string]Field, len(c.Fields))
	for name, f := range c.Fields {
		fields[name] = f.Clone()
	}
	tags := make([]string, len(c.Tags))
	copy(tags, c.Tags)

	clone := *c
	clone.Fields = fields
	clone.Tags = tags
	return &clone
}

// HasTag reports whether t is present in the credential's tag set
// (case-sensitive, as tags are defined as a set of strings in spec.md).
func (c *Credential) HasTag(t string) bool {
	for _, tag := range c.Tags {
		if tag == t {
			return true
		}
	}
	return false
}

// AddTag inserts t into the tag set if not already present.
func (c *Credential) AddTag(t string) {
	if !c.HasTag(t) {
		c.Tags = append(c.Tags, t)
		c.touch()
	}
}
