// Package filemap converts between a model.Repository and the flat
// path-to-bytes "file map" that mediates between the memory repository
// and the archive codec (spec.md §3, §4.2).
package filemap

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
	"ziplock.sh/internal/model"
	"ziplock.sh/internal/zerrors"
)

const (
	metadataPath = "metadata.yml"
	indexPath    = "index.yml"
)

// reservedTopLevel lists the top-level file names Serialize writes and
// Deserialize accepts. Anything else at the top level is a
// ValidationError.
var reservedTopLevel = map[string]bool{
	metadataPath: true,
	indexPath:    true,
}

// FileMap is the path -> content representation persisted inside an
// archive.
type FileMap map[string][]byte

// Options controls deserialization behavior that the distilled source
// handled ambiguously (spec.md §9).
type Options struct {
	// AllowRepair, when true, lets Deserialize synthesize default
	// metadata when metadata.yml is missing from an otherwise-valid
	// file map. Default false: a missing metadata.yml is a precise
	// ValidationError naming the file.
	AllowRepair bool
}

type indexRow struct {
	ID             string `yaml:"id"`
	Title          string `yaml:"title"`
	CredentialType string `yaml:"credential_type"`
	UpdatedAt      int64  `yaml:"updated_at"`
}

// Serialize writes metadata.yml, one credentials/<id>/record.yml per
// credential, and a denormalized index.yml, with deterministic field
// ordering so repeated serialization of an unchanged repository yields
// byte-identical records and index. metadata.yml is not byte-identical
// across calls: each call stamps last_modified with the current time.
func Serialize(repo *model.Repository) (FileMap, error) {
	out := make(FileMap, len(repo.Credentials)+2)

	repo.Metadata.CredentialCount = len(repo.Credentials)
	repo.Metadata.LastModified = time.Now().UTC().Format(time.RFC3339)
	if repo.Metadata.CreatedAt == "" {
		repo.Metadata.CreatedAt = repo.Metadata.LastModified
	}

	metaBytes, err := encodeYAML(repo.Metadata)
	if err != nil {
		return nil, zerrors.Wrap(err, zerrors.CodeSerializationError, "failed to encode metadata.yml")
	}
	out[metadataPath] = metaBytes

	ids := make([]string, 0, len(repo.Credentials))
	for id := range repo.Credentials {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	index := make([]indexRow, 0, len(ids))
	for _, id := range ids {
		cred := repo.Credentials[id]
		recordBytes, err := encodeYAML(cred)
		if err != nil {
			return nil, zerrors.Wrapf(err, zerrors.CodeSerializationError, "failed to encode record for credential %s", id)
		}
		out[recordPath(id)] = recordBytes
		index = append(index, indexRow{
			ID:             cred.ID,
			Title:          cred.Title,
			CredentialType: cred.CredentialType,
			UpdatedAt:      cred.UpdatedAt,
		})
	}

	indexBytes, err := encodeYAML(index)
	if err != nil {
		return nil, zerrors.Wrap(err, zerrors.CodeSerializationError, "failed to encode index.yml")
	}
	out[indexPath] = indexBytes

	return out, nil
}

// Deserialize rebuilds a Repository from a file map. metadata.yml is
// required unless opts.AllowRepair is set. index.yml, if present, is
// never trusted for correctness — it is rebuilt from credentials/* and
// only exposed via ReadIndex as a convenience.
func Deserialize(files FileMap, opts Options) (*model.Repository, error) {
	for name := range files {
		if strings.HasPrefix(name, "credentials/") {
			continue
		}
		if !reservedTopLevel[name] {
			return nil, zerrors.Newf(zerrors.CodeValidationError, "unrecognized top-level file %q", name)
		}
	}

	metaBytes, ok := files[metadataPath]
	var meta model.Metadata
	if !ok {
		if !opts.AllowRepair {
			return nil, zerrors.Newf(zerrors.CodeValidationError, "missing required file %q", metadataPath)
		}
		meta = model.Metadata{
			Format:        model.FormatName,
			Version:       model.FormatVersion,
			SchemaVersion: model.SchemaVersion,
			Generator:     "ziplock-repair",
		}
	} else {
		if err := yaml.Unmarshal(metaBytes, &meta); err != nil {
			return nil, zerrors.Wrap(err, zerrors.CodeSerializationError, "malformed metadata.yml")
		}
		if meta.Format != "" && meta.Format != model.FormatName {
			return nil, zerrors.Newf(zerrors.CodeValidationError, "unrecognized archive format %q", meta.Format)
		}
		if meta.SchemaVersion > model.MaxSchemaVersion {
			return nil, zerrors.Newf(zerrors.CodeValidationError, "unsupported schema version %d", meta.SchemaVersion)
		}
	}

	repo := model.NewRepository(meta.Generator)
	repo.Metadata = meta

	for name, content := range files {
		id, rest, ok := splitCredentialPath(name)
		if !ok {
			continue
		}
		if rest != "record.yml" {
			// Attachments and any other per-credential file are
			// tolerated but not loaded into memory (spec.md §4.2).
			slog.Debug("ignoring non-record file under credentials/", "path", name)
			continue
		}

		var cred model.Credential
		if err := yaml.Unmarshal(content, &cred); err != nil {
			return nil, zerrors.Wrapf(err, zerrors.CodeSerializationError, "malformed record for credential %s", id)
		}
		if cred.ID != id {
			return nil, zerrors.Newf(zerrors.CodeValidationError, "record at credentials/%s/record.yml has mismatched id %q", id, cred.ID)
		}
		if model.ValidateTitle(cred.Title) != nil {
			return nil, zerrors.Newf(zerrors.CodeValidationError, "credential %s has an empty title", id)
		}
		if cred.Fields == nil {
			cred.Fields = make(map[string]model.Field)
		}
		if cred.Tags == nil {
			cred.Tags = []string{}
		}
		repo.Credentials[id] = &cred
	}

	if ok && meta.CredentialCount != 0 && meta.CredentialCount != len(repo.Credentials) {
		return nil, zerrors.Newf(zerrors.CodeValidationError,
			"metadata.yml declares %d credentials but %d records were found", meta.CredentialCount, len(repo.Credentials))
	}

	repo.Dirty = false
	return repo, nil
}

// ReadIndex decodes index.yml, if present, without touching the
// individual records. It is a read-only convenience; it is never
// consulted by Deserialize.
func ReadIndex(files FileMap) ([]indexRow, bool, error) {
	raw, ok := files[indexPath]
	if !ok {
		return nil, false, nil
	}
	var rows []indexRow
	if err := yaml.Unmarshal(raw, &rows); err != nil {
		return nil, true, zerrors.Wrap(err, zerrors.CodeSerializationError, "malformed index.yml")
	}
	return rows, true, nil
}

func recordPath(id string) string {
	return fmt.Sprintf("credentials/%s/record.yml", id)
}

// splitCredentialPath returns (id, remainder, true) for paths shaped
// "credentials/<id>/<remainder...>".
func splitCredentialPath(name string) (id string, rest string, ok bool) {
	const prefix = "credentials/"
	if !strings.HasPrefix(name, prefix) {
		return "", "", false
	}
	trimmed := strings.TrimPrefix(name, prefix)
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) != 2 || parts[0] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// encodeYAML marshals v with block style, 2-space indent, and a final
// newline; gopkg.in/yaml.v3 already emits LF-only line endings.
func encodeYAML(v any) ([]byte, error) {
	var buf strings.Builder
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		enc.Close()
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return []byte(buf.String()), nil
}
