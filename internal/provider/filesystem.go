package provider

import (
	"os"
	"path/filepath"

	"ziplock.sh/internal/zerrors"
)

// Filesystem is the integrated provider used on desktop hosts. Writes
// are atomic: write to a temp file, flush, then rename over the target,
// so a crash mid-write never leaves a torn archive (spec.md §4.5).
type Filesystem struct{}

func NewFilesystem() *Filesystem { return &Filesystem{} }

func (Filesystem) Integrated() bool { return true }

func (Filesystem) Exists(location string) bool {
	_, err := os.Stat(location)
	return err == nil
}

func (Filesystem) Read(location string) ([]byte, error) {
	data, err := os.ReadFile(location)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, zerrors.Wrapf(err, zerrors.CodeFileNotFound, "archive not found at %s", location)
		}
		if os.IsPermission(err) {
			return nil, zerrors.Wrapf(err, zerrors.CodePermissionDenied, "permission denied reading %s", location)
		}
		return nil, zerrors.Wrapf(err, zerrors.CodeFileError, "failed to read %s", location)
	}
	return data, nil
}

func (Filesystem) Write(location string, data []byte) error {
	dir := filepath.Dir(location)
	tmp, err := os.CreateTemp(dir, ".ziplock-*.tmp")
	if err != nil {
		if os.IsPermission(err) {
			return zerrors.Wrapf(err, zerrors.CodePermissionDenied, "permission denied writing to %s", dir)
		}
		return zerrors.Wrapf(err, zerrors.CodeFileError, "failed to create temp file in %s", dir)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return zerrors.Wrapf(err, zerrors.CodeFileError, "failed to write %s", location)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return zerrors.Wrapf(err, zerrors.CodeFileError, "failed to flush %s", location)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return zerrors.Wrapf(err, zerrors.CodeFileError, "failed to close temp file for %s", location)
	}
	if err := os.Rename(tmpPath, location); err != nil {
		os.Remove(tmpPath)
		return zerrors.Wrapf(err, zerrors.CodeFileError, "failed to finalize write to %s", location)
	}
	return nil
}

func (Filesystem) Remove(location string) error {
	if err := os.Remove(location); err != nil {
		if os.IsNotExist(err) {
			return zerrors.Wrapf(err, zerrors.CodeFileNotFound, "cannot remove missing file %s", location)
		}
		return zerrors.Wrapf(err, zerrors.CodeFileError, "failed to remove %s", location)
	}
	return nil
}

// LockPath returns the advisory lock path for an archive location
// (spec.md §5).
func LockPath(location string) string {
	return location + ".lock"
}
