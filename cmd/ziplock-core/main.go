// Command ziplock-core is the C ABI boundary (spec.md §4.7, §6):
// built with `go build -buildmode=c-shared`, it is the module's only
// `import "C"` site. Every operation it exports is a thin translation
// from C calling convention to the pure-Go internal/repository,
// internal/manager, and internal/handles packages, which remain
// testable without cgo. No pack example repo links against cgo, so the
// export surface and calling convention here follow spec.md §6/§9
// directly rather than an in-pack precedent (recorded in DESIGN.md).
package main

/*
#include <stdlib.h>
*/
import "C"

import (
	"encoding/json"
	"log/slog"
	"unsafe"

	"ziplock.sh/internal/archive"
	"ziplock.sh/internal/filemap"
	"ziplock.sh/internal/handles"
	"ziplock.sh/internal/manager"
	"ziplock.sh/internal/model"
	"ziplock.sh/internal/repository"
	"ziplock.sh/internal/zerrors"
)

const libraryVersion = "1.0.0"

var (
	repos      = handles.New[repository.CredentialRepository]()
	lastErrors = handles.NewLastErrors()
	logger     = slog.Default().With("component", "ziplock-core")

	// coreArchiveOpts is the zero value: the archive codec's own
	// compiled-in defaults (DefaultMaxUncompressedSize, LZMA). Per
	// spec.md §6 ("the core reads no environment variables and persists
	// no configuration"), this binary never consults internal/config or
	// the environment — that package is wired only into the ziplockctl
	// CLI host, a separate binary (see DESIGN.md).
	coreArchiveOpts archive.Options
)

// ziplock_init performs process-wide setup. It currently has nothing to
// do beyond existing as a stable lifecycle entry point for hosts that
// call it unconditionally; it is idempotent and safe to call more than
// once.
//
//export ziplock_init
func ziplock_init() C.int {
	return 0
}

// ziplock_get_version returns the library's semantic version. Callers
// must free the returned string with ziplock_string_free.
//
//export ziplock_get_version
func ziplock_get_version() *C.char {
	return C.CString(libraryVersion)
}

// ziplock_get_last_error returns the human-readable message of the most
// recent failure recorded against handle, or an empty string if none.
// Callers must free the returned string with ziplock_string_free.
//
//export ziplock_get_last_error
func ziplock_get_last_error(handle C.ulonglong) *C.char {
	return C.CString(lastErrors.Message(handles.Handle(handle)))
}

// ziplock_string_free releases a string previously returned across the
// ABI boundary.
//
//export ziplock_string_free
func ziplock_string_free(s *C.char) {
	C.free(unsafe.Pointer(s))
}

// ziplock_repository_create allocates a new, uninitialized repository
// handle. It returns 0 on failure (handle 0 is never issued on success).
//
//export ziplock_repository_create
func ziplock_repository_create() C.ulonglong {
	h := repos.Put(repository.New("ziplock-core"))
	return C.ulonglong(h)
}

// ziplock_repository_destroy releases a handle. Destroying an unknown
// handle is a no-op, matching the registry's own Remove semantics.
//
//export ziplock_repository_destroy
func ziplock_repository_destroy(handle C.ulonglong) {
	h := handles.Handle(handle)
	repos.Remove(h)
	lastErrors.Set(h, nil)
}

// ziplock_repository_initialize initializes an empty repository on handle.
//
//export ziplock_repository_initialize
func ziplock_repository_initialize(handle C.ulonglong) C.int {
	h := handles.Handle(handle)
	repo, ok := lookup(h)
	if !ok {
		return codeOf(h, invalidHandle())
	}
	return codeOf(h, repo.Initialize())
}

// ziplock_repository_is_initialized reports 1 if handle is initialized,
// 0 otherwise (including an unknown handle).
//
//export ziplock_repository_is_initialized
func ziplock_repository_is_initialized(handle C.ulonglong) C.int {
	repo, ok := lookup(handles.Handle(handle))
	if !ok || !repo.IsInitialized() {
		return 0
	}
	return 1
}

// ziplock_repository_load_from_files populates an uninitialized
// repository from a file-map JSON object (path -> base64 bytes).
//
//export ziplock_repository_load_from_files
func ziplock_repository_load_from_files(handle C.ulonglong, filesJSON *C.char) C.int {
	h := handles.Handle(handle)
	repo, ok := lookup(h)
	if !ok {
		return codeOf(h, invalidHandle())
	}

	files, err := decodeFileMap(filesJSON)
	if err != nil {
		return codeOf(h, err)
	}
	return codeOf(h, repo.LoadFromFiles(files, filemap.Options{}))
}

// ziplock_repository_serialize_to_files snapshots the repository into a
// file-map JSON object. Callers must free the returned string.
//
//export ziplock_repository_serialize_to_files
func ziplock_repository_serialize_to_files(handle C.ulonglong, out **C.char) C.int {
	h := handles.Handle(handle)
	repo, ok := lookup(h)
	if !ok {
		return codeOf(h, invalidHandle())
	}

	files, err := repo.SerializeToFiles()
	if err != nil {
		return codeOf(h, err)
	}
	return emitJSON(h, out, files)
}

// ziplock_add_credential inserts a credential described by JSON.
//
//export ziplock_add_credential
func ziplock_add_credential(handle C.ulonglong, credentialJSON *C.char) C.int {
	h := handles.Handle(handle)
	repo, ok := lookup(h)
	if !ok {
		return codeOf(h, invalidHandle())
	}

	cred, err := decodeCredential(credentialJSON)
	if err != nil {
		return codeOf(h, err)
	}
	return codeOf(h, repo.AddCredential(cred))
}

// ziplock_get_credential returns a single credential as JSON. Callers
// must free the returned string.
//
//export ziplock_get_credential
func ziplock_get_credential(handle C.ulonglong, id *C.char, out **C.char) C.int {
	h := handles.Handle(handle)
	repo, ok := lookup(h)
	if !ok {
		return codeOf(h, invalidHandle())
	}

	cred, err := repo.GetCredential(C.GoString(id))
	if err != nil {
		return codeOf(h, err)
	}
	return emitJSON(h, out, cred)
}

// ziplock_update_credential replaces a credential described by JSON.
//
//export ziplock_update_credential
func ziplock_update_credential(handle C.ulonglong, credentialJSON *C.char) C.int {
	h := handles.Handle(handle)
	repo, ok := lookup(h)
	if !ok {
		return codeOf(h, invalidHandle())
	}

	cred, err := decodeCredential(credentialJSON)
	if err != nil {
		return codeOf(h, err)
	}
	return codeOf(h, repo.UpdateCredential(cred))
}

// ziplock_delete_credential removes a credential by id.
//
//export ziplock_delete_credential
func ziplock_delete_credential(handle C.ulonglong, id *C.char) C.int {
	h := handles.Handle(handle)
	repo, ok := lookup(h)
	if !ok {
		return codeOf(h, invalidHandle())
	}
	return codeOf(h, repo.DeleteCredential(C.GoString(id)))
}

// ziplock_list_credentials returns every credential as a JSON array,
// ordered per spec.md §4.4 (updated_at desc, then id). Callers must
// free the returned string.
//
//export ziplock_list_credentials
func ziplock_list_credentials(handle C.ulonglong, out **C.char) C.int {
	h := handles.Handle(handle)
	repo, ok := lookup(h)
	if !ok {
		return codeOf(h, invalidHandle())
	}
	return emitJSON(h, out, repo.ListCredentials())
}

// ziplock_is_modified reports 1 if the repository has unsaved changes.
//
//export ziplock_is_modified
func ziplock_is_modified(handle C.ulonglong) C.int {
	repo, ok := lookup(handles.Handle(handle))
	if !ok || !repo.IsModified() {
		return 0
	}
	return 1
}

// ziplock_mark_saved clears the dirty flag without touching storage.
//
//export ziplock_mark_saved
func ziplock_mark_saved(handle C.ulonglong) C.int {
	h := handles.Handle(handle)
	repo, ok := lookup(h)
	if !ok {
		return codeOf(h, invalidHandle())
	}
	repo.MarkSaved()
	return 0
}

// ziplock_get_stats returns {credential_count, is_modified,
// is_initialized} as JSON. Callers must free the returned string.
//
//export ziplock_get_stats
func ziplock_get_stats(handle C.ulonglong, out **C.char) C.int {
	h := handles.Handle(handle)
	repo, ok := lookup(h)
	if !ok {
		return codeOf(h, invalidHandle())
	}
	return emitJSON(h, out, repo.GetStats())
}

// ziplock_clear_credentials removes every credential from the repository.
//
//export ziplock_clear_credentials
func ziplock_clear_credentials(handle C.ulonglong) C.int {
	h := handles.Handle(handle)
	repo, ok := lookup(h)
	if !ok {
		return codeOf(h, invalidHandle())
	}
	repo.ClearCredentials()
	return 0
}

// ziplock_create_temp_archive performs only the archive-codec step: it
// encodes filesJSON into a password-encrypted archive and writes it to
// tempPath, for hosts with no in-process archive implementation of
// their own (spec.md §5).
//
//export ziplock_create_temp_archive
func ziplock_create_temp_archive(filesJSON, password, tempPath *C.char) C.int {
	files, err := decodeFileMap(filesJSON)
	if err != nil {
		return C.int(zerrors.GetCode(err))
	}
	err = manager.CreateTempArchive(files, C.GoString(password), C.GoString(tempPath), coreArchiveOpts)
	return C.int(zerrors.GetCode(err))
}

// ziplock_extract_temp_archive decodes a password-encrypted archive
// already present at tempPath into a file-map JSON object. Callers must
// free the returned string.
//
//export ziplock_extract_temp_archive
func ziplock_extract_temp_archive(tempPath, password *C.char, out **C.char) C.int {
	files, err := manager.ExtractTempArchive(C.GoString(tempPath), C.GoString(password), coreArchiveOpts)
	if err != nil {
		return C.int(zerrors.GetCode(err))
	}
	data, merr := json.Marshal(files)
	if merr != nil {
		return C.int(zerrors.CodeSerializationError)
	}
	*out = C.CString(string(data))
	return 0
}

func lookup(h handles.Handle) (repository.CredentialRepository, bool) {
	return repos.Get(h)
}

func invalidHandle() error {
	return zerrors.New(zerrors.CodeInvalidParameter, "unknown repository handle")
}

// codeOf records err (if any) against h and returns the ABI status
// code: 0 for success, a positive zerrors.Code otherwise (spec.md §9
// "ambiguous return-code sign", resolved for this module).
func codeOf(h handles.Handle, err error) C.int {
	lastErrors.Set(h, err)
	if err != nil {
		logger.Debug("operation failed", "handle", h, "error", err)
	}
	return C.int(zerrors.GetCode(err))
}

func emitJSON(h handles.Handle, out **C.char, v any) C.int {
	data, err := json.Marshal(v)
	if err != nil {
		return codeOf(h, zerrors.Wrap(err, zerrors.CodeSerializationError, "failed to marshal ABI response"))
	}
	*out = C.CString(string(data))
	return codeOf(h, nil)
}

func decodeFileMap(s *C.char) (filemap.FileMap, error) {
	var files filemap.FileMap
	if err := json.Unmarshal([]byte(C.GoString(s)), &files); err != nil {
		return nil, zerrors.Wrap(err, zerrors.CodeSerializationError, "failed to parse file-map JSON")
	}
	return files, nil
}

func decodeCredential(s *C.char) (*model.Credential, error) {
	var cred model.Credential
	if err := json.Unmarshal([]byte(C.GoString(s)), &cred); err != nil {
		return nil, zerrors.Wrap(err, zerrors.CodeSerializationError, "failed to parse credential JSON")
	}
	return &cred, nil
}

func main() {}
