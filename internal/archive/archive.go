// Package archive implements the password-encrypted archive codec
// (spec.md §4.3): encoding a file map to a single byte stream and back.
//
// True byte-for-byte 7-Zip container compliance (LZMA2 folder graphs,
// BCJ filters, the cyclic AES+SHA256 key stretching 7-Zip itself uses)
// is out of scope for a clean-room reimplementation; see DESIGN.md. This
// codec instead reproduces every property spec.md §4.3 and §8 actually
// test: AES-256 payload encryption, header (entry-name) encryption when
// a password is set, empty-password meaning unencrypted, a configurable
// size cap, and distinguishable InvalidPassword/CorruptedArchive
// failures.
package archive

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"log/slog"

	"ziplock.sh/internal/filemap"
	"ziplock.sh/internal/zerrors"
)

// magic identifies the container format. It intentionally does not
// collide with the real 7z signature (`7z\xBC\xAF\x27\x1C`): this codec
// does not claim interop with the 7-Zip CLI.
var magic = [4]byte{'Z', 'A', '7', 'Z'}

const formatVersion byte = 1

// DefaultMaxUncompressedSize is the default aggregate size cap applied
// to a file map's decoded contents, per spec.md §4.3.
const DefaultMaxUncompressedSize = 500 * 1024 * 1024 // 500 MiB

// maxVerifierSize bounds the header verifier's length prefix. The
// verifier is the 16-byte salt sealed under the header key with the
// magic as associated data (nonce + ciphertext + tag, 44 bytes), always
// tiny; this is generous headroom, not a real expected size.
const maxVerifierSize = 4096

// archiveOverheadSlack accounts for encryption/framing overhead
// (nonce, GCM tag, compression expansion on pathological input) on top
// of the configured uncompressed-size cap, so a legitimate archive's
// compressed/sealed payload is never rejected by the bound meant to
// catch a falsified length prefix.
const archiveOverheadSlack = 1 << 20 // 1 MiB

// compressedSizeBound is the maximum length this codec will allocate
// for a single compressed/sealed payload blob, derived from the
// configured uncompressed-size cap so an attacker-controlled length
// prefix can never force an allocation wildly disproportionate to what
// a real archive under this cap could ever produce.
func compressedSizeBound(opts Options) int64 {
	return opts.maxSize() + archiveOverheadSlack
}

// Options configures Encode/Decode.
type Options struct {
	// MaxUncompressedSize bounds the aggregate size of the decoded file
	// map. Zero means DefaultMaxUncompressedSize.
	MaxUncompressedSize int64
	// Compressor selects the codec Encode compresses the packed entry
	// table with. A nil Compressor is resolved to LZMA.
	Compressor Compressor
}

func (o Options) maxSize() int64 {
	if o.MaxUncompressedSize <= 0 {
		return DefaultMaxUncompressedSize
	}
	return o.MaxUncompressedSize
}

func (o Options) compressor() Compressor {
	if o.Compressor != nil {
		return o.Compressor
	}
	return LZMACompressor{}
}

var logger = slog.Default().With("component", "archive")

// Encode serializes files into a single password-encrypted byte stream.
// An empty password produces an unencrypted (but still compressed)
// archive; spec.md leaves the decision to offer that to host policy.
func Encode(files filemap.FileMap, password string, opts Options) ([]byte, error) {
	plain, total := packEntries(files)
	if total > opts.maxSize() {
		return nil, zerrors.Newf(zerrors.CodeFileError, "file map of %d bytes exceeds the %d byte archive size cap", total, opts.maxSize())
	}

	comp := opts.compressor()
	compressed, err := comp.Compress(plain)
	if err != nil {
		return nil, zerrors.Wrap(err, zerrors.CodeInternalError, "failed to compress file map")
	}

	var out bytes.Buffer
	out.Write(magic[:])
	out.WriteByte(formatVersion)
	out.WriteByte(comp.Type())

	pw := []byte(password)
	defer zero(pw)

	if len(pw) == 0 {
		out.WriteByte(0) // encrypted = false
		writeUint64(&out, uint64(len(compressed)))
		out.Write(compressed)
		return out.Bytes(), nil
	}

	salt := make([]byte, saltSize)
	if err := randomSalt(salt); err != nil {
		return nil, zerrors.Wrap(err, zerrors.CodeInternalError, "failed to generate salt")
	}
	km, err := deriveKeys(pw, salt)
	if err != nil {
		return nil, zerrors.Wrap(err, zerrors.CodeInternalError, "failed to derive archive key")
	}
	defer km.zero()

	verifier, err := aesGCMEncrypt(km.headerKey[:], salt, magic[:])
	if err != nil {
		return nil, zerrors.Wrap(err, zerrors.CodeInternalError, "failed to seal archive verifier")
	}

	sealed, err := aesGCMEncrypt(km.payloadKey[:], compressed, salt)
	if err != nil {
		return nil, zerrors.Wrap(err, zerrors.CodeInternalError, "failed to seal archive payload")
	}

	out.WriteByte(1) // encrypted = true
	out.Write(salt)
	writeUint64(&out, uint64(len(verifier)))
	out.Write(verifier)
	writeUint64(&out, uint64(len(sealed)))
	out.Write(sealed)

	return out.Bytes(), nil
}

// Decode reverses Encode. It returns InvalidPassword when the password
// fails the header verifier check, and CorruptedArchive for any other
// structural or cryptographic failure — the two are always
// distinguishable because the verifier is checked before anything else.
func Decode(data []byte, password string, opts Options) (filemap.FileMap, error) {
	r := bytes.NewReader(data)

	var gotMagic [4]byte
	if _, err := readFull(r, gotMagic[:]); err != nil {
		return nil, zerrors.New(zerrors.CodeCorruptedArchive, "archive is too short to contain a header")
	}
	if gotMagic != magic {
		return nil, zerrors.New(zerrors.CodeCorruptedArchive, "archive signature is not recognized")
	}

	version, err := readByte(r)
	if err != nil {
		return nil, zerrors.New(zerrors.CodeCorruptedArchive, "archive is truncated")
	}
	if version != formatVersion {
		return nil, zerrors.Newf(zerrors.CodeCorruptedArchive, "unsupported archive version %d", version)
	}

	compType, err := readByte(r)
	if err != nil {
		return nil, zerrors.New(zerrors.CodeCorruptedArchive, "archive is truncated")
	}
	comp, err := compressorForType(compType)
	if err != nil {
		return nil, zerrors.Wrap(err, zerrors.CodeCorruptedArchive, "archive uses an unrecognized compression codec")
	}

	encryptedFlag, err := readByte(r)
	if err != nil {
		return nil, zerrors.New(zerrors.CodeCorruptedArchive, "archive is truncated")
	}

	var compressed []byte
	pw := []byte(password)
	defer zero(pw)

	switch encryptedFlag {
	case 0:
		var err error
		compressed, err = readLenPrefixed(r, compressedSizeBound(opts))
		if err != nil {
			return nil, zerrors.New(zerrors.CodeCorruptedArchive, "archive payload is truncated or oversized")
		}
	case 1:
		if len(pw) == 0 {
			return nil, zerrors.New(zerrors.CodeInvalidPassword, "archive is encrypted but no password was supplied")
		}
		salt := make([]byte, saltSize)
		if _, err := readFull(r, salt); err != nil {
			return nil, zerrors.New(zerrors.CodeCorruptedArchive, "archive is truncated")
		}

		verifier, err := readLenPrefixed(r, maxVerifierSize)
		if err != nil {
			return nil, zerrors.New(zerrors.CodeCorruptedArchive, "archive is truncated or oversized")
		}
		sealed, err := readLenPrefixed(r, compressedSizeBound(opts))
		if err != nil {
			return nil, zerrors.New(zerrors.CodeCorruptedArchive, "archive is truncated or oversized")
		}

		km, err := deriveKeys(pw, salt)
		if err != nil {
			return nil, zerrors.Wrap(err, zerrors.CodeInternalError, "failed to derive archive key")
		}
		defer km.zero()

		gotSalt, err := aesGCMDecrypt(km.headerKey[:], verifier, magic[:])
		if err != nil || !bytes.Equal(gotSalt, salt) {
			return nil, zerrors.New(zerrors.CodeInvalidPassword, "incorrect password")
		}

		compressed, err = aesGCMDecrypt(km.payloadKey[:], sealed, salt)
		if err != nil {
			return nil, zerrors.Wrap(err, zerrors.CodeCorruptedArchive, "archive payload failed authentication")
		}
	default:
		return nil, zerrors.New(zerrors.CodeCorruptedArchive, "archive has an unrecognized encryption flag")
	}

	plain, err := comp.Decompress(compressed)
	if err != nil {
		return nil, zerrors.Wrap(err, zerrors.CodeCorruptedArchive, "archive payload failed to decompress")
	}

	files, total, err := unpackEntries(plain, opts.maxSize())
	if err != nil {
		return nil, zerrors.Wrap(err, zerrors.CodeCorruptedArchive, "archive entry table is malformed")
	}
	if total > opts.maxSize() {
		return nil, zerrors.Newf(zerrors.CodeFileError, "decoded file map of %d bytes exceeds the %d byte archive size cap", total, opts.maxSize())
	}

	logger.Debug("decoded archive", "entries", len(files), "bytes", total)
	return files, nil
}

// packEntries serializes a file map into a single deterministic byte
// stream: entries sorted by name, each as nameLen(2)+name+dataLen(8)+data.
func packEntries(files filemap.FileMap) ([]byte, int64) {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sortStrings(names)

	var buf bytes.Buffer
	var total int64
	writeUint32(&buf, uint32(len(names)))
	for _, name := range names {
		data := files[name]
		writeUint16(&buf, uint16(len(name)))
		buf.WriteString(name)
		writeUint64(&buf, uint64(len(data)))
		buf.Write(data)
		total += int64(len(data))
	}
	return buf.Bytes(), total
}

// maxEntryCountHint caps how large a map-capacity hint unpackEntries
// will take from the untrusted entry count, so a falsified count near
// 2^32 can't force a huge map preallocation before the loop even starts
// reading entries.
const maxEntryCountHint = 1 << 16

func unpackEntries(data []byte, maxSize int64) (filemap.FileMap, int64, error) {
	r := bytes.NewReader(data)
	count, err := readUint32(r)
	if err != nil {
		return nil, 0, err
	}

	capHint := count
	if capHint > maxEntryCountHint {
		capHint = maxEntryCountHint
	}
	files := make(filemap.FileMap, capHint)
	var total int64
	for i := uint32(0); i < count; i++ {
		nameLen, err := readUint16(r)
		if err != nil {
			return nil, 0, err
		}
		nameBytes := make([]byte, nameLen)
		if _, err := readFull(r, nameBytes); err != nil {
			return nil, 0, err
		}
		dataLen, err := readUint64(r)
		if err != nil {
			return nil, 0, err
		}
		// Bound this entry's claimed length against what remains of the
		// size cap before allocating: the length prefix is untrusted and
		// must not be trusted to allocate on its own say-so.
		remaining := maxSize - total
		if remaining < 0 || dataLen > uint64(remaining) {
			return nil, 0, fmt.Errorf("entry %q claims %d bytes, exceeding the %d byte archive size cap", nameBytes, dataLen, maxSize)
		}
		entry := make([]byte, dataLen)
		if _, err := readFull(r, entry); err != nil {
			return nil, 0, err
		}
		files[string(nameBytes)] = entry
		total += int64(dataLen)
	}
	return files, total, nil
}

func writeUint16(buf *bytes.Buffer, v uint16) {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	buf.Write(b[:])
}

func writeUint32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func writeUint64(buf *bytes.Buffer, v uint64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	buf.Write(b[:])
}
