package archive

import (
	"encoding/binary"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ziplock.sh/internal/filemap"
	"ziplock.sh/internal/zerrors"
)

func sampleFiles() filemap.FileMap {
	return filemap.FileMap{
		"metadata.yml":              []byte("format: ziplock\nversion: \"1.0\"\n"),
		"credentials/c1/record.yml": []byte("id: c1\ntitle: GitHub\nnotes: hunter2-should-not-leak\n"),
	}
}

func TestRoundTripEncrypted(t *testing.T) {
	files := sampleFiles()
	data, err := Encode(files, "correct horse battery staple", Options{})
	require.NoError(t, err)

	got, err := Decode(data, "correct horse battery staple", Options{})
	require.NoError(t, err)
	for name, want := range files {
		assert.Equal(t, string(want), string(got[name]), "entry %s", name)
	}
}

func TestRoundTripUnencrypted(t *testing.T) {
	files := sampleFiles()
	data, err := Encode(files, "", Options{})
	require.NoError(t, err)
	got, err := Decode(data, "", Options{})
	require.NoError(t, err)
	assert.Len(t, got, len(files))
}

func TestWrongPasswordIsDistinguishedFromCorruption(t *testing.T) {
	data, err := Encode(sampleFiles(), "correct", Options{})
	require.NoError(t, err)

	_, err = Decode(data, "wrong", Options{})
	assert.Equal(t, zerrors.CodeInvalidPassword, zerrors.GetCode(err))
}

func TestTruncatedArchiveIsCorrupted(t *testing.T) {
	data, err := Encode(sampleFiles(), "correct", Options{})
	require.NoError(t, err)
	truncated := data[:len(data)-1]

	_, err = Decode(truncated, "correct", Options{})
	assert.Equal(t, zerrors.CodeCorruptedArchive, zerrors.GetCode(err))
}

func TestEncryptedArchiveHidesFieldValues(t *testing.T) {
	secret := "xK9-very-unusual-secret-value-42"
	files := filemap.FileMap{
		"metadata.yml":              []byte("format: ziplock\n"),
		"credentials/c1/record.yml": []byte("value: " + secret + "\n"),
	}
	data, err := Encode(files, "password123", Options{})
	require.NoError(t, err)
	assert.NotContains(t, string(data), secret)
}

func TestSizeCapRejectsOversizedFileMap(t *testing.T) {
	big := make([]byte, 1024)
	files := filemap.FileMap{"metadata.yml": big}
	_, err := Encode(files, "pw", Options{MaxUncompressedSize: 100})
	assert.Equal(t, zerrors.CodeFileError, zerrors.GetCode(err))
}

// A tiny, otherwise well-formed archive with its payload length prefix
// falsified to claim a near-2^63 byte blob must be rejected (and must
// not attempt to allocate anything close to that), since the length
// prefix comes straight off the wire and is untrusted.
func TestFalsifiedLengthPrefixIsRejectedBeforeAllocating(t *testing.T) {
	data, err := Encode(sampleFiles(), "", Options{})
	require.NoError(t, err)

	// Layout: magic(4) + version(1) + compType(1) + encryptedFlag(1) +
	// uint64 payload length (8 bytes) + payload.
	const lenOffset = 4 + 1 + 1 + 1
	require.Greater(t, len(data), lenOffset+8)

	tampered := make([]byte, len(data))
	copy(tampered, data)
	binary.BigEndian.PutUint64(tampered[lenOffset:lenOffset+8], 1<<62)

	_, err = Decode(tampered, "", Options{})
	assert.Equal(t, zerrors.CodeCorruptedArchive, zerrors.GetCode(err))
}

// unpackEntries must reject a per-entry dataLen that exceeds what
// remains of the size cap before allocating the entry buffer, not just
// after the fact: a tiny crafted entry table can otherwise claim a
// single multi-exabyte entry.
func TestUnpackEntriesRejectsFalsifiedDataLenBeforeAllocating(t *testing.T) {
	var buf []byte
	buf = binary.BigEndian.AppendUint32(buf, 1) // entry count
	buf = binary.BigEndian.AppendUint16(buf, 3) // name length
	buf = append(buf, 'a', 'b', 'c')
	buf = binary.BigEndian.AppendUint64(buf, 1<<62) // falsified data length

	_, _, err := unpackEntries(buf, DefaultMaxUncompressedSize)
	require.Error(t, err)
}
