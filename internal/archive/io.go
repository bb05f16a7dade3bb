package archive

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io"
	"sort"
)

func sortStrings(s []string) { sort.Strings(s) }

func randomSalt(b []byte) error {
	_, err := io.ReadFull(rand.Reader, b)
	return err
}

func readFull(r io.Reader, b []byte) (int, error) {
	return io.ReadFull(r, b)
}

func readByte(r io.Reader) (byte, error) {
	var b [1]byte
	if _, err := readFull(r, b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}

func readUint16(r io.Reader) (uint16, error) {
	var b [2]byte
	if _, err := readFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b[:]), nil
}

func readUint32(r io.Reader) (uint32, error) {
	var b [4]byte
	if _, err := readFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b[:]), nil
}

func readUint64(r io.Reader) (uint64, error) {
	var b [8]byte
	if _, err := readFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b[:]), nil
}

// readLenPrefixed reads an 8-byte big-endian length followed by that
// many bytes, refusing to allocate when the claimed length exceeds
// maxLen. The length prefix comes straight off the wire and is
// untrusted: without this check, a few-KB corrupted or malicious
// archive could claim a length near 2^63 and trigger an immediate
// huge-allocation attempt before any other validation runs.
func readLenPrefixed(r io.Reader, maxLen int64) ([]byte, error) {
	n, err := readUint64(r)
	if err != nil {
		return nil, err
	}
	if n > uint64(maxLen) {
		return nil, fmt.Errorf("length-prefixed field of %d bytes exceeds the %d byte bound", n, maxLen)
	}
	buf := make([]byte, n)
	if _, err := readFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}
