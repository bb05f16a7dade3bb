package archive

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz/lzma"
)

// Compressor is the capability set the archive codec compresses entry
// bytes through. Modeled on fleetd's internal/compression.Compressor,
// generalized from gzip/zstd/none to the codecs a 7z-shaped container
// actually uses: LZMA (7z's own default) and zstd (a fast alternative
// for large entries), plus a no-op passthrough.
type Compressor interface {
	Compress(data []byte) ([]byte, error)
	Decompress(data []byte) ([]byte, error)
	Type() byte
}

const (
	compressionNone byte = iota
	compressionLZMA
	compressionZstd
)

// LZMACompressor implements 7z's default codec via ulikunitz/xz's lzma
// package.
type LZMACompressor struct{}

func (LZMACompressor) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := lzma.NewWriter(&buf)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		w.Close()
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (LZMACompressor) Decompress(data []byte) ([]byte, error) {
	r, err := lzma.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return io.ReadAll(r)
}

func (LZMACompressor) Type() byte { return compressionLZMA }

// ZstdCompressor implements the fast-path codec for large entries.
type ZstdCompressor struct{}

func (ZstdCompressor) Compress(data []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, err
	}
	defer enc.Close()
	return enc.EncodeAll(data, nil), nil
}

func (ZstdCompressor) Decompress(data []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	return dec.DecodeAll(data, nil)
}

func (ZstdCompressor) Type() byte { return compressionZstd }

// NoneCompressor stores bytes unchanged.
type NoneCompressor struct{}

func (NoneCompressor) Compress(data []byte) ([]byte, error)   { return data, nil }
func (NoneCompressor) Decompress(data []byte) ([]byte, error) { return data, nil }
func (NoneCompressor) Type() byte                             { return compressionNone }

// compressorForType resolves the codec tag stored in an archive's
// header to the Compressor that can decode it.
func compressorForType(t byte) (Compressor, error) {
	switch t {
	case compressionNone:
		return NoneCompressor{}, nil
	case compressionLZMA:
		return LZMACompressor{}, nil
	case compressionZstd:
		return ZstdCompressor{}, nil
	default:
		return nil, fmt.Errorf("unsupported compression type tag %d", t)
	}
}

// CompressorByName resolves a config-level name (internal/config's
// ArchiveConfig.Compression) to a Compressor for use in Options.
func CompressorByName(name string) (Compressor, error) {
	switch name {
	case "none":
		return NoneCompressor{}, nil
	case "lzma", "":
		return LZMACompressor{}, nil
	case "zstd":
		return ZstdCompressor{}, nil
	default:
		return nil, fmt.Errorf("unsupported compression name %q", name)
	}
}
