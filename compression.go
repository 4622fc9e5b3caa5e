package n5

import (
	"bytes"
	"compress/bzip2"
	"encoding/json"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
)

// Compression types this package can decode. Other types that appear in the
// wild (lz4, xz, blosc, zstd) are recognized as valid metadata but fail with
// ErrUnsupportedCompression when a chunk is decoded.
const (
	CompressionRaw   = "raw"
	CompressionGzip  = "gzip"
	CompressionBzip2 = "bzip2"
)

// Compression is an N5 compression descriptor: a codec name plus write-time
// parameters. The parameters only matter when encoding, which this package
// does not do, but defaults are still applied so the descriptor round-trips
// the way other N5 implementations produce it.
type Compression struct {
	Type string `json:"type"`
	// Level is the gzip level (-1 means implementation default) or the lz4
	// block size.
	Level int `json:"level,omitempty"`
	// BlockSize is the bzip2 block size in 100kB units, 1-9.
	BlockSize int `json:"blockSize,omitempty"`
	// Preset is the xz preset.
	Preset int `json:"preset,omitempty"`
}

func (c *Compression) UnmarshalJSON(data []byte) error {
	type alias Compression
	a := alias{Level: -1, BlockSize: 9, Preset: 6}
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	switch a.Type {
	case CompressionGzip:
		a.BlockSize, a.Preset = 0, 0
	case CompressionBzip2:
		a.Level, a.Preset = 0, 0
	case "lz4":
		if a.Level == -1 {
			a.Level = 65536
		}
		a.BlockSize, a.Preset = 0, 0
	case "xz":
		a.Level, a.BlockSize = 0, 0
	default:
		a.Level, a.BlockSize, a.Preset = 0, 0, 0
	}
	*c = Compression(a)
	return nil
}

// Decompressor resolves the descriptor to a pure bytes-to-bytes
// decompression function. Resolution fails with ErrUnsupportedCompression
// for types outside the supported set; the returned function fails with
// ErrCorruptChunk when the stream itself is bad.
func (c Compression) Decompressor() (func([]byte) ([]byte, error), error) {
	switch c.Type {
	case CompressionRaw:
		return func(data []byte) ([]byte, error) { return data, nil }, nil
	case CompressionGzip:
		return decompressGzip, nil
	case CompressionBzip2:
		return decompressBzip2, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedCompression, c.Type)
	}
}

func decompressGzip(data []byte) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: bad gzip stream: %v", ErrCorruptChunk, err)
	}
	defer zr.Close()
	out, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("%w: gzip decompression failed: %v", ErrCorruptChunk, err)
	}
	return out, nil
}

func decompressBzip2(data []byte) ([]byte, error) {
	out, err := io.ReadAll(bzip2.NewReader(bytes.NewReader(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: bzip2 decompression failed: %v", ErrCorruptChunk, err)
	}
	return out, nil
}
