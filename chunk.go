package n5

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Chunk modes defined by the N5 format. Only default mode is readable here.
const (
	chunkModeDefault = 0
	chunkModeVarlen  = 1
	chunkModeObject  = 2
)

// chunkHeaderSize is the fixed prefix: mode (u16) + number of dimensions
// (u16), both big-endian.
const chunkHeaderSize = 4

// ChunkHeader is the parsed binary header of a default-mode chunk.
type ChunkHeader struct {
	Mode uint16
	// BlockSize is the chunk's actual per-axis element extent in N5 axis
	// order. At the far edges of an array it may be smaller than the
	// array's declared block size.
	BlockSize []int
}

// ParseChunkHeader reads a chunk's binary header and returns it along with
// the offset of the compressed payload.
//
// The layout is | mode u16 BE | nDim u16 BE | blockSize[nDim] u32 BE each |.
func ParseChunkHeader(raw []byte) (*ChunkHeader, int, error) {
	if len(raw) < chunkHeaderSize {
		return nil, 0, fmt.Errorf("%w: %d bytes is too short for a chunk header", ErrCorruptChunk, len(raw))
	}
	mode := binary.BigEndian.Uint16(raw)
	switch mode {
	case chunkModeDefault:
	case chunkModeVarlen:
		return nil, 0, fmt.Errorf("%w: varlen mode", ErrUnsupportedChunkMode)
	case chunkModeObject:
		return nil, 0, fmt.Errorf("%w: object mode", ErrUnsupportedChunkMode)
	default:
		return nil, 0, fmt.Errorf("%w: mode %d", ErrUnsupportedChunkMode, mode)
	}
	ndim := int(binary.BigEndian.Uint16(raw[2:]))
	off := chunkHeaderSize + ndim*4
	if len(raw) < off {
		return nil, 0, fmt.Errorf("%w: header declares %d dimensions but only %d bytes follow",
			ErrCorruptChunk, ndim, len(raw)-chunkHeaderSize)
	}
	blockSize := make([]int, ndim)
	for i := range blockSize {
		blockSize[i] = int(binary.BigEndian.Uint32(raw[chunkHeaderSize+i*4:]))
	}
	return &ChunkHeader{Mode: mode, BlockSize: blockSize}, off, nil
}

// Block is a decoded chunk: a dense buffer of elements in the engine's
// native numeric representation, with Shape in canonical axis order. The
// flat element sequence is unchanged from disk; only the axis labels are
// reinterpreted, since N5's fastest-varying axis is the canonical model's
// last axis.
type Block struct {
	DataType DataType
	Shape    []int
	// Data is a flat typed slice ([]uint8, []int32, []float64, ...) of
	// product(Shape) elements.
	Data any
}

// Elements returns the number of elements in the block.
func (b *Block) Elements() int {
	n := 1
	for _, s := range b.Shape {
		n *= s
	}
	return n
}

// DecodeChunk decodes the raw store bytes of one chunk into a dense block.
// It parses the binary header, decompresses the payload through the array's
// codec chain, and converts the big-endian elements to native values. The
// block's shape is the reverse of the header's extents; for an edge chunk
// the header may declare extents smaller than the array's chunk shape, and
// the smaller shape is surfaced as-is.
//
// Decoding is a pure function of its inputs: the same bytes and metadata
// always produce an identical block or an identical error.
func DecodeChunk(raw []byte, meta *ArrayMetadata) (*Block, error) {
	header, off, err := ParseChunkHeader(raw)
	if err != nil {
		return nil, err
	}
	if len(header.BlockSize) != len(meta.ChunkShape) {
		return nil, fmt.Errorf("%w: chunk header has %d dimensions, array has %d",
			ErrDimensionMismatch, len(header.BlockSize), len(meta.ChunkShape))
	}

	shape := reversed(header.BlockSize)
	for i, s := range shape {
		if s > meta.ChunkShape[i] {
			return nil, fmt.Errorf("%w: chunk extent %d exceeds chunk shape %d along axis %d",
				ErrDimensionMismatch, s, meta.ChunkShape[i], i)
		}
	}

	payload := raw[off:]
	for _, codec := range meta.Codecs {
		decompress, err := codec.Compression.Decompressor()
		if err != nil {
			return nil, err
		}
		payload, err = decompress(payload)
		if err != nil {
			return nil, err
		}
	}

	width := meta.DataType.Size()
	if len(payload)%width != 0 {
		return nil, fmt.Errorf("%w: %d payload bytes is not a multiple of element width %d",
			ErrCorruptChunk, len(payload), width)
	}
	expected := 1
	for _, s := range header.BlockSize {
		expected *= s
	}
	if len(payload)/width != expected {
		return nil, fmt.Errorf("%w: payload holds %d elements, header declares %d",
			ErrCorruptChunk, len(payload)/width, expected)
	}

	data := decodeBigEndian(meta.DataType, payload)
	return &Block{DataType: meta.DataType, Shape: shape, Data: data}, nil
}

// decodeBigEndian converts a big-endian byte buffer to a flat native typed
// slice. The buffer length must already be validated as count*width.
func decodeBigEndian(dt DataType, payload []byte) any {
	switch dt {
	case Uint8:
		out := make([]uint8, len(payload))
		copy(out, payload)
		return out
	case Int8:
		out := make([]int8, len(payload))
		for i, b := range payload {
			out[i] = int8(b)
		}
		return out
	case Uint16:
		out := make([]uint16, len(payload)/2)
		for i := range out {
			out[i] = binary.BigEndian.Uint16(payload[i*2:])
		}
		return out
	case Int16:
		out := make([]int16, len(payload)/2)
		for i := range out {
			out[i] = int16(binary.BigEndian.Uint16(payload[i*2:]))
		}
		return out
	case Uint32:
		out := make([]uint32, len(payload)/4)
		for i := range out {
			out[i] = binary.BigEndian.Uint32(payload[i*4:])
		}
		return out
	case Int32:
		out := make([]int32, len(payload)/4)
		for i := range out {
			out[i] = int32(binary.BigEndian.Uint32(payload[i*4:]))
		}
		return out
	case Uint64:
		out := make([]uint64, len(payload)/8)
		for i := range out {
			out[i] = binary.BigEndian.Uint64(payload[i*8:])
		}
		return out
	case Int64:
		out := make([]int64, len(payload)/8)
		for i := range out {
			out[i] = int64(binary.BigEndian.Uint64(payload[i*8:]))
		}
		return out
	case Float32:
		out := make([]float32, len(payload)/4)
		for i := range out {
			out[i] = math.Float32frombits(binary.BigEndian.Uint32(payload[i*4:]))
		}
		return out
	case Float64:
		out := make([]float64, len(payload)/8)
		for i := range out {
			out[i] = math.Float64frombits(binary.BigEndian.Uint64(payload[i*8:]))
		}
		return out
	}
	return nil
}
