package n5

import "errors"

// Error kinds surfaced by this package. Callers should test with errors.Is;
// returned errors wrap one of these with additional context.
var (
	// ErrNodeNotFound indicates a node has no attributes.json in the store.
	// A missing chunk is not an error; see Store.Chunk.
	ErrNodeNotFound = errors.New("n5: node not found")
	// ErrInvalidMetadata indicates an attributes document that is malformed
	// or missing required array fields.
	ErrInvalidMetadata = errors.New("n5: invalid metadata")
	// ErrUnsupportedDataType indicates a dataType outside the N5 core set.
	ErrUnsupportedDataType = errors.New("n5: unsupported data type")
	// ErrUnsupportedCompression indicates a compression type this package
	// cannot decode (e.g. lz4, xz, blosc).
	ErrUnsupportedCompression = errors.New("n5: unsupported compression")
	// ErrUnsupportedChunkMode indicates a chunk stored in varlen or object
	// mode; only the default mode is supported.
	ErrUnsupportedChunkMode = errors.New("n5: unsupported chunk mode")
	// ErrDimensionMismatch indicates a chunk header whose dimensionality
	// disagrees with the array metadata.
	ErrDimensionMismatch = errors.New("n5: dimension mismatch")
	// ErrCorruptChunk indicates chunk bytes that are present but unparsable:
	// truncated header, failed decompression, or a payload whose size
	// disagrees with the header.
	ErrCorruptChunk = errors.New("n5: corrupt chunk")
)
