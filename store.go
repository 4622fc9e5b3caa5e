package n5

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"

	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"
)

// Store is a read-only adapter presenting an N5 hierarchy stored in a blob
// bucket through canonical array-engine abstractions: node metadata, chunk
// reads, and child listing. It holds no state beyond the bucket handle and
// caches nothing, so a single Store is safe for concurrent use.
type Store struct {
	bucket *blob.Bucket
}

// NewStore wraps an open bucket. The caller retains ownership of the
// bucket unless Close is used.
func NewStore(bucket *blob.Bucket) *Store {
	return &Store{bucket: bucket}
}

// OpenStore opens the bucket at the given URL (e.g. "file:///data/my.n5")
// and wraps it. The driver for the URL scheme must be linked in.
func OpenStore(ctx context.Context, urlstr string) (*Store, error) {
	bucket, err := blob.OpenBucket(ctx, urlstr)
	if err != nil {
		return nil, fmt.Errorf("failed to open bucket: %w", err)
	}
	return NewStore(bucket), nil
}

// Close closes the underlying bucket.
func (s *Store) Close() error {
	return s.bucket.Close()
}

// attributesKey returns the store key of a node's attributes document.
func attributesKey(path string) string {
	if path = normalizePath(path); path == "" {
		return AttributesKey
	}
	return path + "/" + AttributesKey
}

func normalizePath(path string) string {
	return strings.Trim(path, "/")
}

// ArrayMetadata reads and translates the attributes document of the array
// node at path. A node with no attributes document fails with
// ErrNodeNotFound.
func (s *Store) ArrayMetadata(ctx context.Context, path string) (*ArrayMetadata, error) {
	doc, err := s.readAttributes(ctx, path)
	if err != nil {
		return nil, err
	}
	meta, err := Translate(doc)
	if err != nil {
		return nil, fmt.Errorf("node %q: %w", path, err)
	}
	return meta, nil
}

// NodeMetadata reads the attributes document of the node at path and parses
// it as either array or group metadata.
func (s *Store) NodeMetadata(ctx context.Context, path string) (*NodeMetadata, error) {
	doc, err := s.readAttributes(ctx, path)
	if err != nil {
		return nil, err
	}
	node, err := ParseNodeMetadata(doc)
	if err != nil {
		return nil, fmt.Errorf("node %q: %w", path, err)
	}
	return node, nil
}

func (s *Store) readAttributes(ctx context.Context, path string) ([]byte, error) {
	key := attributesKey(path)
	doc, err := s.bucket.ReadAll(ctx, key)
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return nil, fmt.Errorf("%w: %q", ErrNodeNotFound, path)
		}
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return doc, nil
}

// Chunk reads and decodes the chunk at the given canonical grid coordinate
// of the array at path. A chunk key absent from the store is not an error:
// N5 permits sparse storage, and the nil, nil return means "no data, use
// fill value".
func (s *Store) Chunk(ctx context.Context, path string, coord []int) (*Block, error) {
	meta, err := s.ArrayMetadata(ctx, path)
	if err != nil {
		return nil, err
	}
	return s.chunk(ctx, path, coord, meta)
}

// chunk is Chunk with the metadata already translated, so bulk readers do
// not re-read attributes.json per chunk.
func (s *Store) chunk(ctx context.Context, path string, coord []int, meta *ArrayMetadata) (*Block, error) {
	if len(coord) != len(meta.ChunkShape) {
		return nil, fmt.Errorf("%w: coordinate has %d axes, array has %d",
			ErrDimensionMismatch, len(coord), len(meta.ChunkShape))
	}
	key := ChunkKey(normalizePath(path), coord)
	raw, err := s.bucket.ReadAll(ctx, key)
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read chunk %s: %w", key, err)
	}
	block, err := DecodeChunk(raw, meta)
	if err != nil {
		return nil, fmt.Errorf("chunk %s: %w", key, err)
	}
	return block, nil
}

// Children lists the names of the child nodes of the node at path.
func (s *Store) Children(ctx context.Context, path string) ([]string, error) {
	prefix := normalizePath(path)
	if prefix != "" {
		prefix += "/"
	}
	iter := s.bucket.List(&blob.ListOptions{Prefix: prefix, Delimiter: "/"})
	var names []string
	for {
		obj, err := iter.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list %q: %w", path, err)
		}
		if !obj.IsDir {
			continue
		}
		name := strings.TrimSuffix(strings.TrimPrefix(obj.Key, prefix), "/")
		if name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}

// ReadArray reads every chunk of the array at path and stitches them into
// one dense block covering the whole array, in canonical order. Chunks
// absent from the store are left at the fill value (zero).
func (s *Store) ReadArray(ctx context.Context, path string) (*Block, error) {
	meta, err := s.ArrayMetadata(ctx, path)
	if err != nil {
		return nil, err
	}

	total := 1
	for _, d := range meta.Shape {
		total *= d
	}
	data := allocate(meta.DataType, total)

	grid := GridShape(meta.Shape, meta.ChunkShape)
	err = iterateGrid(grid, func(coord []int) error {
		block, err := s.chunk(ctx, path, coord, meta)
		if err != nil {
			return err
		}
		if block == nil {
			return nil
		}
		return stitch(data, meta, block, coord)
	})
	if err != nil {
		return nil, err
	}

	return &Block{DataType: meta.DataType, Shape: slices.Clone(meta.Shape), Data: data}, nil
}

// iterateGrid calls fn for every coordinate of the grid in row-major order.
func iterateGrid(grid []int, fn func(coord []int) error) error {
	for _, g := range grid {
		if g == 0 {
			return nil
		}
	}
	coord := make([]int, len(grid))
	for {
		if err := fn(coord); err != nil {
			return err
		}
		i := len(grid) - 1
		for ; i >= 0; i-- {
			coord[i]++
			if coord[i] < grid[i] {
				break
			}
			coord[i] = 0
		}
		if i < 0 {
			return nil
		}
	}
}

func allocate(dt DataType, n int) any {
	switch dt {
	case Uint8:
		return make([]uint8, n)
	case Int8:
		return make([]int8, n)
	case Uint16:
		return make([]uint16, n)
	case Int16:
		return make([]int16, n)
	case Uint32:
		return make([]uint32, n)
	case Int32:
		return make([]int32, n)
	case Uint64:
		return make([]uint64, n)
	case Int64:
		return make([]int64, n)
	case Float32:
		return make([]float32, n)
	case Float64:
		return make([]float64, n)
	}
	return nil
}

// stitch copies a decoded chunk block into the full-array buffer at the
// region addressed by its grid coordinate, clipping to the array bounds.
func stitch(dst any, meta *ArrayMetadata, block *Block, coord []int) error {
	offset := make([]int, len(coord))
	extent := make([]int, len(coord))
	for i := range coord {
		offset[i] = coord[i] * meta.ChunkShape[i]
		extent[i] = min(block.Shape[i], meta.Shape[i]-offset[i])
	}
	switch d := dst.(type) {
	case []uint8:
		copyRegion(d, meta.Shape, block.Data.([]uint8), block.Shape, offset, extent)
	case []int8:
		copyRegion(d, meta.Shape, block.Data.([]int8), block.Shape, offset, extent)
	case []uint16:
		copyRegion(d, meta.Shape, block.Data.([]uint16), block.Shape, offset, extent)
	case []int16:
		copyRegion(d, meta.Shape, block.Data.([]int16), block.Shape, offset, extent)
	case []uint32:
		copyRegion(d, meta.Shape, block.Data.([]uint32), block.Shape, offset, extent)
	case []int32:
		copyRegion(d, meta.Shape, block.Data.([]int32), block.Shape, offset, extent)
	case []uint64:
		copyRegion(d, meta.Shape, block.Data.([]uint64), block.Shape, offset, extent)
	case []int64:
		copyRegion(d, meta.Shape, block.Data.([]int64), block.Shape, offset, extent)
	case []float32:
		copyRegion(d, meta.Shape, block.Data.([]float32), block.Shape, offset, extent)
	case []float64:
		copyRegion(d, meta.Shape, block.Data.([]float64), block.Shape, offset, extent)
	default:
		return fmt.Errorf("unexpected buffer type: %T", dst)
	}
	return nil
}

// copyRegion copies an extent-shaped region from the origin of src into dst
// at offset. Both buffers are dense C-order.
func copyRegion[T any](dst []T, dstShape []int, src []T, srcShape, offset, extent []int) {
	dstStrides := strides(dstShape)
	srcStrides := strides(srcShape)

	var iterate func(dim, srcIdx, dstIdx int)
	iterate = func(dim, srcIdx, dstIdx int) {
		if dim == len(extent)-1 {
			// Innermost dimension is contiguous in both buffers.
			copy(dst[dstIdx:dstIdx+extent[dim]], src[srcIdx:srcIdx+extent[dim]])
			return
		}
		for i := 0; i < extent[dim]; i++ {
			iterate(dim+1, srcIdx+i*srcStrides[dim], dstIdx+i*dstStrides[dim])
		}
	}

	dstStart := 0
	for i := range offset {
		dstStart += offset[i] * dstStrides[i]
	}
	if len(extent) == 0 {
		return
	}
	iterate(0, 0, dstStart)
}
