package n5

import (
	"fmt"
	"strconv"
	"strings"
)

// ChunkKey maps a canonical chunk-grid coordinate to its N5 store key:
// the node path followed by the reversed coordinate, one decimal path
// segment per axis. N5 lays chunks out fastest-varying axis first, so the
// same reversal applied to shapes applies to keys.
// Example: nodePath="vol", coord=[0, 1] -> "vol/1/0".
func ChunkKey(nodePath string, coord []int) string {
	var sb strings.Builder
	if nodePath != "" {
		sb.WriteString(nodePath)
	}
	for i := len(coord) - 1; i >= 0; i-- {
		if sb.Len() > 0 {
			sb.WriteByte('/')
		}
		sb.WriteString(strconv.Itoa(coord[i]))
	}
	return sb.String()
}

// ParseChunkKey inverts ChunkKey, recovering the canonical coordinate from
// a store key relative to nodePath.
func ParseChunkKey(nodePath, key string) ([]int, error) {
	rel := key
	if nodePath != "" {
		var ok bool
		rel, ok = strings.CutPrefix(key, nodePath+"/")
		if !ok {
			return nil, fmt.Errorf("key %q is not under node %q", key, nodePath)
		}
	}
	segs := strings.Split(rel, "/")
	coord := make([]int, len(segs))
	for i, seg := range segs {
		n, err := strconv.Atoi(seg)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("key %q has non-coordinate segment %q", key, seg)
		}
		coord[len(segs)-1-i] = n
	}
	return coord, nil
}

// GridShape computes the number of chunks along each axis:
// ceil(shape[i] / chunkShape[i]).
func GridShape(shape, chunkShape []int) []int {
	grid := make([]int, len(shape))
	for i := range shape {
		grid[i] = (shape[i] + chunkShape[i] - 1) / chunkShape[i]
	}
	return grid
}

// strides computes the C-order strides for a given shape.
func strides(shape []int) []int {
	s := make([]int, len(shape))
	stride := 1
	for i := len(shape) - 1; i >= 0; i-- {
		s[i] = stride
		stride *= shape[i]
	}
	return s
}
