package n5

import (
	"fmt"

	"github.com/gomlx/gomlx/pkg/core/tensors"
)

// Tensor converts the block into a tensor with the block's canonical shape.
// The flat data is shared, not copied.
func (b *Block) Tensor() (*tensors.Tensor, error) {
	switch v := b.Data.(type) {
	case []uint8:
		return tensors.FromFlatDataAndDimensions(v, b.Shape...), nil
	case []int8:
		return tensors.FromFlatDataAndDimensions(v, b.Shape...), nil
	case []uint16:
		return tensors.FromFlatDataAndDimensions(v, b.Shape...), nil
	case []int16:
		return tensors.FromFlatDataAndDimensions(v, b.Shape...), nil
	case []uint32:
		return tensors.FromFlatDataAndDimensions(v, b.Shape...), nil
	case []int32:
		return tensors.FromFlatDataAndDimensions(v, b.Shape...), nil
	case []uint64:
		return tensors.FromFlatDataAndDimensions(v, b.Shape...), nil
	case []int64:
		return tensors.FromFlatDataAndDimensions(v, b.Shape...), nil
	case []float32:
		return tensors.FromFlatDataAndDimensions(v, b.Shape...), nil
	case []float64:
		return tensors.FromFlatDataAndDimensions(v, b.Shape...), nil
	default:
		return nil, fmt.Errorf("unexpected data type: %T", b.Data)
	}
}
