package n5

import (
	"encoding/json"
	"fmt"
)

// AttributesKey is the name of the JSON document holding a node's metadata.
const AttributesKey = "attributes.json"

// arrayFields are the attributes.json keys that make a node an array.
// Every N5 array is also a group; a document without all four is a group.
var arrayFields = []string{"dimensions", "blockSize", "dataType", "compression"}

// ArrayAttributes is an N5 array's attributes.json as stored: axis lists in
// N5 order (fastest-varying axis first), plus any unstructured user
// attributes stored alongside the reserved fields.
type ArrayAttributes struct {
	// Version is the "n5" field, present on hierarchy roots.
	Version     string         `json:"n5,omitempty"`
	Dimensions  []int          `json:"dimensions"`
	BlockSize   []int          `json:"blockSize"`
	DataType    string         `json:"dataType"`
	Compression Compression    `json:"compression"`
	Attributes  map[string]any `json:"-"`
}

func (a *ArrayAttributes) UnmarshalJSON(data []byte) error {
	type alias ArrayAttributes
	var aa alias
	if err := json.Unmarshal(data, &aa); err != nil {
		return err
	}
	var rest map[string]any
	if err := json.Unmarshal(data, &rest); err != nil {
		return err
	}
	delete(rest, "n5")
	for _, k := range arrayFields {
		delete(rest, k)
	}
	if len(rest) > 0 {
		aa.Attributes = rest
	}
	*a = ArrayAttributes(aa)
	return nil
}

// CodecConfig is one entry of an array's codec chain. Translation emits a
// single entry carrying the N5 compression descriptor; the decompression
// function itself is resolved at chunk-decode time.
type CodecConfig struct {
	ID          string      `json:"id"`
	Compression Compression `json:"compression"`
}

// ArrayMetadata is array metadata in canonical (engine-side) form: axis
// lists are the reverse of the on-disk N5 order, so the slowest-varying
// axis comes first.
type ArrayMetadata struct {
	Shape      []int
	ChunkShape []int
	DataType   DataType
	// FillValue is the dtype's zero value; N5 has no fill-value field.
	FillValue any
	Codecs    []CodecConfig
	// Version is the N5 format version if this node is a hierarchy root.
	Version string
	// Attributes holds the node's unstructured user attributes.
	Attributes map[string]any
}

// GroupMetadata is the metadata of a non-array node.
type GroupMetadata struct {
	Version    string
	Attributes map[string]any
}

// NodeMetadata is the parsed metadata of one N5 node; exactly one of Array
// and Group is set.
type NodeMetadata struct {
	Array *ArrayMetadata
	Group *GroupMetadata
}

// Translate converts the raw bytes of an N5 array attributes document into
// canonical array metadata, reversing the axis order of both shape and
// chunk shape. It is a pure transform and never touches the store.
func Translate(doc []byte) (*ArrayMetadata, error) {
	var attrs ArrayAttributes
	if err := json.Unmarshal(doc, &attrs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMetadata, err)
	}
	return attrs.Translate()
}

// Translate converts parsed N5 array attributes into canonical metadata.
func (a *ArrayAttributes) Translate() (*ArrayMetadata, error) {
	if len(a.Dimensions) == 0 {
		return nil, fmt.Errorf("%w: missing or empty dimensions", ErrInvalidMetadata)
	}
	if len(a.BlockSize) == 0 {
		return nil, fmt.Errorf("%w: missing or empty blockSize", ErrInvalidMetadata)
	}
	if len(a.Dimensions) != len(a.BlockSize) {
		return nil, fmt.Errorf("%w: %d dimensions but %d blockSize entries",
			ErrInvalidMetadata, len(a.Dimensions), len(a.BlockSize))
	}
	for i, b := range a.BlockSize {
		if b <= 0 {
			return nil, fmt.Errorf("%w: blockSize[%d] = %d", ErrInvalidMetadata, i, b)
		}
	}
	for i, d := range a.Dimensions {
		if d < 0 {
			return nil, fmt.Errorf("%w: dimensions[%d] = %d", ErrInvalidMetadata, i, d)
		}
	}
	if a.DataType == "" {
		return nil, fmt.Errorf("%w: missing dataType", ErrInvalidMetadata)
	}
	if a.Compression.Type == "" {
		return nil, fmt.Errorf("%w: missing compression", ErrInvalidMetadata)
	}

	dt, err := ParseDataType(a.DataType)
	if err != nil {
		return nil, err
	}

	return &ArrayMetadata{
		Shape:      reversed(a.Dimensions),
		ChunkShape: reversed(a.BlockSize),
		DataType:   dt,
		FillValue:  dt.Zero(),
		Codecs:     []CodecConfig{{ID: "n5", Compression: a.Compression}},
		Version:    a.Version,
		Attributes: a.Attributes,
	}, nil
}

// ParseNodeMetadata parses a node's attributes document as either array or
// group metadata. A document carrying all of dimensions, blockSize,
// dataType and compression is an array; anything else is a group.
func ParseNodeMetadata(doc []byte) (*NodeMetadata, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(doc, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMetadata, err)
	}

	isArray := true
	for _, k := range arrayFields {
		if _, ok := raw[k]; !ok {
			isArray = false
			break
		}
	}

	if isArray {
		meta, err := Translate(doc)
		if err != nil {
			return nil, err
		}
		return &NodeMetadata{Array: meta}, nil
	}

	var attrs map[string]any
	if err := json.Unmarshal(doc, &attrs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMetadata, err)
	}
	group := &GroupMetadata{}
	if v, ok := attrs["n5"].(string); ok {
		group.Version = v
	}
	delete(attrs, "n5")
	if len(attrs) > 0 {
		group.Attributes = attrs
	}
	return &NodeMetadata{Group: group}, nil
}

// reversed returns a copy of s with the element order flipped. Axis-order
// reversal between N5 and canonical conventions is centralized here and
// applied to shapes, chunk shapes, chunk keys, and decoded block shapes.
func reversed(s []int) []int {
	out := make([]int, len(s))
	for i, v := range s {
		out[len(s)-1-i] = v
	}
	return out
}
