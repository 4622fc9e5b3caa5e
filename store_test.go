package n5_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	_ "gocloud.dev/blob/fileblob"

	n5 "github.com/clbarnes/go-n5"
)

func openFixture(t *testing.T, name string) *n5.Store {
	t.Helper()
	abs, err := filepath.Abs(filepath.Join("testdata", name))
	require.NoError(t, err)
	store, err := n5.OpenStore(context.Background(), "file://"+filepath.ToSlash(abs))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func openTempStore(t *testing.T) (string, *n5.Store) {
	t.Helper()
	dir := t.TempDir()
	store, err := n5.OpenStore(context.Background(), "file://"+filepath.ToSlash(dir))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return dir, store
}

func TestStoreArrayMetadata(t *testing.T) {
	store := openFixture(t, "raw.n5")
	ctx := context.Background()

	meta, err := store.ArrayMetadata(ctx, "")
	require.NoError(t, err)
	require.Equal(t, []int{3, 4}, meta.Shape)
	require.Equal(t, []int{3, 4}, meta.ChunkShape)
	require.Equal(t, n5.Uint8, meta.DataType)
	require.Equal(t, uint8(0), meta.FillValue)
	require.Equal(t, "raw", meta.Codecs[0].Compression.Type)
}

func TestStoreArrayMetadataNotFound(t *testing.T) {
	store := openFixture(t, "raw.n5")

	_, err := store.ArrayMetadata(context.Background(), "no/such/node")
	require.ErrorIs(t, err, n5.ErrNodeNotFound)
}

func TestStoreChunkRaw(t *testing.T) {
	store := openFixture(t, "raw.n5")

	block, err := store.Chunk(context.Background(), "", []int{0, 0})
	require.NoError(t, err)
	require.NotNil(t, block)
	require.Equal(t, []int{3, 4}, block.Shape)
	require.Equal(t, []uint8{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}, block.Data)
}

func TestStoreChunkGzip(t *testing.T) {
	store := openFixture(t, "gzip.n5")
	ctx := context.Background()

	meta, err := store.ArrayMetadata(ctx, "")
	require.NoError(t, err)
	require.Equal(t, []int{4, 6}, meta.Shape)
	require.Equal(t, []int{4, 3}, meta.ChunkShape)
	require.Equal(t, n5.Float32, meta.DataType)

	// Canonical coordinate [0, 1] maps to on-store key "1/0".
	block, err := store.Chunk(ctx, "", []int{0, 1})
	require.NoError(t, err)
	require.Equal(t, []int{4, 3}, block.Shape)
	expected := make([]float32, 12)
	for i := range expected {
		expected[i] = float32(100 + i)
	}
	require.Equal(t, expected, block.Data)
}

func TestStoreChunkBzip2(t *testing.T) {
	store := openFixture(t, "bzip2.n5")

	block, err := store.Chunk(context.Background(), "", []int{0, 1})
	require.NoError(t, err)
	require.Equal(t, []int{4, 2}, block.Shape)
	require.Equal(t, []int32{100, 101, 102, 103, 104, 105, 106, 107}, block.Data)
}

func TestStoreChunkMissing(t *testing.T) {
	store := openFixture(t, "sparse.n5")
	ctx := context.Background()

	// Present chunk.
	block, err := store.Chunk(ctx, "", []int{0, 0})
	require.NoError(t, err)
	require.Equal(t, []uint16{1, 2, 3, 4}, block.Data)

	// Absent chunks are "no data", not errors.
	for _, coord := range [][]int{{0, 1}, {1, 0}, {1, 1}} {
		block, err := store.Chunk(ctx, "", coord)
		require.NoError(t, err)
		require.Nil(t, block)
	}
}

func TestStoreChunkCoordinateMismatch(t *testing.T) {
	store := openFixture(t, "raw.n5")

	_, err := store.Chunk(context.Background(), "", []int{0})
	require.ErrorIs(t, err, n5.ErrDimensionMismatch)
}

func TestStoreChunkCorrupt(t *testing.T) {
	dir, store := openTempStore(t)
	ctx := context.Background()

	attrs := `{"dimensions":[4],"blockSize":[4],"dataType":"uint8","compression":{"type":"raw"}}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "attributes.json"), []byte(attrs), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "0"), []byte{0, 0}, 0644))

	_, err := store.Chunk(ctx, "", []int{0})
	require.ErrorIs(t, err, n5.ErrCorruptChunk)
}

func TestStoreInvalidMetadata(t *testing.T) {
	dir, store := openTempStore(t)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "attributes.json"), []byte(`{"dimensions":`), 0644))

	_, err := store.ArrayMetadata(context.Background(), "")
	require.ErrorIs(t, err, n5.ErrInvalidMetadata)
}

func TestStoreChildren(t *testing.T) {
	store := openFixture(t, "hier.n5")

	names, err := store.Children(context.Background(), "")
	require.NoError(t, err)
	require.Equal(t, []string{"meta", "vol"}, names)
}

func TestStoreNodeMetadata(t *testing.T) {
	store := openFixture(t, "hier.n5")
	ctx := context.Background()

	root, err := store.NodeMetadata(ctx, "")
	require.NoError(t, err)
	require.Nil(t, root.Array)
	require.Equal(t, "4.0.0", root.Group.Version)
	require.Equal(t, "fixture", root.Group.Attributes["author"])

	vol, err := store.NodeMetadata(ctx, "vol")
	require.NoError(t, err)
	require.NotNil(t, vol.Array)
	require.Equal(t, []int{2, 2}, vol.Array.Shape)

	meta, err := store.NodeMetadata(ctx, "meta")
	require.NoError(t, err)
	require.Equal(t, "drosophila", meta.Group.Attributes["species"])
}

func TestStoreChunkAtSubPath(t *testing.T) {
	store := openFixture(t, "hier.n5")

	block, err := store.Chunk(context.Background(), "vol", []int{0, 0})
	require.NoError(t, err)
	require.Equal(t, []uint8{9, 8, 7, 6}, block.Data)
}

func TestStoreReadArrayStitchesChunks(t *testing.T) {
	store := openFixture(t, "gzip.n5")

	block, err := store.ReadArray(context.Background(), "")
	require.NoError(t, err)
	require.Equal(t, []int{4, 6}, block.Shape)

	// Chunk "0/0" covers columns 0-2, chunk "1/0" columns 3-5.
	var expected []float32
	for r := 0; r < 4; r++ {
		expected = append(expected,
			float32(3*r), float32(3*r+1), float32(3*r+2),
			float32(100+3*r), float32(100+3*r+1), float32(100+3*r+2),
		)
	}
	require.Equal(t, expected, block.Data)
}

func TestStoreReadArraySparseFill(t *testing.T) {
	store := openFixture(t, "sparse.n5")

	block, err := store.ReadArray(context.Background(), "")
	require.NoError(t, err)
	require.Equal(t, []int{4, 4}, block.Shape)

	// Only the chunk at [0, 0] exists; the rest stays at the fill value.
	require.Equal(t, []uint16{
		1, 2, 0, 0,
		3, 4, 0, 0,
		0, 0, 0, 0,
		0, 0, 0, 0,
	}, block.Data)
}
