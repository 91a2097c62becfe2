package world

import (
	"testing"

	"github.com/annel0/voxel-world/internal/vec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexRoundTrip(t *testing.T) {
	for i := 0; i < ChunkVolume; i++ {
		p := PosFromIndex(i)
		require.Equal(t, i, p.Index(), "индекс %d", i)
	}
	assert.Equal(t, 1+2*ChunkX+3*ChunkX*ChunkY, MustPos(1, 2, 3).Index())
}

func TestNewPosInChunkValidates(t *testing.T) {
	_, err := NewPosInChunk(ChunkX, 0, 0)
	assert.ErrorIs(t, err, ErrPosOutOfRange)
	_, err = NewPosInChunk(0, -1, 0)
	assert.ErrorIs(t, err, ErrPosOutOfRange)
	_, err = NewPosInChunk(0, 0, ChunkZ)
	assert.ErrorIs(t, err, ErrPosOutOfRange)

	p, err := NewPosInChunk(ChunkX-1, ChunkY-1, ChunkZ-1)
	require.NoError(t, err)
	assert.Equal(t, ChunkVolume-1, p.Index())

	assert.Panics(t, func() { MustPos(0, ChunkY, 0) })
}

func TestPosNeighborAtEdge(t *testing.T) {
	p := MustPos(0, ChunkY-1, 3)
	_, ok := p.Neighbor(vec.Left)
	assert.False(t, ok)
	_, ok = p.Neighbor(vec.Up)
	assert.False(t, ok)

	n, ok := p.Neighbor(vec.Right)
	require.True(t, ok)
	assert.Equal(t, MustPos(1, ChunkY-1, 3), n)
}

func TestChunkPosOfNegative(t *testing.T) {
	cpos, local := ChunkPosOf(vec.Vec3{X: -1, Y: 17, Z: 8})
	assert.Equal(t, ChunkPos{X: -1, Y: 1, Z: 1}, cpos)
	assert.Equal(t, MustPos(ChunkX-1, 1, 0), local)
	assert.Equal(t, vec.Vec3{X: -1, Y: 17, Z: 8}, cpos.WorldPos(local))
}

func TestViewerChunkRounds(t *testing.T) {
	assert.Equal(t, ChunkPos{}, ViewerChunk(vec.Vec3Float{X: 3.9, Y: 5, Z: -3.9}))
	assert.Equal(t, ChunkPos{X: 1, Z: -1}, ViewerChunk(vec.Vec3Float{X: 4.1, Y: 5, Z: -4.1}))
	assert.Equal(t, ChunkPos{X: 10}, ViewerChunk(vec.Vec3Float{X: 80}))
}
