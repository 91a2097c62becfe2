package world

import (
	"testing"

	"github.com/annel0/voxel-world/internal/vec"
	"github.com/annel0/voxel-world/internal/world/block"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkSavesRecordApply(t *testing.T) {
	saves := make(ChunkSaves)
	saves.Record(ChunkPos{X: 1}, MustPos(0, 0, 0), block.Air)
	saves.Record(ChunkPos{X: 1}, MustPos(1, 4, 1), block.Sand)
	saves.Record(ChunkPos{Z: -2}, MustPos(2, 2, 2), block.Air)
	saves.Record(ChunkPos{X: 1}, MustPos(1, 4, 1), block.Dirt)
	assert.Equal(t, 3, saves.Len())

	types := NewFlatGenerator(0).Generate(ChunkPos{X: 1})
	saves.Apply(ChunkPos{X: 1}, &types)
	assert.Equal(t, block.Air, types.Get(MustPos(0, 0, 0)))
	assert.Equal(t, block.Dirt, types.Get(MustPos(1, 4, 1)))
	assert.Equal(t, block.Stone, types.Get(MustPos(2, 2, 2)))

	clone := saves.Clone()
	clone.Record(ChunkPos{}, MustPos(0, 0, 0), block.Air)
	assert.Equal(t, 3, saves.Len())
}

func TestBreakBlockEvaluatesSixNeighborsOnce(t *testing.T) {
	w := newTestWorld(t, NewFlatGenerator(1))
	c, _ := w.LoadOrGenerate(ChunkPos{})
	ref := c.Ref(MustPos(4, 1, 4))

	w.observer.reset()
	require.True(t, w.BreakBlock(ref))

	assert.Equal(t, 6, w.observer.total)
	for _, dir := range vec.Directions {
		assert.Equal(t, 1, w.observer.evaluated[w.Block(ref).Neighbor(dir)], dir.String())
	}
	assert.Zero(t, w.observer.evaluated[ref])

	b := w.Block(ref)
	assert.Equal(t, block.Air, b.Type)
	assert.Empty(t, b.Faces)
	assert.False(t, w.space.HasCollider(vec.Vec3{X: 4, Y: 1, Z: 4}))

	// Открывшиеся соседи получили грани и (физика загружена) коллайдеры
	below := w.Block(b.Neighbor(vec.Down))
	assert.Equal(t, map[string]bool{"up": true}, faceDirs(below))
	assert.True(t, below.Collider)

	saves := w.Saves()
	assert.Equal(t, block.Air, saves[ChunkPos{}][MustPos(4, 1, 4)])
	assert.Equal(t, block.Air, w.cache[ChunkPos{}].Get(MustPos(4, 1, 4)))

	assert.False(t, w.BreakBlock(ref), "воздух не разрушается")
}

func TestBreakBlockWithoutPhysicsKeepsColliders(t *testing.T) {
	w := newTestWorld(t, NewFlatGenerator(1))
	c, _ := w.LoadOrGenerate(ChunkPos{})
	w.UnloadPhysics(ChunkPos{})

	require.True(t, w.BreakBlock(c.Ref(MustPos(4, 3, 4))))
	assert.NotEmpty(t, c.Get(MustPos(4, 2, 4)).Faces)
	assert.Zero(t, w.space.Len())
}

func TestBreakAcrossSeam(t *testing.T) {
	w := newTestWorld(t, NewFlatGenerator(1))
	left, _ := w.LoadOrGenerate(ChunkPos{})
	right, _ := w.LoadOrGenerate(ChunkPos{X: 1})
	w.LinkPass()

	require.True(t, w.BreakBlock(left.Ref(MustPos(ChunkX-1, 2, 3))))
	assert.Equal(t, map[string]bool{"left": true}, faceDirs(right.Get(MustPos(0, 2, 3))))
}

func TestEditsSurviveReload(t *testing.T) {
	w := newTestWorld(t, NewFlatGenerator(1))
	c, _ := w.LoadOrGenerate(ChunkPos{})
	require.True(t, w.BreakBlock(c.Ref(MustPos(1, 4, 1))))

	// Через кеш
	w.UnloadChunk(ChunkPos{})
	c, loaded := w.LoadOrGenerate(ChunkPos{})
	require.True(t, loaded)
	assert.Equal(t, block.Air, c.Get(MustPos(1, 4, 1)).Type)

	// Через правки: кеш сбрасывается, правки накладываются на генерацию
	saves := w.Saves()
	w.ReplaceSaves(ChunkSaves{})
	c, _ = w.Chunk(ChunkPos{})
	assert.Equal(t, block.Stone, c.Get(MustPos(1, 4, 1)).Type)

	w.ReplaceSaves(saves)
	c, _ = w.Chunk(ChunkPos{})
	assert.Equal(t, block.Air, c.Get(MustPos(1, 4, 1)).Type)
	assert.Equal(t, 1, w.ResidentCount())
	assert.Equal(t, w.VisibleFaces(), w.scene.FaceCount())
}

func TestLoadOrGenerateIsNoOpWhenResident(t *testing.T) {
	w := newTestWorld(t, NewFlatGenerator(1))
	first, loaded := w.LoadOrGenerate(ChunkPos{})
	require.True(t, loaded)
	second, loaded := w.LoadOrGenerate(ChunkPos{})
	assert.False(t, loaded)
	assert.Same(t, first, second)
}
