package world

import (
	"testing"

	"github.com/annel0/voxel-world/internal/physics"
	"github.com/annel0/voxel-world/internal/vec"
	"github.com/annel0/voxel-world/internal/world/block"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCandidatesNearestFirst(t *testing.T) {
	w := newTestWorld(t, NewFlatGenerator(1))
	s := NewStreamer(w.World, StreamConfig{RenderDistance: 1, PhysicsDistance: 0}, nil)

	assert.Equal(t, []ChunkPos{
		{},
		{X: -1},
		{Z: -1},
		{Z: 1},
		{X: 1},
	}, s.Candidates(ChunkPos{}))
}

func TestStreamerLoadsAtMostOnePerTick(t *testing.T) {
	w := newTestWorld(t, NewFlatGenerator(1))
	s := NewStreamer(w.World, StreamConfig{RenderDistance: 2, PhysicsDistance: 1, LoadsPerTick: 1}, nil)
	total := len(s.Candidates(ChunkPos{}))
	require.Equal(t, 13, total)

	links := 0
	for i := 0; i < total; i++ {
		report := s.Tick(vec.Vec3Float{X: 1, Y: 8, Z: 1})
		require.Len(t, report.Loaded, 1, "тик %d", i)
		assert.Empty(t, report.Unloaded)
		links += report.Links
		if i == 0 {
			assert.Equal(t, ChunkPos{}, report.Loaded[0])
		}
	}
	assert.Equal(t, total, w.ResidentCount())

	report := s.Tick(vec.Vec3Float{X: 1, Y: 8, Z: 1})
	assert.Empty(t, report.Loaded)
	assert.Zero(t, report.Links)

	// в круге радиуса 2: 8 связей по X и 8 по Z
	assert.Equal(t, 16, links)
}

func TestStreamerPhysicsTiers(t *testing.T) {
	w := newTestWorld(t, NewFlatGenerator(1))
	s := NewStreamer(w.World, StreamConfig{RenderDistance: 2, PhysicsDistance: 1, LoadsPerTick: 20}, nil)

	report := s.Tick(vec.Vec3Float{})
	assert.Len(t, report.Loaded, 13)
	assert.Len(t, report.PhysicsLoaded, 5)
	assert.Len(t, report.PhysicsUnloaded, 8)

	near, _ := w.Chunk(ChunkPos{X: 1})
	far, _ := w.Chunk(ChunkPos{X: 2})
	assert.Equal(t, PhysicsSurface, near.Physics)
	assert.Equal(t, PhysicsNone, far.Physics)
	assert.False(t, w.space.HasCollider(vec.Vec3{X: 16, Y: 3, Z: 0}))
	assert.True(t, w.space.HasCollider(vec.Vec3{X: 8, Y: 3, Z: 0}))

	// Повторный тик ничего не переключает
	report = s.Tick(vec.Vec3Float{})
	assert.Empty(t, report.PhysicsLoaded)
	assert.Empty(t, report.PhysicsUnloaded)
}

func TestStreamerUnloadsOutOfRange(t *testing.T) {
	w := newTestWorld(t, NewFlatGenerator(1))
	s := NewStreamer(w.World, StreamConfig{RenderDistance: 1, LoadsPerTick: 1}, nil)
	for i := 0; i < 5; i++ {
		s.Tick(vec.Vec3Float{})
	}
	require.Equal(t, 5, w.ResidentCount())

	report := s.Tick(vec.Vec3Float{X: 80})
	assert.Equal(t, ChunkPos{X: 10}, report.Viewer)
	assert.Len(t, report.Unloaded, 5)
	assert.Equal(t, []ChunkPos{{X: 10}}, report.Loaded)
	assert.Equal(t, 1, w.ResidentCount())
	assert.Equal(t, w.VisibleFaces(), w.scene.FaceCount())
}

func TestStreamerLayers(t *testing.T) {
	w := newTestWorld(t, NewFlatGenerator(1))
	s := NewStreamer(w.World, StreamConfig{RenderDistance: 0, LoadsPerTick: 4, MinLayer: -1, MaxLayer: 1}, nil)

	report := s.Tick(vec.Vec3Float{})
	assert.Equal(t, []ChunkPos{{Y: -1}, {}, {Y: 1}}, report.Loaded)
	assert.Equal(t, 2, report.Links)
}

// stepGenerator даёт чанкам с x > 0 высоту low, остальным high
type stepGenerator struct {
	high, low int
}

func (g stepGenerator) Generate(pos ChunkPos) Types {
	var types Types
	if pos.Y != 0 {
		return types
	}
	height := g.high
	if pos.X > 0 {
		height = g.low
	}
	for x := 0; x < ChunkX; x++ {
		for z := 0; z < ChunkZ; z++ {
			for y := 0; y < height; y++ {
				types.Set(MustPos(x, y, z), block.Stone)
			}
		}
	}
	return types
}

func (stepGenerator) Seed() uint32 { return 0 }
func (stepGenerator) Kind() string { return "step" }

func TestStreamedSeamCollidersFollowFaces(t *testing.T) {
	w := newTestWorld(t, stepGenerator{high: 6, low: 2})
	s := NewStreamer(w.World, StreamConfig{RenderDistance: 1, PhysicsDistance: 1, LoadsPerTick: 1}, nil)
	for i := 0; i < 8; i++ {
		s.Tick(vec.Vec3Float{X: 1, Y: 8, Z: 1})
	}
	require.Equal(t, 5, w.ResidentCount())

	for _, pos := range w.Resident() {
		c, ok := w.Chunk(pos)
		require.True(t, ok)
		require.Equal(t, PhysicsSurface, c.Physics, "чанк %s", pos)
		for i := range c.blocks {
			b := &c.blocks[i]
			want := b.Type != block.Air && len(b.Faces) > 0
			at := pos.WorldPos(b.Pos)
			assert.Equal(t, want, b.Collider, "блок %v", at)
			assert.Equal(t, want, w.space.HasCollider(at), "коллайдер %v", at)
		}
	}

	// уступ на шве: грань вправо открылась после связывания
	origin, _ := w.Chunk(ChunkPos{})
	edge := origin.Get(MustPos(ChunkX-1, 4, 3))
	assert.Equal(t, map[string]bool{"right": true}, faceDirs(edge))
	assert.True(t, edge.Collider)

	hit, ok := w.space.CastRay(vec.Vec3Float{X: 10, Y: 4, Z: 3}, vec.Vec3Float{X: -1}, 16, physics.GroupBlocks)
	require.True(t, ok)
	assert.Equal(t, vec.Vec3{X: 7, Y: 4, Z: 3}, hit.Block)
	assert.Equal(t, vec.Right, hit.Face)

	// после выгрузки соседа шов снова скрыт, коллайдер уходит вместе с гранью
	require.True(t, w.UnloadChunk(ChunkPos{X: 1}))
	assert.Empty(t, edge.Faces)
	assert.False(t, edge.Collider)
	assert.False(t, w.space.HasCollider(vec.Vec3{X: 7, Y: 4, Z: 3}))
	assert.True(t, w.space.HasCollider(vec.Vec3{X: 7, Y: 5, Z: 3}))
}
