package world

import (
	"testing"

	"github.com/annel0/voxel-world/internal/world/block"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlatGeneratorLayout(t *testing.T) {
	types := NewFlatGenerator(7).Generate(ChunkPos{X: 3, Z: -2})

	assert.Equal(t, block.Stone, types.Get(MustPos(0, 0, 0)))
	assert.Equal(t, block.Stone, types.Get(MustPos(7, 2, 7)))
	assert.Equal(t, block.Grass, types.Get(MustPos(5, 3, 2)))
	assert.Equal(t, block.Stone, types.Get(MustPos(1, 4, 1)))
	assert.Equal(t, block.Air, types.Get(MustPos(2, 4, 1)))

	upper := NewFlatGenerator(7).Generate(ChunkPos{Y: 1})
	assert.Equal(t, Types{}, upper)
}

func TestBiomeGeneratorDeterministic(t *testing.T) {
	a := NewBiomeGenerator(1234)
	b := NewBiomeGenerator(1234)
	for _, pos := range []ChunkPos{{}, {X: -3, Z: 7}, {X: 40, Z: -12}} {
		assert.Equal(t, a.Generate(pos), b.Generate(pos), pos.String())
	}
	assert.Equal(t, uint32(1234), a.Seed())
	assert.Equal(t, GeneratorBiome, a.Kind())
}

func TestBiomeGeneratorColumns(t *testing.T) {
	g := NewBiomeGenerator(99)
	pos := ChunkPos{X: 2, Z: -5}
	types := g.Generate(pos)
	origin := pos.Origin()

	for x := 0; x < ChunkX; x++ {
		for z := 0; z < ChunkZ; z++ {
			h := g.HeightAt(origin.X+x, origin.Z+z)
			require.GreaterOrEqual(t, h, 2)
			require.LessOrEqual(t, h, ChunkY)
			top := biomes[g.BiomeAt(origin.X+x, origin.Z+z)].top

			for y := 0; y < ChunkY; y++ {
				got := types.Get(MustPos(x, y, z))
				switch {
				case y < h-2:
					assert.Equal(t, block.Stone, got)
				case y == h-2:
					assert.Equal(t, block.Dirt, got)
				case y == h-1:
					assert.Equal(t, top, got)
				default:
					assert.Equal(t, block.Air, got)
				}
			}
		}
	}
}

func TestNewGenerator(t *testing.T) {
	g, err := NewGenerator(GeneratorFlat, 5)
	require.NoError(t, err)
	assert.Equal(t, GeneratorFlat, g.Kind())
	assert.Equal(t, uint32(5), g.Seed())

	g, err = NewGenerator("", 5)
	require.NoError(t, err)
	assert.Equal(t, GeneratorBiome, g.Kind())

	_, err = NewGenerator("caves", 5)
	assert.Error(t, err)
}
