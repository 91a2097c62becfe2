package world

import (
	"fmt"
	"math"

	"github.com/annel0/voxel-world/internal/util"
	"github.com/annel0/voxel-world/internal/world/block"
)

// Generator детерминированно строит типы блоков чанка по его позиции
type Generator interface {
	Generate(pos ChunkPos) Types
	Seed() uint32
	Kind() string
}

// Имена генераторов в конфиге и сохранениях
const (
	GeneratorBiome = "biome"
	GeneratorFlat  = "flat"
)

// NewGenerator создаёт генератор по имени
func NewGenerator(kind string, seed uint32) (Generator, error) {
	switch kind {
	case GeneratorBiome, "":
		return NewBiomeGenerator(seed), nil
	case GeneratorFlat:
		return NewFlatGenerator(seed), nil
	}
	return nil, fmt.Errorf("неизвестный генератор %q", kind)
}

// FlatGenerator плоский мир: три слоя камня, слой травы и камень-метка
type FlatGenerator struct {
	seed uint32
}

// NewFlatGenerator создаёт плоский генератор
func NewFlatGenerator(seed uint32) *FlatGenerator {
	return &FlatGenerator{seed: seed}
}

func (g *FlatGenerator) Seed() uint32 { return g.seed }
func (g *FlatGenerator) Kind() string { return GeneratorFlat }

// Generate заполняет нижние слои; метка стоит в (1,4,1) каждого чанка нулевого слоя
func (g *FlatGenerator) Generate(pos ChunkPos) Types {
	var types Types
	if pos.Y != 0 {
		return types
	}
	for x := 0; x < ChunkX; x++ {
		for z := 0; z < ChunkZ; z++ {
			for y := 0; y < 3; y++ {
				types.Set(MustPos(x, y, z), block.Stone)
			}
			types.Set(MustPos(x, 3, z), block.Grass)
		}
	}
	types.Set(MustPos(1, 4, 1), block.Stone)
	return types
}

// Biome тип биома
type Biome uint8

const (
	BiomePlain Biome = iota
	BiomeSnowyPlain
	BiomeDesert
	BiomeForest
)

func (b Biome) String() string {
	switch b {
	case BiomeSnowyPlain:
		return "snowy_plain"
	case BiomeDesert:
		return "desert"
	case BiomeForest:
		return "forest"
	}
	return "plain"
}

// biomeParams верхний блок, средняя высота и разброс высоты
type biomeParams struct {
	top      block.Type
	height   int
	variance int
}

var biomes = map[Biome]biomeParams{
	BiomePlain:      {top: block.Grass, height: 6, variance: 3},
	BiomeSnowyPlain: {top: block.SnowyDirt, height: 6, variance: 2},
	BiomeDesert:     {top: block.Sand, height: 5, variance: 2},
	BiomeForest:     {top: block.Grass, height: 8, variance: 4},
}

// Пороги температуры и влажности для выбора биома
const (
	ColdMax    = 0.35 // Ниже - снежные равнины
	HotMin     = 0.65 // Выше - жарко
	DryMax     = 0.40 // Жарко и ниже - пустыня
	WetMin     = 0.60 // Выше - лес
	noiseScale = 0.05
	biomeScale = 0.02
)

// BiomeGenerator генерирует рельеф по трём полям шума: высота, температура, влажность
type BiomeGenerator struct {
	seed        uint32
	height      *util.NoiseField
	temperature *util.NoiseField
	rainfall    *util.NoiseField
}

// NewBiomeGenerator создаёт генератор биомов
func NewBiomeGenerator(seed uint32) *BiomeGenerator {
	s := int64(seed)
	return &BiomeGenerator{
		seed:        seed,
		height:      util.NewNoiseField(s, noiseScale),
		temperature: util.NewNoiseField(s+1, biomeScale),
		rainfall:    util.NewNoiseField(s+2, biomeScale),
	}
}

func (g *BiomeGenerator) Seed() uint32 { return g.seed }
func (g *BiomeGenerator) Kind() string { return GeneratorBiome }

// BiomeAt биом в мировой колонке (x, z)
func (g *BiomeGenerator) BiomeAt(x, z int) Biome {
	t := g.temperature.At(float64(x), float64(z))
	r := g.rainfall.At(float64(x), float64(z))
	switch {
	case t < ColdMax:
		return BiomeSnowyPlain
	case t > HotMin && r < DryMax:
		return BiomeDesert
	case r > WetMin:
		return BiomeForest
	}
	return BiomePlain
}

// HeightAt высота колонки: число непустых блоков от y=0
func (g *BiomeGenerator) HeightAt(x, z int) int {
	params := biomes[g.BiomeAt(x, z)]
	n := g.height.At(float64(x), float64(z))
	h := params.height + int(math.Round((n-0.5)*2*float64(params.variance)))
	if h < 2 {
		h = 2
	}
	if h > ChunkY {
		h = ChunkY
	}
	return h
}

// Generate строит колонки: камень ниже h-2, земля на h-2, верхний блок биома на h-1
func (g *BiomeGenerator) Generate(pos ChunkPos) Types {
	var types Types
	origin := pos.Origin()

	for x := 0; x < ChunkX; x++ {
		for z := 0; z < ChunkZ; z++ {
			wx, wz := origin.X+x, origin.Z+z
			h := g.HeightAt(wx, wz)
			top := biomes[g.BiomeAt(wx, wz)].top

			for y := 0; y < ChunkY; y++ {
				wy := origin.Y + y
				var t block.Type
				switch {
				case wy < h-2:
					t = block.Stone
				case wy == h-2:
					t = block.Dirt
				case wy == h-1:
					t = top
				default:
					t = block.Air
				}
				types.Set(MustPos(x, y, z), t)
			}
		}
	}
	return types
}
