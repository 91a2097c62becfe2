package world

import (
	"errors"
	"fmt"
	"math"

	"github.com/annel0/voxel-world/internal/vec"
	"github.com/annel0/voxel-world/internal/world/block"
)

// Размеры чанка в блоках
const (
	ChunkX      = 8
	ChunkY      = 16
	ChunkZ      = 8
	ChunkVolume = ChunkX * ChunkY * ChunkZ
)

// ErrPosOutOfRange координата за пределами чанка
var ErrPosOutOfRange = errors.New("позиция вне чанка")

// PosInChunk локальная позиция блока внутри чанка
type PosInChunk struct {
	X uint8 `json:"x"`
	Y uint8 `json:"y"`
	Z uint8 `json:"z"`
}

// NewPosInChunk проверяет координаты и создаёт позицию
func NewPosInChunk(x, y, z int) (PosInChunk, error) {
	if x < 0 || x >= ChunkX || y < 0 || y >= ChunkY || z < 0 || z >= ChunkZ {
		return PosInChunk{}, fmt.Errorf("%w: (%d, %d, %d)", ErrPosOutOfRange, x, y, z)
	}
	return PosInChunk{X: uint8(x), Y: uint8(y), Z: uint8(z)}, nil
}

// MustPos как NewPosInChunk, но паникует при ошибке
func MustPos(x, y, z int) PosInChunk {
	p, err := NewPosInChunk(x, y, z)
	if err != nil {
		panic(err)
	}
	return p
}

// Index линейный индекс блока: x + y*X + z*X*Y
func (p PosInChunk) Index() int {
	return int(p.X) + int(p.Y)*ChunkX + int(p.Z)*ChunkX*ChunkY
}

// PosFromIndex обратное преобразование к Index
func PosFromIndex(i int) PosInChunk {
	return PosInChunk{
		X: uint8(i % ChunkX),
		Y: uint8(i / ChunkX % ChunkY),
		Z: uint8(i / (ChunkX * ChunkY)),
	}
}

// Neighbor возвращает соседнюю позицию внутри чанка; false на границе
func (p PosInChunk) Neighbor(dir vec.Direction) (PosInChunk, bool) {
	n, err := NewPosInChunk(int(p.X)+dir.Offset().X, int(p.Y)+dir.Offset().Y, int(p.Z)+dir.Offset().Z)
	return n, err == nil
}

// Vec преобразует в целочисленный вектор
func (p PosInChunk) Vec() vec.Vec3 {
	return vec.Vec3{X: int(p.X), Y: int(p.Y), Z: int(p.Z)}
}

// ChunkPos координаты чанка в сетке чанков
type ChunkPos struct {
	X int32 `json:"x"`
	Y int32 `json:"y"`
	Z int32 `json:"z"`
}

// Origin мировая позиция блока (0,0,0) чанка
func (c ChunkPos) Origin() vec.Vec3 {
	return vec.Vec3{X: int(c.X) * ChunkX, Y: int(c.Y) * ChunkY, Z: int(c.Z) * ChunkZ}
}

// WorldPos мировая позиция локального блока
func (c ChunkPos) WorldPos(p PosInChunk) vec.Vec3 {
	return c.Origin().Add(p.Vec())
}

// Add соседний чанк в направлении dir
func (c ChunkPos) Add(dir vec.Direction) ChunkPos {
	o := dir.Offset()
	return ChunkPos{X: c.X + int32(o.X), Y: c.Y + int32(o.Y), Z: c.Z + int32(o.Z)}
}

// HorizontalDistSq квадрат расстояния по X/Z
func (c ChunkPos) HorizontalDistSq(other ChunkPos) int64 {
	dx := int64(c.X - other.X)
	dz := int64(c.Z - other.Z)
	return dx*dx + dz*dz
}

func (c ChunkPos) String() string {
	return fmt.Sprintf("(%d, %d, %d)", c.X, c.Y, c.Z)
}

// ChunkPosOf раскладывает мировую позицию блока на чанк и локальную позицию
func ChunkPosOf(p vec.Vec3) (ChunkPos, PosInChunk) {
	cx, lx := floorDiv(p.X, ChunkX)
	cy, ly := floorDiv(p.Y, ChunkY)
	cz, lz := floorDiv(p.Z, ChunkZ)
	return ChunkPos{X: int32(cx), Y: int32(cy), Z: int32(cz)},
		PosInChunk{X: uint8(lx), Y: uint8(ly), Z: uint8(lz)}
}

// ViewerChunk чанк наблюдателя: позиция делится на размер и округляется
func ViewerChunk(pos vec.Vec3Float) ChunkPos {
	return ChunkPos{
		X: int32(math.Round(pos.X / ChunkX)),
		Y: int32(math.Round(pos.Y / ChunkY)),
		Z: int32(math.Round(pos.Z / ChunkZ)),
	}
}

func floorDiv(a, b int) (q, r int) {
	q = a / b
	r = a % b
	if r < 0 {
		q--
		r += b
	}
	return q, r
}

// Types полный массив типов блоков одного чанка
type Types [ChunkVolume]block.Type

// Get тип по локальной позиции
func (t *Types) Get(p PosInChunk) block.Type {
	return t[p.Index()]
}

// Set устанавливает тип
func (t *Types) Set(p PosInChunk, typ block.Type) {
	t[p.Index()] = typ
}
