package world

import (
	"github.com/annel0/voxel-world/internal/render"
	"github.com/annel0/voxel-world/internal/vec"
	"github.com/annel0/voxel-world/internal/world/block"
)

// LinkFlags набор положительных направлений, с которыми чанк уже связан
type LinkFlags uint8

const (
	LinkUp LinkFlags = 1 << iota
	LinkRight
	LinkFront

	LinkAll = LinkUp | LinkRight | LinkFront
)

// linkFlag флаг для положительного направления; 0 для отрицательных
func linkFlag(dir vec.Direction) LinkFlags {
	switch dir {
	case vec.Up:
		return LinkUp
	case vec.Right:
		return LinkRight
	case vec.Front:
		return LinkFront
	}
	return 0
}

// PhysicsState уровень физики чанка
type PhysicsState uint8

const (
	// PhysicsFull коллайдеры у всех непустых блоков (сразу после создания)
	PhysicsFull PhysicsState = iota
	// PhysicsSurface коллайдеры только у блоков с видимыми гранями
	PhysicsSurface
	// PhysicsNone коллайдеров нет
	PhysicsNone
)

func (s PhysicsState) String() string {
	switch s {
	case PhysicsFull:
		return "full"
	case PhysicsSurface:
		return "surface"
	case PhysicsNone:
		return "none"
	}
	return "unknown"
}

// Loaded сообщает, есть ли у чанка коллайдеры
func (s PhysicsState) Loaded() bool {
	return s != PhysicsNone
}

// Face отрисованная грань блока
type Face struct {
	ID       render.FaceID
	Dir      vec.Direction
	Texture  string
	Base     render.MaterialID // материал без трещин
	Material render.MaterialID // текущий материал во внешнем рендере
	Next     render.MaterialID // ожидающий замены материал; NoMaterial если нет
	Damage   int               // стадия повреждения 0..4
}

// Block блок внутри чанка
type Block struct {
	Pos       PosInChunk
	Type      block.Type
	Faces     []Face
	Neighbors [6]BlockRef // индексируется vec.Direction
	Collider  bool

	ref BlockRef
}

// Ref ссылка на этот блок
func (b *Block) Ref() BlockRef {
	return b.ref
}

// Neighbor ссылка на соседа в направлении dir
func (b *Block) Neighbor(dir vec.Direction) BlockRef {
	return b.Neighbors[dir]
}

// Chunk плотный массив блоков одной ячейки сетки чанков
type Chunk struct {
	Pos     ChunkPos
	Linked  LinkFlags
	Physics PhysicsState

	id     ChunkID
	blocks [ChunkVolume]Block
}

func newChunk(pos ChunkPos, types *Types) *Chunk {
	c := &Chunk{Pos: pos, Physics: PhysicsFull}
	for i := range c.blocks {
		c.blocks[i] = Block{Pos: PosFromIndex(i), Type: types[i]}
	}
	return c
}

// bind назначает идентификатор и связывает соседей внутри чанка
func (c *Chunk) bind(id ChunkID) {
	c.id = id
	for i := range c.blocks {
		b := &c.blocks[i]
		b.ref = BlockRef{chunk: id, index: uint16(i)}
		for _, dir := range vec.Directions {
			if n, ok := b.Pos.Neighbor(dir); ok {
				b.Neighbors[dir] = BlockRef{chunk: id, index: uint16(n.Index())}
			} else {
				b.Neighbors[dir] = NoBlock
			}
		}
	}
}

// ID идентификатор чанка в арене
func (c *Chunk) ID() ChunkID {
	return c.id
}

// Get блок по локальной позиции
func (c *Chunk) Get(p PosInChunk) *Block {
	return &c.blocks[p.Index()]
}

// Set заменяет тип и состояние блока, сохраняя его позицию, ссылку и соседей
func (c *Chunk) Set(p PosInChunk, b *Block) {
	dst := &c.blocks[p.Index()]
	dst.Type = b.Type
	dst.Faces = b.Faces
	dst.Collider = b.Collider
}

// Ref ссылка на блок по локальной позиции
func (c *Chunk) Ref(p PosInChunk) BlockRef {
	return c.blocks[p.Index()].ref
}

// Types снимок типов блоков
func (c *Chunk) Types() Types {
	var t Types
	for i := range c.blocks {
		t[i] = c.blocks[i].Type
	}
	return t
}

// FaceCount количество отрисованных граней в чанке
func (c *Chunk) FaceCount() int {
	n := 0
	for i := range c.blocks {
		n += len(c.blocks[i].Faces)
	}
	return n
}

// boundaries позиции блоков на каждой грани чанка
var boundaries = func() (out [6][]PosInChunk) {
	for _, dir := range vec.Directions {
		out[dir] = boundary(dir)
	}
	return out
}()

func boundary(dir vec.Direction) []PosInChunk {
	var out []PosInChunk
	for i := 0; i < ChunkVolume; i++ {
		p := PosFromIndex(i)
		if _, inside := p.Neighbor(dir); !inside {
			out = append(out, p)
		}
	}
	return out
}

// across позиция на противоположной грани соседнего чанка
func across(p PosInChunk, dir vec.Direction) PosInChunk {
	switch dir {
	case vec.Up:
		p.Y = 0
	case vec.Down:
		p.Y = ChunkY - 1
	case vec.Right:
		p.X = 0
	case vec.Left:
		p.X = ChunkX - 1
	case vec.Front:
		p.Z = 0
	case vec.Back:
		p.Z = ChunkZ - 1
	}
	return p
}
