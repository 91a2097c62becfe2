package world

import (
	"fmt"
	"sort"

	"github.com/annel0/voxel-world/internal/logging"
	"github.com/annel0/voxel-world/internal/physics"
	"github.com/annel0/voxel-world/internal/render"
	"github.com/annel0/voxel-world/internal/vec"
	"github.com/annel0/voxel-world/internal/world/block"
)

// Observer получает уведомления о пересчёте блоков (метрики, тесты)
type Observer interface {
	BlockEvaluated(ref BlockRef)
}

// Options параметры создания мира
type Options struct {
	Generator Generator
	Mesh      render.Sink
	Physics   physics.Sink
	Observer  Observer
	Logger    *logging.Logger

	// Strict превращает нарушения инвариантов в панику (режим разработки)
	Strict bool
}

// World владеет резидентными чанками, индексом позиций, правками игрока и
// кешем сгенерированных типов. Не потокобезопасен: все вызовы идут из
// одного цикла тиков.
type World struct {
	gen      Generator
	mesh     render.Sink
	physics  physics.Sink
	observer Observer
	logger   *logging.Logger
	strict   bool

	arena *Arena
	index map[ChunkPos]ChunkID

	saves ChunkSaves
	cache GameState

	damaged map[BlockRef]struct{}
	staged  map[BlockRef]struct{}
	faces   int
}

// New создаёт пустой мир. Пустые поля Options заменяются реализациями в памяти.
func New(opts Options) *World {
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	if opts.Generator == nil {
		opts.Generator = NewFlatGenerator(0)
	}
	if opts.Mesh == nil {
		opts.Mesh = render.NewScene(nil, opts.Logger)
	}
	if opts.Physics == nil {
		opts.Physics = physics.NewSpace()
	}
	return &World{
		gen:      opts.Generator,
		mesh:     opts.Mesh,
		physics:  opts.Physics,
		observer: opts.Observer,
		logger:   opts.Logger,
		strict:   opts.Strict,
		arena:    NewArena(),
		index:    make(map[ChunkPos]ChunkID),
		saves:    make(ChunkSaves),
		cache:    make(GameState),
		damaged:  make(map[BlockRef]struct{}),
		staged:   make(map[BlockRef]struct{}),
	}
}

// Generator генератор мира
func (w *World) Generator() Generator {
	return w.gen
}

// SetGenerator меняет генератор для чанков, генерируемых после вызова.
// При загрузке сохранения с другим сидом вызывается перед ReplaceSaves.
func (w *World) SetGenerator(gen Generator) {
	if gen != nil {
		w.gen = gen
	}
}

// Mesh внешний рендер
func (w *World) Mesh() render.Sink {
	return w.mesh
}

// Physics физический движок
func (w *World) Physics() physics.Sink {
	return w.physics
}

// fault сообщает о нарушении инварианта
func (w *World) fault(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if w.strict {
		panic("world: " + msg)
	}
	w.logger.Error("нарушение инварианта: %s", msg)
}

// CreateChunk размещает чанк в арене, связывает соседей внутри него и
// добавляет коллайдеры всем непустым блокам.
func (w *World) CreateChunk(pos ChunkPos, types Types) *Chunk {
	if id, exists := w.index[pos]; exists {
		w.fault("чанк %s уже загружен", pos)
		return w.arena.Get(id)
	}

	c := newChunk(pos, &types)
	id := w.arena.Insert(c)
	w.index[pos] = id

	for i := range c.blocks {
		b := &c.blocks[i]
		if b.Type != block.Air {
			w.physics.AddCollider(pos.WorldPos(b.Pos), physics.GroupBlocks)
			b.Collider = true
		}
	}

	w.logger.Debug("Чанк %s создан (слот %s)", pos, id)
	return c
}

// Chunk резидентный чанк по позиции
func (w *World) Chunk(pos ChunkPos) (*Chunk, bool) {
	id, ok := w.index[pos]
	if !ok {
		return nil, false
	}
	c := w.arena.Get(id)
	if c == nil {
		w.fault("индекс указывает на освобождённый слот %s для %s", id, pos)
		delete(w.index, pos)
		return nil, false
	}
	return c, true
}

// Block разрешает ссылку. Пустая или висячая ссылка даёт nil.
func (w *World) Block(ref BlockRef) *Block {
	return w.arena.Resolve(ref)
}

// chunkOf чанк, которому принадлежит ссылка
func (w *World) chunkOf(ref BlockRef) *Chunk {
	return w.arena.Get(ref.chunk)
}

// BlockAt ссылка на блок по мировой позиции, если его чанк загружен
func (w *World) BlockAt(p vec.Vec3) (BlockRef, bool) {
	cpos, local := ChunkPosOf(p)
	c, ok := w.Chunk(cpos)
	if !ok {
		return NoBlock, false
	}
	return c.Ref(local), true
}

// WorldPos мировая позиция блока по ссылке
func (w *World) WorldPos(ref BlockRef) (vec.Vec3, bool) {
	c := w.chunkOf(ref)
	if c == nil {
		return vec.Vec3{}, false
	}
	return c.Pos.WorldPos(PosFromIndex(ref.Index())), true
}

// Resident позиции резидентных чанков в детерминированном порядке
func (w *World) Resident() []ChunkPos {
	out := make([]ChunkPos, 0, len(w.index))
	for pos := range w.index {
		out = append(out, pos)
	}
	sort.Slice(out, func(i, j int) bool {
		return lessChunkPos(out[i], out[j])
	})
	return out
}

// ResidentCount количество резидентных чанков
func (w *World) ResidentCount() int {
	return len(w.index)
}

// VisibleFaces общее количество отрисованных граней
func (w *World) VisibleFaces() int {
	return w.faces
}

func lessChunkPos(a, b ChunkPos) bool {
	if a.X != b.X {
		return a.X < b.X
	}
	if a.Z != b.Z {
		return a.Z < b.Z
	}
	return a.Y < b.Y
}
