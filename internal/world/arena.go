package world

import "fmt"

// ChunkID идентификатор слота чанка в арене. Поколение 0 не бывает у живых
// чанков, поэтому нулевое значение означает "нет чанка".
type ChunkID struct {
	slot uint32
	gen  uint32
}

// Valid сообщает, указывает ли идентификатор на какой-либо слот
func (id ChunkID) Valid() bool {
	return id.gen != 0
}

func (id ChunkID) String() string {
	return fmt.Sprintf("%d@%d", id.slot, id.gen)
}

// BlockRef невладеющая ссылка на блок: чанк + индекс в чанке.
// Ссылка на освобождённый или переиспользованный слот разрешается в nil.
type BlockRef struct {
	chunk ChunkID
	index uint16
}

// NoBlock пустая ссылка
var NoBlock BlockRef

// Valid сообщает, заполнена ли ссылка (не гарантирует, что блок жив)
func (r BlockRef) Valid() bool {
	return r.chunk.Valid()
}

// Chunk идентификатор чанка
func (r BlockRef) Chunk() ChunkID {
	return r.chunk
}

// Index линейный индекс блока в чанке
func (r BlockRef) Index() int {
	return int(r.index)
}

func (r BlockRef) String() string {
	return fmt.Sprintf("%s#%d", r.chunk, r.index)
}

type arenaSlot struct {
	gen   uint32
	chunk *Chunk
}

// Arena единственный владелец чанков. Слоты переиспользуются через free list,
// поколение слота растёт при каждом освобождении.
type Arena struct {
	slots []arenaSlot
	free  []uint32
	live  int
}

// NewArena создаёт пустую арену
func NewArena() *Arena {
	return &Arena{}
}

// Insert помещает чанк в свободный слот и назначает ему идентификатор
func (a *Arena) Insert(c *Chunk) ChunkID {
	var slot uint32
	if n := len(a.free); n > 0 {
		slot = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		slot = uint32(len(a.slots))
		a.slots = append(a.slots, arenaSlot{})
	}

	s := &a.slots[slot]
	s.gen++
	s.chunk = c
	a.live++

	id := ChunkID{slot: slot, gen: s.gen}
	c.bind(id)
	return id
}

// Get возвращает чанк или nil, если идентификатор устарел
func (a *Arena) Get(id ChunkID) *Chunk {
	if !id.Valid() || int(id.slot) >= len(a.slots) {
		return nil
	}
	s := a.slots[id.slot]
	if s.gen != id.gen {
		return nil
	}
	return s.chunk
}

// Free освобождает слот. Все ссылки на него становятся висячими.
func (a *Arena) Free(id ChunkID) bool {
	if a.Get(id) == nil {
		return false
	}
	s := &a.slots[id.slot]
	s.chunk = nil
	s.gen++
	a.free = append(a.free, id.slot)
	a.live--
	return true
}

// Resolve разрешает ссылку на блок
func (a *Arena) Resolve(ref BlockRef) *Block {
	c := a.Get(ref.chunk)
	if c == nil || int(ref.index) >= ChunkVolume {
		return nil
	}
	return &c.blocks[ref.index]
}

// Len количество живых чанков
func (a *Arena) Len() int {
	return a.live
}
