package world

import (
	"errors"
	"fmt"

	"github.com/annel0/voxel-world/internal/vec"
)

// ErrNotAdjacent чанки не соседствуют ровно по одной оси
var ErrNotAdjacent = errors.New("чанки не соседние")

// adjacency направление от a к b, если они соседи по одной оси
func adjacency(a, b ChunkPos) (vec.Direction, bool) {
	for _, dir := range vec.Directions {
		if a.Add(dir) == b {
			return dir, true
		}
	}
	return 0, false
}

// seamOverride режим физики при пересчёте шва. В чанке с поверхностной
// физикой коллайдер следует за гранями, иначе не трогается.
func seamOverride(c *Chunk) PhysicsOverride {
	if c.Physics == PhysicsSurface {
		return PhysicsCompute
	}
	return PhysicsKeep
}

// Link связывает граничные блоки двух соседних чанков и пересчитывает их
// видимость. Коллайдеры меняются только у чанков с поверхностной физикой.
func (w *World) Link(c1, c2 *Chunk) error {
	dir, ok := adjacency(c1.Pos, c2.Pos)
	if !ok {
		return fmt.Errorf("связывание %s и %s: %w", c1.Pos, c2.Pos, ErrNotAdjacent)
	}

	opposite := dir.Opposite()
	o1, o2 := seamOverride(c1), seamOverride(c2)
	for _, p := range boundaries[dir] {
		b1 := c1.Get(p)
		b2 := c2.Get(across(p, dir))
		b1.Neighbors[dir] = b2.ref
		b2.Neighbors[opposite] = b1.ref
		w.Evaluate(b1.ref, o1)
		w.Evaluate(b2.ref, o2)
	}
	return nil
}

// Unlink разрывает связи граничных блоков. c1 считается уходящим чанком:
// граница c2 пересчитывается, чтобы на шве не осталось устаревших граней.
func (w *World) Unlink(c1, c2 *Chunk) error {
	dir, ok := adjacency(c1.Pos, c2.Pos)
	if !ok {
		return fmt.Errorf("разрыв связи %s и %s: %w", c1.Pos, c2.Pos, ErrNotAdjacent)
	}

	opposite := dir.Opposite()
	override := seamOverride(c2)
	for _, p := range boundaries[dir] {
		b1 := c1.Get(p)
		b2 := c2.Get(across(p, dir))
		b1.Neighbors[dir] = NoBlock
		b2.Neighbors[opposite] = NoBlock
		w.Evaluate(b2.ref, override)
	}
	return nil
}

// LinkPass связывает каждый резидентный чанк с загруженными соседями в
// положительных направлениях, которые ещё не связаны. Повторный проход
// ничего не делает. Возвращает число созданных связей.
func (w *World) LinkPass() int {
	linked := 0
	for _, pos := range w.Resident() {
		c, ok := w.Chunk(pos)
		if !ok || c.Linked == LinkAll {
			continue
		}
		for _, dir := range []vec.Direction{vec.Up, vec.Right, vec.Front} {
			flag := linkFlag(dir)
			if c.Linked&flag != 0 {
				continue
			}
			n, ok := w.Chunk(pos.Add(dir))
			if !ok {
				continue
			}
			if err := w.Link(c, n); err != nil {
				w.fault("%v", err)
				continue
			}
			c.Linked |= flag
			linked++
		}
	}
	return linked
}

// UnloadChunk выгружает чанк: разрывает связи со всеми соседями, удаляет
// грани и коллайдеры, освобождает слот арены и запись индекса.
func (w *World) UnloadChunk(pos ChunkPos) bool {
	c, ok := w.Chunk(pos)
	if !ok {
		return false
	}

	for _, dir := range vec.Directions {
		n, ok := w.Chunk(pos.Add(dir))
		if !ok {
			continue
		}
		if dir.Positive() {
			if c.Linked&linkFlag(dir) == 0 {
				continue
			}
		} else {
			flag := linkFlag(dir.Opposite())
			if n.Linked&flag == 0 {
				continue
			}
			n.Linked &^= flag
		}
		if err := w.Unlink(c, n); err != nil {
			w.fault("%v", err)
		}
	}

	w.release(c)
	delete(w.index, pos)
	w.logger.Debug("Чанк %s выгружен", pos)
	return true
}

// release удаляет грани и коллайдеры чанка и освобождает слот
func (w *World) release(c *Chunk) {
	for i := range c.blocks {
		b := &c.blocks[i]
		w.despawnFaces(b)
		w.setCollider(b, c.Pos.WorldPos(b.Pos), false)
	}
	w.arena.Free(c.id)
}

// Clear выгружает все чанки без пересчёта соседей
func (w *World) Clear() {
	for _, pos := range w.Resident() {
		if c, ok := w.Chunk(pos); ok {
			w.release(c)
		}
	}
	w.index = make(map[ChunkPos]ChunkID)
}
