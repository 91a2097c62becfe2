package world

import (
	"github.com/annel0/voxel-world/internal/vec"
	"github.com/annel0/voxel-world/internal/world/block"
)

// ChunkSave правки игрока в одном чанке (только отличия от генерации)
type ChunkSave map[PosInChunk]block.Type

// ChunkSaves правки игрока по всем чанкам. Это единственное, что сохраняется.
type ChunkSaves map[ChunkPos]ChunkSave

// Record запоминает правку
func (s ChunkSaves) Record(pos ChunkPos, p PosInChunk, t block.Type) {
	save, ok := s[pos]
	if !ok {
		save = make(ChunkSave)
		s[pos] = save
	}
	save[p] = t
}

// Apply накладывает правки чанка на сгенерированные типы
func (s ChunkSaves) Apply(pos ChunkPos, types *Types) {
	for p, t := range s[pos] {
		types.Set(p, t)
	}
}

// Len общее число правок
func (s ChunkSaves) Len() int {
	n := 0
	for _, save := range s {
		n += len(save)
	}
	return n
}

// Clone глубокая копия
func (s ChunkSaves) Clone() ChunkSaves {
	out := make(ChunkSaves, len(s))
	for pos, save := range s {
		cp := make(ChunkSave, len(save))
		for p, t := range save {
			cp[p] = t
		}
		out[pos] = cp
	}
	return out
}

// GameState кеш уже сгенерированных типов (с правками). Не сохраняется.
type GameState map[ChunkPos]*Types

// Saves копия текущих правок
func (w *World) Saves() ChunkSaves {
	return w.saves.Clone()
}

// LoadOrGenerate делает чанк резидентным. Типы берутся из кеша, либо
// генерируются с наложением правок. Возвращает false, если чанк уже загружен.
func (w *World) LoadOrGenerate(pos ChunkPos) (*Chunk, bool) {
	if c, ok := w.Chunk(pos); ok {
		return c, false
	}

	types, cached := w.cache[pos]
	if !cached {
		generated := w.gen.Generate(pos)
		w.saves.Apply(pos, &generated)
		types = &generated
		w.cache[pos] = types
	}

	c := w.CreateChunk(pos, *types)
	w.RenderChunk(pos, PhysicsKeep)
	w.logger.Debug("Чанк %s загружен (из кеша: %v)", pos, cached)
	return c, true
}

// ReplaceSaves заменяет правки целиком (загрузка сохранения): мир очищается,
// кеш сбрасывается, ранее резидентные чанки строятся заново.
func (w *World) ReplaceSaves(saves ChunkSaves) {
	resident := w.Resident()

	w.saves = saves.Clone()
	w.Clear()
	w.cache = make(GameState)
	w.damaged = make(map[BlockRef]struct{})
	w.staged = make(map[BlockRef]struct{})

	for _, pos := range resident {
		w.LoadOrGenerate(pos)
	}
	w.LinkPass()
	w.logger.Info("Правки заменены: %d правок, %d чанков перестроено", w.saves.Len(), len(resident))
}

// BreakBlock превращает блок в воздух, записывает правку и пересчитывает
// каждого из шести соседей ровно один раз.
func (w *World) BreakBlock(ref BlockRef) bool {
	b := w.Block(ref)
	if b == nil {
		w.fault("разрушение по висячей ссылке %s", ref)
		return false
	}
	if b.Type == block.Air {
		return false
	}
	c := w.chunkOf(ref)
	pos := c.Pos.WorldPos(b.Pos)
	old := b.Type

	b.Type = block.Air
	w.despawnFaces(b)
	w.setCollider(b, pos, false)

	if types, ok := w.cache[c.Pos]; ok {
		types.Set(b.Pos, block.Air)
	}
	w.saves.Record(c.Pos, b.Pos, block.Air)

	for _, dir := range vec.Directions {
		nref := b.Neighbors[dir]
		if w.Block(nref) == nil {
			continue
		}
		override := PhysicsKeep
		if w.chunkOf(nref).Physics.Loaded() {
			override = PhysicsCompute
		}
		w.Evaluate(nref, override)
	}

	w.logger.Debug("Блок %s разрушен в %v", old, pos)
	return true
}
