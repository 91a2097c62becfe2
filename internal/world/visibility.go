package world

import (
	"github.com/annel0/voxel-world/internal/physics"
	"github.com/annel0/voxel-world/internal/render"
	"github.com/annel0/voxel-world/internal/vec"
	"github.com/annel0/voxel-world/internal/world/block"
)

// PhysicsOverride что делать с коллайдером блока при пересчёте
type PhysicsOverride uint8

const (
	// PhysicsKeep коллайдер не трогаем
	PhysicsKeep PhysicsOverride = iota
	// PhysicsCompute коллайдер есть тогда и только тогда, когда есть грани
	PhysicsCompute
	// PhysicsRemove коллайдер удаляется
	PhysicsRemove
)

// Evaluate пересчитывает видимые грани блока. Старые грани всегда удаляются,
// новые порождаются для каждого направления, где сосед является воздухом.
// Отсутствующий сосед сверху считается воздухом, по остальным направлениям
// грань не рисуется.
func (w *World) Evaluate(ref BlockRef, override PhysicsOverride) {
	b := w.Block(ref)
	if b == nil {
		w.fault("пересчёт по висячей ссылке %s", ref)
		return
	}
	c := w.chunkOf(ref)
	pos := c.Pos.WorldPos(b.Pos)

	w.despawnFaces(b)

	if b.Type != block.Air {
		for _, dir := range vec.Directions {
			neighbor := block.Air
			if nb := w.Block(b.Neighbors[dir]); nb != nil {
				neighbor = nb.Type
			} else if dir != vec.Up {
				continue
			}
			if neighbor != block.Air {
				continue
			}
			w.spawnFace(b, pos, dir)
		}
	}

	switch override {
	case PhysicsCompute:
		w.setCollider(b, pos, len(b.Faces) > 0)
	case PhysicsRemove:
		w.setCollider(b, pos, false)
	}

	if w.observer != nil {
		w.observer.BlockEvaluated(ref)
	}
}

func (w *World) spawnFace(b *Block, pos vec.Vec3, dir vec.Direction) {
	texture := block.TextureKey(b.Type, dir)
	material := w.mesh.Material(texture)
	id := w.mesh.SpawnFace(render.FaceSpec{
		Block:   pos,
		Dir:     dir,
		Texture: texture,
		Mesh:    render.UnitQuad,
		Transform: render.Transform{
			Translation: dir.FaceOffset(),
			LookingTo:   dir.LookingTo(),
		},
		Material: material,
	})
	b.Faces = append(b.Faces, Face{
		ID:       id,
		Dir:      dir,
		Texture:  texture,
		Base:     material,
		Material: material,
		Next:     render.NoMaterial,
	})
	w.faces++
}

func (w *World) despawnFaces(b *Block) {
	for _, f := range b.Faces {
		w.mesh.DespawnFace(f.ID)
	}
	w.faces -= len(b.Faces)
	b.Faces = b.Faces[:0]
	delete(w.damaged, b.ref)
	delete(w.staged, b.ref)
}

func (w *World) setCollider(b *Block, pos vec.Vec3, want bool) {
	switch {
	case want && !b.Collider:
		w.physics.AddCollider(pos, physics.GroupBlocks)
		b.Collider = true
	case !want && b.Collider:
		w.physics.RemoveCollider(pos)
		b.Collider = false
	}
}

// RenderChunk пересчитывает все блоки чанка
func (w *World) RenderChunk(pos ChunkPos, override PhysicsOverride) {
	c, ok := w.Chunk(pos)
	if !ok {
		return
	}
	for i := range c.blocks {
		w.Evaluate(c.blocks[i].ref, override)
	}
}

// LoadPhysics оставляет коллайдеры только у блоков с видимыми гранями
func (w *World) LoadPhysics(pos ChunkPos) {
	c, ok := w.Chunk(pos)
	if !ok {
		return
	}
	for i := range c.blocks {
		b := &c.blocks[i]
		w.setCollider(b, pos.WorldPos(b.Pos), b.Type != block.Air && len(b.Faces) > 0)
	}
	c.Physics = PhysicsSurface
}

// UnloadPhysics снимает все коллайдеры чанка
func (w *World) UnloadPhysics(pos ChunkPos) {
	c, ok := w.Chunk(pos)
	if !ok {
		return
	}
	for i := range c.blocks {
		b := &c.blocks[i]
		w.setCollider(b, pos.WorldPos(b.Pos), false)
	}
	c.Physics = PhysicsNone
}
