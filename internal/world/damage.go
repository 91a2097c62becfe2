package world

import (
	"github.com/annel0/voxel-world/internal/render"
	"github.com/annel0/voxel-world/internal/world/block"
)

// SetDamage ставит граням блока стадию трещин. Новый материал не применяется
// сразу, а ждёт в Next, пока рендер его не подготовит.
func (w *World) SetDamage(ref BlockRef, stage int) {
	b := w.Block(ref)
	if b == nil {
		return
	}
	if stage < 0 {
		stage = 0
	}
	if stage > block.CrackStages {
		stage = block.CrackStages
	}

	changed := false
	for i := range b.Faces {
		f := &b.Faces[i]
		if f.Damage == stage {
			continue
		}
		f.Damage = stage
		if stage == 0 {
			f.Next = f.Base
		} else {
			f.Next = w.mesh.CompositeMaterial(f.Texture, block.CrackKey(stage))
		}
		changed = true
	}
	if !changed {
		return
	}

	w.staged[ref] = struct{}{}
	if stage > 0 {
		w.damaged[ref] = struct{}{}
	} else {
		delete(w.damaged, ref)
	}
}

// ResetDamage возвращает к нулевой стадии все повреждённые блоки, кроме except
func (w *World) ResetDamage(except BlockRef) int {
	reset := 0
	for ref := range w.damaged {
		if ref == except {
			continue
		}
		if w.Block(ref) == nil {
			delete(w.damaged, ref)
			continue
		}
		w.SetDamage(ref, 0)
		reset++
	}
	return reset
}

// ApplyNextMaterials применяет ожидающие материалы, которые готовы в рендере
// или совпадают с базовым. Возвращает число заменённых материалов.
func (w *World) ApplyNextMaterials() int {
	swapped := 0
	for ref := range w.staged {
		b := w.Block(ref)
		if b == nil {
			delete(w.staged, ref)
			continue
		}
		pending := false
		for i := range b.Faces {
			f := &b.Faces[i]
			if f.Next == render.NoMaterial {
				continue
			}
			if f.Next != f.Base && !w.mesh.MaterialReady(f.Next) {
				pending = true
				continue
			}
			w.mesh.SetFaceMaterial(f.ID, f.Next)
			f.Material = f.Next
			f.Next = render.NoMaterial
			swapped++
		}
		if !pending {
			delete(w.staged, ref)
		}
	}
	return swapped
}

// DamagedCount число повреждённых блоков
func (w *World) DamagedCount() int {
	return len(w.damaged)
}
