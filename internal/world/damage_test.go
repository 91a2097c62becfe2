package world

import (
	"testing"

	"github.com/annel0/voxel-world/internal/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDamageStagesCompositeMaterial(t *testing.T) {
	w := newTestWorld(t, NewFlatGenerator(1))
	c, _ := w.LoadOrGenerate(ChunkPos{})
	ref := c.Ref(MustPos(1, 4, 1))
	w.scene.Pump()

	w.SetDamage(ref, 2)
	b := w.Block(ref)
	require.Len(t, b.Faces, 5)
	for _, f := range b.Faces {
		assert.Equal(t, 2, f.Damage)
		assert.NotEqual(t, render.NoMaterial, f.Next)
		assert.Equal(t, f.Base, f.Material, "до готовности материал не меняется")
		texture, overlay, ok := w.scene.MaterialKey(f.Next)
		require.True(t, ok)
		assert.Equal(t, f.Texture, texture)
		assert.Equal(t, "cracks/crack_2.png", overlay)
	}

	assert.Zero(t, w.ApplyNextMaterials())
	w.scene.Pump()
	assert.Equal(t, 5, w.ApplyNextMaterials())

	for _, f := range w.Block(ref).Faces {
		assert.Equal(t, render.NoMaterial, f.Next)
		assert.NotEqual(t, f.Base, f.Material)
		spec, _ := w.scene.Face(f.ID)
		assert.Equal(t, f.Material, spec.Material)
	}
	assert.Equal(t, 1, w.DamagedCount())
}

func TestResetDamageSkipsTarget(t *testing.T) {
	w := newTestWorld(t, NewFlatGenerator(1))
	c, _ := w.LoadOrGenerate(ChunkPos{})
	target := c.Ref(MustPos(1, 4, 1))
	other := c.Ref(MustPos(5, 3, 5))

	w.SetDamage(target, 1)
	w.SetDamage(other, 3)
	w.scene.Pump()
	w.ApplyNextMaterials()

	assert.Equal(t, 1, w.ResetDamage(target))
	assert.Equal(t, 1, w.Block(target).Faces[0].Damage)

	f := w.Block(other).Faces[0]
	assert.Zero(t, f.Damage)
	assert.Equal(t, f.Base, f.Next)

	// Базовый материал применяется сразу, без ожидания готовности
	assert.Equal(t, 1, w.ApplyNextMaterials())
	f = w.Block(other).Faces[0]
	assert.Equal(t, f.Base, f.Material)
	assert.Equal(t, 1, w.DamagedCount())

	assert.Equal(t, 1, w.ResetDamage(NoBlock))
	assert.Zero(t, w.DamagedCount())
}

func TestSetDamageOnStaleRefIsNoOp(t *testing.T) {
	w := newTestWorld(t, NewFlatGenerator(1))
	c, _ := w.LoadOrGenerate(ChunkPos{})
	ref := c.Ref(MustPos(1, 4, 1))
	w.SetDamage(ref, 2)
	w.UnloadChunk(ChunkPos{})

	assert.NotPanics(t, func() {
		w.SetDamage(ref, 3)
		w.ResetDamage(NoBlock)
		w.ApplyNextMaterials()
	})
	assert.Zero(t, w.DamagedCount())
}
