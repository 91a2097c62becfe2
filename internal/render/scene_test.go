package render

import (
	"bytes"
	"image/color"
	"image/png"
	"testing"
	"testing/fstest"

	"github.com/annel0/voxel-world/internal/vec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, c color.NRGBA) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, solid(2, 2, c)))
	return buf.Bytes()
}

func TestSceneFaces(t *testing.T) {
	scene := NewScene(nil, nil)
	pos := vec.Vec3{X: 1, Y: 2, Z: 3}

	id := scene.SpawnFace(FaceSpec{Block: pos, Dir: vec.Up, Texture: "stone/top.png", Mesh: UnitQuad})
	scene.SpawnFace(FaceSpec{Block: vec.Vec3{}, Dir: vec.Down})
	assert.Equal(t, 2, scene.FaceCount())
	assert.Len(t, scene.FacesAt(pos), 1)

	scene.DespawnFace(id)
	scene.DespawnFace(id)
	spawned, despawned := scene.Counters()
	assert.Equal(t, uint64(2), spawned)
	assert.Equal(t, uint64(1), despawned)
	assert.Empty(t, scene.FacesAt(pos))
}

func TestSceneMaterialsBecomeReadyOnPump(t *testing.T) {
	assets := fstest.MapFS{
		"stone/top.png":      {Data: pngBytes(t, color.NRGBA{R: 100, G: 100, B: 100, A: 255})},
		"cracks/crack_1.png": {Data: pngBytes(t, color.NRGBA{A: 255})},
	}
	scene := NewScene(assets, nil)

	base := scene.Material("stone/top.png")
	assert.Equal(t, base, scene.Material("stone/top.png"), "материал кешируется по ключу")
	cracked := scene.CompositeMaterial("stone/top.png", "cracks/crack_1.png")
	assert.NotEqual(t, base, cracked)

	assert.False(t, scene.MaterialReady(cracked))
	assert.Equal(t, 2, scene.Pump())
	assert.True(t, scene.MaterialReady(cracked))
	assert.Equal(t, 0, scene.Pump())

	img := scene.MaterialImage(cracked)
	require.NotNil(t, img)
	r, _, _, _ := img.At(0, 0).RGBA()
	assert.Equal(t, uint32(0), r)

	texture, overlay, ok := scene.MaterialKey(cracked)
	require.True(t, ok)
	assert.Equal(t, "stone/top.png", texture)
	assert.Equal(t, "cracks/crack_1.png", overlay)
}

func TestSceneMissingAssetStillReady(t *testing.T) {
	scene := NewScene(fstest.MapFS{}, nil)
	id := scene.CompositeMaterial("dirt/left.png", "cracks/crack_2.png")
	scene.Pump()
	assert.True(t, scene.MaterialReady(id))
	assert.Nil(t, scene.MaterialImage(id))
}
