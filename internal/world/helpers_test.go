package world

import (
	"testing"

	"github.com/annel0/voxel-world/internal/physics"
	"github.com/annel0/voxel-world/internal/render"
	"github.com/annel0/voxel-world/internal/world/block"
)

type countingObserver struct {
	evaluated map[BlockRef]int
	total     int
}

func newCountingObserver() *countingObserver {
	return &countingObserver{evaluated: make(map[BlockRef]int)}
}

func (o *countingObserver) BlockEvaluated(ref BlockRef) {
	o.evaluated[ref]++
	o.total++
}

func (o *countingObserver) reset() {
	o.evaluated = make(map[BlockRef]int)
	o.total = 0
}

type testWorld struct {
	*World
	scene    *render.Scene
	space    *physics.Space
	observer *countingObserver
}

func newTestWorld(t *testing.T, gen Generator) *testWorld {
	t.Helper()
	scene := render.NewScene(nil, nil)
	space := physics.NewSpace()
	obs := newCountingObserver()
	w := New(Options{
		Generator: gen,
		Mesh:      scene,
		Physics:   space,
		Observer:  obs,
		Strict:    true,
	})
	return &testWorld{World: w, scene: scene, space: space, observer: obs}
}

func filled(t block.Type) Types {
	var types Types
	for i := range types {
		types[i] = t
	}
	return types
}

func faceDirs(b *Block) map[string]bool {
	out := make(map[string]bool)
	for _, f := range b.Faces {
		out[f.Dir.String()] = true
	}
	return out
}
