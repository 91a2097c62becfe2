package main

import (
	"math"
	"time"

	"github.com/annel0/voxel-world/internal/game"
	"github.com/annel0/voxel-world/internal/storage"
	"github.com/annel0/voxel-world/internal/vec"
	"github.com/annel0/voxel-world/internal/world"
	"github.com/annel0/voxel-world/internal/world/block"
)

// Параметры сценария наблюдателя без ввода
const (
	walkRadius   = 24.0 // блоков
	walkSpeed    = 1.5  // блоков в секунду
	eyeHeight    = 1.8
	breakCycle   = 5 * time.Second
	breakHold    = 2 * time.Second
	saveInterval = 2 * time.Minute
	spawnY       = 18.0
)

// scriptedViewer ходит по кругу над рельефом, периодически разрушает блок
// под собой и делает быстрое сохранение. Заменяет ввод игрока в headless режиме.
type scriptedViewer struct {
	engine *game.Engine

	pos      vec.Vec3Float
	angle    float64
	elapsed  time.Duration
	lastSave time.Duration
}

func newScriptedViewer(engine *game.Engine, restored storage.ViewerState) *scriptedViewer {
	v := &scriptedViewer{engine: engine, pos: restored.Position}
	if v.pos == (vec.Vec3Float{}) {
		v.pos = vec.Vec3Float{X: walkRadius, Y: spawnY, Z: 0}
	}
	v.angle = math.Atan2(v.pos.Z, v.pos.X)
	return v
}

// Next возвращает ввод следующего тика
func (v *scriptedViewer) Next(dt time.Duration) game.Input {
	prev := v.pos
	v.elapsed += dt
	v.angle += walkSpeed / walkRadius * dt.Seconds()

	v.pos.X = walkRadius * math.Cos(v.angle)
	v.pos.Z = walkRadius * math.Sin(v.angle)
	if top, ok := v.surface(); ok {
		v.pos.Y = float64(top) + 0.5 + eyeHeight
	}

	// Смотрим вперёд по ходу и вниз
	forward := vec.Vec3Float{X: -math.Sin(v.angle), Y: -2, Z: math.Cos(v.angle)}

	in := game.Input{
		Position:    v.pos,
		Look:        forward,
		PrimaryHeld: v.elapsed%breakCycle < breakHold,
		Dt:          dt,
	}
	if secs := dt.Seconds(); secs > 0 {
		in.Velocity = v.pos.Sub(prev).Mul(1 / secs)
	}
	if v.elapsed-v.lastSave >= saveInterval {
		v.lastSave = v.elapsed
		in.SecondaryPressed = true
	}
	return in
}

// surface высота верхнего непустого блока в колонне наблюдателя
func (v *scriptedViewer) surface() (int, bool) {
	col := v.pos.Round()
	x, z := col.X, col.Z

	top, found := 0, false
	v.engine.Do(func(w *world.World) {
		for y := world.ChunkY - 1; y >= 0; y-- {
			ref, ok := w.BlockAt(vec.Vec3{X: x, Y: y, Z: z})
			if !ok {
				return
			}
			if b := w.Block(ref); b != nil && b.Type != block.Air {
				top, found = y, true
				return
			}
		}
	})
	return top, found
}
