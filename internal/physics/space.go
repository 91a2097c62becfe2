package physics

import (
	"math"
	"sort"
	"sync"

	"github.com/annel0/voxel-world/internal/vec"
)

// Space реализация Sink в памяти: набор единичных коллайдеров в узлах сетки
type Space struct {
	mu        sync.RWMutex
	colliders map[vec.Vec3]Group
}

// NewSpace создаёт пустое пространство
func NewSpace() *Space {
	return &Space{colliders: make(map[vec.Vec3]Group)}
}

// AddCollider добавляет коллайдер
func (s *Space) AddCollider(pos vec.Vec3, group Group) {
	s.mu.Lock()
	s.colliders[pos] = group
	s.mu.Unlock()
}

// RemoveCollider удаляет коллайдер
func (s *Space) RemoveCollider(pos vec.Vec3) {
	s.mu.Lock()
	delete(s.colliders, pos)
	s.mu.Unlock()
}

// HasCollider проверяет наличие коллайдера
func (s *Space) HasCollider(pos vec.Vec3) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.colliders[pos]
	return ok
}

// Len количество коллайдеров
func (s *Space) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.colliders)
}

// CastRay обходит клетки сетки вдоль луча (алгоритм Amanatides–Woo).
// Блок p занимает [p-0.5, p+0.5], поэтому координаты сдвигаются на 0.5.
func (s *Space) CastRay(origin, dir vec.Vec3Float, maxDist float64, filter Group) (RayHit, bool) {
	dir = dir.Normalized()
	if dir.Length() == 0 || maxDist <= 0 {
		return RayHit{}, false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	o := [3]float64{origin.X + 0.5, origin.Y + 0.5, origin.Z + 0.5}
	d := [3]float64{dir.X, dir.Y, dir.Z}
	cell := [3]int{int(math.Floor(o[0])), int(math.Floor(o[1])), int(math.Floor(o[2]))}

	var step [3]int
	var tMax, tDelta [3]float64
	for i := 0; i < 3; i++ {
		switch {
		case d[i] > 0:
			step[i] = 1
			tMax[i] = (float64(cell[i]+1) - o[i]) / d[i]
			tDelta[i] = 1 / d[i]
		case d[i] < 0:
			step[i] = -1
			tMax[i] = (o[i] - float64(cell[i])) / -d[i]
			tDelta[i] = -1 / d[i]
		default:
			tMax[i] = math.Inf(1)
			tDelta[i] = math.Inf(1)
		}
	}

	// грани входа по осям при движении в положительную/отрицательную сторону
	enterFaces := [3][2]vec.Direction{
		{vec.Left, vec.Right},
		{vec.Down, vec.Up},
		{vec.Back, vec.Front},
	}

	t := 0.0
	face := vec.Up
	for t <= maxDist {
		pos := vec.Vec3{X: cell[0], Y: cell[1], Z: cell[2]}
		if g, ok := s.colliders[pos]; ok && g&filter != 0 {
			return RayHit{Block: pos, Face: face, Distance: t}, true
		}

		axis := 0
		if tMax[1] < tMax[axis] {
			axis = 1
		}
		if tMax[2] < tMax[axis] {
			axis = 2
		}
		t = tMax[axis]
		tMax[axis] += tDelta[axis]
		cell[axis] += step[axis]
		if step[axis] > 0 {
			face = enterFaces[axis][0]
		} else {
			face = enterFaces[axis][1]
		}
	}
	return RayHit{}, false
}

// Contacts возвращает коллайдеры, касающиеся box. Результат отсортирован.
func (s *Space) Contacts(box AABB, filter Group) []vec.Vec3 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []vec.Vec3
	minX, maxX := int(math.Floor(box.Min.X+0.5)), int(math.Floor(box.Max.X+0.5))
	minY, maxY := int(math.Floor(box.Min.Y+0.5)), int(math.Floor(box.Max.Y+0.5))
	minZ, maxZ := int(math.Floor(box.Min.Z+0.5)), int(math.Floor(box.Max.Z+0.5))
	for x := minX - 1; x <= maxX; x++ {
		for y := minY - 1; y <= maxY; y++ {
			for z := minZ - 1; z <= maxZ; z++ {
				pos := vec.Vec3{X: x, Y: y, Z: z}
				g, ok := s.colliders[pos]
				if !ok || g&filter == 0 {
					continue
				}
				if BlockAABB(pos).Touches(box) {
					out = append(out, pos)
				}
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.X != b.X {
			return a.X < b.X
		}
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.Z < b.Z
	})
	return out
}
