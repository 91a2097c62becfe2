package physics

import (
	"github.com/annel0/voxel-world/internal/vec"
)

// Group битовая маска группы столкновений
type Group uint32

const (
	GroupBlocks Group = 1 << iota // Коллайдеры блоков
	GroupViewer                   // Наблюдатель/игрок

	GroupAll Group = ^Group(0)
)

// AABB выровненный по осям параллелепипед
type AABB struct {
	Min vec.Vec3Float
	Max vec.Vec3Float
}

// BlockAABB возвращает единичный куб блока с центром в pos
func BlockAABB(pos vec.Vec3) AABB {
	c := pos.ToFloat()
	half := vec.Vec3Float{X: 0.5, Y: 0.5, Z: 0.5}
	return AABB{Min: c.Sub(half), Max: c.Add(half)}
}

// BoxAround возвращает параллелепипед с центром center и полуразмерами half
func BoxAround(center, half vec.Vec3Float) AABB {
	return AABB{Min: center.Sub(half), Max: center.Add(half)}
}

// Intersects проверяет пересечение двух параллелепипедов (касание не считается)
func (a AABB) Intersects(b AABB) bool {
	return a.Min.X < b.Max.X && a.Max.X > b.Min.X &&
		a.Min.Y < b.Max.Y && a.Max.Y > b.Min.Y &&
		a.Min.Z < b.Max.Z && a.Max.Z > b.Min.Z
}

// Touches как Intersects, но касание гранью считается контактом
func (a AABB) Touches(b AABB) bool {
	return a.Min.X <= b.Max.X && a.Max.X >= b.Min.X &&
		a.Min.Y <= b.Max.Y && a.Max.Y >= b.Min.Y &&
		a.Min.Z <= b.Max.Z && a.Max.Z >= b.Min.Z
}

// RayHit результат пересечения луча с коллайдером блока
type RayHit struct {
	Block    vec.Vec3      // Мировая позиция блока
	Face     vec.Direction // Грань, через которую вошёл луч
	Distance float64
}

// Sink контракт физического движка для блоков
type Sink interface {
	// AddCollider добавляет единичный коллайдер в мировую позицию блока
	AddCollider(pos vec.Vec3, group Group)
	// RemoveCollider удаляет коллайдер (no-op, если его нет)
	RemoveCollider(pos vec.Vec3)
	HasCollider(pos vec.Vec3) bool
	// CastRay ищет ближайший коллайдер группы filter вдоль луча
	CastRay(origin, dir vec.Vec3Float, maxDist float64, filter Group) (RayHit, bool)
	// Contacts возвращает позиции коллайдеров группы filter, касающихся box
	Contacts(box AABB, filter Group) []vec.Vec3
}
