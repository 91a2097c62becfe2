package render

import (
	"github.com/annel0/voxel-world/internal/vec"
)

// FaceID идентификатор отрисованной грани во внешнем рендере
type FaceID uint64

// MaterialID идентификатор материала во внешнем рендере
type MaterialID uint64

// NoMaterial отсутствие материала
const NoMaterial MaterialID = 0

// Quad размер плоского прямоугольного меша грани
type Quad struct {
	Width  float64
	Height float64
}

// UnitQuad квад размером в один блок
var UnitQuad = Quad{Width: 1, Height: 1}

// Transform положение грани относительно центра блока
type Transform struct {
	Translation vec.Vec3Float
	LookingTo   vec.Vec3Float
}

// FaceSpec описание грани для отрисовки
type FaceSpec struct {
	Block     vec.Vec3 // Мировая позиция блока
	Dir       vec.Direction
	Texture   string // "<type>/<face>.png"
	Mesh      Quad
	Transform Transform
	Material  MaterialID
}

// Sink контракт внешнего рендера: квады, текстуры и материалы.
// Материалы загружаются асинхронно; MaterialReady сообщает о готовности.
type Sink interface {
	SpawnFace(spec FaceSpec) FaceID
	DespawnFace(id FaceID)
	SetFaceMaterial(id FaceID, material MaterialID)

	// Material возвращает материал для текстуры (кешируется по ключу)
	Material(texture string) MaterialID
	// CompositeMaterial возвращает материал из текстуры с наложенным оверлеем
	CompositeMaterial(texture, overlay string) MaterialID
	MaterialReady(material MaterialID) bool
	// Pump продвигает асинхронную загрузку материалов, возвращает число готовых
	Pump() int
}
