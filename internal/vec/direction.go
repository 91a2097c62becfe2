package vec

// Direction одно из шести направлений вдоль осей.
//
//	Up    +Y   Down -Y
//	Right +X   Left -X
//	Front +Z   Back -Z
type Direction uint8

const (
	Up Direction = iota
	Down
	Right
	Left
	Front
	Back
)

// Directions перечисляет направления в порядке обхода граней
var Directions = [6]Direction{Up, Down, Right, Left, Front, Back}

var offsets = [6]Vec3{
	Up:    {Y: 1},
	Down:  {Y: -1},
	Right: {X: 1},
	Left:  {X: -1},
	Front: {Z: 1},
	Back:  {Z: -1},
}

var faceNames = [6]string{
	Up:    "top",
	Down:  "bottom",
	Right: "right",
	Left:  "left",
	Front: "front",
	Back:  "back",
}

// Offset возвращает единичное смещение
func (d Direction) Offset() Vec3 {
	return offsets[d]
}

// Opposite возвращает противоположное направление
func (d Direction) Opposite() Direction {
	// пары идут подряд: Up/Down, Right/Left, Front/Back
	return d ^ 1
}

// FaceName возвращает имя грани, используемое в путях текстур
func (d Direction) FaceName() string {
	return faceNames[d]
}

// Positive сообщает, смотрит ли направление в положительную сторону оси
func (d Direction) Positive() bool {
	return d%2 == 0
}

// FaceOffset смещение центра грани от центра единичного куба
func (d Direction) FaceOffset() Vec3Float {
	return d.Offset().ToFloat().Mul(0.5)
}

// LookingTo направление, в которое "смотрит" квад грани (внутрь блока)
func (d Direction) LookingTo() Vec3Float {
	return d.Offset().ToFloat().Mul(-1)
}

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Right:
		return "right"
	case Left:
		return "left"
	case Front:
		return "front"
	case Back:
		return "back"
	default:
		return "unknown"
	}
}
