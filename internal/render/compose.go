package render

import (
	"image"
	"image/color"
)

// Compose накладывает оверлей трещин на текстуру грани.
// Каждый канал смешивается по альфе оверлея: out = base*(1-a) + overlay*a.
// Альфа результата берётся из base. Если размеры отличаются, оверлей
// масштабируется до размеров base ближайшим соседом.
func Compose(base, overlay image.Image) *image.NRGBA {
	bounds := base.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	ob := overlay.Bounds()

	for y := 0; y < bounds.Dy(); y++ {
		for x := 0; x < bounds.Dx(); x++ {
			b := color.NRGBAModel.Convert(base.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.NRGBA)

			ox := ob.Min.X + x*ob.Dx()/bounds.Dx()
			oy := ob.Min.Y + y*ob.Dy()/bounds.Dy()
			o := color.NRGBAModel.Convert(overlay.At(ox, oy)).(color.NRGBA)

			a := uint32(o.A)
			out.SetNRGBA(x, y, color.NRGBA{
				R: blend(b.R, o.R, a),
				G: blend(b.G, o.G, a),
				B: blend(b.B, o.B, a),
				A: b.A,
			})
		}
	}
	return out
}

func blend(base, over uint8, alpha uint32) uint8 {
	return uint8((uint32(base)*(255-alpha) + uint32(over)*alpha + 127) / 255)
}
