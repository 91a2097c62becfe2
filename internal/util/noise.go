package util

import (
	"github.com/aquilax/go-perlin"
)

// Параметры шума Перлина
const (
	perlinAlpha   = 2.0 // Сглаживание шума
	perlinBeta    = 2.0 // Частота шума
	perlinOctaves = 3   // Количество октав
)

// NoiseField двумерное когерентное поле шума со своим сидом и масштабом.
// Детерминировано: одинаковые сид и координаты дают одинаковое значение.
type NoiseField struct {
	perlin *perlin.Perlin
	scale  float64
}

// NewNoiseField создаёт поле шума
func NewNoiseField(seed int64, scale float64) *NoiseField {
	return &NoiseField{
		perlin: perlin.NewPerlin(perlinAlpha, perlinBeta, perlinOctaves, seed),
		scale:  scale,
	}
}

// At возвращает значение шума в точке (от 0 до 1)
func (f *NoiseField) At(x, y float64) float64 {
	// Получаем значение шума (примерно от -1 до 1)
	noise := f.perlin.Noise2D(x*f.scale, y*f.scale)

	// Преобразуем в диапазон от 0 до 1
	v := (noise + 1.0) / 2.0
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
