package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNoiseFieldDeterministic(t *testing.T) {
	a := NewNoiseField(1234, 0.05)
	b := NewNoiseField(1234, 0.05)

	for x := -20; x < 20; x += 3 {
		for y := -20; y < 20; y += 5 {
			va := a.At(float64(x), float64(y))
			assert.Equal(t, va, b.At(float64(x), float64(y)))
			assert.GreaterOrEqual(t, va, 0.0)
			assert.LessOrEqual(t, va, 1.0)
		}
	}
}
