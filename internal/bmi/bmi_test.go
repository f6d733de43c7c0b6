package bmi

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculate(t *testing.T) {
	tests := []struct {
		name   string
		weight float64
		height float64
		want   float64
	}{
		{"reference adult", 70, 1.75, 22.857142857142858},
		{"unit height", 80, 1, 80},
		{"child", 20, 1.1, 20 / (1.1 * 1.1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Calculate(tt.weight, tt.height))
		})
	}
}

func TestCalculateMatchesFormula(t *testing.T) {
	for w := 1.0; w < 200; w += 13.7 {
		for h := 0.3; h < 2.5; h += 0.17 {
			assert.InEpsilon(t, w/math.Pow(h, 2), Calculate(w, h), 1e-12, "w=%v h=%v", w, h)
		}
	}
}

func TestCalculateZeroHeight(t *testing.T) {
	assert.True(t, math.IsInf(Calculate(70, 0), 1))
	assert.True(t, math.IsNaN(Calculate(0, 0)))
}
