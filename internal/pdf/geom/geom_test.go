package geom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlipY(t *testing.T) {
	tests := []struct {
		name       string
		pageHeight float64
		y          float64
		want       float64
	}{
		{
			name:       "bottom edge maps to page height",
			pageHeight: 792,
			y:          0,
			want:       792,
		},
		{
			name:       "top edge maps to zero",
			pageHeight: 792,
			y:          792,
			want:       0,
		},
		{
			name:       "field top edge",
			pageHeight: 792,
			y:          715,
			want:       77,
		},
		{
			name:       "field bottom edge",
			pageHeight: 792,
			y:          700,
			want:       92,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FlipY(tt.pageHeight, tt.y))
		})
	}
}

func TestFlipYSelfInverse(t *testing.T) {
	heights := []float64{0, 100, 612, 792, 841.89}
	ys := []float64{-10, 0, 36.5, 292.25, 700, 1000}

	for _, h := range heights {
		for _, y := range ys {
			assert.InDelta(t, y, FlipY(h, FlipY(h, y)), 1e-9,
				"FlipY should be its own inverse for h=%v y=%v", h, y)
		}
	}
}

func TestRectDimensions(t *testing.T) {
	r := Rect{X0: 100, Y0: 700, X1: 200, Y1: 715}

	assert.Equal(t, 100.0, r.Width())
	assert.Equal(t, 15.0, r.Height())

	cx, cy := r.Center()
	assert.Equal(t, 150.0, cx)
	assert.Equal(t, 707.5, cy)
}

func TestRectZeroValue(t *testing.T) {
	var r Rect

	assert.Equal(t, 0.0, r.Width())
	assert.Equal(t, 0.0, r.Height())

	cx, cy := r.Center()
	assert.Equal(t, 0.0, cx)
	assert.Equal(t, 0.0, cy)
}
