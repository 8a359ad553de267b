// Package geom holds the small coordinate primitives shared by the form
// field heuristics. PDF page space puts the origin at the bottom-left
// corner while word extraction reasons in top-origin boxes; FlipY converts
// a Y coordinate between the two conventions.
package geom

// FlipY converts a Y coordinate between bottom-origin and top-origin page
// space. The conversion is its own inverse: FlipY(h, FlipY(h, y)) == y.
func FlipY(pageHeight, y float64) float64 {
	return pageHeight - y
}

// Rect is an axis-aligned rectangle. Which Y convention applies is owned
// by the caller; Width, Height and Center read the same either way.
type Rect struct {
	X0 float64
	Y0 float64
	X1 float64
	Y1 float64
}

// Width returns the horizontal extent.
func (r Rect) Width() float64 {
	return r.X1 - r.X0
}

// Height returns the vertical extent.
func (r Rect) Height() float64 {
	return r.Y1 - r.Y0
}

// Center returns the midpoint of the rectangle.
func (r Rect) Center() (x, y float64) {
	return (r.X0 + r.X1) / 2, (r.Y0 + r.Y1) / 2
}
