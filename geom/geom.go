// Package geom converts rectangles between the screen space of a rendered
// page and the PDF user space of that page.
//
// Screen space has its origin at the top-left corner of the rendered page
// with y growing downward, measured in pixels at the current render scale.
// PDF user space has its origin at the bottom-left corner of the page with
// y growing upward, measured in unscaled PDF units.
package geom

// Rect is an axis-aligned rectangle. W and H are always non-negative after
// passing through a viewport conversion.
type Rect struct {
	X float64
	Y float64
	W float64
	H float64
}

// Inset returns the rectangle shrunk by d on every side.
func (r Rect) Inset(d float64) Rect {
	return Rect{X: r.X + d, Y: r.Y + d, W: r.W - 2*d, H: r.H - 2*d}
}

// Viewport is the transform snapshot captured for one page at render time.
// A zero Viewport means the page has not been rendered yet; conversions
// against it report ok=false.
type Viewport struct {
	// Width and Height are the rendered page dimensions in pixels.
	Width  float64
	Height float64

	// Scale is screen pixels per PDF unit. Uniform on both axes.
	Scale float64

	// OffsetX and OffsetY locate the page's top-left corner within the
	// render surface, in pixels.
	OffsetX float64
	OffsetY float64

	// PageWidth and PageHeight are the page dimensions in PDF units.
	PageWidth  float64
	PageHeight float64
}

// Valid reports whether the viewport describes a rendered page.
func (v Viewport) Valid() bool {
	return v.Scale > 0 && v.PageWidth > 0 && v.PageHeight > 0
}

// ToPDF converts a screen-space rectangle to PDF user space. The two corners
// are mapped individually and the result re-normalized, because the vertical
// flip swaps which mapped corner carries the minimum y.
func (v Viewport) ToPDF(r Rect) (Rect, bool) {
	if !v.Valid() {
		return Rect{}, false
	}
	x1, y1 := v.pointToPDF(r.X, r.Y)
	x2, y2 := v.pointToPDF(r.X+r.W, r.Y+r.H)
	return normalize(x1, y1, x2, y2), true
}

// ToScreen converts a PDF user-space rectangle back to screen space. It is
// the exact inverse of ToPDF up to floating point error.
func (v Viewport) ToScreen(r Rect) (Rect, bool) {
	if !v.Valid() {
		return Rect{}, false
	}
	x1, y1 := v.pointToScreen(r.X, r.Y)
	x2, y2 := v.pointToScreen(r.X+r.W, r.Y+r.H)
	return normalize(x1, y1, x2, y2), true
}

func (v Viewport) pointToPDF(x, y float64) (float64, float64) {
	px := (x - v.OffsetX) / v.Scale
	py := v.PageHeight - (y-v.OffsetY)/v.Scale
	return px, py
}

func (v Viewport) pointToScreen(x, y float64) (float64, float64) {
	sx := x*v.Scale + v.OffsetX
	sy := (v.PageHeight-y)*v.Scale + v.OffsetY
	return sx, sy
}

func normalize(x1, y1, x2, y2 float64) Rect {
	if x2 < x1 {
		x1, x2 = x2, x1
	}
	if y2 < y1 {
		y1, y2 = y2, y1
	}
	return Rect{X: x1, Y: y1, W: x2 - x1, H: y2 - y1}
}
