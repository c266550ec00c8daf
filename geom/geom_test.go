package geom

import (
	"math"
	"testing"
)

func letterViewport(scale float64) Viewport {
	return Viewport{
		Width:      612 * scale,
		Height:     792 * scale,
		Scale:      scale,
		PageWidth:  612,
		PageHeight: 792,
	}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func rectsAlmostEqual(a, b Rect) bool {
	return almostEqual(a.X, b.X) && almostEqual(a.Y, b.Y) &&
		almostEqual(a.W, b.W) && almostEqual(a.H, b.H)
}

func TestToPDFFlipsVertically(t *testing.T) {
	vp := letterViewport(1)

	got, ok := vp.ToPDF(Rect{X: 40, Y: 40, W: 200, H: 40})
	if !ok {
		t.Fatal("conversion rejected on a valid viewport")
	}

	want := Rect{X: 40, Y: 712, W: 200, H: 40}
	if !rectsAlmostEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestToPDFAppliesScaleAndOffset(t *testing.T) {
	vp := letterViewport(2)
	vp.OffsetX = 10
	vp.OffsetY = 20

	got, ok := vp.ToPDF(Rect{X: 10 + 80, Y: 20 + 80, W: 100, H: 60})
	if !ok {
		t.Fatal("conversion rejected on a valid viewport")
	}

	// 80px at scale 2 is 40 PDF units from the top-left.
	want := Rect{X: 40, Y: 792 - 40 - 30, W: 50, H: 30}
	if !rectsAlmostEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestRoundTrip(t *testing.T) {
	viewports := map[string]Viewport{
		"identity": letterViewport(1),
		"scaled":   letterViewport(1.5),
		"offset": {
			Width: 612, Height: 792, Scale: 1,
			OffsetX: 33.5, OffsetY: 12.25,
			PageWidth: 612, PageHeight: 792,
		},
	}

	rects := []Rect{
		{X: 0, Y: 0, W: 612, H: 792},
		{X: 40, Y: 40, W: 200, H: 40},
		{X: 100.5, Y: 650.25, W: 36, H: 18},
	}

	for name, vp := range viewports {
		t.Run(name, func(t *testing.T) {
			for _, r := range rects {
				pdfRect, ok := vp.ToPDF(r)
				if !ok {
					t.Fatalf("ToPDF rejected %+v", r)
				}
				back, ok := vp.ToScreen(pdfRect)
				if !ok {
					t.Fatalf("ToScreen rejected %+v", pdfRect)
				}
				if !rectsAlmostEqual(back, r) {
					t.Errorf("round trip of %+v gave %+v", r, back)
				}
			}
		})
	}
}

func TestZeroViewportRejected(t *testing.T) {
	var vp Viewport

	if _, ok := vp.ToPDF(Rect{X: 1, Y: 1, W: 1, H: 1}); ok {
		t.Error("ToPDF accepted a zero viewport")
	}
	if _, ok := vp.ToScreen(Rect{X: 1, Y: 1, W: 1, H: 1}); ok {
		t.Error("ToScreen accepted a zero viewport")
	}
}

func TestNormalizeKeepsSizesPositive(t *testing.T) {
	vp := letterViewport(1)

	got, ok := vp.ToPDF(Rect{X: 10, Y: 10, W: 30, H: 30})
	if !ok {
		t.Fatal("conversion rejected")
	}
	if got.W < 0 || got.H < 0 {
		t.Errorf("normalized rect has negative size: %+v", got)
	}
}
