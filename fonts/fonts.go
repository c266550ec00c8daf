// Package fonts provides font resources and metrics for PDF composition.
//
// The standard 14 fonts are available in every PDF reader without embedding;
// free-text drafts resolve to them from a family name plus bold and italic
// flags. TrueType metrics parsing is available for embedded fonts.
package fonts

import (
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// StandardType represents standard PDF fonts that are available in all PDF
// readers without embedding.
type StandardType int

const (
	Helvetica StandardType = iota
	HelveticaBold
	HelveticaOblique
	HelveticaBoldOblique
	TimesRoman
	TimesBold
	TimesItalic
	TimesBoldItalic
	Courier
	CourierBold
	CourierOblique
	CourierBoldOblique
)

var standardNames = map[StandardType]string{
	Helvetica:            "Helvetica",
	HelveticaBold:        "Helvetica-Bold",
	HelveticaOblique:     "Helvetica-Oblique",
	HelveticaBoldOblique: "Helvetica-BoldOblique",
	TimesRoman:           "Times-Roman",
	TimesBold:            "Times-Bold",
	TimesItalic:          "Times-Italic",
	TimesBoldItalic:      "Times-BoldItalic",
	Courier:              "Courier",
	CourierBold:          "Courier-Bold",
	CourierOblique:       "Courier-Oblique",
	CourierBoldOblique:   "Courier-BoldOblique",
}

// Font represents a font resource that can be used in PDF content.
type Font struct {
	Name     string   // PostScript name of the font
	Data     []byte   // TrueType font data (nil for standard fonts)
	Embedded bool     // Whether the font should be embedded in the PDF
	Metrics  *Metrics // Parsed metrics for accurate text measurement
}

// Standard returns a Font for a standard PDF font (no embedding required).
func Standard(ft StandardType) *Font {
	return &Font{Name: standardNames[ft]}
}

// Embed wraps TrueType data as an embeddable font resource. Metric parse
// errors are ignored; the font falls back to default widths.
func Embed(name string, data []byte) *Font {
	f := &Font{Name: name, Data: data, Embedded: len(data) > 0}
	if len(data) > 0 {
		if m, err := ParseTTFMetrics(data); err == nil {
			f.Metrics = m
		}
	}
	return f
}

// Resolve maps a font family name and style flags to one of the standard 14
// fonts. Unknown families resolve to the Helvetica group.
func Resolve(family string, bold, italic bool) *Font {
	group := helveticaGroup
	switch normalizeFamily(family) {
	case "times":
		group = timesGroup
	case "courier":
		group = courierGroup
	}
	idx := 0
	if bold {
		idx |= 1
	}
	if italic {
		idx |= 2
	}
	return Standard(group[idx])
}

// Groups are indexed by bold bit | italic bit << 1.
var (
	helveticaGroup = [4]StandardType{Helvetica, HelveticaBold, HelveticaOblique, HelveticaBoldOblique}
	timesGroup     = [4]StandardType{TimesRoman, TimesBold, TimesItalic, TimesBoldItalic}
	courierGroup   = [4]StandardType{Courier, CourierBold, CourierOblique, CourierBoldOblique}
)

func normalizeFamily(family string) string {
	f := strings.ToLower(strings.TrimSpace(family))
	switch {
	case strings.Contains(f, "times"), strings.Contains(f, "serif") && !strings.Contains(f, "sans"):
		return "times"
	case strings.Contains(f, "courier"), strings.Contains(f, "mono"):
		return "courier"
	default:
		return "helvetica"
	}
}

// Width returns the width of text in points at the given size, using parsed
// metrics when present and the built-in standard-font tables otherwise.
func (f *Font) Width(text string, size float64) float64 {
	if f == nil {
		return float64(len(text)) * size * 0.5
	}
	if f.Metrics != nil {
		return f.Metrics.GetStringWidth(text, size)
	}
	return standardWidth(f.Name, text, size)
}

// Metrics contains parsed font metrics for accurate text measurement.
type Metrics struct {
	UnitsPerEm  int
	GlyphWidths map[rune]int // Advance widths in font units
	font        *sfnt.Font
}

// ParseTTFMetrics parses a TrueType font file and extracts glyph metrics.
func ParseTTFMetrics(data []byte) (*Metrics, error) {
	f, err := sfnt.Parse(data)
	if err != nil {
		return nil, err
	}

	unitsPerEm := f.UnitsPerEm()

	glyphWidths := make(map[rune]int)
	var buf sfnt.Buffer

	// Use unitsPerEm as the ppem for consistent scaling.
	ppem := fixed.Int26_6(unitsPerEm) << 6

	for r := rune(32); r <= rune(255); r++ {
		idx, err := f.GlyphIndex(&buf, r)
		if err != nil || idx == 0 {
			continue
		}

		advance, err := f.GlyphAdvance(&buf, idx, ppem, font.HintingNone)
		if err != nil {
			continue
		}

		glyphWidths[r] = int(advance >> 6)
	}

	return &Metrics{
		UnitsPerEm:  int(unitsPerEm),
		GlyphWidths: glyphWidths,
		font:        f,
	}, nil
}

// GetStringWidth calculates the width of a string in points at the given font size.
func (m *Metrics) GetStringWidth(text string, fontSize float64) float64 {
	if m == nil || m.UnitsPerEm == 0 {
		return float64(len(text)) * fontSize * 0.5
	}

	var totalWidth int
	for _, r := range text {
		if width, ok := m.GlyphWidths[r]; ok {
			totalWidth += width
		} else {
			totalWidth += m.UnitsPerEm / 2
		}
	}

	return (float64(totalWidth) / float64(m.UnitsPerEm)) * fontSize
}

// GetGlyphWidth returns the width of a single rune in font units.
func (m *Metrics) GetGlyphWidth(r rune) int {
	if m == nil {
		return 0
	}
	if width, ok := m.GlyphWidths[r]; ok {
		return width
	}
	return m.UnitsPerEm / 2
}

// GetWidthsArray returns an array of widths for a PDF font dictionary
// (FirstChar=32, LastChar=255), scaled to 1000 units per em.
func (m *Metrics) GetWidthsArray() []int {
	widths := make([]int, 256-32)
	defaultWidth := 500

	if m != nil && m.UnitsPerEm > 0 {
		scale := 1000.0 / float64(m.UnitsPerEm)
		defaultWidth = int(float64(m.UnitsPerEm/2) * scale)

		for i := 32; i < 256; i++ {
			r := rune(i)
			if w, ok := m.GlyphWidths[r]; ok {
				widths[i-32] = int(float64(w) * scale)
			} else {
				widths[i-32] = defaultWidth
			}
		}
	} else {
		for i := range widths {
			widths[i] = defaultWidth
		}
	}

	return widths
}
