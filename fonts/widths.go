package fonts

// Advance widths for the standard fonts in 1/1000 em, ASCII 32..126, taken
// from the Adobe AFM files. Oblique variants share the upright widths;
// Courier is fixed pitch at 600.

var helveticaWidths = [95]int{
	278, 278, 355, 556, 556, 889, 667, 191, 333, 333, 389, 584, 278, 333,
	278, 278, 556, 556, 556, 556, 556, 556, 556, 556, 556, 556, 278, 278,
	584, 584, 584, 556, 1015, 667, 667, 722, 722, 667, 611, 778, 722, 278,
	500, 667, 556, 833, 722, 778, 667, 778, 722, 667, 611, 722, 667, 944,
	667, 667, 611, 278, 278, 278, 469, 556, 333, 556, 556, 500, 556, 556,
	278, 556, 556, 222, 222, 500, 222, 833, 556, 556, 556, 556, 333, 500,
	278, 556, 500, 722, 500, 500, 500, 334, 260, 334, 584,
}

var helveticaBoldWidths = [95]int{
	278, 333, 474, 556, 556, 889, 722, 238, 333, 333, 389, 584, 278, 333,
	278, 278, 556, 556, 556, 556, 556, 556, 556, 556, 556, 556, 333, 333,
	584, 584, 584, 611, 975, 722, 722, 722, 722, 667, 611, 778, 722, 278,
	556, 722, 611, 833, 722, 778, 667, 778, 722, 667, 611, 722, 667, 944,
	667, 667, 611, 333, 278, 333, 584, 556, 333, 556, 611, 556, 611, 556,
	333, 611, 611, 278, 278, 556, 278, 889, 611, 611, 611, 611, 389, 556,
	333, 611, 556, 778, 556, 556, 500, 389, 280, 389, 584,
}

var timesRomanWidths = [95]int{
	250, 333, 408, 500, 500, 833, 778, 180, 333, 333, 500, 564, 250, 333,
	250, 278, 500, 500, 500, 500, 500, 500, 500, 500, 500, 500, 278, 278,
	564, 564, 564, 444, 921, 722, 667, 667, 722, 611, 556, 722, 722, 333,
	389, 722, 611, 889, 722, 722, 556, 722, 667, 556, 611, 722, 722, 944,
	722, 722, 611, 333, 278, 333, 469, 500, 333, 444, 500, 444, 500, 444,
	333, 500, 500, 278, 278, 500, 278, 778, 500, 500, 500, 500, 333, 389,
	278, 500, 500, 722, 500, 500, 444, 480, 200, 480, 541,
}

// standardWidth measures text in points for a standard font name. Variants
// without their own table borrow the closest one; unknown runes use a half
// em like the sfnt fallback.
func standardWidth(name, text string, size float64) float64 {
	if len(name) >= 7 && name[:7] == "Courier" {
		return float64(len([]rune(text))) * 600.0 / 1000.0 * size
	}

	table := &helveticaWidths
	switch name {
	case "Helvetica-Bold", "Helvetica-BoldOblique":
		table = &helveticaBoldWidths
	case "Times-Roman", "Times-Italic", "Times-Bold", "Times-BoldItalic":
		table = &timesRomanWidths
	}

	total := 0
	for _, r := range text {
		if r >= 32 && r <= 126 {
			total += table[r-32]
		} else {
			total += 500
		}
	}
	return float64(total) / 1000.0 * size
}
