package compose

import (
	"bytes"
	"compress/zlib"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/inkform/inkform/draft"
	"github.com/inkform/inkform/fonts"
	"github.com/inkform/inkform/geom"
	"github.com/inkform/inkform/internal/incr"
)

// fallbackColor is used when a draft carries a malformed color value.
const fallbackColor = "#1a1a1a"

// composeText draws a free-text draft into the page content as one appended
// content stream plus a standard-font resource.
func composeText(data []byte, d *draft.Draft, rect geom.Rect, opts Options) ([]byte, error) {
	style := d.Text
	if style == nil {
		style = &draft.TextStyle{}
	}

	u, err := incr.NewUpdater(data)
	if err != nil {
		return nil, err
	}

	family := style.FontFamily
	if family == "" {
		family = opts.FontFamily
	}
	size := style.Size
	if size <= 0 {
		size = opts.FontSize
	}
	var font *fonts.Font
	if len(style.FontData) > 0 {
		font = fonts.Embed(embeddedFontName(family), style.FontData)
	} else {
		font = fonts.Resolve(family, style.Bold, style.Italic)
	}

	fontID, err := addFont(u, font)
	if err != nil {
		return nil, err
	}
	resName := fmt.Sprintf("IF%d", fontID)

	r, g, b := parseHexColor(style.ColorHex)
	lineHeight := size * opts.LineHeight
	lines := wrapText(style.Content, font, size, rect.W)

	var stream bytes.Buffer
	stream.WriteString("q\n")
	fmt.Fprintf(&stream, "%.3f %.3f %.3f rg\n", r, g, b)
	fmt.Fprintf(&stream, "%.3f %.3f %.3f RG\n", r, g, b)

	top := rect.Y + rect.H
	for i, line := range lines {
		baseline := top - float64(i+1)*lineHeight
		if baseline < rect.Y {
			break
		}
		stream.WriteString("BT\n")
		fmt.Fprintf(&stream, "/%s %.2f Tf\n", resName, size)
		fmt.Fprintf(&stream, "%.2f %.2f Td\n", rect.X, baseline)
		fmt.Fprintf(&stream, "<%s> Tj\n", hex.EncodeToString([]byte(line)))
		stream.WriteString("ET\n")

		if style.Underline && line != "" {
			w := font.Width(line, size)
			y := baseline - size*0.12
			fmt.Fprintf(&stream, "%.2f w %.2f %.2f m %.2f %.2f l S\n",
				maxFloat(size*0.06, 0.5), rect.X, y, rect.X+w, y)
		}
	}
	stream.WriteString("Q")

	contentID, err := u.AddObject(contentStream(stream.Bytes()))
	if err != nil {
		return nil, err
	}

	page, err := u.FindPage(d.Page)
	if err != nil {
		return nil, err
	}
	err = u.RewritePage(page, incr.PageUpdate{
		AddContents: []uint32{contentID},
		AddFonts:    map[string]uint32{resName: fontID},
	})
	if err != nil {
		return nil, err
	}

	return u.Finalize(0)
}

// addFont writes the draft's font resource: an embedded TrueType program
// with descriptor and widths, or a standard Type1 dictionary.
func addFont(u *incr.Updater, f *fonts.Font) (uint32, error) {
	if !f.Embedded || len(f.Data) == 0 {
		return u.AddObject([]byte(fmt.Sprintf(
			"<< /Type /Font /Subtype /Type1 /BaseFont /%s /Encoding /WinAnsiEncoding >>", f.Name)))
	}

	var compressed bytes.Buffer
	zw := zlib.NewWriter(&compressed)
	if _, err := zw.Write(f.Data); err != nil {
		return 0, err
	}
	if err := zw.Close(); err != nil {
		return 0, err
	}

	var program bytes.Buffer
	fmt.Fprintf(&program, "<< /Length %d /Length1 %d /Filter /FlateDecode >>\nstream\n",
		compressed.Len(), len(f.Data))
	program.Write(compressed.Bytes())
	program.WriteString("\nendstream")
	programID, err := u.AddObject(program.Bytes())
	if err != nil {
		return 0, err
	}

	descriptorID, err := u.AddObject([]byte(fmt.Sprintf(
		"<< /Type /FontDescriptor /FontName /%s /Flags 32 /FontBBox [-500 -200 1000 900] /ItalicAngle 0 /Ascent 800 /Descent -200 /CapHeight 700 /StemV 80 /FontFile2 %d 0 R >>",
		f.Name, programID)))
	if err != nil {
		return 0, err
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "<< /Type /Font /Subtype /TrueType /BaseFont /%s /FontDescriptor %d 0 R /FirstChar 32 /LastChar 255 /Encoding /WinAnsiEncoding /Widths [",
		f.Name, descriptorID)
	for _, w := range f.Metrics.GetWidthsArray() {
		fmt.Fprintf(&buf, " %d", w)
	}
	buf.WriteString(" ] >>")
	return u.AddObject(buf.Bytes())
}

// embeddedFontName derives a PDF-name-safe base font name from the family.
func embeddedFontName(family string) string {
	var b strings.Builder
	for _, r := range family {
		if r == '-' || (r >= '0' && r <= '9') || (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "Embedded"
	}
	return b.String()
}

// contentStream wraps raw page operators in a stream object body.
func contentStream(ops []byte) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "<< /Length %d >>\nstream\n", len(ops))
	buf.Write(ops)
	buf.WriteString("\nendstream")
	return buf.Bytes()
}

// wrapText splits content into lines fitting maxWidth, breaking greedily at
// spaces. A single word wider than the box gets its own line rather than
// being dropped. Explicit newlines are honored.
func wrapText(content string, font *fonts.Font, size, maxWidth float64) []string {
	var lines []string
	for _, para := range strings.Split(content, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		line := words[0]
		for _, word := range words[1:] {
			candidate := line + " " + word
			if font.Width(candidate, size) > maxWidth {
				lines = append(lines, line)
				line = word
				continue
			}
			line = candidate
		}
		lines = append(lines, line)
	}
	return lines
}

// parseHexColor parses "#RRGGBB" into 0..1 components, falling back to
// near-black on anything malformed.
func parseHexColor(s string) (r, g, b float64) {
	if len(s) != 7 || s[0] != '#' {
		s = fallbackColor
	}
	val, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		val = 0x1a1a1a
	}
	return float64(val>>16&0xFF) / 255, float64(val>>8&0xFF) / 255, float64(val&0xFF) / 255
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
