package signing

import (
	"bytes"
	"encoding/hex"
	"fmt"

	"github.com/inkform/inkform/fonts"
	"github.com/inkform/inkform/geom"
	"github.com/inkform/inkform/internal/incr"
)

// addAppearance writes the widget's normal appearance: a bordered box with
// the signer name and the signing details laid out inside it.
func addAppearance(u *incr.Updater, rect geom.Rect, meta Metadata) (uint32, error) {
	font := fonts.Standard(fonts.Helvetica)
	fontID, err := u.AddObject([]byte(
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>"))
	if err != nil {
		return 0, err
	}

	w, h := rect.W, rect.H

	var stream bytes.Buffer
	stream.WriteString("q 0.4 0.4 0.4 RG 0.75 w\n")
	fmt.Fprintf(&stream, "0.375 0.375 %.2f %.2f re S Q\n", w-0.75, h-0.75)

	type appearanceLine struct {
		text string
		size float64
	}
	lines := []appearanceLine{
		{meta.Name, 0},
		{"Reason: " + meta.Reason, 7},
		{"Date: " + meta.Date.Format("2006-01-02 15:04:05 -07:00"), 7},
	}
	if meta.Location != "" {
		lines = append(lines, appearanceLine{"Location: " + meta.Location, 7})
	}

	// The name line scales down until it fits the box width.
	nameSize := h * 0.4
	for nameSize > 4 && font.Width(meta.Name, nameSize) > w-6 {
		nameSize -= 0.5
	}
	lines[0].size = nameSize

	y := h - 3
	for _, line := range lines {
		y -= line.size * 1.15
		if y < 2 {
			break
		}
		stream.WriteString("BT /F1 ")
		fmt.Fprintf(&stream, "%.2f Tf 0 0 0 rg 3 %.2f Td <%s> Tj ET\n",
			line.size, y, hex.EncodeToString([]byte(line.text)))
	}

	var obj bytes.Buffer
	obj.WriteString("<<\n  /Type /XObject\n  /Subtype /Form\n  /FormType 1\n")
	fmt.Fprintf(&obj, "  /BBox [0 0 %.2f %.2f]\n", w, h)
	obj.WriteString("  /Matrix [1 0 0 1 0 0]\n")
	fmt.Fprintf(&obj, "  /Resources << /Font << /F1 %d 0 R >> >>\n", fontID)
	fmt.Fprintf(&obj, "  /Length %d\n>>\nstream\n", stream.Len())
	obj.Write(stream.Bytes())
	obj.WriteString("\nendstream")

	return u.AddObject(obj.Bytes())
}

// addWidget writes the signature widget annotation pointing at the signature
// dictionary and its appearance. Flag 132 marks it printed and locked.
func addWidget(u *incr.Updater, rect geom.Rect, sigID, appearanceID uint32, pageID uint32, pageGen uint16) (uint32, error) {
	var buf bytes.Buffer
	buf.WriteString("<<\n  /Type /Annot\n  /Subtype /Widget\n  /FT /Sig\n")
	fmt.Fprintf(&buf, "  /T %s\n", incr.PDFString(fmt.Sprintf("Signature-%d", sigID)))
	fmt.Fprintf(&buf, "  /Rect [%.2f %.2f %.2f %.2f]\n", rect.X, rect.Y, rect.X+rect.W, rect.Y+rect.H)
	fmt.Fprintf(&buf, "  /V %d 0 R\n", sigID)
	buf.WriteString("  /F 132\n")
	fmt.Fprintf(&buf, "  /AP << /N %d 0 R >>\n", appearanceID)
	fmt.Fprintf(&buf, "  /P %d %d R\n", pageID, pageGen)
	buf.WriteString(">>")
	return u.AddObject(buf.Bytes())
}
