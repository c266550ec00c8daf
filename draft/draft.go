// Package draft holds the pending visual edits of a session before they are
// composed into the document. Drafts live entirely in screen space; the
// compositor converts them to PDF space at export time.
package draft

import (
	"fmt"

	"github.com/inkform/inkform/geom"
)

// Kind enumerates the draft types. The set is closed; consumers switch over
// it exhaustively.
type Kind int

const (
	// Text is free text drawn into the page content.
	Text Kind = iota
	// TextField is a fillable AcroForm text field.
	TextField
	// Checkbox is an AcroForm checkbox field.
	Checkbox
	// Signature marks where the digital signature widget and optional
	// signature image go.
	Signature
)

func (k Kind) String() string {
	switch k {
	case Text:
		return "text"
	case TextField:
		return "textfield"
	case Checkbox:
		return "checkbox"
	case Signature:
		return "signature"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Minimum draft sizes in screen pixels. Resize and create operations never
// produce a rect below these.
const (
	MinCheckboxEdge = 18
	MinFieldEdge    = 36
	MinTextWidth    = 140
	MinTextHeight   = 32
)

// TextStyle describes the content and styling of a free-text draft.
type TextStyle struct {
	Content    string
	FontFamily string
	Bold       bool
	Italic     bool
	Underline  bool
	// ColorHex is a "#RRGGBB" color. Malformed values fall back to
	// near-black at composition time.
	ColorHex string
	// Size is the font size in points. Zero means the configured default.
	Size float64
	// FontData is TrueType data for an embedded font. Empty selects one of
	// the standard fonts from FontFamily and the style flags.
	FontData []byte
}

// Payload carries the kind-specific data for a new draft. Only the member
// matching the draft kind is consulted.
type Payload struct {
	Text *TextStyle
	// FieldName names the AcroForm field to create. Empty means the store
	// generates a unique name.
	FieldName string
	// Image is the encoded signature image (PNG or JPEG), optional.
	Image []byte
}

// Draft is one pending edit. Rect is in screen space at the scale of the
// render that was current when the draft was last touched.
type Draft struct {
	ID   string
	Kind Kind
	Page int
	Rect geom.Rect

	Text      *TextStyle
	FieldName string
	Image     []byte
}

// Update describes a partial change to an existing draft. Nil members are
// left untouched.
type Update struct {
	Rect      *geom.Rect
	Text      *TextStyle
	FieldName *string
	Image     []byte
}

func minSize(k Kind) (w, h float64) {
	switch k {
	case Checkbox:
		return MinCheckboxEdge, MinCheckboxEdge
	case TextField:
		return MinFieldEdge, MinFieldEdge
	case Signature:
		return MinFieldEdge, MinFieldEdge
	default:
		return MinTextWidth, MinTextHeight
	}
}

// clamp enforces the per-kind minimum size and keeps the rect inside the
// rendered page. Rects wider or taller than the page are truncated to it.
func clamp(r geom.Rect, k Kind, vp geom.Viewport) geom.Rect {
	minW, minH := minSize(k)
	if r.W < minW {
		r.W = minW
	}
	if r.H < minH {
		r.H = minH
	}
	if vp.Width > 0 && r.W > vp.Width {
		r.W = vp.Width
	}
	if vp.Height > 0 && r.H > vp.Height {
		r.H = vp.Height
	}
	if vp.Width > 0 {
		if r.X < vp.OffsetX {
			r.X = vp.OffsetX
		}
		if max := vp.OffsetX + vp.Width - r.W; r.X > max {
			r.X = max
		}
	}
	if vp.Height > 0 {
		if r.Y < vp.OffsetY {
			r.Y = vp.OffsetY
		}
		if max := vp.OffsetY + vp.Height - r.H; r.Y > max {
			r.Y = max
		}
	}
	return r
}
