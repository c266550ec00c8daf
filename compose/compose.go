// Package compose flattens a session's drafts into the document. Every draft
// becomes one incremental update, applied in creation order, so the output of
// each step is itself a complete valid document.
package compose

import (
	"bytes"
	"context"
	"fmt"

	"github.com/inkform/inkform/draft"
	"github.com/inkform/inkform/errs"
	"github.com/inkform/inkform/geom"
)

// Defaults used when Options members are zero.
const (
	DefaultFontFamily = "Helvetica"
	DefaultFontSize   = 12.0
	DefaultLineHeight = 1.2
)

// Options controls text defaults and signature handling during composition.
type Options struct {
	FontFamily string
	FontSize   float64
	// LineHeight is the leading factor applied to the font size.
	LineHeight float64
	// VisualSignature stamps the signature draft's image into the page
	// content. Without it a signature draft only contributes its anchor.
	VisualSignature bool
}

func (o Options) withDefaults() Options {
	if o.FontFamily == "" {
		o.FontFamily = DefaultFontFamily
	}
	if o.FontSize <= 0 {
		o.FontSize = DefaultFontSize
	}
	if o.LineHeight <= 0 {
		o.LineHeight = DefaultLineHeight
	}
	return o
}

// SignatureAnchor marks where the signing pipeline should place its widget,
// in PDF user space of the given page.
type SignatureAnchor struct {
	Page int
	Rect geom.Rect
}

// StepError reports which draft failed during composition.
type StepError struct {
	Index int
	Kind  draft.Kind
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("compose %s draft %d: %v", e.Kind, e.Index, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// Compose applies the drafts to the document in order and returns the updated
// bytes. Drafts on pages without a valid viewport are skipped. When one or
// more signature drafts are present, the anchor of the most recent one is
// returned for the signing pipeline; a nil anchor means nothing to sign.
func Compose(ctx context.Context, data []byte, drafts []*draft.Draft, viewports map[int]geom.Viewport, opts Options) ([]byte, *SignatureAnchor, error) {
	opts = opts.withDefaults()

	out := data
	var anchor *SignatureAnchor

	for i, d := range drafts {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		vp, ok := viewports[d.Page]
		if !ok || !vp.Valid() {
			continue
		}
		rect, ok := vp.ToPDF(d.Rect)
		if !ok {
			continue
		}

		var err error
		switch d.Kind {
		case draft.Text:
			out, err = composeText(out, d, rect, opts)
		case draft.TextField:
			out, err = composeTextField(out, d, rect, opts)
		case draft.Checkbox:
			out, err = composeCheckbox(out, d, rect)
		case draft.Signature:
			if opts.VisualSignature {
				out, err = composeSignature(out, d, rect)
			}
			if err == nil {
				anchor = &SignatureAnchor{Page: d.Page, Rect: rect}
			}
		default:
			err = fmt.Errorf("unsupported draft kind %s", d.Kind)
		}
		if err == nil && !headerIntact(out) {
			err = fmt.Errorf("step output lost the document header: %w", errs.ErrInvalidDocument)
		}
		if err != nil {
			return nil, nil, &StepError{Index: i, Kind: d.Kind, Err: err}
		}
	}

	return out, anchor, nil
}

// headerIntact reports whether a step's output still starts as a PDF. Each
// step is checked on its own so a bad write is attributed to the draft that
// produced it.
func headerIntact(data []byte) bool {
	return bytes.HasPrefix(data, []byte("%PDF-"))
}
