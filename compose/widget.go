package compose

import (
	"bytes"
	"fmt"

	"github.com/digitorus/pdf"

	"github.com/inkform/inkform/draft"
	"github.com/inkform/inkform/geom"
	"github.com/inkform/inkform/internal/incr"
)

// composeTextField adds a fillable text field widget and registers it in the
// AcroForm. NeedAppearances is set so readers draw the value themselves.
func composeTextField(data []byte, d *draft.Draft, rect geom.Rect, opts Options) ([]byte, error) {
	u, err := incr.NewUpdater(data)
	if err != nil {
		return nil, err
	}

	page, err := u.FindPage(d.Page)
	if err != nil {
		return nil, err
	}
	pagePtr := page.GetPtr()

	var buf bytes.Buffer
	buf.WriteString("<<\n  /Type /Annot\n  /Subtype /Widget\n  /FT /Tx\n")
	fmt.Fprintf(&buf, "  /T %s\n", incr.PDFString(d.FieldName))
	buf.WriteString("  /V ()\n")
	fmt.Fprintf(&buf, "  /Rect [%.2f %.2f %.2f %.2f]\n", rect.X, rect.Y, rect.X+rect.W, rect.Y+rect.H)
	buf.WriteString("  /F 4\n")
	fmt.Fprintf(&buf, "  /DA (/Helv %.1f Tf 0 g)\n", opts.FontSize)
	buf.WriteString("  /MK << /BC [ 0.5 0.5 0.5 ] /BG [ 1 1 1 ] >>\n")
	fmt.Fprintf(&buf, "  /P %d %d R\n", pagePtr.GetID(), pagePtr.GetGen())
	buf.WriteString(">>")

	widgetID, err := u.AddObject(buf.Bytes())
	if err != nil {
		return nil, err
	}
	return finishWidget(u, page, widgetID)
}

// composeCheckbox adds an unchecked checkbox widget.
func composeCheckbox(data []byte, d *draft.Draft, rect geom.Rect) ([]byte, error) {
	u, err := incr.NewUpdater(data)
	if err != nil {
		return nil, err
	}

	page, err := u.FindPage(d.Page)
	if err != nil {
		return nil, err
	}
	pagePtr := page.GetPtr()

	var buf bytes.Buffer
	buf.WriteString("<<\n  /Type /Annot\n  /Subtype /Widget\n  /FT /Btn\n")
	fmt.Fprintf(&buf, "  /T %s\n", incr.PDFString(d.FieldName))
	buf.WriteString("  /V /Off\n  /AS /Off\n")
	fmt.Fprintf(&buf, "  /Rect [%.2f %.2f %.2f %.2f]\n", rect.X, rect.Y, rect.X+rect.W, rect.Y+rect.H)
	buf.WriteString("  /F 4\n")
	buf.WriteString("  /DA (/ZaDb 0 Tf 0 g)\n")
	buf.WriteString("  /MK << /BC [ 0.5 0.5 0.5 ] /BG [ 1 1 1 ] /CA (4) >>\n")
	fmt.Fprintf(&buf, "  /P %d %d R\n", pagePtr.GetID(), pagePtr.GetGen())
	buf.WriteString(">>")

	widgetID, err := u.AddObject(buf.Bytes())
	if err != nil {
		return nil, err
	}
	return finishWidget(u, page, widgetID)
}

// finishWidget wires a widget into the page and the AcroForm and finalizes
// the update.
func finishWidget(u *incr.Updater, page pdf.Value, widgetID uint32) ([]byte, error) {
	if err := u.RewritePage(page, incr.PageUpdate{AddAnnots: []uint32{widgetID}}); err != nil {
		return nil, err
	}
	rootID, err := u.AddCatalog(incr.CatalogOptions{
		ExtraFields:     []uint32{widgetID},
		NeedAppearances: true,
	})
	if err != nil {
		return nil, err
	}
	return u.Finalize(rootID)
}
