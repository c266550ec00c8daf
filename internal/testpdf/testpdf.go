// Package testpdf builds small well-formed PDF fixtures for tests. Object
// offsets in the cross-reference table are computed while serializing, so
// fixtures stay valid as tests change their content.
package testpdf

import (
	"bytes"
	"fmt"
	"strings"
)

type field struct {
	page int
	body string
}

// Doc accumulates pages and form fields for a fixture document.
type Doc struct {
	pageContents []string
	fields       []field
}

// New returns a fixture with a single US Letter page.
func New() *Doc {
	d := &Doc{}
	d.AddPage()
	return d
}

// AddPage appends a page with a one-line content stream.
func (d *Doc) AddPage() int {
	n := len(d.pageContents)
	d.pageContents = append(d.pageContents,
		fmt.Sprintf("BT /Helv 12 Tf 72 720 Td (Page %d) Tj ET", n+1))
	return n
}

// AddTextField places a text field widget on the given page.
func (d *Doc) AddTextField(page int, name, value string) {
	d.fields = append(d.fields, field{
		page: page,
		body: fmt.Sprintf("<< /Type /Annot /Subtype /Widget /FT /Tx /T (%s) /V (%s) /Rect [100 600 300 630] /F 4 /DA (/Helv 12 Tf 0 g) >>", name, value),
	})
}

// AddCheckbox places a checkbox widget on the given page.
func (d *Doc) AddCheckbox(page int, name string, on bool) {
	state := "/Off"
	if on {
		state = "/Yes"
	}
	d.fields = append(d.fields, field{
		page: page,
		body: fmt.Sprintf("<< /Type /Annot /Subtype /Widget /FT /Btn /T (%s) /V %s /AS %s /Rect [100 560 120 580] /F 4 /AP << /N << /Yes null /Off null >> >> >>", name, state, state),
	})
}

// AddChoice places a choice field on the given page. combo selects a
// dropdown rather than a scrolling list.
func (d *Doc) AddChoice(page int, name string, combo bool, options []string, value string) {
	flags := 0
	if combo {
		flags = 1 << 17
	}
	var opts strings.Builder
	for _, o := range options {
		fmt.Fprintf(&opts, "(%s) ", o)
	}
	d.fields = append(d.fields, field{
		page: page,
		body: fmt.Sprintf("<< /Type /Annot /Subtype /Widget /FT /Ch /T (%s) /Ff %d /Opt [%s] /V (%s) /Rect [100 500 300 530] /F 4 >>", name, flags, strings.TrimSpace(opts.String()), value),
	})
}

// AddRadio places a radio button group field on the given page.
func (d *Doc) AddRadio(page int, name, value string) {
	d.fields = append(d.fields, field{
		page: page,
		body: fmt.Sprintf("<< /Type /Annot /Subtype /Widget /FT /Btn /Ff %d /T (%s) /V /%s /Rect [100 460 120 480] /F 4 >>", 1<<15, name, value),
	})
}

// Bytes serializes the fixture.
func (d *Doc) Bytes() []byte {
	// Object layout: 1 catalog, 2 pages root, 3 font, then per page a
	// content stream and a page dict, then the field widgets.
	numPages := len(d.pageContents)
	contentID := func(p int) int { return 4 + 2*p }
	pageID := func(p int) int { return 5 + 2*p }
	fieldID := func(i int) int { return 4 + 2*numPages + i }

	bodies := make(map[int]string)

	var fieldRefs strings.Builder
	for i := range d.fields {
		fmt.Fprintf(&fieldRefs, "%d 0 R ", fieldID(i))
	}
	catalog := "<< /Type /Catalog /Pages 2 0 R"
	if len(d.fields) > 0 {
		catalog += fmt.Sprintf(" /AcroForm << /Fields [%s] /DA (/Helv 0 Tf 0 g) >>", strings.TrimSpace(fieldRefs.String()))
	}
	catalog += " >>"
	bodies[1] = catalog

	var kids strings.Builder
	for p := 0; p < numPages; p++ {
		fmt.Fprintf(&kids, "%d 0 R ", pageID(p))
	}
	bodies[2] = fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.TrimSpace(kids.String()), numPages)
	bodies[3] = "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>"

	for p, content := range d.pageContents {
		bodies[contentID(p)] = fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content)

		var annots string
		var annotRefs strings.Builder
		for i, f := range d.fields {
			if f.page == p {
				fmt.Fprintf(&annotRefs, "%d 0 R ", fieldID(i))
			}
		}
		if annotRefs.Len() > 0 {
			annots = fmt.Sprintf(" /Annots [%s]", strings.TrimSpace(annotRefs.String()))
		}
		bodies[pageID(p)] = fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /Helv 3 0 R >> >> /Contents %d 0 R%s >>", contentID(p), annots)
	}

	for i, f := range d.fields {
		// Wire the widget to its page by inserting /P before the final
		// dictionary close.
		cut := strings.LastIndex(f.body, ">>")
		bodies[fieldID(i)] = f.body[:cut] + fmt.Sprintf("/P %d 0 R >>", pageID(f.page))
	}

	count := 3 + 2*numPages + len(d.fields)

	var out bytes.Buffer
	out.WriteString("%PDF-1.7\n%\xe2\xe3\xcf\xd3\n")

	offsets := make([]int, count+1)
	for id := 1; id <= count; id++ {
		offsets[id] = out.Len()
		fmt.Fprintf(&out, "%d 0 obj\n%s\nendobj\n", id, bodies[id])
	}

	xrefStart := out.Len()
	fmt.Fprintf(&out, "xref\n0 %d\n", count+1)
	out.WriteString("0000000000 65535 f \n")
	for id := 1; id <= count; id++ {
		fmt.Fprintf(&out, "%010d 00000 n \n", offsets[id])
	}
	fmt.Fprintf(&out, "trailer\n<< /Size %d /Root 1 0 R /ID [<494e4b464f524d2d54455354303031> <494e4b464f524d2d54455354303031>] >>\nstartxref\n%d\n%%%%EOF\n", count+1, xrefStart)

	return out.Bytes()
}

// Letter returns a plain fixture with the given number of pages.
func Letter(pages int) []byte {
	d := New()
	for i := 1; i < pages; i++ {
		d.AddPage()
	}
	return d.Bytes()
}
