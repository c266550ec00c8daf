package compose

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/digitorus/pdf"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/inkform/inkform/draft"
	"github.com/inkform/inkform/fonts"
	"github.com/inkform/inkform/geom"
	"github.com/inkform/inkform/internal/testpdf"
)

// letterViewport renders the fixture page 1:1.
func letterViewport() map[int]geom.Viewport {
	return map[int]geom.Viewport{
		0: {Width: 612, Height: 792, Scale: 1, PageWidth: 612, PageHeight: 792},
	}
}

func reparse(t *testing.T, data []byte) *pdf.Reader {
	t.Helper()
	rdr, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("composed document does not parse: %v", err)
	}
	return rdr
}

func pngPixel(t *testing.T, alpha uint8) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.SetRGBA(x, y, color.RGBA{R: 20, G: 40, B: 60, A: alpha})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestComposeNoDraftsReturnsInput(t *testing.T) {
	in := testpdf.Letter(1)
	out, anchor, err := Compose(context.Background(), in, nil, letterViewport(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(in, out) {
		t.Error("document changed with no drafts")
	}
	if anchor != nil {
		t.Error("anchor reported with no signature draft")
	}
}

func TestComposeText(t *testing.T) {
	in := testpdf.Letter(1)
	drafts := []*draft.Draft{{
		ID:   "draft-1",
		Kind: draft.Text,
		Page: 0,
		Rect: geom.Rect{X: 40, Y: 40, W: 200, H: 40},
		Text: &draft.TextStyle{Content: "Hello composition", Size: 12},
	}}

	out, _, err := Compose(context.Background(), in, drafts, letterViewport(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(out, in) {
		t.Error("original bytes were modified")
	}

	rdr := reparse(t, out)
	pageV := rdr.Page(1).V
	if contents := pageV.Key("Contents"); contents.Kind() != pdf.Array || contents.Len() != 2 {
		t.Errorf("content stream not appended: %v", contents.Kind())
	}

	fontRes := pageV.Key("Resources").Key("Font")
	found := false
	for _, name := range fontRes.Keys() {
		if fontRes.Key(name).Key("BaseFont").Name() == "Helvetica" {
			found = true
		}
	}
	if !found {
		t.Error("Helvetica resource not registered on the page")
	}
}

func TestComposeEmbeddedFont(t *testing.T) {
	in := testpdf.Letter(1)
	drafts := []*draft.Draft{{
		ID:   "draft-1",
		Kind: draft.Text,
		Page: 0,
		Rect: geom.Rect{X: 40, Y: 40, W: 200, H: 40},
		Text: &draft.TextStyle{
			Content:    "Embedded greetings",
			Size:       12,
			FontFamily: "Go Regular",
			FontData:   goregular.TTF,
		},
	}}

	out, _, err := Compose(context.Background(), in, drafts, letterViewport(), Options{})
	if err != nil {
		t.Fatal(err)
	}

	rdr := reparse(t, out)
	fontRes := rdr.Page(1).V.Key("Resources").Key("Font")
	var embedded pdf.Value
	for _, name := range fontRes.Keys() {
		if fontRes.Key(name).Key("Subtype").Name() == "TrueType" {
			embedded = fontRes.Key(name)
		}
	}
	if embedded.IsNull() {
		t.Fatal("TrueType font resource not registered")
	}
	if embedded.Key("BaseFont").Name() != "GoRegular" {
		t.Errorf("base font = %q", embedded.Key("BaseFont").Name())
	}
	if embedded.Key("Widths").Len() != 256-32 {
		t.Errorf("widths array has %d entries", embedded.Key("Widths").Len())
	}

	desc := embedded.Key("FontDescriptor")
	if desc.IsNull() || desc.Key("FontFile2").IsNull() {
		t.Error("font program not embedded")
	}
}

func TestComposeTextField(t *testing.T) {
	in := testpdf.Letter(1)
	drafts := []*draft.Draft{{
		ID:        "draft-1",
		Kind:      draft.TextField,
		Page:      0,
		Rect:      geom.Rect{X: 100, Y: 100, W: 200, H: 36},
		FieldName: "Field-1-ab",
	}}

	out, _, err := Compose(context.Background(), in, drafts, letterViewport(), Options{})
	if err != nil {
		t.Fatal(err)
	}

	rdr := reparse(t, out)
	acro := rdr.Trailer().Key("Root").Key("AcroForm")
	fields := acro.Key("Fields")
	if fields.Len() != 1 {
		t.Fatalf("AcroForm has %d fields, want 1", fields.Len())
	}
	f := fields.Index(0)
	if f.Key("FT").Name() != "Tx" {
		t.Errorf("field type = %q", f.Key("FT").Name())
	}
	if !acro.Key("NeedAppearances").Bool() {
		t.Error("NeedAppearances not set")
	}

	// Screen y=100, h=36 on a 792pt page lands at PDF y = 792-136 = 656.
	rect := f.Key("Rect")
	if got := rect.Index(1).Float64(); got != 656 {
		t.Errorf("widget bottom y = %v, want 656", got)
	}

	annots := rdr.Page(1).V.Key("Annots")
	if annots.Len() != 1 {
		t.Error("widget not linked from the page")
	}
}

func TestComposeCheckbox(t *testing.T) {
	in := testpdf.Letter(1)
	drafts := []*draft.Draft{{
		ID:        "draft-1",
		Kind:      draft.Checkbox,
		Page:      0,
		Rect:      geom.Rect{X: 100, Y: 100, W: 18, H: 18},
		FieldName: "Check-1-cd",
	}}

	out, _, err := Compose(context.Background(), in, drafts, letterViewport(), Options{})
	if err != nil {
		t.Fatal(err)
	}

	rdr := reparse(t, out)
	f := rdr.Trailer().Key("Root").Key("AcroForm").Key("Fields").Index(0)
	if f.Key("FT").Name() != "Btn" {
		t.Errorf("field type = %q", f.Key("FT").Name())
	}
	if f.Key("V").Name() != "Off" || f.Key("AS").Name() != "Off" {
		t.Error("checkbox not created unchecked")
	}
}

func TestComposeSignatureAnchor(t *testing.T) {
	in := testpdf.Letter(1)
	drafts := []*draft.Draft{
		{
			ID:   "draft-1",
			Kind: draft.Signature,
			Page: 0,
			Rect: geom.Rect{X: 50, Y: 50, W: 100, H: 40},
		},
		{
			ID:    "draft-2",
			Kind:  draft.Signature,
			Page:  0,
			Rect:  geom.Rect{X: 200, Y: 600, W: 150, H: 60},
			Image: pngPixel(t, 128),
		},
	}

	out, anchor, err := Compose(context.Background(), in, drafts, letterViewport(), Options{VisualSignature: true})
	if err != nil {
		t.Fatal(err)
	}
	if anchor == nil {
		t.Fatal("no anchor for signature drafts")
	}

	// The most recent signature draft wins: screen (200,600,150,60) flips to
	// PDF (200, 792-660, 150, 60).
	if anchor.Page != 0 || anchor.Rect.X != 200 || anchor.Rect.Y != 132 {
		t.Errorf("anchor = %+v", anchor)
	}

	rdr := reparse(t, out)
	xobjs := rdr.Page(1).V.Key("Resources").Key("XObject")
	if len(xobjs.Keys()) != 1 {
		t.Fatalf("image XObject not registered: %v", xobjs.Keys())
	}
	img := xobjs.Key(xobjs.Keys()[0])
	if img.Key("Subtype").Name() != "Image" {
		t.Error("registered XObject is not an image")
	}
	if img.Key("SMask").IsNull() {
		t.Error("transparent image missing its soft mask")
	}
}

func TestComposeSignatureWithoutVisualFlag(t *testing.T) {
	in := testpdf.Letter(1)
	drafts := []*draft.Draft{{
		ID:    "draft-1",
		Kind:  draft.Signature,
		Page:  0,
		Rect:  geom.Rect{X: 200, Y: 600, W: 150, H: 60},
		Image: pngPixel(t, 255),
	}}

	out, anchor, err := Compose(context.Background(), in, drafts, letterViewport(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if anchor == nil {
		t.Error("anchor missing when image stamping is off")
	}
	if !bytes.Equal(in, out) {
		t.Error("image stamped without the visual signature flag")
	}
}

func TestComposeSkipsUnrenderedPages(t *testing.T) {
	in := testpdf.Letter(2)
	drafts := []*draft.Draft{{
		ID:   "draft-1",
		Kind: draft.Text,
		Page: 1, // no viewport captured for page 1
		Rect: geom.Rect{X: 40, Y: 40, W: 200, H: 40},
		Text: &draft.TextStyle{Content: "skipped"},
	}}

	out, _, err := Compose(context.Background(), in, drafts, letterViewport(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(in, out) {
		t.Error("draft on unrendered page was composed")
	}
}

func TestComposeStepError(t *testing.T) {
	drafts := []*draft.Draft{
		{ID: "draft-1", Kind: draft.Text, Page: 0, Rect: geom.Rect{X: 40, Y: 40, W: 200, H: 40}, Text: &draft.TextStyle{Content: "ok"}},
		{ID: "draft-2", Kind: draft.Kind(99), Page: 0, Rect: geom.Rect{X: 40, Y: 90, W: 200, H: 40}},
	}

	_, _, err := Compose(context.Background(), testpdf.Letter(1), drafts, letterViewport(), Options{})
	var stepErr *StepError
	if !errors.As(err, &stepErr) {
		t.Fatalf("error is not a StepError: %v", err)
	}
	if stepErr.Index != 1 {
		t.Errorf("failing step index = %d, want 1", stepErr.Index)
	}
}

func TestComposeHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	drafts := []*draft.Draft{{
		ID: "draft-1", Kind: draft.Text, Page: 0,
		Rect: geom.Rect{X: 40, Y: 40, W: 200, H: 40},
		Text: &draft.TextStyle{Content: "never"},
	}}
	if _, _, err := Compose(ctx, testpdf.Letter(1), drafts, letterViewport(), Options{}); !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled context not honored: %v", err)
	}
}

func TestComposeSequentialUpdates(t *testing.T) {
	in := testpdf.Letter(1)
	drafts := []*draft.Draft{
		{ID: "draft-1", Kind: draft.Text, Page: 0, Rect: geom.Rect{X: 40, Y: 40, W: 200, H: 40}, Text: &draft.TextStyle{Content: "first"}},
		{ID: "draft-2", Kind: draft.TextField, Page: 0, Rect: geom.Rect{X: 40, Y: 100, W: 200, H: 36}, FieldName: "Field-1-ef"},
	}

	out, _, err := Compose(context.Background(), in, drafts, letterViewport(), Options{})
	if err != nil {
		t.Fatal(err)
	}

	// Each draft appends its own update section.
	if got := bytes.Count(out, []byte("trailer")); got != 3 {
		t.Errorf("expected 3 trailers after 2 drafts, found %d", got)
	}

	rdr := reparse(t, out)
	if rdr.Trailer().Key("Root").Key("AcroForm").Key("Fields").Len() != 1 {
		t.Error("field from second step missing")
	}
	if rdr.Page(1).V.Key("Contents").Len() != 2 {
		t.Error("text from first step missing")
	}
}

func TestHeaderIntact(t *testing.T) {
	if !headerIntact([]byte("%PDF-1.7\nrest")) {
		t.Error("valid header rejected")
	}
	if headerIntact([]byte("garbage")) || headerIntact(nil) {
		t.Error("missing header accepted")
	}
}

func TestWrapText(t *testing.T) {
	font := fonts.Resolve("Helvetica", false, false)

	cases := map[string]struct {
		content string
		width   float64
		want    []string
	}{
		"fits_on_one_line": {"hello world", 500, []string{"hello world"}},
		"wraps_at_space":   {"hello world", 40, []string{"hello", "world"}},
		"explicit_newline": {"a\nb", 500, []string{"a", "b"}},
		"empty":            {"", 500, []string{""}},
		"long_word_kept":   {"abcdefghijklmnop", 10, []string{"abcdefghijklmnop"}},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			got := wrapText(tc.content, font, 12, tc.width)
			if len(got) != len(tc.want) {
				t.Fatalf("lines = %q, want %q", got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Errorf("line %d = %q, want %q", i, got[i], tc.want[i])
				}
			}
		})
	}
}

func TestParseHexColor(t *testing.T) {
	cases := map[string]struct {
		in      string
		r, g, b float64
	}{
		"red":       {"#ff0000", 1, 0, 0},
		"malformed": {"blue", 26.0 / 255, 26.0 / 255, 26.0 / 255},
		"empty":     {"", 26.0 / 255, 26.0 / 255, 26.0 / 255},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			r, g, b := parseHexColor(tc.in)
			if r != tc.r || g != tc.g || b != tc.b {
				t.Errorf("parseHexColor(%q) = %v %v %v", tc.in, r, g, b)
			}
		})
	}
}
