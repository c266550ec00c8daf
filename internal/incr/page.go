package incr

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/digitorus/pdf"

	"github.com/inkform/inkform/errs"
)

// FindPage returns the page dictionary for a zero-based page index, clamped
// to the document's page range.
func (u *Updater) FindPage(index int) (pdf.Value, error) {
	n := u.reader.NumPage()
	if n == 0 {
		return pdf.Value{}, fmt.Errorf("document has no pages: %w", errs.ErrInvalidDocument)
	}
	if index < 0 {
		index = 0
	}
	if index >= n {
		index = n - 1
	}
	page := u.reader.Page(index + 1).V
	if page.IsNull() {
		return pdf.Value{}, fmt.Errorf("page %d unreadable: %w", index, errs.ErrInvalidDocument)
	}
	return page, nil
}

// MediaBox returns the page's media box as [llx lly urx ury], defaulting to
// US Letter when absent.
func MediaBox(page pdf.Value) [4]float64 {
	mb := [4]float64{0, 0, 612, 792}
	mediaBox := page.Key("MediaBox")
	if mediaBox.Kind() == pdf.Array && mediaBox.Len() >= 4 {
		for i := 0; i < 4; i++ {
			mb[i] = mediaBox.Index(i).Float64()
		}
	}
	return mb
}

// PageUpdate describes additions to one page: content streams appended after
// the existing ones, widget annotations, and resource entries merged into
// the page's resource dictionary.
type PageUpdate struct {
	AddContents []uint32
	AddAnnots   []uint32
	AddFonts    map[string]uint32
	AddXObjects map[string]uint32
}

// RewritePage re-emits the page dictionary with the update applied and
// registers it as a replacement object. Existing entries are preserved by
// reference.
func (u *Updater) RewritePage(page pdf.Value, up PageUpdate) error {
	ptr := page.GetPtr()
	if ptr.GetID() == 0 {
		return fmt.Errorf("page is not an indirect object: %w", errs.ErrInvalidDocument)
	}

	mergeResources := len(up.AddFonts) > 0 || len(up.AddXObjects) > 0

	var buf bytes.Buffer
	buf.WriteString("<<\n")

	for _, key := range page.Keys() {
		switch {
		case key == "Type":
			continue // forced below
		case key == "Contents" && len(up.AddContents) > 0:
			continue
		case key == "Annots" && len(up.AddAnnots) > 0:
			continue
		case key == "Resources" && mergeResources:
			continue
		}
		fmt.Fprintf(&buf, "  /%s %s\n", key, SerializeMember(ptr, page.Key(key)))
	}

	buf.WriteString("  /Type /Page\n")

	if len(up.AddContents) > 0 {
		buf.WriteString("  /Contents [")
		writeRefList(&buf, ptr, page.Key("Contents"))
		for _, id := range up.AddContents {
			fmt.Fprintf(&buf, " %d 0 R", id)
		}
		buf.WriteString(" ]\n")
	}

	if len(up.AddAnnots) > 0 {
		buf.WriteString("  /Annots [")
		writeRefList(&buf, ptr, page.Key("Annots"))
		for _, id := range up.AddAnnots {
			fmt.Fprintf(&buf, " %d 0 R", id)
		}
		buf.WriteString(" ]\n")
	}

	if mergeResources {
		buf.WriteString("  /Resources ")
		buf.WriteString(mergedResources(page.Key("Resources"), up.AddFonts, up.AddXObjects))
		buf.WriteString("\n")
	}

	buf.WriteString(">>")

	return u.UpdateObject(ptr.GetID(), buf.Bytes())
}

// writeRefList emits the existing members of an array-or-single-reference
// value as indirect references. Members carrying the containing object's
// pointer are direct values, not references, and are skipped.
func writeRefList(buf *bytes.Buffer, parent pdf.Ptr, v pdf.Value) {
	switch {
	case v.Kind() == pdf.Array:
		arr := v.GetPtr()
		for i := 0; i < v.Len(); i++ {
			if ptr := v.Index(i).GetPtr(); ptr.GetID() > 0 && ptr.GetID() != arr.GetID() {
				fmt.Fprintf(buf, " %d %d R", ptr.GetID(), ptr.GetGen())
			}
		}
	default:
		if ptr := v.GetPtr(); ptr.GetID() > 0 && ptr.GetID() != parent.GetID() {
			fmt.Fprintf(buf, " %d %d R", ptr.GetID(), ptr.GetGen())
		}
	}
}

// mergedResources re-emits the page's resource dictionary with extra /Font
// and /XObject entries folded in. Categories the update does not touch are
// copied as-is.
func mergedResources(res pdf.Value, fonts, xobjects map[string]uint32) string {
	var buf bytes.Buffer
	buf.WriteString("<<")

	written := map[string]bool{}
	if res.Kind() == pdf.Dict {
		for _, key := range res.Keys() {
			switch {
			case key == "Font" && len(fonts) > 0:
				fmt.Fprintf(&buf, " /Font %s", mergedCategory(res.Key(key), fonts))
			case key == "XObject" && len(xobjects) > 0:
				fmt.Fprintf(&buf, " /XObject %s", mergedCategory(res.Key(key), xobjects))
			default:
				fmt.Fprintf(&buf, " /%s %s", key, SerializeMember(res.GetPtr(), res.Key(key)))
			}
			written[key] = true
		}
	}
	if len(fonts) > 0 && !written["Font"] {
		fmt.Fprintf(&buf, " /Font %s", mergedCategory(pdf.Value{}, fonts))
	}
	if len(xobjects) > 0 && !written["XObject"] {
		fmt.Fprintf(&buf, " /XObject %s", mergedCategory(pdf.Value{}, xobjects))
	}

	buf.WriteString(" >>")
	return buf.String()
}

func mergedCategory(existing pdf.Value, extra map[string]uint32) string {
	var buf bytes.Buffer
	buf.WriteString("<<")
	if existing.Kind() == pdf.Dict {
		for _, key := range existing.Keys() {
			if _, shadowed := extra[key]; shadowed {
				continue
			}
			fmt.Fprintf(&buf, " /%s %s", key, SerializeMember(existing.GetPtr(), existing.Key(key)))
		}
	}
	names := make([]string, 0, len(extra))
	for name := range extra {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&buf, " /%s %d 0 R", name, extra[name])
	}
	buf.WriteString(" >>")
	return buf.String()
}
