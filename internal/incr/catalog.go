package incr

import (
	"bytes"
	"fmt"

	"github.com/digitorus/pdf"
)

// CatalogOptions describes the AcroForm changes a new catalog carries.
type CatalogOptions struct {
	// ExtraFields are object numbers of new field widgets to append to the
	// AcroForm /Fields array.
	ExtraFields []uint32
	// SigFlags is written when non-zero (3 marks the document as signed and
	// append-only).
	SigFlags int
	// NeedAppearances asks readers to regenerate field appearance streams.
	// A true already present in the document's AcroForm is preserved even
	// when this is unset.
	NeedAppearances bool
}

// AddCatalog appends a replacement document catalog. Root entries other than
// the AcroForm are preserved by reference; the AcroForm is rebuilt with the
// existing fields plus the requested additions. It returns the new catalog's
// object number for the trailer /Root.
func (u *Updater) AddCatalog(opts CatalogOptions) (uint32, error) {
	root := u.reader.Trailer().Key("Root")

	var buf bytes.Buffer
	buf.WriteString("<< /Type /Catalog")

	for _, key := range root.Keys() {
		if key == "Type" || key == "AcroForm" {
			continue
		}
		fmt.Fprintf(&buf, " /%s %s", key, SerializeMember(root.GetPtr(), root.Key(key)))
	}

	buf.WriteString(" /AcroForm << /Fields [")
	acroForm := root.Key("AcroForm")
	first := true
	if fields := acroForm.Key("Fields"); fields.Kind() == pdf.Array {
		arr := fields.GetPtr()
		for i := 0; i < fields.Len(); i++ {
			if ptr := fields.Index(i).GetPtr(); ptr.GetID() > 0 && ptr.GetID() != arr.GetID() {
				if !first {
					buf.WriteString(" ")
				}
				fmt.Fprintf(&buf, "%d %d R", ptr.GetID(), ptr.GetGen())
				first = false
			}
		}
	}
	for _, id := range opts.ExtraFields {
		if !first {
			buf.WriteString(" ")
		}
		fmt.Fprintf(&buf, "%d 0 R", id)
		first = false
	}
	buf.WriteString("]")

	// Keep the form's default resources and appearance defaults so existing
	// fields render unchanged.
	if acroForm.Kind() == pdf.Dict {
		for _, key := range acroForm.Keys() {
			switch key {
			case "Fields", "NeedAppearances", "SigFlags":
				continue
			}
			fmt.Fprintf(&buf, " /%s %s", key, SerializeMember(acroForm.GetPtr(), acroForm.Key(key)))
		}
	}

	if opts.NeedAppearances || acroForm.Key("NeedAppearances").Bool() {
		buf.WriteString(" /NeedAppearances true")
	}
	if opts.SigFlags != 0 {
		fmt.Fprintf(&buf, " /SigFlags %d", opts.SigFlags)
	}

	buf.WriteString(" >>") // close AcroForm
	buf.WriteString(" >>") // close catalog

	return u.AddObject(buf.Bytes())
}
