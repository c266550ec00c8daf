// Package forms reads and fills the AcroForm fields of a document. Writes go
// through an incremental update so existing signatures stay intact, and ask
// readers to regenerate field appearances.
package forms

import (
	"bytes"
	"fmt"

	"github.com/digitorus/pdf"

	"github.com/inkform/inkform/internal/incr"
)

// FieldType enumerates the supported field classes. The set is closed;
// readers and writers switch over it exhaustively.
type FieldType int

const (
	Text FieldType = iota
	Checkbox
	Dropdown
	OptionList
	Radio
	Unknown
)

func (t FieldType) String() string {
	switch t {
	case Text:
		return "text"
	case Checkbox:
		return "checkbox"
	case Dropdown:
		return "dropdown"
	case OptionList:
		return "optionlist"
	case Radio:
		return "radio"
	}
	return "unknown"
}

// Field flag bits from the AcroForm dictionary (bit positions are 1-based in
// the PDF specification).
const (
	flagRadio      = 1 << 15 // bit 16
	flagPushbutton = 1 << 16 // bit 17
	flagCombo      = 1 << 17 // bit 18
)

// Field describes one form field.
type Field struct {
	Name    string
	Type    FieldType
	Value   any
	Options []string
}

// List returns all fields in the document, in AcroForm order. Nested fields
// get dotted names from their parent chain.
func List(data []byte) ([]Field, error) {
	u, err := incr.NewUpdater(data)
	if err != nil {
		return nil, err
	}

	fields := u.Reader().Trailer().Key("Root").Key("AcroForm").Key("Fields")
	if fields.IsNull() || fields.Kind() != pdf.Array {
		return nil, nil
	}

	var result []Field
	for i := 0; i < fields.Len(); i++ {
		result = append(result, listRec(fields.Index(i), "")...)
	}
	return result, nil
}

func listRec(v pdf.Value, prefix string) []Field {
	if v.IsNull() {
		return nil
	}

	name := decodeName(v.Key("T").RawString())
	if prefix != "" {
		name = prefix + "." + name
	}

	if v.Key("FT").Name() != "" {
		ft := classify(v)
		return []Field{{
			Name:    name,
			Type:    ft,
			Value:   fieldValue(v, ft),
			Options: fieldOptions(v),
		}}
	}

	kids := v.Key("Kids")
	if kids.Kind() == pdf.Array {
		var result []Field
		for i := 0; i < kids.Len(); i++ {
			result = append(result, listRec(kids.Index(i), name)...)
		}
		return result
	}

	return nil
}

func classify(v pdf.Value) FieldType {
	flags := v.Key("Ff").Int64()
	switch v.Key("FT").Name() {
	case "Tx":
		return Text
	case "Btn":
		if flags&flagPushbutton != 0 {
			return Unknown
		}
		if flags&flagRadio != 0 {
			return Radio
		}
		return Checkbox
	case "Ch":
		if flags&flagCombo != 0 {
			return Dropdown
		}
		return OptionList
	default:
		return Unknown
	}
}

func fieldValue(v pdf.Value, ft FieldType) any {
	val := v.Key("V")
	switch ft {
	case Checkbox:
		return !val.IsNull() && val.Name() != "" && val.Name() != "Off"
	case Radio:
		if val.Kind() == pdf.Name && val.Name() != "Off" {
			return val.Name()
		}
		return ""
	case Text, Dropdown, OptionList:
		if val.Kind() == pdf.String {
			return decodeName(val.RawString())
		}
		if val.Kind() == pdf.Name {
			return val.Name()
		}
		return ""
	default:
		return nil
	}
}

// fieldOptions reads /Opt. Entries are either display strings or
// [export display] pairs; the display string is reported.
func fieldOptions(v pdf.Value) []string {
	opt := v.Key("Opt")
	if opt.Kind() != pdf.Array {
		return nil
	}
	var options []string
	for i := 0; i < opt.Len(); i++ {
		entry := opt.Index(i)
		if entry.Kind() == pdf.Array && entry.Len() >= 2 {
			entry = entry.Index(1)
		}
		options = append(options, decodeName(entry.RawString()))
	}
	return options
}

// SetValue fills the named field and returns the updated document. A name
// that matches no field is a no-op returning the input unchanged.
func SetValue(data []byte, name string, value any) ([]byte, error) {
	u, err := incr.NewUpdater(data)
	if err != nil {
		return nil, err
	}

	fields := u.Reader().Trailer().Key("Root").Key("AcroForm").Key("Fields")
	if fields.IsNull() || fields.Kind() != pdf.Array {
		return data, nil
	}

	byName := make(map[string]pdf.Value)
	for i := 0; i < fields.Len(); i++ {
		mapFields(fields.Index(i), "", byName)
	}

	field, ok := byName[name]
	if !ok {
		return data, nil
	}
	ptr := field.GetPtr()
	if ptr.GetID() == 0 {
		return data, nil
	}

	body, err := updatedFieldBody(field, classify(field), value)
	if err != nil {
		return nil, fmt.Errorf("field %q: %w", name, err)
	}
	if body == nil {
		return data, nil
	}

	if err := u.UpdateObject(ptr.GetID(), body); err != nil {
		return nil, err
	}

	rootID, err := u.AddCatalog(incr.CatalogOptions{NeedAppearances: true})
	if err != nil {
		return nil, err
	}
	return u.Finalize(rootID)
}

func mapFields(v pdf.Value, prefix string, m map[string]pdf.Value) {
	if v.IsNull() {
		return
	}

	name := decodeName(v.Key("T").RawString())
	if prefix != "" {
		name = prefix + "." + name
	}

	if v.Key("FT").Name() != "" {
		m[name] = v
	}

	kids := v.Key("Kids")
	if kids.Kind() == pdf.Array {
		for i := 0; i < kids.Len(); i++ {
			mapFields(kids.Index(i), name, m)
		}
	}
}

// updatedFieldBody re-emits the field dictionary with a new value. A nil
// result means the write is a no-op for this field kind and value.
func updatedFieldBody(field pdf.Value, ft FieldType, value any) ([]byte, error) {
	var entries string

	switch ft {
	case Text:
		entries = " /V " + incr.PDFString(toString(value)) + "\n"
	case Checkbox:
		state := "/Off"
		if truthy(value) {
			state = "/" + onStateName(field)
		}
		entries = " /V " + state + "\n /AS " + state + "\n"
	case Radio, Dropdown, OptionList:
		s := toString(value)
		if s == "" {
			return nil, nil
		}
		if ft == Radio {
			entries = " /V /" + s + "\n /AS /" + s + "\n"
		} else {
			entries = " /V " + incr.PDFString(s) + "\n"
		}
	default:
		return nil, fmt.Errorf("field type %s is read-only", ft)
	}

	var buf bytes.Buffer
	buf.WriteString("<<\n")
	fieldPtr := field.GetPtr()
	for _, key := range field.Keys() {
		if key == "V" || key == "AS" {
			continue
		}
		fmt.Fprintf(&buf, " /%s %s\n", key, incr.SerializeMember(fieldPtr, field.Key(key)))
	}
	buf.WriteString(entries)
	buf.WriteString(">>")
	return buf.Bytes(), nil
}

// onStateName finds the checkbox's on appearance name, defaulting to Yes.
func onStateName(field pdf.Value) string {
	states := field.Key("AP").Key("N")
	if states.Kind() == pdf.Dict {
		for _, key := range states.Keys() {
			if key != "Off" {
				return key
			}
		}
	}
	return "Yes"
}

func toString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}

func truthy(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		switch v {
		case "true", "1", "yes", "on", "Yes", "On":
			return true
		}
		return false
	case int:
		return v != 0
	default:
		return false
	}
}
