package incr

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/digitorus/pdf"
)

// SerializeValue renders a parsed value's own body back into PDF syntax.
// Nested members go through SerializeMember so shared objects stay shared.
func SerializeValue(v pdf.Value) string {
	switch v.Kind() {
	case pdf.Null:
		return "null"
	case pdf.Bool:
		if v.Bool() {
			return "true"
		}
		return "false"
	case pdf.Integer:
		return strconv.FormatInt(v.Int64(), 10)
	case pdf.Real:
		return strconv.FormatFloat(v.Float64(), 'f', -1, 64)
	case pdf.String:
		return PDFString(v.RawString())
	case pdf.Name:
		return "/" + v.Name()
	case pdf.Array:
		parent := v.GetPtr()
		var b strings.Builder
		b.WriteString("[")
		for i := 0; i < v.Len(); i++ {
			b.WriteString(" ")
			b.WriteString(SerializeMember(parent, v.Index(i)))
		}
		b.WriteString(" ]")
		return b.String()
	case pdf.Dict:
		parent := v.GetPtr()
		var b strings.Builder
		b.WriteString("<<")
		for _, key := range v.Keys() {
			fmt.Fprintf(&b, " /%s %s", key, SerializeMember(parent, v.Key(key)))
		}
		b.WriteString(" >>")
		return b.String()
	default:
		// Direct streams cannot be inlined; they are always indirect in
		// practice and handled by SerializeMember.
		return "null"
	}
}

// SerializeMember renders one member of a containing object. The reader
// stamps direct members with the containing object's pointer, so a member is
// an indirect reference only when its pointer names a different object.
func SerializeMember(parent pdf.Ptr, v pdf.Value) string {
	if ptr := v.GetPtr(); ptr.GetID() > 0 && ptr.GetID() != parent.GetID() {
		return fmt.Sprintf("%d %d R", ptr.GetID(), ptr.GetGen())
	}
	return SerializeValue(v)
}
