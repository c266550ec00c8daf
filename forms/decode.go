package forms

import (
	"golang.org/x/text/encoding/unicode"
)

// decodeName turns a raw PDF text string into UTF-8. Strings written by the
// updater carry a UTF-16BE byte order mark; everything else is treated as
// PDFDocEncoding, which matches ASCII for the names we produce.
func decodeName(raw string) string {
	if len(raw) >= 2 && raw[0] == 0xFE && raw[1] == 0xFF {
		dec := unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM).NewDecoder()
		if out, err := dec.String(raw); err == nil {
			return out
		}
	}
	return raw
}
