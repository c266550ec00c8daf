package incr

import (
	"fmt"
	"math"
	"strings"
	"time"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// PDFString renders text as a PDF literal string. ASCII text is escaped and
// kept as PDFDocEncoded; anything else becomes UTF-16BE with a BOM.
func PDFString(text string) string {
	if !isASCII(text) {
		enc := unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewEncoder()
		res, _, err := transform.String(enc, text)
		if err != nil {
			panic(err)
		}
		return "(" + res + ")"
	}

	text = strings.ReplaceAll(text, "\\", "\\\\")
	text = strings.ReplaceAll(text, ")", "\\)")
	text = strings.ReplaceAll(text, "(", "\\(")
	text = strings.ReplaceAll(text, "\r", "\\r")
	return "(" + text + ")"
}

// PDFDateTime renders a timestamp in the D:YYYYMMDDHHmmSS+HH'mm' form.
func PDFDateTime(date time.Time) string {
	_, originalOffset := date.Zone()
	offset := originalOffset
	if offset < 0 {
		offset = -offset
	}

	offsetDuration := time.Duration(offset) * time.Second
	offsetHours := int(math.Floor(offsetDuration.Hours()))
	offsetMinutes := int(math.Floor(offsetDuration.Minutes()))
	offsetMinutes -= offsetHours * 60

	dateString := "D:" + date.Format("20060102150405")

	// The PDF timezone suffix isn't expressible with Go layout strings.
	if originalOffset < 0 {
		dateString += "-"
	} else {
		dateString += "+"
	}

	hoursFormatted := fmt.Sprintf("%d", offsetHours)
	minutesFormatted := fmt.Sprintf("%d", offsetMinutes)
	dateString += leftPad(hoursFormatted, "0", 2-len(hoursFormatted)) + "'" + leftPad(minutesFormatted, "0", 2-len(minutesFormatted)) + "'"

	return PDFString(dateString)
}

func leftPad(s string, padStr string, pLen int) string {
	if pLen <= 0 {
		return s
	}
	return strings.Repeat(padStr, pLen) + s
}

func isASCII(s string) bool {
	for _, r := range s {
		if r > '\u007F' {
			return false
		}
	}
	return true
}
