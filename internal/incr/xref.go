package incr

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"encoding/hex"
	"fmt"
)

// writeIncrXrefTable writes the incremental cross-reference table: one
// single-entry subsection per updated object, then one subsection for the
// contiguous run of new objects.
func (u *Updater) writeIncrXrefTable() error {
	if _, err := u.buf.Write([]byte("xref\n")); err != nil {
		return fmt.Errorf("write xref header: %w", err)
	}

	for _, entry := range u.updatedEntries {
		if _, err := fmt.Fprintf(u.buf, "%d 1\n", entry.ID); err != nil {
			return fmt.Errorf("write updated xref subsection: %w", err)
		}
		if _, err := fmt.Fprintf(u.buf, "%010d 00000 n\r\n", entry.Offset); err != nil {
			return fmt.Errorf("write updated xref entry: %w", err)
		}
	}

	if len(u.newEntries) > 0 {
		if _, err := fmt.Fprintf(u.buf, "%d %d\n", u.newEntries[0].ID, len(u.newEntries)); err != nil {
			return fmt.Errorf("write new xref subsection: %w", err)
		}
		for _, entry := range u.newEntries {
			if _, err := fmt.Fprintf(u.buf, "%010d 00000 n\r\n", entry.Offset); err != nil {
				return fmt.Errorf("write new xref entry: %w", err)
			}
		}
	}

	return nil
}

// writeTrailer writes a fresh trailer dictionary chained to the previous
// xref section via /Prev.
func (u *Updater) writeTrailer(rootID uint32, xrefStart int64) error {
	var b bytes.Buffer

	size := u.reader.XrefInformation.ItemCount + int64(len(u.newEntries))
	b.WriteString("trailer\n<<\n")
	fmt.Fprintf(&b, "  /Size %d\n", size)
	fmt.Fprintf(&b, "  /Root %s\n", u.rootRef(rootID))
	fmt.Fprintf(&b, "  /Prev %d\n", u.reader.XrefInformation.StartPos)

	trailer := u.reader.Trailer()
	if info := trailer.Key("Info"); !info.IsNull() {
		if ptr := info.GetPtr(); ptr.GetID() > 0 {
			fmt.Fprintf(&b, "  /Info %d %d R\n", ptr.GetID(), ptr.GetGen())
		}
	}
	if id := trailer.Key("ID"); !id.IsNull() && id.Len() >= 2 {
		id0 := hex.EncodeToString([]byte(id.Index(0).RawString()))
		id1 := hex.EncodeToString([]byte(id.Index(1).RawString()))
		fmt.Fprintf(&b, "  /ID [<%s><%s>]\n", id0, id1)
	}

	b.WriteString(">>\n")
	fmt.Fprintf(&b, "startxref\n%d\n%%%%EOF\n", xrefStart)

	_, err := u.buf.Write(b.Bytes())
	return err
}

// writeXrefStream appends a cross-reference stream object covering the
// updated entries, the new entries, and the stream object itself. It returns
// the object's byte offset for startxref.
func (u *Updater) writeXrefStream(rootID uint32) (int64, error) {
	// Reserve the stream's own object number and offset up front so its
	// entry can be part of the encoded data.
	streamID := u.nextID
	u.nextID++
	offset := u.Len()
	u.newEntries = append(u.newEntries, xrefEntry{ID: streamID, Offset: offset})

	var entries bytes.Buffer
	for _, entry := range u.updatedEntries {
		writeXrefStreamLine(&entries, 1, entry.Offset, 0)
	}
	for _, entry := range u.newEntries {
		writeXrefStreamLine(&entries, 1, entry.Offset, 0)
	}

	streamBytes, err := flate(entries.Bytes())
	if err != nil {
		return 0, fmt.Errorf("encode xref stream: %w", err)
	}

	var obj bytes.Buffer
	obj.WriteString("<< /Type /XRef\n")
	fmt.Fprintf(&obj, "  /Length %d\n", len(streamBytes))
	obj.WriteString("  /Filter /FlateDecode\n")
	obj.WriteString("  /W [ 1 4 1 ]\n")
	fmt.Fprintf(&obj, "  /Prev %d\n", u.reader.XrefInformation.StartPos)
	fmt.Fprintf(&obj, "  /Size %d\n", u.reader.XrefInformation.ItemCount+int64(len(u.newEntries)))

	obj.WriteString("  /Index [")
	for _, entry := range u.updatedEntries {
		fmt.Fprintf(&obj, " %d 1", entry.ID)
	}
	fmt.Fprintf(&obj, " %d %d", u.newEntries[0].ID, len(u.newEntries))
	obj.WriteString(" ]\n")

	fmt.Fprintf(&obj, "  /Root %s\n", u.rootRef(rootID))

	if id := u.reader.Trailer().Key("ID"); !id.IsNull() && id.Len() >= 2 {
		id0 := hex.EncodeToString([]byte(id.Index(0).RawString()))
		id1 := hex.EncodeToString([]byte(id.Index(1).RawString()))
		fmt.Fprintf(&obj, "  /ID [<%s><%s>]\n", id0, id1)
	}

	obj.WriteString(">>\nstream\n")
	obj.Write(streamBytes)
	obj.WriteString("\nendstream")

	if err := u.writeObject(streamID, obj.Bytes()); err != nil {
		return 0, err
	}
	return offset, nil
}

// writeXrefStreamLine writes one W=[1 4 1] entry.
func writeXrefStreamLine(b *bytes.Buffer, xreftype byte, offset int64, gen byte) {
	b.WriteByte(xreftype)

	offsetBytes := make([]byte, 4)
	binary.BigEndian.PutUint32(offsetBytes, uint32(offset))
	b.Write(offsetBytes)

	b.WriteByte(gen)
}

func flate(data []byte) ([]byte, error) {
	var b bytes.Buffer
	w := zlib.NewWriter(&b)
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}
