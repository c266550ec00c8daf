// Package incr appends incremental updates to an existing PDF: new and
// replaced objects, a cross-reference section matching the original's type,
// and a chained trailer. The original bytes are never modified, which keeps
// previously applied signatures intact.
package incr

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/digitorus/pdf"
	"github.com/mattetti/filebuffer"

	"github.com/inkform/inkform/errs"
)

// MaxDocumentBytes is the ceiling for a PDF payload, enforced before any
// parsing happens.
const MaxDocumentBytes = 50 << 20

type xrefEntry struct {
	ID     uint32
	Offset int64
}

// Updater accumulates one incremental update on top of a parsed document.
type Updater struct {
	reader *pdf.Reader
	buf    *filebuffer.Buffer

	nextID         uint32
	newEntries     []xrefEntry
	updatedEntries []xrefEntry
}

// NewUpdater parses the document and prepares an output buffer seeded with
// the original bytes.
func NewUpdater(data []byte) (*Updater, error) {
	if int64(len(data)) > MaxDocumentBytes {
		return nil, fmt.Errorf("document is %d bytes: %w", len(data), errs.ErrOversizedPayload)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		return nil, fmt.Errorf("missing PDF header: %w", errs.ErrInvalidDocument)
	}

	rdr, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("parse document: %w: %v", errs.ErrInvalidDocument, err)
	}

	buf := filebuffer.New(nil)
	if _, err := buf.Write(data); err != nil {
		return nil, err
	}
	// The update needs to start on a fresh line after the previous %%EOF.
	if data[len(data)-1] != '\n' {
		if _, err := buf.Write([]byte("\n")); err != nil {
			return nil, err
		}
	}

	return &Updater{
		reader: rdr,
		buf:    buf,
		nextID: uint32(rdr.XrefInformation.ItemCount),
	}, nil
}

// Reader exposes the parsed original document.
func (u *Updater) Reader() *pdf.Reader {
	return u.reader
}

// NextID returns the object number the next AddObject call will use.
func (u *Updater) NextID() uint32 {
	return u.nextID
}

// Len returns the current output size in bytes.
func (u *Updater) Len() int64 {
	return int64(u.buf.Buff.Len())
}

// AddObject appends a new indirect object and returns its object number.
// The body is the object content without the "N 0 obj" wrapper.
func (u *Updater) AddObject(body []byte) (uint32, error) {
	id := u.nextID
	u.nextID++
	offset := u.Len()

	if err := u.writeObject(id, body); err != nil {
		return 0, err
	}
	u.newEntries = append(u.newEntries, xrefEntry{ID: id, Offset: offset})
	return id, nil
}

// UpdateObject appends a replacement body for an existing object. The xref
// section will point the object number at the new copy.
func (u *Updater) UpdateObject(id uint32, body []byte) error {
	if id == 0 || id >= uint32(u.reader.XrefInformation.ItemCount) {
		return fmt.Errorf("object %d not present in original document", id)
	}
	offset := u.Len()
	if err := u.writeObject(id, body); err != nil {
		return err
	}
	u.updatedEntries = append(u.updatedEntries, xrefEntry{ID: id, Offset: offset})
	return nil
}

// ObjectBodyOffset returns the absolute offset of the body of an object
// written by this updater, i.e. just past its "N 0 obj\n" header.
func (u *Updater) ObjectBodyOffset(id uint32) (int64, bool) {
	for _, lists := range [2][]xrefEntry{u.newEntries, u.updatedEntries} {
		for _, e := range lists {
			if e.ID == id {
				header := strconv.FormatUint(uint64(id), 10) + " 0 obj\n"
				return e.Offset + int64(len(header)), true
			}
		}
	}
	return 0, false
}

func (u *Updater) writeObject(id uint32, body []byte) error {
	if _, err := fmt.Fprintf(u.buf, "%d 0 obj\n", id); err != nil {
		return err
	}
	if _, err := u.buf.Write(bytes.TrimRight(body, "\n")); err != nil {
		return err
	}
	if _, err := u.buf.Write([]byte("\nendobj\n")); err != nil {
		return err
	}
	return nil
}

// Finalize writes the cross-reference section and trailer and returns the
// whole updated document. rootID selects a replacement catalog object; zero
// keeps the original catalog. The updater must not be reused afterwards.
func (u *Updater) Finalize(rootID uint32) ([]byte, error) {
	switch u.reader.XrefInformation.Type {
	case "table":
		xrefStart := u.Len()
		if err := u.writeIncrXrefTable(); err != nil {
			return nil, err
		}
		if err := u.writeTrailer(rootID, xrefStart); err != nil {
			return nil, err
		}
	case "stream":
		xrefStart, err := u.writeXrefStream(rootID)
		if err != nil {
			return nil, err
		}
		if _, err := fmt.Fprintf(u.buf, "startxref\n%d\n%%%%EOF\n", xrefStart); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown xref type %q", u.reader.XrefInformation.Type)
	}

	return u.buf.Buff.Bytes(), nil
}

func (u *Updater) rootRef(rootID uint32) string {
	if rootID != 0 {
		return fmt.Sprintf("%d 0 R", rootID)
	}
	ptr := u.reader.Trailer().Key("Root").GetPtr()
	return fmt.Sprintf("%d %d R", ptr.GetID(), ptr.GetGen())
}
