// Package signing applies a PAdES-style detached PKCS#7 signature to a
// document as one incremental update: a signature dictionary with a byte
// range placeholder, a visible widget annotation, and the CMS structure
// spliced into the reserved window after the final layout is known.
package signing

import (
	"bytes"
	"crypto"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/digitorus/pkcs7"

	"github.com/inkform/inkform/certs"
	"github.com/inkform/inkform/errs"
	"github.com/inkform/inkform/geom"
	"github.com/inkform/inkform/internal/incr"
)

const byteRangePlaceholder = "/ByteRange[0 ********** ********** **********]"

// digestAlgorithm is fixed for all signatures this package produces.
const digestAlgorithm = crypto.SHA256

// maxRetries bounds the grow-and-retry loop when a produced signature turns
// out larger than its reserved window.
const maxRetries = 3

// Metadata describes the signing act as recorded in the signature dictionary
// and drawn in the widget appearance.
type Metadata struct {
	Name     string
	Reason   string
	Location string
	Contact  string
	// Date defaults to the current time when zero.
	Date time.Time
}

// Sign signs the document with the PKCS#12 credential and places a visible
// signature widget at rect (PDF user space) on the given page. The returned
// bytes are the fully signed document.
func Sign(data, bundleData []byte, passphrase string, meta Metadata, page int, rect geom.Rect) ([]byte, error) {
	if len(bundleData) == 0 || passphrase == "" {
		return nil, fmt.Errorf("signing credential required: %w", errs.ErrMissingCredential)
	}
	// Reject oversized input before any credential parsing or signing work.
	if int64(len(data)) > incr.MaxDocumentBytes {
		return nil, fmt.Errorf("document is %d bytes: %w", len(data), errs.ErrOversizedPayload)
	}

	bundle, err := certs.Load(bundleData, passphrase)
	if err != nil {
		return nil, err
	}
	if err := validateSignerMatch(bundle.Signer, bundle.Certificate); err != nil {
		return nil, fmt.Errorf("%v: %w", err, errs.ErrSigningUnavailable)
	}

	if meta.Date.IsZero() {
		meta.Date = time.Now()
	}

	base := uint32(hex.EncodedLen(512))
	for attempt := 0; attempt <= maxRetries; attempt++ {
		out, grow, err := signOnce(data, bundle, meta, page, rect, base)
		if err != nil {
			return nil, err
		}
		if grow == 0 {
			return out, nil
		}
		base += grow
	}
	return nil, fmt.Errorf("signature does not fit its reserved window: %w", errs.ErrSigningUnavailable)
}

// signOnce performs one complete signing pass with the given base reserve.
// A non-zero grow return means the produced signature needed more space and
// the caller should retry with the base increased by that amount.
func signOnce(data []byte, bundle *certs.Bundle, meta Metadata, page int, rect geom.Rect, base uint32) (out []byte, grow uint32, err error) {
	u, err := incr.NewUpdater(data)
	if err != nil {
		return nil, 0, err
	}

	maxLen, err := signatureMaxLength(bundle, base)
	if err != nil {
		return nil, 0, err
	}

	body, brRel, contentsRel := signaturePlaceholder(meta, maxLen)
	sigID, err := u.AddObject(body)
	if err != nil {
		return nil, 0, err
	}
	bodyOffset, _ := u.ObjectBodyOffset(sigID)
	brStart := bodyOffset + brRel
	contentsStart := bodyOffset + contentsRel // offset of the opening "<"

	appearanceID, err := addAppearance(u, rect, meta)
	if err != nil {
		return nil, 0, err
	}

	pageV, err := u.FindPage(page)
	if err != nil {
		return nil, 0, err
	}
	pagePtr := pageV.GetPtr()
	widgetID, err := addWidget(u, rect, sigID, appearanceID, pagePtr.GetID(), pagePtr.GetGen())
	if err != nil {
		return nil, 0, err
	}
	if err := u.RewritePage(pageV, incr.PageUpdate{AddAnnots: []uint32{widgetID}}); err != nil {
		return nil, 0, err
	}

	rootID, err := u.AddCatalog(incr.CatalogOptions{
		ExtraFields: []uint32{widgetID},
		SigFlags:    3, // SignaturesExist | AppendOnly
	})
	if err != nil {
		return nil, 0, err
	}

	out, err = u.Finalize(rootID)
	if err != nil {
		return nil, 0, err
	}

	// The byte ranges cover everything except the hex window between the
	// angle brackets of /Contents.
	afterContents := contentsStart + int64(maxLen) + 2
	byteRange := [4]int64{0, contentsStart, afterContents, int64(len(out)) - afterContents}
	if err := patchByteRange(out, brStart, byteRange); err != nil {
		return nil, 0, err
	}

	signed := make([]byte, 0, byteRange[1]+byteRange[3])
	signed = append(signed, out[byteRange[0]:byteRange[0]+byteRange[1]]...)
	signed = append(signed, out[byteRange[2]:byteRange[2]+byteRange[3]]...)

	signature, err := buildPKCS7(signed, bundle, digestAlgorithm)
	if err != nil {
		return nil, 0, err
	}

	hexSig := make([]byte, hex.EncodedLen(len(signature)))
	hex.Encode(hexSig, signature)
	if uint32(len(hexSig)) > maxLen {
		return nil, uint32(len(hexSig)) - maxLen + 1, nil
	}
	copy(out[contentsStart+1:], hexSig)

	return out, 0, nil
}

// signaturePlaceholder builds the signature dictionary body with a reserved
// zero-filled contents window. The returned offsets locate the byte range
// placeholder and the "<" of /Contents relative to the body start.
func signaturePlaceholder(meta Metadata, maxLen uint32) (body []byte, brRel, contentsRel int64) {
	var buf bytes.Buffer
	buf.WriteString("<< /Type /Sig")
	buf.WriteString(" /Filter /Adobe.PPKLite")
	buf.WriteString(" /SubFilter /adbe.pkcs7.detached")

	buf.WriteString(" ")
	brRel = int64(buf.Len())
	buf.WriteString(byteRangePlaceholder)

	buf.WriteString(" /Contents")
	contentsRel = int64(buf.Len())
	buf.WriteString("<")
	buf.Write(bytes.Repeat([]byte("0"), int(maxLen)))
	buf.WriteString(">")

	if meta.Name != "" {
		buf.WriteString(" /Name " + incr.PDFString(meta.Name))
	}
	if meta.Location != "" {
		buf.WriteString(" /Location " + incr.PDFString(meta.Location))
	}
	if meta.Reason != "" {
		buf.WriteString(" /Reason " + incr.PDFString(meta.Reason))
	}
	if meta.Contact != "" {
		buf.WriteString(" /ContactInfo " + incr.PDFString(meta.Contact))
	}
	buf.WriteString(" /M " + incr.PDFDateTime(meta.Date))
	buf.WriteString(" >>")

	return buf.Bytes(), brRel, contentsRel
}

// patchByteRange overwrites the placeholder with the real values, padded with
// spaces so the document layout is unchanged.
func patchByteRange(out []byte, at int64, br [4]int64) error {
	rendered := fmt.Sprintf("/ByteRange[%d %d %d %d]", br[0], br[1], br[2], br[3])
	if len(rendered) > len(byteRangePlaceholder) {
		return fmt.Errorf("byte range %v exceeds placeholder size", br)
	}
	rendered += strings.Repeat(" ", len(byteRangePlaceholder)-len(rendered))
	copy(out[at:], rendered)
	return nil
}

// signatureMaxLength estimates the hex-encoded size of the CMS structure:
// the base reserve plus the signature itself, two digests, and the DER of
// every certificate the structure will carry.
func signatureMaxLength(bundle *certs.Bundle, base uint32) (uint32, error) {
	maxLen := base

	sigSize, err := publicKeySignatureSize(bundle.Certificate.PublicKey)
	if err != nil {
		sigSize = defaultSignatureSize
	}
	maxLen += uint32(hex.EncodedLen(sigSize))
	maxLen += uint32(hex.EncodedLen(digestAlgorithm.Size() * 2))

	degenerated, err := pkcs7.DegenerateCertificate(bundle.Certificate.Raw)
	if err != nil {
		return 0, fmt.Errorf("degenerate certificate: %w", err)
	}
	maxLen += uint32(hex.EncodedLen(len(degenerated)))

	// AddSignerChain embeds the raw issuer once more.
	maxLen += uint32(hex.EncodedLen(len(bundle.Certificate.RawIssuer)))

	for _, cert := range bundle.CACerts {
		degenerated, err := pkcs7.DegenerateCertificate(cert.Raw)
		if err != nil {
			return 0, fmt.Errorf("degenerate chain certificate: %w", err)
		}
		maxLen += uint32(hex.EncodedLen(len(degenerated)))
	}

	return maxLen, nil
}
