package signing

import (
	"bytes"
	"crypto/x509"
	"errors"
	"testing"
	"time"

	"github.com/digitorus/pdf"
	"github.com/digitorus/pkcs7"

	"github.com/inkform/inkform/certs"
	"github.com/inkform/inkform/errs"
	"github.com/inkform/inkform/geom"
	"github.com/inkform/inkform/internal/incr"
	"github.com/inkform/inkform/internal/testpdf"
	"github.com/inkform/inkform/internal/testpki"
)

var testRect = geom.Rect{X: 100, Y: 100, W: 180, H: 60}

func testMetadata() Metadata {
	return Metadata{
		Name:     "Ada Example",
		Reason:   "Approval",
		Location: "Amsterdam",
		Date:     time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC),
	}
}

func TestSignRequiresCredential(t *testing.T) {
	cases := map[string]struct {
		bundle []byte
		pass   string
	}{
		"no_bundle":     {nil, "secret"},
		"no_passphrase": {[]byte{1, 2, 3}, ""},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			// The credential check runs before the document is even parsed.
			_, err := Sign([]byte("not a pdf"), tc.bundle, tc.pass, testMetadata(), 0, testRect)
			if !errors.Is(err, errs.ErrMissingCredential) {
				t.Errorf("missing credential accepted: %v", err)
			}
		})
	}
}

func TestSignRejectsOversizedDocument(t *testing.T) {
	big := make([]byte, incr.MaxDocumentBytes+1)
	copy(big, "%PDF-1.7\n")

	// A garbage bundle proves the ceiling is enforced before any credential
	// parsing.
	_, err := Sign(big, []byte("not a bundle"), "secret", testMetadata(), 0, testRect)
	if !errors.Is(err, errs.ErrOversizedPayload) {
		t.Errorf("oversized document accepted: %v", err)
	}
}

func TestSignRejectsBadDocument(t *testing.T) {
	id := testpki.NewIdentity(t, "Test Signer")
	bundle := id.Bundle(t, "secret")

	if _, err := Sign([]byte("not a pdf"), bundle, "secret", testMetadata(), 0, testRect); !errors.Is(err, errs.ErrInvalidDocument) {
		t.Errorf("garbage document accepted: %v", err)
	}
}

func TestSignProducesVerifiableSignature(t *testing.T) {
	id := testpki.NewIdentity(t, "Test Signer")
	bundle := id.Bundle(t, "secret")
	in := testpdf.Letter(1)

	out, err := Sign(in, bundle, "secret", testMetadata(), 0, testRect)
	if err != nil {
		t.Fatal(err)
	}

	if !bytes.HasPrefix(out, in) {
		t.Error("original bytes were modified")
	}
	if !bytes.HasSuffix(bytes.TrimRight(out, "\n"), []byte("%%EOF")) {
		t.Error("missing trailing EOF marker")
	}

	rdr, err := pdf.NewReader(bytes.NewReader(out), int64(len(out)))
	if err != nil {
		t.Fatalf("signed document does not parse: %v", err)
	}

	acro := rdr.Trailer().Key("Root").Key("AcroForm")
	if acro.Key("SigFlags").Int64() != 3 {
		t.Errorf("SigFlags = %d, want 3", acro.Key("SigFlags").Int64())
	}

	annots := rdr.Page(1).V.Key("Annots")
	if annots.Len() != 1 {
		t.Fatalf("page has %d annotations, want 1", annots.Len())
	}
	widget := annots.Index(0)
	if widget.Key("FT").Name() != "Sig" {
		t.Errorf("widget FT = %q", widget.Key("FT").Name())
	}
	if widget.Key("AP").Key("N").IsNull() {
		t.Error("widget has no appearance")
	}

	sig := widget.Key("V")
	if sig.Key("Filter").Name() != "Adobe.PPKLite" {
		t.Errorf("signature filter = %q", sig.Key("Filter").Name())
	}
	if sig.Key("SubFilter").Name() != "adbe.pkcs7.detached" {
		t.Errorf("signature subfilter = %q", sig.Key("SubFilter").Name())
	}
	if sig.Key("Name").RawString() != "Ada Example" {
		t.Errorf("signature name = %q", sig.Key("Name").RawString())
	}

	br := sig.Key("ByteRange")
	if br.Len() != 4 {
		t.Fatalf("ByteRange has %d members", br.Len())
	}
	var ranges [4]int64
	for i := range ranges {
		ranges[i] = br.Index(i).Int64()
	}
	if ranges[0] != 0 || ranges[2]+ranges[3] != int64(len(out)) {
		t.Errorf("byte ranges %v do not cover the file of %d bytes", ranges, len(out))
	}

	// Verify the CMS structure over the covered ranges.
	p7, err := pkcs7.Parse([]byte(sig.Key("Contents").RawString()))
	if err != nil {
		t.Fatalf("signature contents do not parse: %v", err)
	}
	content := append([]byte{}, out[ranges[0]:ranges[0]+ranges[1]]...)
	content = append(content, out[ranges[2]:ranges[2]+ranges[3]]...)
	p7.Content = content

	pool := x509.NewCertPool()
	pool.AddCert(id.Cert)
	if err := p7.VerifyWithChain(pool); err != nil {
		t.Errorf("signature does not verify: %v", err)
	}

	signer := p7.GetOnlySigner()
	if signer == nil || signer.Subject.CommonName != "Test Signer" {
		t.Error("signer certificate not embedded")
	}
}

func TestSignOnSecondPage(t *testing.T) {
	id := testpki.NewIdentity(t, "Test Signer")
	bundle := id.Bundle(t, "secret")

	out, err := Sign(testpdf.Letter(2), bundle, "secret", testMetadata(), 1, testRect)
	if err != nil {
		t.Fatal(err)
	}

	rdr, err := pdf.NewReader(bytes.NewReader(out), int64(len(out)))
	if err != nil {
		t.Fatal(err)
	}
	if rdr.Page(1).V.Key("Annots").Len() != 0 {
		t.Error("widget placed on the wrong page")
	}
	if rdr.Page(2).V.Key("Annots").Len() != 1 {
		t.Error("widget missing from the requested page")
	}
}

func TestSignatureMaxLengthGrowsWithChain(t *testing.T) {
	id := testpki.NewIdentity(t, "Test Signer")
	data := id.Bundle(t, "secret")
	bundle, err := certs.Load(data, "secret")
	if err != nil {
		t.Fatal(err)
	}

	small, err := signatureMaxLength(bundle, 100)
	if err != nil {
		t.Fatal(err)
	}
	large, err := signatureMaxLength(bundle, 5000)
	if err != nil {
		t.Fatal(err)
	}
	if large-small != 4900 {
		t.Errorf("base reserve not additive: %d vs %d", small, large)
	}
	if small <= 100 {
		t.Error("estimate does not account for certificate and signature")
	}
}

func TestPatchByteRangeKeepsLength(t *testing.T) {
	buf := []byte("xx" + byteRangePlaceholder + "yy")
	if err := patchByteRange(buf, 2, [4]int64{0, 1234, 5678, 42}); err != nil {
		t.Fatal(err)
	}
	if len(buf) != 2+len(byteRangePlaceholder)+2 {
		t.Error("patch changed the buffer length")
	}
	if !bytes.HasPrefix(buf[2:], []byte("/ByteRange[0 1234 5678 42]")) {
		t.Errorf("patched range = %q", buf)
	}
	if !bytes.HasSuffix(buf, []byte("yy")) {
		t.Error("bytes after the placeholder were clobbered")
	}
}
