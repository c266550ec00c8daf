package signing

import (
	"crypto"
	"encoding/asn1"
	"fmt"

	"github.com/digitorus/pkcs7"
	"golang.org/x/crypto/cryptobyte"
	cryptobyte_asn1 "golang.org/x/crypto/cryptobyte/asn1"

	"github.com/inkform/inkform/certs"
)

var hashOIDs = map[crypto.Hash]asn1.ObjectIdentifier{
	crypto.SHA1:   asn1.ObjectIdentifier([]int{1, 3, 14, 3, 2, 26}),
	crypto.SHA256: asn1.ObjectIdentifier([]int{2, 16, 840, 1, 101, 3, 4, 2, 1}),
	crypto.SHA384: asn1.ObjectIdentifier([]int{2, 16, 840, 1, 101, 3, 4, 2, 2}),
	crypto.SHA512: asn1.ObjectIdentifier([]int{2, 16, 840, 1, 101, 3, 4, 2, 3}),
}

func oidForHash(target crypto.Hash) asn1.ObjectIdentifier {
	for hash, oid := range hashOIDs {
		if hash == target {
			return oid
		}
	}
	return nil
}

// signingCertificateAttribute builds the ESS signing-certificate attribute
// binding the signature to the signer certificate: SigningCertificateV2 for
// everything but SHA-1.
func signingCertificateAttribute(bundle *certs.Bundle, digest crypto.Hash) (*pkcs7.Attribute, error) {
	hash := digest.New()
	hash.Write(bundle.Certificate.Raw)

	var b cryptobyte.Builder
	b.AddASN1(cryptobyte_asn1.SEQUENCE, func(b *cryptobyte.Builder) { // SigningCertificate
		b.AddASN1(cryptobyte_asn1.SEQUENCE, func(b *cryptobyte.Builder) { // []ESSCertIDv2
			b.AddASN1(cryptobyte_asn1.SEQUENCE, func(b *cryptobyte.Builder) { // ESSCertIDv2
				// SHA-256 is the DEFAULT AlgorithmIdentifier and is omitted.
				if digest != crypto.SHA1 && digest != crypto.SHA256 {
					b.AddASN1(cryptobyte_asn1.SEQUENCE, func(b *cryptobyte.Builder) {
						b.AddASN1ObjectIdentifier(oidForHash(digest))
					})
				}
				b.AddASN1OctetString(hash.Sum(nil))
			})
		})
	})

	der, err := b.Bytes()
	if err != nil {
		return nil, err
	}

	attr := pkcs7.Attribute{
		Type:  asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 9, 16, 2, 47}, // SigningCertificateV2
		Value: asn1.RawValue{FullBytes: der},
	}
	if digest == crypto.SHA1 {
		attr.Type = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 9, 16, 2, 12} // SigningCertificate
	}
	return &attr, nil
}

// buildPKCS7 signs the covered content and returns the detached CMS
// SignedData structure.
func buildPKCS7(content []byte, bundle *certs.Bundle, digest crypto.Hash) ([]byte, error) {
	signedData, err := pkcs7.NewSignedData(content)
	if err != nil {
		return nil, fmt.Errorf("new signed data: %w", err)
	}
	signedData.SetDigestAlgorithm(oidForHash(digest))

	essAttr, err := signingCertificateAttribute(bundle, digest)
	if err != nil {
		return nil, fmt.Errorf("signing certificate attribute: %w", err)
	}
	config := pkcs7.SignerInfoConfig{
		ExtraSignedAttributes: []pkcs7.Attribute{*essAttr},
	}

	// The chain certificates without the leaf; AddSignerChain adds the leaf.
	caChain := bundle.Chains()[0][1:]

	if err := signedData.AddSignerChain(bundle.Certificate, bundle.Signer, caChain, config); err != nil {
		return nil, fmt.Errorf("add signer chain: %w", err)
	}

	// The document carries the content; the signature must not.
	signedData.Detach()

	return signedData.Finish()
}
