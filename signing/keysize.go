package signing

import (
	"bytes"
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"crypto/x509"
	"errors"
	"fmt"
)

var errUnsupportedKey = errors.New("unsupported key type")

// publicKeySignatureSize returns the maximum size in bytes of a signature
// produced with the key. The certificate's own SignatureAlgorithm is how the
// CA signed it, not what this key produces, so it is not consulted.
func publicKeySignatureSize(pub crypto.PublicKey) (int, error) {
	switch k := pub.(type) {
	case *rsa.PublicKey:
		if k.N == nil {
			return 0, fmt.Errorf("%w: RSA key has nil modulus", errUnsupportedKey)
		}
		return k.Size(), nil

	case *ecdsa.PublicKey:
		if k.Curve == nil {
			return 0, fmt.Errorf("%w: ECDSA key has nil curve", errUnsupportedKey)
		}
		// DER SEQUENCE of two INTEGERs: two coordinates plus tag, length
		// and padding overhead.
		coordSize := (k.Curve.Params().BitSize + 7) / 8
		return 2*coordSize + 9, nil

	case ed25519.PublicKey:
		return ed25519.SignatureSize, nil

	default:
		return 0, fmt.Errorf("%w: %T", errUnsupportedKey, pub)
	}
}

// defaultSignatureSize is the fallback for unrecognized key types.
const defaultSignatureSize = 8192

// validateSignerMatch checks that the signer's public key is the one in the
// certificate.
func validateSignerMatch(signer crypto.Signer, cert *x509.Certificate) error {
	signerPub, err := x509.MarshalPKIXPublicKey(signer.Public())
	if err != nil {
		return fmt.Errorf("marshal signer public key: %w", err)
	}
	certPub, err := x509.MarshalPKIXPublicKey(cert.PublicKey)
	if err != nil {
		return fmt.Errorf("marshal certificate public key: %w", err)
	}
	if !bytes.Equal(signerPub, certPub) {
		return errors.New("signer public key does not match certificate")
	}
	return nil
}
