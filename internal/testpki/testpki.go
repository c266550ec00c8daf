// Package testpki generates throwaway signing credentials for tests.
package testpki

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"testing"
	"time"

	pkcs12 "software.sslmate.com/src/go-pkcs12"
)

// Identity is a self-signed certificate with its private key.
type Identity struct {
	Key  crypto.Signer
	Cert *x509.Certificate
}

// NewIdentity creates a fresh RSA self-signed identity.
func NewIdentity(t *testing.T, commonName string) *Identity {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}

	serial, _ := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	template := &x509.Certificate{
		SerialNumber: serial,
		Subject: pkix.Name{
			CommonName:   commonName,
			Organization: []string{"InkForm Test Org"},
		},
		NotBefore:             time.Now().Add(-1 * time.Hour),
		NotAfter:              time.Now().Add(24 * time.Hour),
		KeyUsage:              x509.KeyUsageDigitalSignature,
		BasicConstraintsValid: true,
	}

	certBytes, err := x509.CreateCertificate(rand.Reader, template, template, key.Public(), key)
	if err != nil {
		t.Fatalf("create certificate: %v", err)
	}
	cert, err := x509.ParseCertificate(certBytes)
	if err != nil {
		t.Fatalf("parse certificate: %v", err)
	}

	return &Identity{Key: key, Cert: cert}
}

// Bundle encodes the identity as a PKCS#12 container.
func (id *Identity) Bundle(t *testing.T, passphrase string) []byte {
	t.Helper()
	data, err := pkcs12.Modern.Encode(id.Key, id.Cert, nil, passphrase)
	if err != nil {
		t.Fatalf("encode bundle: %v", err)
	}
	return data
}
