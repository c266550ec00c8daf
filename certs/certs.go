// Package certs creates and loads the PKCS#12 certificate bundles used for
// signing.
package certs

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"fmt"
	"math/big"
	"time"

	pkcs12 "software.sslmate.com/src/go-pkcs12"

	"github.com/inkform/inkform/errs"
)

// MaxBundleBytes is the ceiling for a certificate bundle payload.
const MaxBundleBytes = 5 << 20

// Subject describes the holder of a self-signed certificate.
type Subject struct {
	CommonName   string
	Organization string
	OrgUnit      string
	Country      string
	Province     string
	Locality     string
	Email        string
}

// Bundle is a decoded signing credential.
type Bundle struct {
	Certificate *x509.Certificate
	Signer      crypto.Signer
	CACerts     []*x509.Certificate
}

// Chains returns the certificate chains in the layout the signing pipeline
// expects: leaf first, CA certificates after.
func (b *Bundle) Chains() [][]*x509.Certificate {
	chain := append([]*x509.Certificate{b.Certificate}, b.CACerts...)
	return [][]*x509.Certificate{chain}
}

// Create generates a self-signed RSA certificate for the subject and wraps
// it with its key in a passphrase-protected PKCS#12 container. The
// passphrase is required before any key material is generated.
func Create(subject Subject, passphrase string, validYears int) ([]byte, error) {
	if passphrase == "" {
		return nil, fmt.Errorf("bundle passphrase required: %w", errs.ErrMissingCredential)
	}
	if subject.CommonName == "" {
		return nil, fmt.Errorf("subject common name required")
	}
	if validYears <= 0 {
		validYears = 1
	}

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}

	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return nil, fmt.Errorf("generate serial: %w", err)
	}

	name := pkix.Name{CommonName: subject.CommonName}
	if subject.Organization != "" {
		name.Organization = []string{subject.Organization}
	}
	if subject.OrgUnit != "" {
		name.OrganizationalUnit = []string{subject.OrgUnit}
	}
	if subject.Country != "" {
		name.Country = []string{subject.Country}
	}
	if subject.Province != "" {
		name.Province = []string{subject.Province}
	}
	if subject.Locality != "" {
		name.Locality = []string{subject.Locality}
	}

	template := &x509.Certificate{
		SerialNumber:          serial,
		Subject:               name,
		NotBefore:             time.Now().Add(-5 * time.Minute),
		NotAfter:              time.Now().AddDate(validYears, 0, 0),
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageContentCommitment,
		BasicConstraintsValid: true,
	}
	if subject.Email != "" {
		template.EmailAddresses = []string{subject.Email}
	}

	certBytes, err := x509.CreateCertificate(rand.Reader, template, template, key.Public(), key)
	if err != nil {
		return nil, fmt.Errorf("create certificate: %w", err)
	}
	cert, err := x509.ParseCertificate(certBytes)
	if err != nil {
		return nil, fmt.Errorf("parse created certificate: %w", err)
	}

	data, err := pkcs12.Modern.Encode(key, cert, nil, passphrase)
	if err != nil {
		return nil, fmt.Errorf("encode bundle: %w", err)
	}
	return data, nil
}

// Load decodes a PKCS#12 bundle. An empty payload or passphrase is a missing
// credential; a bundle without a usable private key cannot sign.
func Load(data []byte, passphrase string) (*Bundle, error) {
	if len(data) == 0 || passphrase == "" {
		return nil, fmt.Errorf("bundle and passphrase required: %w", errs.ErrMissingCredential)
	}
	if int64(len(data)) > MaxBundleBytes {
		return nil, fmt.Errorf("bundle is %d bytes: %w", len(data), errs.ErrOversizedPayload)
	}

	key, cert, caCerts, err := pkcs12.DecodeChain(data, passphrase)
	if err != nil {
		return nil, fmt.Errorf("decode bundle: %w", err)
	}
	signer, ok := key.(crypto.Signer)
	if !ok || signer == nil {
		return nil, fmt.Errorf("bundle key cannot sign: %w", errs.ErrSigningUnavailable)
	}

	return &Bundle{Certificate: cert, Signer: signer, CACerts: caCerts}, nil
}
