package inkform

import (
	"crypto/x509"

	"github.com/inkform/inkform/certs"
)

// LoadCertificate validates a PKCS#12 credential against its passphrase and
// keeps it for signing exports. The leaf certificate is returned so callers
// can show who will sign.
func (s *Session) LoadCertificate(p12 []byte, passphrase string) (*x509.Certificate, error) {
	bundle, err := certs.Load(p12, passphrase)
	if err != nil {
		return nil, err
	}
	s.bundleData = append([]byte(nil), p12...)
	s.passphrase = passphrase
	return bundle.Certificate, nil
}

// CreateCertificate generates a fresh self-signed credential and loads it
// into the session. Zero validYears falls back to the configured lifetime.
func (s *Session) CreateCertificate(subject certs.Subject, passphrase string, validYears int) ([]byte, error) {
	if validYears <= 0 {
		validYears = s.cfg.CertValidYears
	}
	data, err := certs.Create(subject, passphrase, validYears)
	if err != nil {
		return nil, err
	}
	if _, err := s.LoadCertificate(data, passphrase); err != nil {
		return nil, err
	}
	return data, nil
}

// HasCertificate reports whether a signing credential is loaded.
func (s *Session) HasCertificate() bool {
	return len(s.bundleData) > 0
}
