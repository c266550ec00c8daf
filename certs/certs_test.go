package certs

import (
	"errors"
	"testing"

	"github.com/inkform/inkform/errs"
)

func TestCreateRequiresPassphrase(t *testing.T) {
	_, err := Create(Subject{CommonName: "Test Signer"}, "", 1)
	if !errors.Is(err, errs.ErrMissingCredential) {
		t.Errorf("empty passphrase accepted: %v", err)
	}
}

func TestCreateRequiresCommonName(t *testing.T) {
	if _, err := Create(Subject{}, "secret", 1); err == nil {
		t.Error("empty subject accepted")
	}
}

func TestCreateLoadRoundTrip(t *testing.T) {
	subject := Subject{
		CommonName:   "Ada Example",
		Organization: "Example Org",
		Country:      "NL",
		Email:        "ada@example.com",
	}

	data, err := Create(subject, "secret", 2)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	bundle, err := Load(data, "secret")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if bundle.Certificate.Subject.CommonName != "Ada Example" {
		t.Errorf("common name = %q", bundle.Certificate.Subject.CommonName)
	}
	if len(bundle.Certificate.EmailAddresses) != 1 || bundle.Certificate.EmailAddresses[0] != "ada@example.com" {
		t.Errorf("email not carried: %v", bundle.Certificate.EmailAddresses)
	}
	if bundle.Signer == nil {
		t.Error("bundle has no signer")
	}

	chains := bundle.Chains()
	if len(chains) != 1 || len(chains[0]) != 1 || chains[0][0] != bundle.Certificate {
		t.Error("self-signed chain layout wrong")
	}
}

func TestLoadWrongPassphrase(t *testing.T) {
	data, err := Create(Subject{CommonName: "Test"}, "right", 1)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Load(data, "wrong"); err == nil {
		t.Error("wrong passphrase accepted")
	}
}

func TestLoadMissingInputs(t *testing.T) {
	if _, err := Load(nil, "secret"); !errors.Is(err, errs.ErrMissingCredential) {
		t.Errorf("empty bundle: %v", err)
	}
	if _, err := Load([]byte{1, 2, 3}, ""); !errors.Is(err, errs.ErrMissingCredential) {
		t.Errorf("empty passphrase: %v", err)
	}
}

func TestLoadOversizedBundle(t *testing.T) {
	big := make([]byte, MaxBundleBytes+1)
	if _, err := Load(big, "secret"); !errors.Is(err, errs.ErrOversizedPayload) {
		t.Errorf("oversized bundle: %v", err)
	}
}
