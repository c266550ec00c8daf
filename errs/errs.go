// Package errs defines the error kinds shared across the editing, form, and
// signing packages. Callers classify failures with errors.Is against these
// sentinels; packages wrap them with fmt.Errorf("...: %w", ...) to add detail.
package errs

import "errors"

var (
	// ErrInvalidDocument indicates the payload is not a usable PDF, either on
	// load or after a composition step corrupted the working bytes.
	ErrInvalidDocument = errors.New("invalid PDF document")

	// ErrOversizedPayload indicates a document or certificate bundle above
	// the accepted size ceiling.
	ErrOversizedPayload = errors.New("payload exceeds size ceiling")

	// ErrMissingCredential indicates a signing attempt without a certificate
	// bundle or passphrase.
	ErrMissingCredential = errors.New("missing certificate or passphrase")

	// ErrSigningUnavailable indicates the loaded bundle cannot produce
	// signatures, for example because it carries no private key.
	ErrSigningUnavailable = errors.New("signing unavailable")

	// ErrFieldNotFound indicates a form field name that does not exist in the
	// document. The form bridge absorbs it into a no-op at its surface.
	ErrFieldNotFound = errors.New("form field not found")

	// ErrUserCancelled indicates the user aborted an interactive flow. It is
	// a silent outcome, not a failure to report.
	ErrUserCancelled = errors.New("cancelled by user")

	// ErrExportInFlight indicates an export was requested while a previous
	// export on the same session had not finished.
	ErrExportInFlight = errors.New("export already in progress")

	// ErrDocumentSealed indicates an edit attempt on a document that has been
	// signed in this session.
	ErrDocumentSealed = errors.New("document is sealed by a signature")
)
