package inkform

import "github.com/inkform/inkform/errs"

// Sentinel errors re-exported from the errs package so callers match them
// with errors.Is against the session surface.
var (
	ErrInvalidDocument    = errs.ErrInvalidDocument
	ErrOversizedPayload   = errs.ErrOversizedPayload
	ErrMissingCredential  = errs.ErrMissingCredential
	ErrSigningUnavailable = errs.ErrSigningUnavailable
	ErrFieldNotFound      = errs.ErrFieldNotFound
	ErrUserCancelled      = errs.ErrUserCancelled
	ErrExportInFlight     = errs.ErrExportInFlight
	ErrDocumentSealed     = errs.ErrDocumentSealed
)
