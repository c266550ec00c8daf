package inkform

import (
	"context"
	"fmt"

	"github.com/inkform/inkform/compose"
	"github.com/inkform/inkform/errs"
	"github.com/inkform/inkform/logging"
	"github.com/inkform/inkform/signing"
)

// ExportOptions controls the export flow.
type ExportOptions struct {
	// Sign runs the signing pipeline when a signature draft is present.
	Sign bool
	// VisualSignature stamps signature draft images into the page content.
	VisualSignature bool
	// Metadata for the signature dictionary. Empty Reason and Location fall
	// back to the session configuration.
	Metadata signing.Metadata
}

// Export composes all drafts into the document, optionally signs it, and
// returns the final bytes. On success the drafts are cleared and the session
// document advances to the result; a signed export seals the session. On any
// failure the document and drafts are left untouched so the user can retry.
// A second export while one is in flight fails with ErrExportInFlight.
func (s *Session) Export(ctx context.Context, opts ExportOptions) ([]byte, error) {
	if s.exporting {
		return nil, errs.ErrExportInFlight
	}
	if s.document == nil {
		return nil, fmt.Errorf("no document loaded: %w", errs.ErrInvalidDocument)
	}
	s.exporting = true
	defer func() { s.exporting = false }()

	composed, anchor, err := compose.Compose(ctx, s.document, s.store.List(), s.viewports, compose.Options{
		FontFamily:      s.cfg.FontFamily,
		FontSize:        s.cfg.FontSize,
		LineHeight:      s.cfg.LineHeight,
		VisualSignature: opts.VisualSignature,
	})
	if err != nil {
		return nil, err
	}

	result := composed
	signed := false
	if opts.Sign && anchor != nil {
		if len(s.bundleData) == 0 {
			return nil, fmt.Errorf("no certificate loaded for signing: %w", errs.ErrMissingCredential)
		}

		meta := opts.Metadata
		if meta.Reason == "" {
			meta.Reason = s.cfg.SignReason
		}
		if meta.Location == "" {
			meta.Location = s.cfg.SignLocation
		}

		result, err = signing.Sign(result, s.bundleData, s.passphrase, meta, anchor.Page, anchor.Rect)
		if err != nil {
			return nil, err
		}
		signed = true
	}

	s.document = result
	s.store.Clear()
	if signed {
		s.sealed = true
	}

	logging.Logger().Debug("export finished",
		"bytes", len(result), "signed", signed)
	return append([]byte(nil), result...), nil
}
