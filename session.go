// Package inkform composes visual edits onto a PDF and signs the result.
//
// A Session owns one loaded document and everything that hangs off it: the
// pending drafts, the viewport snapshot of the last render, the signing
// credential, and the export state. Sessions are used from a single
// interactive goroutine; the export flow is a linear awaited sequence guarded
// by an in-flight flag rather than a lock.
package inkform

import (
	"bytes"
	"fmt"

	"github.com/digitorus/pdf"

	"github.com/inkform/inkform/config"
	"github.com/inkform/inkform/draft"
	"github.com/inkform/inkform/errs"
	"github.com/inkform/inkform/geom"
	"github.com/inkform/inkform/internal/incr"
	"github.com/inkform/inkform/logging"
)

// Session is the in-memory state of one edit-and-sign workflow.
type Session struct {
	cfg config.Config

	document []byte
	name     string

	store     *draft.Store
	viewports map[int]geom.Viewport
	renderGen uint64

	exporting bool
	sealed    bool

	bundleData []byte
	passphrase string

	destination string

	tool    Tool
	gesture gestureState
}

// NewSession returns an empty session with default settings.
func NewSession() *Session {
	return NewSessionWith(config.Default())
}

// NewSessionWith returns an empty session with the given settings.
func NewSessionWith(cfg config.Config) *Session {
	return &Session{
		cfg:       cfg,
		store:     draft.NewStore(),
		viewports: map[int]geom.Viewport{},
	}
}

// LoadDocument replaces the session document. Drafts and viewports are
// cleared, in-flight renders are invalidated, and a document that already
// carries a signature is sealed against further draft edits.
func (s *Session) LoadDocument(data []byte, name string) error {
	if int64(len(data)) > incr.MaxDocumentBytes {
		return fmt.Errorf("document is %d bytes: %w", len(data), errs.ErrOversizedPayload)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		return fmt.Errorf("missing PDF header: %w", errs.ErrInvalidDocument)
	}

	rdr, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return fmt.Errorf("parse document: %w: %v", errs.ErrInvalidDocument, err)
	}

	s.document = append([]byte(nil), data...)
	s.name = name
	s.store = draft.NewStore()
	s.viewports = map[int]geom.Viewport{}
	s.renderGen++
	s.sealed = hasSignature(rdr)
	s.gesture = gestureState{}

	logging.Logger().Debug("document loaded",
		"name", name, "bytes", len(data), "sealed", s.sealed)
	return nil
}

// hasSignature reports whether the document already carries a filled
// signature field.
func hasSignature(rdr *pdf.Reader) bool {
	fields := rdr.Trailer().Key("Root").Key("AcroForm").Key("Fields")
	if fields.Kind() != pdf.Array {
		return false
	}
	for i := 0; i < fields.Len(); i++ {
		f := fields.Index(i)
		if f.Key("FT").Name() == "Sig" && !f.Key("V").IsNull() {
			return true
		}
	}
	return false
}

// Document returns a copy of the current document bytes, or nil when no
// document is loaded.
func (s *Session) Document() []byte {
	if s.document == nil {
		return nil
	}
	return append([]byte(nil), s.document...)
}

// Name returns the display name of the loaded document.
func (s *Session) Name() string {
	return s.name
}

// Sealed reports whether the document refuses further draft edits because it
// has been signed.
func (s *Session) Sealed() bool {
	return s.sealed
}

// BeginRender hands out a fresh render-generation token. Starting a new
// render supersedes every earlier one.
func (s *Session) BeginRender() uint64 {
	s.renderGen++
	return s.renderGen
}

// FinishRender installs the viewports captured by the render identified by
// gen. A stale generation is discarded silently and reported as false.
func (s *Session) FinishRender(gen uint64, viewports map[int]geom.Viewport) bool {
	if gen != s.renderGen {
		logging.Logger().Debug("stale render discarded", "gen", gen, "current", s.renderGen)
		return false
	}
	s.viewports = make(map[int]geom.Viewport, len(viewports))
	for page, vp := range viewports {
		s.viewports[page] = vp
	}
	return true
}

// Viewport returns the captured viewport for a page, if any.
func (s *Session) Viewport(page int) (geom.Viewport, bool) {
	vp, ok := s.viewports[page]
	return vp, ok
}

// Rescale converts every draft from one render scale to another, keeping
// their PDF-space geometry constant across zoom changes.
func (s *Session) Rescale(oldScale, newScale float64) {
	s.store.Rescale(oldScale, newScale)
}

func (s *Session) requireEditable() error {
	if s.document == nil {
		return fmt.Errorf("no document loaded: %w", errs.ErrInvalidDocument)
	}
	if s.sealed {
		return fmt.Errorf("document is signed: %w", errs.ErrDocumentSealed)
	}
	return nil
}

func (s *Session) pageViewport(page int) (geom.Viewport, error) {
	vp, ok := s.viewports[page]
	if !ok || !vp.Valid() {
		return geom.Viewport{}, fmt.Errorf("page %d has not been rendered", page)
	}
	return vp, nil
}
