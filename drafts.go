package inkform

import (
	"fmt"

	"github.com/inkform/inkform/draft"
	"github.com/inkform/inkform/geom"
	"github.com/inkform/inkform/images"
)

// AddText places a free-text draft on a rendered page.
func (s *Session) AddText(page int, r geom.Rect, style draft.TextStyle) (*draft.Draft, error) {
	if err := s.requireEditable(); err != nil {
		return nil, err
	}
	vp, err := s.pageViewport(page)
	if err != nil {
		return nil, err
	}
	return s.store.Create(draft.Text, page, r, draft.Payload{Text: &style}, vp), nil
}

// AddTextField places a fillable text field draft. An empty name gets a
// generated unique one.
func (s *Session) AddTextField(page int, r geom.Rect, name string) (*draft.Draft, error) {
	if err := s.requireEditable(); err != nil {
		return nil, err
	}
	vp, err := s.pageViewport(page)
	if err != nil {
		return nil, err
	}
	return s.store.Create(draft.TextField, page, r, draft.Payload{FieldName: name}, vp), nil
}

// AddCheckbox places a checkbox field draft.
func (s *Session) AddCheckbox(page int, r geom.Rect, name string) (*draft.Draft, error) {
	if err := s.requireEditable(); err != nil {
		return nil, err
	}
	vp, err := s.pageViewport(page)
	if err != nil {
		return nil, err
	}
	return s.store.Create(draft.Checkbox, page, r, draft.Payload{FieldName: name}, vp), nil
}

// AddSignature places a signature draft. A non-empty image must decode as
// PNG or JPEG; a rect with one zero dimension is completed from the image's
// aspect ratio before clamping.
func (s *Session) AddSignature(page int, r geom.Rect, image []byte) (*draft.Draft, error) {
	if err := s.requireEditable(); err != nil {
		return nil, err
	}
	vp, err := s.pageViewport(page)
	if err != nil {
		return nil, err
	}
	if len(image) > 0 {
		info, err := images.Decode(image)
		if err != nil {
			return nil, fmt.Errorf("signature image: %w", err)
		}
		r = info.CompleteRect(r)
	}
	return s.store.Create(draft.Signature, page, r, draft.Payload{Image: image}, vp), nil
}

// UpdateDraft applies a partial change to a draft, re-clamped against its
// page's viewport.
func (s *Session) UpdateDraft(id string, u draft.Update) error {
	if err := s.requireEditable(); err != nil {
		return err
	}
	d := s.store.Get(id)
	if d == nil {
		return fmt.Errorf("draft %q not found", id)
	}
	vp, err := s.pageViewport(d.Page)
	if err != nil {
		return err
	}
	s.store.Update(id, u, vp)
	return nil
}

// RemoveDraft deletes a draft.
func (s *Session) RemoveDraft(id string) error {
	if err := s.requireEditable(); err != nil {
		return err
	}
	if !s.store.Remove(id) {
		return fmt.Errorf("draft %q not found", id)
	}
	return nil
}

// Drafts returns the pending drafts in composition order.
func (s *Session) Drafts() []*draft.Draft {
	return s.store.List()
}

// SelectDraft marks the draft targeted by gestures. An empty id clears the
// selection.
func (s *Session) SelectDraft(id string) error {
	if !s.store.Select(id) {
		return fmt.Errorf("draft %q not found", id)
	}
	return nil
}

// SelectedDraft returns the gesture target, or nil.
func (s *Session) SelectedDraft() *draft.Draft {
	return s.store.Selected()
}
