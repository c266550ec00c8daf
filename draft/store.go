package draft

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/inkform/inkform/geom"
)

// Store keeps drafts in creation order. Composition replays them in exactly
// this order, so the store never reorders on update or selection.
type Store struct {
	drafts   []*Draft
	selected string
	nextID   uint64
	fieldSeq uint64
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{}
}

// Create adds a draft of the given kind, clamped to the page's viewport.
// Field drafts without an explicit name get a generated one that is unique
// for the lifetime of the store.
func (s *Store) Create(kind Kind, page int, r geom.Rect, p Payload, vp geom.Viewport) *Draft {
	s.nextID++
	d := &Draft{
		ID:        fmt.Sprintf("draft-%d", s.nextID),
		Kind:      kind,
		Page:      page,
		Rect:      clamp(r, kind, vp),
		Text:      p.Text,
		FieldName: p.FieldName,
		Image:     p.Image,
	}
	if d.FieldName == "" && (kind == TextField || kind == Checkbox) {
		d.FieldName = s.nextFieldName(kind)
	}
	s.drafts = append(s.drafts, d)
	return d
}

// nextFieldName combines a monotonic counter with random entropy so two
// fields created back to back, or in two stores racing on the same document,
// never collide.
func (s *Store) nextFieldName(kind Kind) string {
	s.fieldSeq++
	suffix := make([]byte, 2)
	_, _ = rand.Read(suffix)
	prefix := "Field"
	if kind == Checkbox {
		prefix = "Check"
	}
	return fmt.Sprintf("%s-%d-%s", prefix, s.fieldSeq, hex.EncodeToString(suffix))
}

// Update applies a partial change to the identified draft, re-clamping the
// rect against the viewport. It reports whether the draft exists.
func (s *Store) Update(id string, u Update, vp geom.Viewport) bool {
	d := s.find(id)
	if d == nil {
		return false
	}
	if u.Rect != nil {
		d.Rect = clamp(*u.Rect, d.Kind, vp)
	}
	if u.Text != nil {
		d.Text = u.Text
	}
	if u.FieldName != nil {
		d.FieldName = *u.FieldName
	}
	if u.Image != nil {
		d.Image = u.Image
	}
	return true
}

// Remove deletes the identified draft, keeping the order of the rest.
func (s *Store) Remove(id string) bool {
	for i, d := range s.drafts {
		if d.ID == id {
			s.drafts = append(s.drafts[:i], s.drafts[i+1:]...)
			if s.selected == id {
				s.selected = ""
			}
			return true
		}
	}
	return false
}

// Get returns the identified draft or nil.
func (s *Store) Get(id string) *Draft {
	return s.find(id)
}

// List returns the drafts in creation order. The slice is a copy; the drafts
// are shared.
func (s *Store) List() []*Draft {
	out := make([]*Draft, len(s.drafts))
	copy(out, s.drafts)
	return out
}

// Len returns the number of drafts.
func (s *Store) Len() int {
	return len(s.drafts)
}

// Select marks a draft as the gesture target. An empty id clears the
// selection.
func (s *Store) Select(id string) bool {
	if id == "" {
		s.selected = ""
		return true
	}
	if s.find(id) == nil {
		return false
	}
	s.selected = id
	return true
}

// Selected returns the selected draft or nil.
func (s *Store) Selected() *Draft {
	if s.selected == "" {
		return nil
	}
	return s.find(s.selected)
}

// Rescale converts every draft rect from one render scale to another, so a
// zoom change keeps the drafts anchored to the same PDF geometry.
func (s *Store) Rescale(oldScale, newScale float64) {
	if oldScale <= 0 || newScale <= 0 || oldScale == newScale {
		return
	}
	f := newScale / oldScale
	for _, d := range s.drafts {
		d.Rect = geom.Rect{
			X: d.Rect.X * f,
			Y: d.Rect.Y * f,
			W: d.Rect.W * f,
			H: d.Rect.H * f,
		}
	}
}

// Clear drops all drafts and the selection. The field-name counter is kept
// so names stay unique across export cycles.
func (s *Store) Clear() {
	s.drafts = nil
	s.selected = ""
}

// LastSignature returns the most recently created signature draft, or nil.
func (s *Store) LastSignature() *Draft {
	for i := len(s.drafts) - 1; i >= 0; i-- {
		if s.drafts[i].Kind == Signature {
			return s.drafts[i]
		}
	}
	return nil
}

func (s *Store) find(id string) *Draft {
	for _, d := range s.drafts {
		if d.ID == id {
			return d
		}
	}
	return nil
}
