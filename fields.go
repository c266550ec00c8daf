package inkform

import (
	"fmt"

	"github.com/inkform/inkform/errs"
	"github.com/inkform/inkform/forms"
)

// FormFields lists the interactive form fields of the loaded document.
func (s *Session) FormFields() ([]forms.Field, error) {
	if s.document == nil {
		return nil, fmt.Errorf("no document loaded: %w", errs.ErrInvalidDocument)
	}
	return forms.List(s.document)
}

// SetFormField writes a value into an existing field. A name that matches no
// field is absorbed as a no-op; the document is unchanged.
func (s *Session) SetFormField(name string, value any) error {
	if s.document == nil {
		return fmt.Errorf("no document loaded: %w", errs.ErrInvalidDocument)
	}
	out, err := forms.SetValue(s.document, name, value)
	if err != nil {
		return err
	}
	s.document = out
	return nil
}
