package inkform

import (
	"errors"
	"fmt"
	"io"

	"github.com/inkform/inkform/errs"
)

// DestinationOpener is the save collaborator contract. It receives the
// session's remembered destination token (empty on first save, letting the
// collaborator prompt the user) and returns a writer plus the token to
// remember for the next save. Returning ErrUserCancelled aborts silently.
type DestinationOpener func(remembered string) (io.WriteCloser, string, error)

// SaveTo writes the current document bytes to w.
func (s *Session) SaveTo(w io.Writer) error {
	if s.document == nil {
		return fmt.Errorf("no document loaded: %w", errs.ErrInvalidDocument)
	}
	if _, err := w.Write(s.document); err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	return nil
}

// Save hands the document to the save collaborator, remembering the approved
// destination for subsequent saves. A cancelled dialog surfaces the
// ErrUserCancelled sentinel with no state change.
func (s *Session) Save(open DestinationOpener) error {
	if s.document == nil {
		return fmt.Errorf("no document loaded: %w", errs.ErrInvalidDocument)
	}

	w, token, err := open(s.destination)
	if err != nil {
		if errors.Is(err, errs.ErrUserCancelled) {
			return err
		}
		return fmt.Errorf("open destination: %w", err)
	}

	if err := s.SaveTo(w); err != nil {
		w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close destination: %w", err)
	}

	s.destination = token
	return nil
}

// Destination returns the remembered pre-approved save destination token.
func (s *Session) Destination() string {
	return s.destination
}
