package inkform

import (
	"fmt"

	"github.com/inkform/inkform/draft"
	"github.com/inkform/inkform/geom"
)

// Tool is the active editing tool. Switching tools cancels any gesture in
// progress.
type Tool int

const (
	ToolSelect Tool = iota
	ToolText
	ToolTextField
	ToolCheckbox
	ToolSignature
)

// Handle identifies which corner of a draft a resize gesture grabs.
type Handle int

const (
	HandleNone Handle = iota
	HandleNW
	HandleNE
	HandleSW
	HandleSE
)

// PointerKind is the pointer event phase.
type PointerKind int

const (
	PointerDown PointerKind = iota
	PointerMove
	PointerUp
)

// PointerEvent is one pointer sample dispatched to the session. DraftID and
// Handle are only consulted on PointerDown.
type PointerEvent struct {
	Kind    PointerKind
	X, Y    float64
	DraftID string
	Handle  Handle
}

type gesturePhase int

const (
	gestureIdle gesturePhase = iota
	gestureMoving
	gestureResizing
)

// gestureState is the explicit finite-state machine behind drag and resize:
// idle, moving, or resizing by one handle. All deltas are measured from the
// gesture's starting sample against the starting rect, so intermediate
// clamping never accumulates drift.
type gestureState struct {
	phase     gesturePhase
	draftID   string
	handle    Handle
	startX    float64
	startY    float64
	startRect geom.Rect
}

// SetTool switches the active tool and resets the gesture machine; no
// gesture state survives a tool change.
func (s *Session) SetTool(t Tool) {
	s.tool = t
	s.gesture = gestureState{}
}

// ActiveTool returns the active tool.
func (s *Session) ActiveTool() Tool {
	return s.tool
}

// Pointer dispatches one pointer event through the gesture machine. A down
// event on a draft begins a move, or a resize when a handle is given; move
// events update the draft through the store so clamping applies; an up event
// always returns the machine to idle.
func (s *Session) Pointer(ev PointerEvent) error {
	if err := s.requireEditable(); err != nil {
		return err
	}

	switch ev.Kind {
	case PointerDown:
		return s.pointerDown(ev)
	case PointerMove:
		return s.pointerMove(ev)
	case PointerUp:
		s.gesture = gestureState{}
		return nil
	default:
		return fmt.Errorf("unknown pointer event kind %d", ev.Kind)
	}
}

func (s *Session) pointerDown(ev PointerEvent) error {
	if ev.DraftID == "" {
		s.gesture = gestureState{}
		s.store.Select("")
		return nil
	}

	d := s.store.Get(ev.DraftID)
	if d == nil {
		return fmt.Errorf("draft %q not found", ev.DraftID)
	}
	s.store.Select(ev.DraftID)

	phase := gestureMoving
	if ev.Handle != HandleNone {
		phase = gestureResizing
	}
	s.gesture = gestureState{
		phase:     phase,
		draftID:   ev.DraftID,
		handle:    ev.Handle,
		startX:    ev.X,
		startY:    ev.Y,
		startRect: d.Rect,
	}
	return nil
}

func (s *Session) pointerMove(ev PointerEvent) error {
	g := s.gesture
	if g.phase == gestureIdle {
		return nil
	}

	d := s.store.Get(g.draftID)
	if d == nil {
		s.gesture = gestureState{}
		return nil
	}
	vp, err := s.pageViewport(d.Page)
	if err != nil {
		return err
	}

	dx := ev.X - g.startX
	dy := ev.Y - g.startY

	var r geom.Rect
	switch g.phase {
	case gestureMoving:
		r = geom.Rect{X: g.startRect.X + dx, Y: g.startRect.Y + dy, W: g.startRect.W, H: g.startRect.H}
	case gestureResizing:
		r = resizeByHandle(g.startRect, g.handle, dx, dy)
	}

	s.store.Update(g.draftID, draft.Update{Rect: &r}, vp)
	return nil
}

// resizeByHandle grows or shrinks the rect from the grabbed corner, keeping
// the opposite corner fixed. Negative sizes are normalized before clamping.
func resizeByHandle(r geom.Rect, h Handle, dx, dy float64) geom.Rect {
	x1, y1 := r.X, r.Y
	x2, y2 := r.X+r.W, r.Y+r.H

	switch h {
	case HandleNW:
		x1 += dx
		y1 += dy
	case HandleNE:
		x2 += dx
		y1 += dy
	case HandleSW:
		x1 += dx
		y2 += dy
	case HandleSE:
		x2 += dx
		y2 += dy
	}

	if x2 < x1 {
		x1, x2 = x2, x1
	}
	if y2 < y1 {
		y1, y2 = y2, y1
	}
	return geom.Rect{X: x1, Y: y1, W: x2 - x1, H: y2 - y1}
}
