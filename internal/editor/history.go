package editor

import "hazardhunt/internal/models"

// MaxHistory caps the undo stack; the oldest snapshot is dropped on overflow.
const MaxHistory = 20

// History is a bounded double-stack of full zone-list snapshots. Snapshots
// are copies, not diffs; with a cap of 20 the memory cost is trivial and the
// restore logic stays obvious.
type History struct {
	undo [][]models.RiskZone
	redo [][]models.RiskZone
}

// NewHistory returns an empty history.
func NewHistory() *History {
	return &History{}
}

// Push records the current zone list before a mutating edit. Any redo
// history is invalidated by the new action.
func (h *History) Push(current []models.RiskZone) {
	if len(h.undo) >= MaxHistory {
		h.undo = h.undo[len(h.undo)-(MaxHistory-1):]
	}
	h.undo = append(h.undo, cloneZones(current))
	h.redo = nil
}

// Undo swaps the current state for the most recent snapshot. Returns false
// when there is nothing to undo; the current state is untouched in that case.
func (h *History) Undo(current []models.RiskZone) ([]models.RiskZone, bool) {
	if len(h.undo) == 0 {
		return nil, false
	}
	previous := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = append(h.redo, cloneZones(current))
	return previous, true
}

// Redo is the mirror of Undo.
func (h *History) Redo(current []models.RiskZone) ([]models.RiskZone, bool) {
	if len(h.redo) == 0 {
		return nil, false
	}
	next := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	h.undo = append(h.undo, cloneZones(current))
	return next, true
}

// CanUndo reports whether an undo snapshot exists (drives button state).
func (h *History) CanUndo() bool { return len(h.undo) > 0 }

// CanRedo reports whether a redo snapshot exists.
func (h *History) CanRedo() bool { return len(h.redo) > 0 }

// UndoDepth returns the current undo stack size.
func (h *History) UndoDepth() int { return len(h.undo) }
