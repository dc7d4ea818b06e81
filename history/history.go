package history

import (
	"github.com/pkg/errors"
)

// DefaultCapacity bounds the undo stack when no capacity is given.
const DefaultCapacity = 100

var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

// History is the linear undo/redo chain. The top of the undo stack is the current action.
// It is not safe for concurrent use and is meant to be driven from the tick loop.
type History struct {
	undo     []Reversible
	redo     []Reversible
	capacity int
}

func New(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &History{capacity: capacity}
}

// Add makes action the current one. The redo chain is discarded.
func (h *History) Add(action Reversible) {
	h.redo = nil
	h.undo = append(h.undo, action)
	if len(h.undo) > h.capacity {
		h.undo[0] = nil
		h.undo = h.undo[1:]
	}
}

// Undo reverts the current action. An action failing to undo is dropped from the history.
func (h *History) Undo() error {
	if len(h.undo) == 0 {
		return ErrNothingToUndo
	}
	action := pop(&h.undo)
	if err := action.Undo(); err != nil {
		return errors.Wrap(err, "failed to undo action")
	}
	h.redo = append(h.redo, action)
	return nil
}

// Redo reapplies the last undone action. An action failing to redo is dropped from the history.
func (h *History) Redo() error {
	if len(h.redo) == 0 {
		return ErrNothingToRedo
	}
	action := pop(&h.redo)
	if err := action.Redo(); err != nil {
		return errors.Wrap(err, "failed to redo action")
	}
	h.undo = append(h.undo, action)
	return nil
}

func (h *History) Current() Reversible {
	if len(h.undo) == 0 {
		return nil
	}
	return h.undo[len(h.undo)-1]
}

func (h *History) CanUndo() bool { return len(h.undo) > 0 }
func (h *History) CanRedo() bool { return len(h.redo) > 0 }

// Depth returns the size of the undo and redo stacks.
func (h *History) Depth() (int, int) {
	return len(h.undo), len(h.redo)
}

func (h *History) Clear() {
	h.undo = nil
	h.redo = nil
}

func pop(stack *[]Reversible) Reversible {
	s := *stack
	action := s[len(s)-1]
	s[len(s)-1] = nil
	*stack = s[:len(s)-1]
	return action
}
