package client

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"notehub/internal/model"
)

// CacheState is the reconciliation state of the local note cache.
type CacheState int

const (
	// StateClean means the cache mirrors the last known server state.
	StateClean CacheState = iota
	// StatePendingMutation means an optimistic change is applied locally and
	// a snapshot is held for rollback.
	StatePendingMutation
	// StateReconciled means the last optimistic change was confirmed and the
	// server entity has replaced the optimistic entry.
	StateReconciled
)

var (
	// ErrMutationInFlight is returned when a mutation is staged while another
	// is still unconfirmed.
	ErrMutationInFlight = errors.New("a mutation is already pending")
	// ErrNoPendingMutation is returned when confirm or reject is called with
	// nothing staged.
	ErrNoPendingMutation = errors.New("no pending mutation")
)

type pendingOp int

const (
	opNone pendingOp = iota
	opCreate
	opUpdate
	opDelete
)

// NoteCache holds the client's ordered note list and applies mutations
// optimistically: the change lands locally before the network round-trip
// resolves, then either the server entity replaces the optimistic entry or
// the pre-mutation snapshot is restored.
type NoteCache struct {
	mu        sync.Mutex
	state     CacheState
	notes     []model.Note
	snapshot  []model.Note
	pending   pendingOp
	pendingID uuid.UUID
}

// NewNoteCache creates an empty cache in the Clean state.
func NewNoteCache() *NoteCache {
	return &NoteCache{state: StateClean}
}

// Load replaces the cache contents with authoritative server state.
func (c *NoteCache) Load(notes []model.Note) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notes = cloneNotes(notes)
	c.snapshot = nil
	c.pending = opNone
	c.state = StateClean
}

// Notes returns a copy of the current list.
func (c *NoteCache) Notes() []model.Note {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneNotes(c.notes)
}

// State reports the cache's reconciliation state.
func (c *NoteCache) State() CacheState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// StageCreate optimistically prepends a note. The note's id is a client-side
// placeholder until Confirm swaps in the server entity.
func (c *NoteCache) StageCreate(note model.Note) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.begin(opCreate, note.ID); err != nil {
		return err
	}
	c.notes = append([]model.Note{note}, c.notes...)
	return nil
}

// StageUpdate optimistically replaces the note with the same id.
func (c *NoteCache) StageUpdate(note model.Note) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.begin(opUpdate, note.ID); err != nil {
		return err
	}
	for i := range c.notes {
		if c.notes[i].ID == note.ID {
			c.notes[i] = note
			return nil
		}
	}
	// Unknown id: keep the snapshot, the server response settles it.
	return nil
}

// StageDelete optimistically removes the note with the given id.
func (c *NoteCache) StageDelete(id uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.begin(opDelete, id); err != nil {
		return err
	}
	for i := range c.notes {
		if c.notes[i].ID == id {
			c.notes = append(c.notes[:i], c.notes[i+1:]...)
			break
		}
	}
	return nil
}

// Confirm reconciles the pending mutation with the server-returned entity.
// For deletes, server is nil. The cache ends in the Reconciled state; the
// next staged mutation treats it as clean.
func (c *NoteCache) Confirm(server *model.Note) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StatePendingMutation {
		return ErrNoPendingMutation
	}

	if server != nil {
		replaced := false
		for i := range c.notes {
			if c.notes[i].ID == c.pendingID || c.notes[i].ID == server.ID {
				c.notes[i] = *server
				replaced = true
				break
			}
		}
		if !replaced {
			c.notes = append([]model.Note{*server}, c.notes...)
		}
	}

	c.snapshot = nil
	c.pending = opNone
	c.state = StateReconciled
	return nil
}

// Reject rolls the cache back to the pre-mutation snapshot.
func (c *NoteCache) Reject() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StatePendingMutation {
		return ErrNoPendingMutation
	}
	c.notes = c.snapshot
	c.snapshot = nil
	c.pending = opNone
	c.state = StateClean
	return nil
}

func (c *NoteCache) begin(op pendingOp, id uuid.UUID) error {
	if c.state == StatePendingMutation {
		return ErrMutationInFlight
	}
	c.snapshot = cloneNotes(c.notes)
	c.pending = op
	c.pendingID = id
	c.state = StatePendingMutation
	return nil
}

func cloneNotes(notes []model.Note) []model.Note {
	if notes == nil {
		return nil
	}
	out := make([]model.Note, len(notes))
	copy(out, notes)
	return out
}
