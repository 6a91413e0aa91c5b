// Package memory contains an in-process SlotRepository, used by tests and ephemeral sessions.
package memory

import (
	"context"
	"sync"

	"github.com/and161185/mobicure/internal/errs"
)

// SlotRepo keeps slots in a map. Stored and returned slices are copies.
type SlotRepo struct {
	mu    sync.RWMutex
	slots map[string][]byte
}

// NewSlotRepo constructs an empty repository.
func NewSlotRepo() *SlotRepo {
	return &SlotRepo{slots: make(map[string][]byte)}
}

// Get returns a copy of the slot content.
func (r *SlotRepo) Get(_ context.Context, name string) ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.slots[name]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return append([]byte(nil), b...), nil
}

// Put replaces the slot content.
func (r *SlotRepo) Put(_ context.Context, name string, data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.slots[name] = append([]byte(nil), data...)
	return nil
}

// Delete removes the slot.
func (r *SlotRepo) Delete(_ context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.slots, name)
	return nil
}
