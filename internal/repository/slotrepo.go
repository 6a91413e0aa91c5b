// Package repository defines storage interfaces implemented by concrete backends.
package repository

import "context"

// Slot names used by the dashboard.
const (
	SlotVault    = "mobicure-vault"
	SlotSettings = "mobicure-settings"
	SlotUser     = "mobicure-user"
)

// SlotRepository stores opaque byte blobs under named slots. It knows nothing about
// what the blobs mean; every write replaces the whole slot.
type SlotRepository interface {
	// Get returns the slot content or errs.ErrNotFound.
	Get(ctx context.Context, name string) ([]byte, error)
	// Put replaces the slot content.
	Put(ctx context.Context, name string, data []byte) error
	// Delete removes the slot. Removing a missing slot is not an error.
	Delete(ctx context.Context, name string) error
}
