// Package file contains a SlotRepository that keeps one JSON file per slot in a directory.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/and161185/mobicure/internal/errs"
)

// SlotRepo stores each slot as <dir>/<name>.json. Writes go through a temp file and rename,
// so a failed write leaves the previous snapshot in place.
type SlotRepo struct {
	dir string
	mu  sync.Mutex
}

// NewSlotRepo ensures dir exists and returns a repository rooted there.
func NewSlotRepo(dir string) (*SlotRepo, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}
	return &SlotRepo{dir: dir}, nil
}

// Dir returns the root directory.
func (r *SlotRepo) Dir() string { return r.dir }

func (r *SlotRepo) path(name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", fmt.Errorf("bad slot name %q", name)
	}
	return filepath.Join(r.dir, name+".json"), nil
}

// Get reads the slot file.
func (r *SlotRepo) Get(_ context.Context, name string) ([]byte, error) {
	p, err := r.path(name)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	b, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, errs.ErrNotFound
	}
	return b, err
}

// Put atomically replaces the slot file.
func (r *SlotRepo) Put(_ context.Context, name string, data []byte) error {
	p, err := r.path(name)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	tmp := p + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	if err := os.Rename(tmp, p); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

// Delete removes the slot file if present.
func (r *SlotRepo) Delete(_ context.Context, name string) error {
	p, err := r.path(name)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
