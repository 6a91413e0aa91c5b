// Package vault owns the ordered list of vault records and mirrors it to a slot
// as a whole-collection snapshot after every mutation.
package vault

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/and161185/mobicure/internal/errs"
	"github.com/and161185/mobicure/internal/model"
	"github.com/and161185/mobicure/internal/repository"
)

// ErrNotPersisted is returned by a mutating call whose in-memory change succeeded
// but whose snapshot write failed. Storage keeps the previous snapshot.
var ErrNotPersisted = errors.New("vault: change not persisted")

// Store is the vault record store. It is safe for concurrent use; concurrent writers
// are serialized and the last write wins.
type Store struct {
	mu      sync.Mutex
	repo    repository.SlotRepository
	codec   Codec
	slot    string
	log     *zap.Logger
	now     func() time.Time
	newID   func() (uuid.UUID, error)
	records []model.Record
}

// Option customizes a Store.
type Option func(*Store)

// WithCodec sets the slot codec (PlainCodec by default).
func WithCodec(c Codec) Option { return func(s *Store) { s.codec = c } }

// WithLogger sets the logger (no-op by default).
func WithLogger(l *zap.Logger) Option { return func(s *Store) { s.log = l } }

// WithSlot overrides the slot name.
func WithSlot(name string) Option { return func(s *Store) { s.slot = name } }

// WithClock overrides the creation timestamp source.
func WithClock(now func() time.Time) Option { return func(s *Store) { s.now = now } }

// New constructs an empty store over repo. Call Load to read persisted records.
func New(repo repository.SlotRepository, opts ...Option) *Store {
	s := &Store{
		repo:  repo,
		codec: PlainCodec{},
		slot:  repository.SlotVault,
		log:   zap.NewNop(),
		now:   time.Now,
		newID: uuid.NewV4,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Load replaces the in-memory list with the persisted one.
// A missing slot yields an empty list. Undecodable data yields an empty list and an
// error wrapping errs.ErrCorruptStore; the stored bytes are left untouched.
func (s *Store) Load(ctx context.Context) ([]model.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = nil
	b, err := s.repo.Get(ctx, s.slot)
	switch {
	case errors.Is(err, errs.ErrNotFound):
		return []model.Record{}, nil
	case err != nil:
		s.log.Error("vault read failed", zap.String("slot", s.slot), zap.Error(err))
		return []model.Record{}, fmt.Errorf("read %s: %w", s.slot, err)
	}

	recs, err := s.codec.Decode(s.slot, b)
	if err == nil {
		err = checkUniqueIDs(recs)
	}
	if err != nil {
		s.log.Warn("vault data is corrupt, starting empty",
			zap.String("slot", s.slot), zap.Int("bytes", len(b)), zap.Error(err))
		return []model.Record{}, fmt.Errorf("%w: %s: %w", errs.ErrCorruptStore, s.slot, err)
	}
	s.records = recs
	return s.copyLocked(), nil
}

// Add validates and appends a new record, then persists the whole list.
func (s *Store) Add(ctx context.Context, kind model.Kind, title string, payload model.Payload) (model.Record, error) {
	rec, err := model.NewRecord(kind, title, payload)
	if err != nil {
		return model.Record{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.uniqueIDLocked()
	if err != nil {
		return model.Record{}, err
	}
	rec.ID = id
	rec.CreatedAt = s.now().UTC()
	s.records = append(s.records, rec)

	return rec.Clone(), s.persistLocked(ctx, "add", rec.ID)
}

// Update replaces title and payload of the record with id. Kind, id and creation time are kept.
func (s *Store) Update(ctx context.Context, id, title string, payload model.Payload) (model.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return model.Record{}, fmt.Errorf("record %s: %w", id, errs.ErrNotFound)
	}
	cur := s.records[i]
	next, err := model.NewRecord(cur.Kind, title, payload)
	if err != nil {
		return model.Record{}, err
	}
	next.ID, next.CreatedAt = cur.ID, cur.CreatedAt
	s.records[i] = next

	return next.Clone(), s.persistLocked(ctx, "update", id)
}

// Delete removes the record with id and persists. It reports false, without writing,
// when no such record exists.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return false, nil
	}
	s.records = slices.Delete(s.records, i, i+1)
	return true, s.persistLocked(ctx, "delete", id)
}

// Clear drops every record and removes the slot.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = nil
	if err := s.repo.Delete(ctx, s.slot); err != nil {
		s.log.Error("vault clear failed", zap.String("slot", s.slot), zap.Error(err))
		return fmt.Errorf("%w: %v", ErrNotPersisted, err)
	}
	return nil
}

// List returns the records in insertion order.
func (s *Store) List() []model.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyLocked()
}

// Get returns the record with id.
func (s *Store) Get(id string) (model.Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexLocked(id); i >= 0 {
		return s.records[i].Clone(), true
	}
	return model.Record{}, false
}

// Count returns the number of records.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// Snapshot returns the cleartext JSON array used as the vault part of a backup.
func (s *Store) Snapshot() (json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return PlainCodec{}.Encode(s.slot, s.records)
}

func (s *Store) persistLocked(ctx context.Context, op, id string) error {
	b, err := s.codec.Encode(s.slot, s.records)
	if err == nil {
		err = s.repo.Put(ctx, s.slot, b)
	}
	if err != nil {
		s.log.Error("vault write failed",
			zap.String("op", op), zap.String("id", id), zap.String("slot", s.slot), zap.Error(err))
		return fmt.Errorf("%w: %v", ErrNotPersisted, err)
	}
	s.log.Debug("vault saved", zap.String("op", op), zap.String("id", id), zap.Int("records", len(s.records)))
	return nil
}

func (s *Store) uniqueIDLocked() (string, error) {
	for {
		u, err := s.newID()
		if err != nil {
			return "", err
		}
		if id := u.String(); s.indexLocked(id) < 0 {
			return id, nil
		}
	}
}

func (s *Store) indexLocked(id string) int {
	return slices.IndexFunc(s.records, func(r model.Record) bool { return r.ID == id })
}

func (s *Store) copyLocked() []model.Record {
	out := make([]model.Record, len(s.records))
	for i, r := range s.records {
		out[i] = r.Clone()
	}
	return out
}

func checkUniqueIDs(recs []model.Record) error {
	seen := make(map[string]struct{}, len(recs))
	for _, r := range recs {
		if _, dup := seen[r.ID]; dup {
			return fmt.Errorf("duplicate id %s", r.ID)
		}
		seen[r.ID] = struct{}{}
	}
	return nil
}
