// Package settings persists dashboard preferences and the simulated user session.
package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/and161185/mobicure/internal/errs"
	"github.com/and161185/mobicure/internal/model"
	"github.com/and161185/mobicure/internal/repository"
)

// RetentionOptions are the accepted dataRetention values.
var RetentionOptions = []string{"6months", "1year", "2years", "forever"}

// Store reads and writes the settings slot.
type Store struct {
	repo repository.SlotRepository
	log  *zap.Logger
}

// NewStore constructs a settings store. A nil logger is replaced with a no-op one.
func NewStore(repo repository.SlotRepository, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{repo: repo, log: log}
}

// Load returns the stored settings. Missing data yields the defaults; unreadable
// data yields the defaults and an error wrapping errs.ErrCorruptStore.
func (s *Store) Load(ctx context.Context) (model.Settings, error) {
	b, err := s.repo.Get(ctx, repository.SlotSettings)
	if errors.Is(err, errs.ErrNotFound) {
		return model.DefaultSettings(), nil
	}
	if err != nil {
		return model.DefaultSettings(), fmt.Errorf("read settings: %w", err)
	}
	// start from defaults so keys missing in older snapshots keep their default
	st := model.DefaultSettings()
	if err := json.Unmarshal(b, &st); err != nil {
		s.log.Warn("settings data is corrupt, using defaults", zap.Error(err))
		return model.DefaultSettings(), fmt.Errorf("%w: settings: %v", errs.ErrCorruptStore, err)
	}
	return st, nil
}

// Save writes st as the whole settings snapshot.
func (s *Store) Save(ctx context.Context, st model.Settings) error {
	if !slices.Contains(RetentionOptions, st.DataRetention) {
		return fmt.Errorf("%w: dataRetention %q", errs.ErrInvalidSetting, st.DataRetention)
	}
	b, err := json.Marshal(st)
	if err != nil {
		return err
	}
	if err := s.repo.Put(ctx, repository.SlotSettings, b); err != nil {
		s.log.Error("settings write failed", zap.Error(err))
		return err
	}
	return nil
}

// Set changes one setting by its wire name and saves the result.
// A corrupt stored snapshot is replaced.
func (s *Store) Set(ctx context.Context, key string, value any) (model.Settings, error) {
	cur, err := s.Load(ctx)
	if err != nil && !errors.Is(err, errs.ErrCorruptStore) {
		return model.Settings{}, err
	}
	next, err := apply(cur, key, value)
	if err != nil {
		return cur, err
	}
	if err := s.Save(ctx, next); err != nil {
		return cur, err
	}
	s.log.Debug("setting updated", zap.String("key", key))
	return next, nil
}

func apply(cur model.Settings, key string, value any) (model.Settings, error) {
	b, err := json.Marshal(cur)
	if err != nil {
		return cur, err
	}
	fields := map[string]any{}
	if err := json.Unmarshal(b, &fields); err != nil {
		return cur, err
	}
	old, ok := fields[key]
	if !ok {
		return cur, fmt.Errorf("%w: unknown key %q", errs.ErrInvalidSetting, key)
	}
	if fmt.Sprintf("%T", old) != fmt.Sprintf("%T", value) {
		return cur, fmt.Errorf("%w: %s wants %T, got %T", errs.ErrInvalidSetting, key, old, value)
	}
	fields[key] = value
	if b, err = json.Marshal(fields); err != nil {
		return cur, err
	}
	var next model.Settings
	if err := json.Unmarshal(b, &next); err != nil {
		return cur, err
	}
	return next, nil
}

// Reset removes the settings slot; the next Load returns the defaults.
func (s *Store) Reset(ctx context.Context) error {
	return s.repo.Delete(ctx, repository.SlotSettings)
}
