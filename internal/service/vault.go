package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid/v5"

	"github.com/and161185/mobicure/internal/backup"
	"github.com/and161185/mobicure/internal/errs"
	"github.com/and161185/mobicure/internal/model"
	"github.com/and161185/mobicure/internal/scoring"
	"github.com/and161185/mobicure/internal/settings"
	"github.com/and161185/mobicure/internal/vault"
)

// VaultService defines the session-gated vault, settings and backup operations.
type VaultService interface {
	List(ctx context.Context, userID uuid.UUID) ([]model.Record, error)
	Get(ctx context.Context, userID uuid.UUID, id string) (model.Record, error)
	Add(ctx context.Context, userID uuid.UUID, kind model.Kind, title string, p model.Payload) (model.Record, error)
	Update(ctx context.Context, userID uuid.UUID, id, title string, p model.Payload) (model.Record, error)
	Delete(ctx context.Context, userID uuid.UUID, id string) (bool, error)
	Export(ctx context.Context, userID uuid.UUID) (model.Backup, error)
	ClearAll(ctx context.Context, userID uuid.UUID) error
	Settings(ctx context.Context, userID uuid.UUID) (model.Settings, error)
	SetSetting(ctx context.Context, userID uuid.UUID, key string, value any) (model.Settings, error)
	Dashboard(ctx context.Context, userID uuid.UUID) (model.Dashboard, error)
}

type VaultServiceImpl struct {
	store    *vault.Store
	settings *settings.Store
	sessions *settings.Sessions
	exporter *backup.Exporter
}

// NewVaultService constructs VaultService.
func NewVaultService(store *vault.Store, st *settings.Store, ss *settings.Sessions, exp *backup.Exporter) *VaultServiceImpl {
	return &VaultServiceImpl{store: store, settings: st, sessions: ss, exporter: exp}
}

// List returns the records in insertion order.
func (s *VaultServiceImpl) List(ctx context.Context, userID uuid.UUID) ([]model.Record, error) {
	if err := checkSession(ctx, s.sessions, userID); err != nil {
		return nil, err
	}
	return s.store.List(), nil
}

// Get returns one record or errs.ErrNotFound.
func (s *VaultServiceImpl) Get(ctx context.Context, userID uuid.UUID, id string) (model.Record, error) {
	if err := checkSession(ctx, s.sessions, userID); err != nil {
		return model.Record{}, err
	}
	r, ok := s.store.Get(id)
	if !ok {
		return model.Record{}, fmt.Errorf("record %s: %w", id, errs.ErrNotFound)
	}
	return r, nil
}

// Add creates a record. A failed snapshot write is reported while the record stays in memory.
func (s *VaultServiceImpl) Add(ctx context.Context, userID uuid.UUID, kind model.Kind, title string, p model.Payload) (model.Record, error) {
	if err := checkSession(ctx, s.sessions, userID); err != nil {
		return model.Record{}, err
	}
	return s.store.Add(ctx, kind, title, p)
}

// Update replaces title and payload of an existing record.
func (s *VaultServiceImpl) Update(ctx context.Context, userID uuid.UUID, id, title string, p model.Payload) (model.Record, error) {
	if err := checkSession(ctx, s.sessions, userID); err != nil {
		return model.Record{}, err
	}
	return s.store.Update(ctx, id, title, p)
}

// Delete removes a record; false means it did not exist.
func (s *VaultServiceImpl) Delete(ctx context.Context, userID uuid.UUID, id string) (bool, error) {
	if err := checkSession(ctx, s.sessions, userID); err != nil {
		return false, err
	}
	return s.store.Delete(ctx, id)
}

// Export builds the full backup document.
func (s *VaultServiceImpl) Export(ctx context.Context, userID uuid.UUID) (model.Backup, error) {
	if err := checkSession(ctx, s.sessions, userID); err != nil {
		return model.Backup{}, err
	}
	return s.exporter.Export(ctx)
}

// ClearAll wipes every slot, which also ends the session.
func (s *VaultServiceImpl) ClearAll(ctx context.Context, userID uuid.UUID) error {
	if err := checkSession(ctx, s.sessions, userID); err != nil {
		return err
	}
	return s.exporter.ClearAll(ctx)
}

// Settings returns the preferences; corrupt data reads as the defaults.
func (s *VaultServiceImpl) Settings(ctx context.Context, userID uuid.UUID) (model.Settings, error) {
	if err := checkSession(ctx, s.sessions, userID); err != nil {
		return model.Settings{}, err
	}
	st, err := s.settings.Load(ctx)
	if errors.Is(err, errs.ErrCorruptStore) {
		return st, nil
	}
	return st, err
}

// SetSetting changes one preference by wire name.
func (s *VaultServiceImpl) SetSetting(ctx context.Context, userID uuid.UUID, key string, value any) (model.Settings, error) {
	if err := checkSession(ctx, s.sessions, userID); err != nil {
		return model.Settings{}, err
	}
	return s.settings.Set(ctx, key, value)
}

// Dashboard reports the vault size and the risk estimate lowered by it.
func (s *VaultServiceImpl) Dashboard(ctx context.Context, userID uuid.UUID) (model.Dashboard, error) {
	if err := checkSession(ctx, s.sessions, userID); err != nil {
		return model.Dashboard{}, err
	}
	n := s.store.Count()
	risk := scoring.VaultRiskLevel(scoring.DashboardBaseRisk, n)
	return model.Dashboard{VaultItems: n, RiskLevel: risk, RiskBand: string(scoring.RiskLevel(risk))}, nil
}
