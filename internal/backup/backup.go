// Package backup assembles the full export document and ships it to a sink.
package backup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/and161185/mobicure/internal/errs"
	"github.com/and161185/mobicure/internal/model"
	"github.com/and161185/mobicure/internal/settings"
	"github.com/and161185/mobicure/internal/vault"
)

// FileName is the name the export is saved under.
const FileName = "mobicure-backup.json"

// Sink receives an encoded backup.
type Sink interface {
	Write(ctx context.Context, name string, data []byte) (location string, err error)
}

// Exporter reads the vault, settings and user slots.
type Exporter struct {
	vault    *vault.Store
	settings *settings.Store
	sessions *settings.Sessions
	log      *zap.Logger
	now      func() time.Time
}

// NewExporter wires an exporter. A nil logger is replaced with a no-op one.
func NewExporter(v *vault.Store, st *settings.Store, ss *settings.Sessions, log *zap.Logger) *Exporter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Exporter{vault: v, settings: st, sessions: ss, log: log, now: time.Now}
}

// Export builds the backup document. Corrupt settings fall back to the defaults and
// a corrupt or missing user is exported as null.
func (e *Exporter) Export(ctx context.Context) (model.Backup, error) {
	snap, err := e.vault.Snapshot()
	if err != nil {
		return model.Backup{}, fmt.Errorf("vault snapshot: %w", err)
	}
	st, err := e.settings.Load(ctx)
	if err != nil && !errors.Is(err, errs.ErrCorruptStore) {
		return model.Backup{}, err
	}
	b := model.Backup{Vault: snap, Settings: st, ExportedAt: e.now().UTC()}

	u, err := e.sessions.Current(ctx)
	switch {
	case err == nil:
		b.User = &u
	case errors.Is(err, errs.ErrNotFound), errors.Is(err, errs.ErrCorruptStore):
	default:
		return model.Backup{}, err
	}
	return b, nil
}

// Encode renders b as indented JSON.
func Encode(b model.Backup) ([]byte, error) {
	return json.MarshalIndent(b, "", "  ")
}

// Write exports and hands the document to sink. It returns where the sink put it.
func (e *Exporter) Write(ctx context.Context, sink Sink) (string, error) {
	b, err := e.Export(ctx)
	if err != nil {
		return "", err
	}
	data, err := Encode(b)
	if err != nil {
		return "", err
	}
	loc, err := sink.Write(ctx, FileName, data)
	if err != nil {
		e.log.Error("backup write failed", zap.Error(err))
		return "", fmt.Errorf("write backup: %w", err)
	}
	e.log.Info("backup written", zap.String("location", loc), zap.Int("bytes", len(data)))
	return loc, nil
}

// ClearAll removes the vault, settings and user slots and empties the in-memory vault.
func (e *Exporter) ClearAll(ctx context.Context) error {
	err := errors.Join(
		e.vault.Clear(ctx),
		e.settings.Reset(ctx),
		e.sessions.SignOut(ctx),
	)
	if err != nil {
		e.log.Error("clear all failed", zap.Error(err))
		return err
	}
	e.log.Info("all data cleared")
	return nil
}
