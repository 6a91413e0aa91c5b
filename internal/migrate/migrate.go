// Package migrate applies the embedded slot-table migrations for the postgres backend.
package migrate

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"

	"github.com/and161185/mobicure/migrations"
)

// NewProvider returns a goose provider over the embedded migrations. Closing it closes db.
func NewProvider(db *sql.DB) (*goose.Provider, error) {
	return goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
}

// Up brings the slots table to the latest version and logs each applied step.
func Up(ctx context.Context, dsn string, log *zap.Logger) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	p, err := NewProvider(db)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("goose provider: %w", err)
	}
	defer p.Close()

	res, err := p.Up(ctx)
	for _, r := range res {
		log.Info("migration applied",
			zap.Int64("version", r.Source.Version),
			zap.String("file", r.Source.Path),
			zap.Duration("took", r.Duration))
	}
	return err
}
