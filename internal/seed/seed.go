// Package seed applies generated seed statements to a Postgres database.
package seed

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
)

const driverName = "pgx"

var sqlOpen = sql.Open

// Seeder executes seed statements against one database.
type Seeder struct {
	db  *sql.DB
	log *slog.Logger
}

// Open connects to dsn and verifies the connection.
func Open(ctx context.Context, dsn string, log *slog.Logger) (*Seeder, error) {
	if dsn == "" {
		return nil, errors.New("seed: DATABASE_URL is empty")
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	db, err := sqlOpen(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Seeder{db: db, log: log}, nil
}

// Apply runs every statement inside a single transaction. Any failure rolls
// the whole batch back.
func (s *Seeder) Apply(ctx context.Context, stmts []string) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				s.log.Warn("seed rollback failed", "error", rbErr)
			}
		}
	}()

	for i, stmt := range stmts {
		if _, err = tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("seed statement %d: %w", i+1, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit seed transaction: %w", err)
	}
	s.log.Info("seed applied", "statements", len(stmts))
	return nil
}

func (s *Seeder) Close() error {
	return s.db.Close()
}
