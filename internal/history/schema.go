package history

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
)

//go:embed schema.sql
var initialSchema string

// migrations are applied in order; the database's PRAGMA user_version counts
// how many have run. Append new steps, never edit old ones.
var migrations = []string{
	initialSchema,
}

// ErrSchemaTooNew means the database was written by a newer tubeaudio.
var ErrSchemaTooNew = errors.New("history schema is newer than this build")

func schemaVersion() int { return len(migrations) }

func (s *Store) migrate(ctx context.Context) error {
	var current int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&current); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if current > schemaVersion() {
		return fmt.Errorf("%w: %s has version %d, this build knows %d", ErrSchemaTooNew, s.path, current, schemaVersion())
	}
	for version := current; version < schemaVersion(); version++ {
		if err := s.applyMigration(ctx, version+1, migrations[version]); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) applyMigration(ctx context.Context, version int, stmt string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration %d: %w", version, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("apply migration %d: %w", version, err)
	}
	// PRAGMA does not accept bind parameters.
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", version)); err != nil {
		return fmt.Errorf("record schema version %d: %w", version, err)
	}
	return tx.Commit()
}
