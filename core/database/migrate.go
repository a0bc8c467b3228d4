package database

import (
	"context"
	_ "embed"
	"fmt"

	"livestream-api/core/logger"
)

//go:embed schema.sql
var schemaSQL string

// Migrate applies the embedded schema. Every statement is idempotent.
func (d *Database) Migrate(ctx context.Context) error {
	if _, err := d.sqlx.ExecContext(ctx, schemaSQL); err != nil {
		logger.Error("Database:Migrate:Error", "error", err)
		return fmt.Errorf("apply schema: %w", err)
	}
	logger.Info("Database schema applied")
	return nil
}
