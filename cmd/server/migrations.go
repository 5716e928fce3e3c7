package main

import (
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
)

// runMigrations executes a goose migration command against the connected
// database. Supported commands are up, down, status and version.
func runMigrations(db *sql.DB, command, dir string) error {
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}

	switch command {
	case "up":
		if err := goose.Up(db, dir); err != nil {
			return fmt.Errorf("failed to apply migrations: %w", err)
		}
	case "down":
		if err := goose.Down(db, dir); err != nil {
			return fmt.Errorf("failed to roll back migration: %w", err)
		}
	case "status":
		if err := goose.Status(db, dir); err != nil {
			return fmt.Errorf("failed to report migration status: %w", err)
		}
	case "version":
		if err := goose.Version(db, dir); err != nil {
			return fmt.Errorf("failed to report migration version: %w", err)
		}
	default:
		return fmt.Errorf("unknown migration command %q (want up, down, status or version)", command)
	}

	return nil
}
