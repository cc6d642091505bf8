// Package db opens the backing stores and prepares their schema.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

const createNotesTable = `CREATE TABLE IF NOT EXISTS notes (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	note_id VARCHAR(255) NOT NULL,
	content TEXT NOT NULL,
	created_at DATETIME(3) NOT NULL,
	updated_at DATETIME(3) NOT NULL,
	INDEX idx_notes_note_id (note_id)
) ENGINE=InnoDB;`

// OpenMySQL connects to dsn, checks the connection and creates the notes
// table if it is missing.
func OpenMySQL(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}
	db.SetConnMaxLifetime(3 * time.Minute)
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("mysql ping failed: %w", err)
	}

	if err := Migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Migrate creates the notes table.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, createNotesTable); err != nil {
		return fmt.Errorf("error creating notes table: %w", err)
	}
	return nil
}
