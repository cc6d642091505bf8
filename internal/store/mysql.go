package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/ahsanfayaz52/notesapi/internal/models"
)

const selectNoteColumns = `SELECT id, note_id, content, created_at, updated_at FROM notes`

type MySQL struct {
	db *sql.DB
}

func NewMySQL(db *sql.DB) *MySQL {
	return &MySQL{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNote(row rowScanner) (models.Note, error) {
	var (
		n  models.Note
		id int64
	)
	if err := row.Scan(&id, &n.NoteID, &n.Content, &n.CreatedAt, &n.UpdatedAt); err != nil {
		return n, err
	}
	n.ID = strconv.FormatInt(id, 10)
	n.CreatedAt = n.CreatedAt.UTC()
	n.UpdatedAt = n.UpdatedAt.UTC()
	return n, nil
}

func (s *MySQL) Create(ctx context.Context, n *models.Note) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO notes (note_id, content, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		n.NoteID, n.Content, n.CreatedAt, n.UpdatedAt)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("read inserted id: %w", err)
	}
	n.ID = strconv.FormatInt(id, 10)
	return nil
}

func (s *MySQL) FindAll(ctx context.Context) ([]models.Note, error) {
	rows, err := s.db.QueryContext(ctx, selectNoteColumns+` ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query notes: %w", err)
	}
	defer rows.Close()

	notes := []models.Note{}
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notes: %w", err)
	}
	return notes, nil
}

func (s *MySQL) FindByNoteID(ctx context.Context, noteID string) (*models.Note, error) {
	n, err := scanNote(s.db.QueryRowContext(ctx,
		selectNoteColumns+` WHERE note_id = ? ORDER BY id LIMIT 1`, noteID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find note %q: %w", noteID, err)
	}
	return &n, nil
}

// UpdateByNoteID locks the first matching row, so a concurrent delete either
// happens before (ErrNotFound) or waits for the commit.
func (s *MySQL) UpdateByNoteID(ctx context.Context, noteID string, u models.NoteUpdate) (*models.Note, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	n, err := scanNote(tx.QueryRowContext(ctx,
		selectNoteColumns+` WHERE note_id = ? ORDER BY id LIMIT 1 FOR UPDATE`, noteID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("lock note %q: %w", noteID, err)
	}

	if u.Content != nil {
		n.Content = *u.Content
	}
	if u.UpdatedAt.After(n.UpdatedAt) {
		n.UpdatedAt = u.UpdatedAt
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE notes SET content = ?, updated_at = ? WHERE id = ?`,
		n.Content, n.UpdatedAt, n.ID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return &n, nil
}

func (s *MySQL) DeleteByNoteID(ctx context.Context, noteID string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM notes WHERE note_id = ? ORDER BY id LIMIT 1`, noteID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("read affected rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MySQL) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
