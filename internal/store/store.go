// Package store persists notes. Every backend keeps insertion order, allows
// duplicate noteIds and resolves a key to its first match.
package store

import (
	"context"
	"errors"

	"github.com/ahsanfayaz52/notesapi/internal/models"
)

var ErrNotFound = errors.New("note not found")

type NoteStore interface {
	// Create stores n and fills in its ID.
	Create(ctx context.Context, n *models.Note) error
	// FindAll returns every note, oldest first. The result is never nil.
	FindAll(ctx context.Context) ([]models.Note, error)
	FindByNoteID(ctx context.Context, noteID string) (*models.Note, error)
	// UpdateByNoteID applies u to the first note with noteID and returns the
	// result. It never creates a note.
	UpdateByNoteID(ctx context.Context, noteID string, u models.NoteUpdate) (*models.Note, error)
	DeleteByNoteID(ctx context.Context, noteID string) error
	Ping(ctx context.Context) error
}
