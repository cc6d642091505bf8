package store

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ahsanfayaz52/notesapi/internal/models"
)

// Memory is a process-local NoteStore. IDs are ObjectIDs so responses look
// the same as with the Mongo backend.
type Memory struct {
	mu    sync.RWMutex
	notes []models.Note
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Create(ctx context.Context, n *models.Note) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	n.ID = primitive.NewObjectID().Hex()
	m.notes = append(m.notes, *n)
	return nil
}

func (m *Memory) FindAll(ctx context.Context) ([]models.Note, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Note, len(m.notes))
	copy(out, m.notes)
	return out, nil
}

func (m *Memory) FindByNoteID(ctx context.Context, noteID string) (*models.Note, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	i := m.indexOf(noteID)
	if i < 0 {
		return nil, ErrNotFound
	}
	n := m.notes[i]
	return &n, nil
}

func (m *Memory) UpdateByNoteID(ctx context.Context, noteID string, u models.NoteUpdate) (*models.Note, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexOf(noteID)
	if i < 0 {
		return nil, ErrNotFound
	}
	if u.Content != nil {
		m.notes[i].Content = *u.Content
	}
	if u.UpdatedAt.After(m.notes[i].UpdatedAt) {
		m.notes[i].UpdatedAt = u.UpdatedAt
	}
	n := m.notes[i]
	return &n, nil
}

func (m *Memory) DeleteByNoteID(ctx context.Context, noteID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexOf(noteID)
	if i < 0 {
		return ErrNotFound
	}
	m.notes = append(m.notes[:i], m.notes[i+1:]...)
	return nil
}

func (m *Memory) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Len reports how many notes are stored.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.notes)
}

func (m *Memory) indexOf(noteID string) int {
	for i := range m.notes {
		if m.notes[i].NoteID == noteID {
			return i
		}
	}
	return -1
}
