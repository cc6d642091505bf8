// Package service implements the note lifecycle on top of a NoteStore.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ahsanfayaz52/notesapi/internal/apperror"
	"github.com/ahsanfayaz52/notesapi/internal/models"
	"github.com/ahsanfayaz52/notesapi/internal/store"
	"github.com/ahsanfayaz52/notesapi/internal/validation"
)

const MessageNoteNotFound = "Note not found"

type NoteService struct {
	store   store.NoteStore
	gate    *validation.Gate
	logger  *slog.Logger
	now     func() time.Time
	timeout time.Duration
}

type Option func(*NoteService)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *NoteService) { s.now = now }
}

// WithGate shares a validation gate with the HTTP layer.
func WithGate(g *validation.Gate) Option {
	return func(s *NoteService) {
		if g != nil {
			s.gate = g
		}
	}
}

// WithTimeout bounds every store call. Zero means no extra bound.
func WithTimeout(d time.Duration) Option {
	return func(s *NoteService) { s.timeout = d }
}

func NewNoteService(st store.NoteStore, logger *slog.Logger, opts ...Option) *NoteService {
	if logger == nil {
		logger = slog.Default()
	}
	s := &NoteService{
		store:  st,
		gate:   validation.New(),
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create validates and stores a new note.
func (s *NoteService) Create(ctx context.Context, req models.CreateNoteRequest) (*models.Note, error) {
	if errs := s.gate.CheckCreate(req); len(errs) > 0 {
		return nil, apperror.Validation(errs)
	}

	now := s.timestamp()
	note := &models.Note{
		NoteID:    strings.TrimSpace(*req.NoteID),
		Content:   strings.TrimSpace(*req.Content),
		CreatedAt: now,
		UpdatedAt: now,
	}

	ctx, cancel := s.bound(ctx)
	defer cancel()

	if err := s.store.Create(ctx, note); err != nil {
		s.logger.Warn("create note failed", "note_id", note.NoteID, "error", err)
		return nil, apperror.Persistence(err)
	}
	s.logger.Debug("note created", "note_id", note.NoteID, "id", note.ID)
	return note, nil
}

func (s *NoteService) ListAll(ctx context.Context) ([]models.Note, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	notes, err := s.store.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	if notes == nil {
		notes = []models.Note{}
	}
	return notes, nil
}

func (s *NoteService) GetByKey(ctx context.Context, noteID string) (*models.Note, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	note, err := s.store.FindByNoteID(ctx, noteID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperror.NotFound(MessageNoteNotFound)
		}
		return nil, fmt.Errorf("get note %q: %w", noteID, err)
	}
	return note, nil
}

// Update applies req to the first note with noteID. An empty request only
// refreshes updatedAt. Missing notes are never created and updatedAt never
// moves backwards.
func (s *NoteService) Update(ctx context.Context, noteID string, req models.UpdateNoteRequest) (*models.Note, error) {
	if errs := s.gate.CheckUpdate(req); len(errs) > 0 {
		return nil, apperror.Validation(errs)
	}

	u := models.NoteUpdate{UpdatedAt: s.timestamp()}
	if req.Content != nil {
		content := strings.TrimSpace(*req.Content)
		u.Content = &content
	}

	ctx, cancel := s.bound(ctx)
	defer cancel()

	note, err := s.store.UpdateByNoteID(ctx, noteID, u)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperror.NotFound(MessageNoteNotFound)
		}
		s.logger.Warn("update note failed", "note_id", noteID, "error", err)
		return nil, apperror.Persistence(err)
	}
	s.logger.Debug("note updated", "note_id", noteID, "content_changed", u.Content != nil)
	return note, nil
}

func (s *NoteService) Delete(ctx context.Context, noteID string) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	if err := s.store.DeleteByNoteID(ctx, noteID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperror.NotFound(MessageNoteNotFound)
		}
		s.logger.Warn("delete note failed", "note_id", noteID, "error", err)
		return apperror.Persistence(err)
	}
	s.logger.Debug("note deleted", "note_id", noteID)
	return nil
}

// Ping reports whether the store is reachable.
func (s *NoteService) Ping(ctx context.Context) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.store.Ping(ctx)
}

// timestamp is truncated to milliseconds, the finest resolution every
// backend keeps.
func (s *NoteService) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

func (s *NoteService) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}
