package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/ahsanfayaz52/notesapi/internal/apperror"
	"github.com/ahsanfayaz52/notesapi/internal/models"
	"github.com/ahsanfayaz52/notesapi/internal/respond"
	"github.com/ahsanfayaz52/notesapi/internal/validation"
)

// MaxBodyBytes caps request bodies.
const MaxBodyBytes = 100 << 10

// NoteService is the part of service.NoteService the handlers call.
type NoteService interface {
	Create(ctx context.Context, req models.CreateNoteRequest) (*models.Note, error)
	ListAll(ctx context.Context) ([]models.Note, error)
	GetByKey(ctx context.Context, noteID string) (*models.Note, error)
	Update(ctx context.Context, noteID string, req models.UpdateNoteRequest) (*models.Note, error)
	Delete(ctx context.Context, noteID string) error
	Ping(ctx context.Context) error
}

type NoteHandler struct {
	notes NoteService
	gate  *validation.Gate
}

func NewNoteHandler(notes NoteService, gate *validation.Gate) *NoteHandler {
	if gate == nil {
		gate = validation.New()
	}
	return &NoteHandler{notes: notes, gate: gate}
}

func (h *NoteHandler) List(w http.ResponseWriter, r *http.Request) error {
	notes, err := h.notes.ListAll(r.Context())
	if err != nil {
		return err
	}
	respond.List(w, http.StatusOK, len(notes), map[string]any{"notes": notes})
	return nil
}

func (h *NoteHandler) Get(w http.ResponseWriter, r *http.Request) error {
	note, err := h.notes.GetByKey(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		return err
	}
	respond.Success(w, http.StatusOK, map[string]any{"note": note})
	return nil
}

func (h *NoteHandler) Create(w http.ResponseWriter, r *http.Request) error {
	req, fields, err := h.gate.DecodeCreate(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		return bodyError(err)
	}
	if len(fields) > 0 {
		return apperror.Validation(fields)
	}

	note, err := h.notes.Create(r.Context(), req)
	if err != nil {
		return err
	}
	respond.Success(w, http.StatusCreated, map[string]any{"note": note})
	return nil
}

func (h *NoteHandler) Update(w http.ResponseWriter, r *http.Request) error {
	req, fields, err := h.gate.DecodeUpdate(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		return bodyError(err)
	}
	if len(fields) > 0 {
		return apperror.Validation(fields)
	}

	note, err := h.notes.Update(r.Context(), mux.Vars(r)["id"], req)
	if err != nil {
		return err
	}
	respond.Success(w, http.StatusOK, map[string]any{"note": note})
	return nil
}

func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request) error {
	if err := h.notes.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		return err
	}
	respond.NoContent(w)
	return nil
}

// Health pings the store.
func (h *NoteHandler) Health(w http.ResponseWriter, r *http.Request) error {
	if err := h.notes.Ping(r.Context()); err != nil {
		e := apperror.New(http.StatusServiceUnavailable, "Store unavailable")
		e.Err = err
		return e
	}
	respond.JSON(w, http.StatusOK, respond.Envelope{Status: respond.StatusSuccess})
	return nil
}

func bodyError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return apperror.New(http.StatusRequestEntityTooLarge,
			fmt.Sprintf("Request body exceeds %d bytes", tooLarge.Limit))
	}
	detail := strings.TrimPrefix(err.Error(), validation.ErrMalformedBody.Error()+": ")
	return apperror.BadRequest("Invalid request body: " + detail)
}
