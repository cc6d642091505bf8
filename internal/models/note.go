package models

import "time"

type Note struct {
	ID        string    `json:"_id"`
	NoteID    string    `json:"noteId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CreateNoteRequest is the body accepted by POST. Pointer fields let the
// validator tell an absent field from an empty one.
type CreateNoteRequest struct {
	NoteID  *string `json:"noteId" validate:"required,notblank"`
	Content *string `json:"content" validate:"required,notblank"`
}

// UpdateNoteRequest is the body accepted by PATCH. Only content may change.
type UpdateNoteRequest struct {
	Content *string `json:"content" validate:"omitempty,notblank"`
}

// NoteUpdate is what the store applies to an existing note.
type NoteUpdate struct {
	Content   *string
	UpdatedAt time.Time
}
