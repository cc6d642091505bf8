package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahsanfayaz52/notesapi/internal/middleware"
	"github.com/ahsanfayaz52/notesapi/internal/models"
	"github.com/ahsanfayaz52/notesapi/internal/service"
	"github.com/ahsanfayaz52/notesapi/internal/store"
	"github.com/ahsanfayaz52/notesapi/internal/validation"
)

type response struct {
	Status  string            `json:"status"`
	Message string            `json:"message"`
	Results *int              `json:"results"`
	Errors  map[string]string `json:"errors"`
	Error   string            `json:"error"`
	Data    struct {
		Note  *models.Note  `json:"note"`
		Notes []models.Note `json:"notes"`
	} `json:"data"`
}

// brokenStore fails every read and write.
type brokenStore struct {
	*store.Memory
	err error
}

func (b brokenStore) FindAll(context.Context) ([]models.Note, error) { return nil, b.err }
func (b brokenStore) Create(context.Context, *models.Note) error     { return b.err }
func (b brokenStore) Ping(context.Context) error                     { return b.err }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestRouter(t *testing.T, st store.NoteStore, development bool) http.Handler {
	t.Helper()
	logger := discardLogger()
	gate := validation.New()
	return NewRouter(RouterConfig{
		APIPrefix:   "/api",
		Service:     service.NewNoteService(st, logger, service.WithGate(gate)),
		Gate:        gate,
		Logger:      logger,
		Development: development,
		Metrics:     middleware.NewMetrics(),
	})
}

func do(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, response) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var resp response
	if rec.Body.Len() > 0 && strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	}
	return rec, resp
}

func TestNoteLifecycle(t *testing.T) {
	h := newTestRouter(t, store.NewMemory(), false)

	rec, resp := do(t, h, http.MethodPost, "/api/notes/", `{"noteId":"a","content":"first"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "success", resp.Status)
	require.NotNil(t, resp.Data.Note)
	assert.Equal(t, "a", resp.Data.Note.NoteID)
	assert.Equal(t, "first", resp.Data.Note.Content)
	assert.NotEmpty(t, resp.Data.Note.ID)

	rec, resp = do(t, h, http.MethodPatch, "/api/notes/api/a", `{"content":"second"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NotNil(t, resp.Data.Note)
	assert.Equal(t, "second", resp.Data.Note.Content)

	rec, _ = do(t, h, http.MethodDelete, "/api/notes/a", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Zero(t, rec.Body.Len())

	rec, resp = do(t, h, http.MethodGet, "/api/notes/a", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "fail", resp.Status)
	assert.Equal(t, "Note not found", resp.Message)
}

func TestListAll(t *testing.T) {
	h := newTestRouter(t, store.NewMemory(), false)

	rec, resp := do(t, h, http.MethodGet, "/api/notes/all", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, resp.Results)
	assert.Equal(t, 0, *resp.Results)
	assert.JSONEq(t, `{"status":"success","results":0,"data":{"notes":[]}}`, rec.Body.String())

	for _, body := range []string{
		`{"noteId":"x","content":"one"}`,
		`{"noteId":"y","content":"two"}`,
	} {
		rec, _ = do(t, h, http.MethodPost, "/api/notes", body)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec, resp = do(t, h, http.MethodGet, "/api/notes/all", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, *resp.Results)
	require.Len(t, resp.Data.Notes, 2)
	assert.Equal(t, "x", resp.Data.Notes[0].NoteID)
	assert.Equal(t, "y", resp.Data.Notes[1].NoteID)
}

func TestCreateValidation(t *testing.T) {
	h := newTestRouter(t, store.NewMemory(), false)

	tests := []struct {
		name   string
		body   string
		fields map[string]string
	}{
		{"empty body", "", map[string]string{"noteId": "Note ID is required", "content": "Content is required"}},
		{"missing content", `{"noteId":"a"}`, map[string]string{"content": "Content is required"}},
		{"blank note id", `{"noteId":"  ","content":"x"}`, map[string]string{"noteId": "Note ID is required"}},
		{"wrong type", `{"noteId":"a","content":5}`, map[string]string{"content": "Content is required"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, resp := do(t, h, http.MethodPost, "/api/notes", tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "fail", resp.Status)
			assert.Equal(t, "Validation error", resp.Message)
			assert.Equal(t, tt.fields, resp.Errors)
		})
	}
}

func TestCreateMalformedBody(t *testing.T) {
	h := newTestRouter(t, store.NewMemory(), false)

	rec, resp := do(t, h, http.MethodPost, "/api/notes", `{"noteId":`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.True(t, strings.HasPrefix(resp.Message, "Invalid request body: "), resp.Message)

	rec, resp = do(t, h, http.MethodPost, "/api/notes", `{"noteId":"a","content":"b","title":"c"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, `Invalid request body: unknown field "title"`, resp.Message)
}

func TestCreateRejectsTrailingData(t *testing.T) {
	h := newTestRouter(t, store.NewMemory(), false)

	rec, resp := do(t, h, http.MethodPost, "/api/notes", `{"noteId":"a","content":"b"} trailing garbage`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.True(t, strings.HasPrefix(resp.Message, "Invalid request body: "), resp.Message)

	rec, resp = do(t, h, http.MethodPost, "/api/notes", `{"noteId":"a","content":"b"}{"x":1}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid request body: unexpected data after JSON object", resp.Message)

	rec, resp = do(t, h, http.MethodPatch, "/api/notes/api/a", `{"content":"c"}{"content":"d"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "fail", resp.Status)

	_, resp = do(t, h, http.MethodGet, "/api/notes/all", "")
	require.NotNil(t, resp.Results)
	assert.Equal(t, 0, *resp.Results)
}

func TestCreateBodyTooLarge(t *testing.T) {
	h := newTestRouter(t, store.NewMemory(), false)

	body := `{"noteId":"a","content":"` + strings.Repeat("x", MaxBodyBytes) + `"}`
	rec, resp := do(t, h, http.MethodPost, "/api/notes", body)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, "fail", resp.Status)
}

func TestUpdate(t *testing.T) {
	mem := store.NewMemory()
	h := newTestRouter(t, mem, false)

	rec, _ := do(t, h, http.MethodPost, "/api/notes", `{"noteId":"a","content":"first"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	t.Run("empty body keeps content", func(t *testing.T) {
		rec, resp := do(t, h, http.MethodPatch, "/api/notes/api/a", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "first", resp.Data.Note.Content)
	})

	t.Run("blank content", func(t *testing.T) {
		rec, resp := do(t, h, http.MethodPatch, "/api/notes/api/a", `{"content":"   "}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, map[string]string{"content": "Content must be a non-empty string"}, resp.Errors)
	})

	t.Run("missing note is not created", func(t *testing.T) {
		rec, resp := do(t, h, http.MethodPatch, "/api/notes/api/missing", `{"content":"x"}`)
		require.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Note not found", resp.Message)
		assert.Equal(t, 1, mem.Len())
	})
}

func TestDeleteMissing(t *testing.T) {
	h := newTestRouter(t, store.NewMemory(), false)

	rec, resp := do(t, h, http.MethodDelete, "/api/notes/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Note not found", resp.Message)
}

func TestUnmatchedRoute(t *testing.T) {
	h := newTestRouter(t, store.NewMemory(), false)

	rec, resp := do(t, h, http.MethodGet, "/api/unknown?x=1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "fail", resp.Status)
	assert.Equal(t, "Can't find /api/unknown?x=1 on this server!", resp.Message)

	rec, resp = do(t, h, http.MethodPut, "/api/notes/a", `{}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Can't find /api/notes/a on this server!", resp.Message)
}

func TestRootRedirect(t *testing.T) {
	h := newTestRouter(t, store.NewMemory(), false)

	rec, _ := do(t, h, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/api/notes/all", rec.Header().Get("Location"))
}

func TestStoreFailures(t *testing.T) {
	broken := brokenStore{Memory: store.NewMemory(), err: errors.New("connection reset")}

	t.Run("read failure is hidden in production", func(t *testing.T) {
		h := newTestRouter(t, broken, false)
		rec, resp := do(t, h, http.MethodGet, "/api/notes/all", "")
		require.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "error", resp.Status)
		assert.Equal(t, "Something went wrong", resp.Message)
		assert.Empty(t, resp.Error)
	})

	t.Run("read failure is detailed in development", func(t *testing.T) {
		h := newTestRouter(t, broken, true)
		rec, resp := do(t, h, http.MethodGet, "/api/notes/all", "")
		require.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "error", resp.Status)
		assert.Contains(t, resp.Error, "connection reset")
	})

	t.Run("write failure is a client error", func(t *testing.T) {
		h := newTestRouter(t, broken, false)
		rec, resp := do(t, h, http.MethodPost, "/api/notes", `{"noteId":"a","content":"b"}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "fail", resp.Status)
		assert.Equal(t, "connection reset", resp.Message)
	})

	t.Run("health reports the store", func(t *testing.T) {
		h := newTestRouter(t, broken, false)
		rec, resp := do(t, h, http.MethodGet, "/healthz", "")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Equal(t, "Store unavailable", resp.Message)
	})
}

func TestHealthAndMetrics(t *testing.T) {
	h := newTestRouter(t, store.NewMemory(), false)

	rec, resp := do(t, h, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "success", resp.Status)

	rec, _ = do(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `notesapi_http_requests_total{code="200",method="get",route="/healthz"} 1`)
}

func TestMetricsCountUnmatched(t *testing.T) {
	h := newTestRouter(t, store.NewMemory(), false)

	rec, _ := do(t, h, http.MethodGet, "/nowhere", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	rec, _ = do(t, h, http.MethodPut, "/api/notes/a", `{}`)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = do(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `notesapi_http_requests_total{code="404",method="get",route="unmatched"} 1`)
	assert.Contains(t, body, `notesapi_http_requests_total{code="404",method="put",route="unmatched"} 1`)
}

func TestResponseHeaders(t *testing.T) {
	h := newTestRouter(t, store.NewMemory(), false)

	rec, _ := do(t, h, http.MethodGet, "/api/notes/all", "")
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))
}
