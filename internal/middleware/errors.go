package middleware

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/ahsanfayaz52/notesapi/internal/apperror"
	"github.com/ahsanfayaz52/notesapi/internal/respond"
)

// HandlerFunc is an http handler that reports failure by returning it.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

type errorBody struct {
	Status  string            `json:"status"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
	Error   string            `json:"error,omitempty"`
	Stack   string            `json:"stack,omitempty"`
}

// ErrorResponder turns errors into response envelopes. In development mode
// unexpected errors are returned to the client in full; otherwise they are
// only logged.
type ErrorResponder struct {
	logger      *slog.Logger
	development bool
}

func NewErrorResponder(logger *slog.Logger, development bool) *ErrorResponder {
	if logger == nil {
		logger = slog.Default()
	}
	return &ErrorResponder{logger: logger, development: development}
}

// Handle adapts fn to http.HandlerFunc, routing any returned error through
// Respond.
func (er *ErrorResponder) Handle(fn HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			er.Respond(w, r, err)
		}
	}
}

func (er *ErrorResponder) Respond(w http.ResponseWriter, r *http.Request, err error) {
	appErr := apperror.From(err)
	body := errorBody{
		Status:  appErr.Status,
		Message: appErr.Message,
		Errors:  appErr.Fields,
	}

	if appErr.Operational {
		er.logger.Debug("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", appErr.StatusCode,
			"request_id", RequestIDFrom(r.Context()),
			"error", appErr.Error())
		respond.JSON(w, appErr.StatusCode, body)
		return
	}

	attrs := []any{
		"method", r.Method,
		"path", r.URL.Path,
		"request_id", RequestIDFrom(r.Context()),
		"error", appErr.Err,
	}
	if len(appErr.Stack) > 0 {
		attrs = append(attrs, "stack", string(appErr.Stack))
	}
	er.logger.Error("unexpected error", attrs...)

	if er.development && appErr.Err != nil {
		body.Message = appErr.Err.Error()
		body.Error = fmt.Sprintf("%+v", appErr.Err)
		body.Stack = string(appErr.Stack)
	}
	respond.JSON(w, appErr.StatusCode, body)
}

// NotFound answers any request that matched no route.
func (er *ErrorResponder) NotFound() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		er.Respond(w, r, apperror.NotFound(fmt.Sprintf("Can't find %s on this server!", r.URL.RequestURI())))
	})
}
