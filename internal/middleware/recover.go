package middleware

import (
	"io"
	"net/http"
	"runtime/debug"

	"github.com/felixge/httpsnoop"
	"github.com/gorilla/mux"

	"github.com/ahsanfayaz52/notesapi/internal/apperror"
)

// Recover converts a panicking handler into a 500 answered by er. A panic
// after the response has started can only be logged.
func Recover(er *ErrorResponder) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			started := false
			tracked := httpsnoop.Wrap(w, httpsnoop.Hooks{
				WriteHeader: func(next httpsnoop.WriteHeaderFunc) httpsnoop.WriteHeaderFunc {
					return func(code int) {
						started = true
						next(code)
					}
				},
				Write: func(next httpsnoop.WriteFunc) httpsnoop.WriteFunc {
					return func(b []byte) (int, error) {
						started = true
						return next(b)
					}
				},
				ReadFrom: func(next httpsnoop.ReadFromFunc) httpsnoop.ReadFromFunc {
					return func(src io.Reader) (int64, error) {
						started = true
						return next(src)
					}
				},
			})

			defer func() {
				v := recover()
				if v == nil {
					return
				}
				if v == http.ErrAbortHandler {
					panic(v)
				}
				appErr := apperror.Panic(v, debug.Stack())
				if started {
					er.logger.Error("panic after response started",
						"method", r.Method,
						"path", r.URL.Path,
						"request_id", RequestIDFrom(r.Context()),
						"error", appErr.Err,
						"stack", string(appErr.Stack))
					return
				}
				er.Respond(w, r, appErr)
			}()
			next.ServeHTTP(tracked, r)
		})
	}
}
