// Package validation checks note request bodies before anything is written.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"github.com/ahsanfayaz52/notesapi/internal/models"
)

// Errors maps a JSON field name to a human readable message.
type Errors map[string]string

var ErrMalformedBody = errors.New("invalid request body")

var (
	createMessages = map[string]string{
		"noteId":  "Note ID is required",
		"content": "Content is required",
	}
	updateMessages = map[string]string{
		"content": "Content must be a non-empty string",
	}
)

type Gate struct {
	validate *validator.Validate
}

func New() *Gate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	// Registration only fails for empty tags or nil funcs.
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	return &Gate{validate: v}
}

// DecodeCreate parses and checks a create body. Field problems come back as
// Errors; a body that is not a JSON object of known fields yields an error
// wrapping ErrMalformedBody.
func (g *Gate) DecodeCreate(body io.Reader) (models.CreateNoteRequest, Errors, error) {
	var req models.CreateNoteRequest
	fields := map[string]**string{
		"noteId":  &req.NoteID,
		"content": &req.Content,
	}
	errs, err := g.decode(body, &req, fields, createMessages)
	return req, errs, err
}

// DecodeUpdate parses and checks a partial update body. An empty body, or
// one without content, is valid.
func (g *Gate) DecodeUpdate(body io.Reader) (models.UpdateNoteRequest, Errors, error) {
	var req models.UpdateNoteRequest
	fields := map[string]**string{
		"content": &req.Content,
	}
	errs, err := g.decode(body, &req, fields, updateMessages)
	return req, errs, err
}

// CheckCreate validates an already decoded create request.
func (g *Gate) CheckCreate(req models.CreateNoteRequest) Errors {
	return g.check(req, createMessages)
}

// CheckUpdate validates an already decoded update request.
func (g *Gate) CheckUpdate(req models.UpdateNoteRequest) Errors {
	return g.check(req, updateMessages)
}

func (g *Gate) decode(body io.Reader, req any, fields map[string]**string, messages map[string]string) (Errors, error) {
	var raw map[string]json.RawMessage
	if body != nil {
		dec := json.NewDecoder(body)
		err := dec.Decode(&raw)
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: %w", ErrMalformedBody, err)
		}
		if err == nil {
			// the body must hold exactly one JSON value
			var extra json.RawMessage
			switch err := dec.Decode(&extra); {
			case err == nil:
				return nil, fmt.Errorf("%w: unexpected data after JSON object", ErrMalformedBody)
			case !errors.Is(err, io.EOF):
				return nil, fmt.Errorf("%w: %w", ErrMalformedBody, err)
			}
		}
	}

	var unknown []string
	for key := range raw {
		if _, ok := fields[key]; !ok {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, fmt.Errorf("%w: unknown field %q", ErrMalformedBody, unknown[0])
	}

	errs := Errors{}
	for key, dst := range fields {
		value, ok := raw[key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(value, dst); err != nil {
			*dst = nil
			errs[key] = messages[key]
		}
	}

	for field, msg := range g.check(req, messages) {
		errs[field] = msg
	}
	if len(errs) == 0 {
		return nil, nil
	}
	return errs, nil
}

func (g *Gate) check(req any, messages map[string]string) Errors {
	err := g.validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return Errors{"body": err.Error()}
	}

	errs := Errors{}
	for _, fe := range fieldErrs {
		msg, ok := messages[fe.Field()]
		if !ok {
			msg = fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
		}
		errs[fe.Field()] = msg
	}
	return errs
}
