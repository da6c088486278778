package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"github.com/dmitrijs2005/todokeeper/internal/common"
	"github.com/dmitrijs2005/todokeeper/internal/server/models"
)

const maxBodyBytes = 1 << 20

// labels are the human names used in field messages, keyed by JSON name.
var labels = map[string]string{
	"fullName":     "Full name",
	"email":        "Email",
	"password":     "Password",
	"refreshToken": "Refresh token",
	"id":           "ID",
	"title":        "Title",
	"description":  "Description",
	"dueDate":      "Due date",
	"priority":     "Priority",
	"completed":    "Completed",
}

// gate decodes and validates request input before it reaches a service.
// Every failure is a *common.ValidationError.
type gate struct {
	v   *validator.Validate
	now func() time.Time
}

func newGate(now func() time.Time) *gate {
	g := &gate{v: validator.New(validator.WithRequiredStructEnabled()), now: now}

	g.v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = g.v.RegisterValidation("notblank", validators.NotBlank)
	_ = g.v.RegisterValidation("future", func(fl validator.FieldLevel) bool {
		t, ok := fl.Field().Interface().(time.Time)
		return ok && t.After(g.now())
	})
	return g
}

// decode reads a JSON body into dst and validates it.
func (g *gate) decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return decodeError(err)
	}
	return g.check(dst)
}

func (g *gate) check(s any) error {
	err := g.v.Struct(s)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return err
	}
	verr := &common.ValidationError{}
	for _, fe := range ves {
		verr.Add(fe.Field(), message(fe.Field(), fe.Tag(), fe.Param()))
	}
	return verr
}

// checkVar validates a single value against tag and records the failure
// under field.
func (g *gate) checkVar(verr *common.ValidationError, field string, value any, tag string) {
	if err := g.v.Var(value, tag); err != nil {
		var ves validator.ValidationErrors
		if errors.As(err, &ves) && len(ves) > 0 {
			verr.Add(field, message(field, ves[0].Tag(), ves[0].Param()))
			return
		}
		verr.Add(field, err.Error())
	}
}

func message(field, tag, param string) string {
	label, ok := labels[field]
	if !ok {
		label = field
	}
	switch tag {
	case "required", "notblank":
		return label + " is required"
	case "email":
		return label + " should be valid"
	case "max":
		return fmt.Sprintf("%s must be %s characters or fewer", label, param)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters long", label, param)
	case "future":
		return label + " must be in the future"
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", label, param)
	default:
		return label + " is invalid"
	}
}

func decodeError(err error) error {
	var (
		typeErr *json.UnmarshalTypeError
		timeErr *time.ParseError
		syntax  *json.SyntaxError
	)
	switch {
	case errors.Is(err, models.ErrInvalidPriority):
		return common.NewValidationError("priority", "Priority must be one of LOW, MEDIUM, HIGH")
	case errors.As(err, &timeErr):
		return common.NewValidationError("dueDate", "Due date must be an RFC 3339 timestamp")
	case errors.As(err, &typeErr):
		field := typeErr.Field
		if field == "" {
			field = "body"
		}
		return common.NewValidationError(field, fmt.Sprintf("must be of type %s", typeErr.Type))
	case errors.As(err, &syntax), errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return common.NewValidationError("body", "Request body must be a JSON object")
	default:
		return common.NewValidationError("body", "Request body is invalid")
	}
}

// --- query and path parameters ---

func pageRequest(r *http.Request) (models.PageRequest, error) {
	verr := &common.ValidationError{}
	q := r.URL.Query()

	page := intParam(verr, q.Get("page"), "page", 0)
	size := intParam(verr, q.Get("size"), "size", models.DefaultPageSize)
	if !verr.Empty() {
		return models.PageRequest{}, verr
	}

	req, err := models.NewPageRequest(page, size, q.Get("sort"))
	if err != nil {
		return models.PageRequest{}, common.NewValidationError("sort", err.Error())
	}
	return req, nil
}

func intParam(verr *common.ValidationError, raw, field string, def int) int {
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		verr.Add(field, field+" must be an integer")
		return def
	}
	return n
}

func boolParam(r *http.Request, field string) (bool, error) {
	raw := r.URL.Query().Get(field)
	if raw == "" {
		return false, common.NewValidationError(field, field+" is required")
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, common.NewValidationError(field, field+" must be true or false")
	}
	return b, nil
}

func idParam(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, common.NewValidationError("id", "ID must be a positive integer")
	}
	return id, nil
}
