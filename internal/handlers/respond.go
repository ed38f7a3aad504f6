package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/task-tracker-api/internal/errors"
	"github.com/yukikurage/task-tracker-api/internal/services"
)

// bindBody decodes a JSON object into T one field at a time. A field whose
// value has the wrong type is left at its zero value, so the other fields
// still reach validation. A missing or malformed body yields the zero
// request.
func bindBody[T any](c *gin.Context) T {
	var req T
	if c.Request.Body == nil {
		return req
	}

	var fields map[string]json.RawMessage
	if err := json.NewDecoder(c.Request.Body).Decode(&fields); err != nil {
		return req
	}

	v := reflect.ValueOf(&req).Elem()
	if v.Kind() != reflect.Struct {
		return req
	}
	for i := 0; i < v.NumField(); i++ {
		name, _, _ := strings.Cut(v.Type().Field(i).Tag.Get("json"), ",")
		raw, ok := fields[name]
		if name == "" || name == "-" || !ok {
			continue
		}

		field := v.Field(i)
		if err := json.Unmarshal(raw, field.Addr().Interface()); err != nil {
			field.SetZero()
		}
	}
	return req
}

// respondServiceError maps errors shared by every service
func respondServiceError(c *gin.Context, logger *slog.Logger, err error) {
	var validation *services.ValidationError
	switch {
	case errors.As(err, &validation):
		apierrors.BadRequest(c, validation.Message)
	case errors.Is(err, services.ErrNotFound):
		apierrors.NotFound(c)
	case errors.Is(err, services.ErrUnauthenticated):
		apierrors.Unauthorized(c)
	default:
		logger.ErrorContext(c.Request.Context(), "request failed",
			slog.String("method", c.Request.Method),
			slog.String("path", c.FullPath()),
			slog.Any("error", err),
		)
		_ = c.Error(err)
		apierrors.InternalError(c)
	}
}
