// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"codeberg.org/oliverandrich/website/internal/i18n"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// echoValidator wraps go-playground/validator so echo can call c.Validate(req).
type echoValidator struct {
	v *validator.Validate
}

// NewValidator returns an echo.Validator backed by go-playground/validator.
func NewValidator() echo.Validator {
	return &echoValidator{v: validator.New()}
}

// Validate rejects requests with a 400 listing each failed field.
func (ev *echoValidator) Validate(i any) error {
	err := ev.v.Struct(i)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		return echo.NewHTTPError(http.StatusBadRequest, fieldErrors(ve))
	}
	return err
}

// fieldErrors is the message of a failed validation. The error handler
// renders it in the request locale.
type fieldErrors []validator.FieldError

func (fe fieldErrors) String() string {
	return fe.localize(context.Background())
}

func (fe fieldErrors) localize(ctx context.Context) string {
	msgs := make([]string, 0, len(fe))
	for _, f := range fe {
		msgs = append(msgs, fieldError(f).Localize(ctx))
	}
	return strings.Join(msgs, "; ")
}

func fieldError(fe validator.FieldError) i18n.Message {
	field := strings.ToLower(fe.Field())
	data := map[string]any{"Field": field, "Param": fe.Param(), "Tag": fe.Tag()}
	switch fe.Tag() {
	case "required":
		return i18n.Message{ID: "validation_required", Default: field + " is required", Data: data}
	case "email":
		return i18n.Message{ID: "validation_email", Default: field + " must be a valid email", Data: data}
	case "max":
		return i18n.Message{
			ID:      "validation_max",
			Default: fmt.Sprintf("%s must be at most %s characters", field, fe.Param()),
			Data:    data,
		}
	default:
		return i18n.Message{
			ID:      "validation_failed",
			Default: fmt.Sprintf("%s failed validation (%s)", field, fe.Tag()),
			Data:    data,
		}
	}
}
