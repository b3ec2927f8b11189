// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"codeberg.org/oliverandrich/website/internal/handlers"
	"codeberg.org/oliverandrich/website/internal/i18n"
	"codeberg.org/oliverandrich/website/internal/testutil"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func init() {
	_ = i18n.Init()
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error {
	return errors.New("database is closed")
}

func TestHealth(t *testing.T) {
	h := handlers.New(nil)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.Health(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestHealth_WithDatabase(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	h := handlers.New(repo)

	e := echo.New()
	c, rec := testutil.NewEchoContext(e, http.MethodGet, "/health", nil)

	require.NoError(t, h.Health(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHealth_DatabaseDown(t *testing.T) {
	h := handlers.New(failingPinger{})

	e := echo.New()
	c, rec := testutil.NewEchoContext(e, http.MethodGet, "/health", nil)

	require.NoError(t, h.Health(c))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"status":"unavailable"}`, rec.Body.String())
}

func TestValidator(t *testing.T) {
	v := handlers.NewValidator()

	err := v.Validate(&handlers.CredentialsRequest{Email: strings.Repeat("a", 250) + "@example.com"})

	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusBadRequest, he.Code)
	assert.Equal(t, "email must be at most 254 characters", fmt.Sprint(he.Message))

	assert.NoError(t, v.Validate(&handlers.CredentialsRequest{Email: "user@example.com"}))
}

func TestErrorHandler_Unknown(t *testing.T) {
	e := echo.New()
	c, rec := testutil.NewEchoContext(e, http.MethodGet, "/boom", nil)

	handlers.NewErrorHandler()(errors.New("sqlite: disk I/O error"), c)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"success":false,"message":"An unexpected server error occurred."}`, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "sqlite")
}

func TestErrorHandler_HTTPError(t *testing.T) {
	e := echo.New()
	c, rec := testutil.NewEchoContext(e, http.MethodGet, "/missing", nil)

	handlers.NewErrorHandler()(echo.ErrNotFound, c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"success":false,"message":"Not Found"}`, rec.Body.String())
}

func TestErrorHandler_Committed(t *testing.T) {
	e := echo.New()
	c, rec := testutil.NewEchoContext(e, http.MethodGet, "/", nil)
	require.NoError(t, c.String(http.StatusOK, "done"))

	handlers.NewErrorHandler()(errors.New("late"), c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "done", rec.Body.String())
}

func TestErrorHandler_LocalizesValidation(t *testing.T) {
	e := echo.New()
	c, rec := testutil.NewEchoContext(e, http.MethodPost, "/api/login", nil)
	c.SetRequest(c.Request().WithContext(i18n.WithLocale(c.Request().Context(), language.German)))

	err := handlers.NewValidator().Validate(&handlers.CredentialsRequest{Email: strings.Repeat("a", 250) + "@example.com"})
	handlers.NewErrorHandler()(err, c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"success":false,"message":"email darf höchstens 254 Zeichen lang sein"}`, rec.Body.String())
}

func TestErrorHandler_LocalizesUnexpected(t *testing.T) {
	e := echo.New()
	c, rec := testutil.NewEchoContext(e, http.MethodGet, "/", nil)
	c.SetRequest(c.Request().WithContext(i18n.WithLocale(c.Request().Context(), language.German)))

	handlers.NewErrorHandler()(errors.New("boom"), c)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"success":false,"message":"Ein unerwarteter Serverfehler ist aufgetreten."}`, rec.Body.String())
}
