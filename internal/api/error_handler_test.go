package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/b2bplatform/b2b-backend/internal/core/domain"
)

func resolve(t *testing.T, err error) (int, string) {
	t.Helper()
	e := echo.New()
	e.HTTPErrorHandler = NewHTTPErrorHandler(zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	e.HTTPErrorHandler(err, c)

	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json body: %v", err)
	}
	return rec.Code, resp["error"]
}

func TestErrorHandler_BusinessFailures(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{domain.ErrPrincipalNotFound, http.StatusNotFound},
		{domain.ErrInvalidCredentials, http.StatusUnauthorized},
		{domain.ErrDuplicateEmail, http.StatusConflict},
		{domain.ErrInvalidImageExtension, http.StatusBadRequest},
		{domain.ErrImageTooLarge, http.StatusBadRequest},
		{domain.ErrImageNotFound, http.StatusNotFound},
	}

	for _, tc := range cases {
		code, msg := resolve(t, tc.err)
		if code != tc.code {
			t.Errorf("%v: expected %d, got %d", tc.err, tc.code, code)
		}
		if msg != tc.err.Error() {
			t.Errorf("%v: message must pass through unchanged, got %q", tc.err, msg)
		}
	}
}

func TestErrorHandler_WrappedBusinessFailure(t *testing.T) {
	wrapped := fmt.Errorf("insert user: %w", domain.ErrDuplicateEmail)
	code, msg := resolve(t, wrapped)
	if code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", code)
	}
	if msg != domain.ErrDuplicateEmail.Error() {
		t.Fatalf("expected canonical message, got %q", msg)
	}
}

func TestErrorHandler_SystemErrorsAreOpaque(t *testing.T) {
	for _, err := range []error{
		domain.ErrStorageUnavailable,
		domain.ErrSigningFailure,
		errors.New("mongo topology gone"),
	} {
		code, msg := resolve(t, err)
		if code != http.StatusInternalServerError {
			t.Errorf("%v: expected 500, got %d", err, code)
		}
		if msg != "internal server error" {
			t.Errorf("%v: internals must not leak, got %q", err, msg)
		}
	}
}

func TestErrorHandler_EchoErrorsPassThrough(t *testing.T) {
	code, msg := resolve(t, echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header"))
	if code != http.StatusUnauthorized || msg != "missing authorization header" {
		t.Fatalf("unexpected mapping: %d %q", code, msg)
	}
}
