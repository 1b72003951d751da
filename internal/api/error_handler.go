package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/b2bplatform/b2b-backend/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps expected business failures to 4xx with their message unchanged.
//   - Logs unexpected errors internally without leaking details to the client,
//     so storage or signing trouble surfaces as 500, never as a business "no".
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	// Expected business failures → deterministic HTTP codes, message unchanged.
	switch {
	case errors.Is(err, domain.ErrPrincipalNotFound):
		return http.StatusNotFound, domain.ErrPrincipalNotFound.Error()
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, domain.ErrInvalidCredentials.Error()
	case errors.Is(err, domain.ErrDuplicateEmail):
		return http.StatusConflict, domain.ErrDuplicateEmail.Error()
	case errors.Is(err, domain.ErrInvalidImageExtension):
		return http.StatusBadRequest, domain.ErrInvalidImageExtension.Error()
	case errors.Is(err, domain.ErrImageTooLarge):
		return http.StatusBadRequest, domain.ErrImageTooLarge.Error()
	case errors.Is(err, domain.ErrImageNotFound):
		return http.StatusNotFound, domain.ErrImageNotFound.Error()
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
