package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/b2bplatform/b2b-backend/internal/api/metrics"
	"github.com/b2bplatform/b2b-backend/internal/core/domain"
	"github.com/b2bplatform/b2b-backend/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type registerRequest struct {
	FullName string `form:"full_name" validate:"required"`
	Email    string `form:"email"     validate:"required,email"`
	Password string `form:"password"  validate:"required,min=6"`
}

type loginResponse struct {
	Token      string    `json:"token"`
	Expiration time.Time `json:"expiration"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// Register creates a new staff account from a multipart form carrying the
// profile image.
//
// @Summary      Register a new staff user
// @Tags         auth
// @Accept       multipart/form-data
// @Produce      json
// @Param        full_name  formData  string  true  "Display name"
// @Param        email      formData  string  true  "Email address"
// @Param        password   formData  string  true  "Password"
// @Param        image      formData  file    true  "Profile image (jpg, jpeg, gif, png)"
// @Success      201  {object}  messageResponse
// @Failure      400  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	req := registerRequest{
		FullName: c.FormValue("full_name"),
		Email:    c.FormValue("email"),
		Password: c.FormValue("password"),
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "profile image is required")
	}
	file, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "profile image is unreadable")
	}
	defer file.Close()

	err = h.authService.Register(c.Request().Context(), ports.RegisterInput{
		FullName: req.FullName,
		Email:    req.Email,
		Password: req.Password,
		Image: ports.ImageUpload{
			Filename: fileHeader.Filename,
			Size:     fileHeader.Size,
			Content:  file,
		},
	})
	if err != nil {
		metrics.RegistrationsTotal.WithLabelValues(registerResult(err)).Inc()
		return err
	}

	metrics.RegistrationsTotal.WithLabelValues("success").Inc()
	return c.JSON(http.StatusCreated, messageResponse{Message: "registration completed"})
}

// UserLogin authenticates a staff user and returns a session token carrying
// the user's operation claims.
//
// @Summary      Staff login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /auth/login [post]
func (h *AuthHandler) UserLogin(c echo.Context) error {
	return h.login(c, domain.KindStaff, h.authService.UserLogin)
}

// CustomerLogin authenticates a customer and returns a claimless session token.
//
// @Summary      Customer login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /auth/customer-login [post]
func (h *AuthHandler) CustomerLogin(c echo.Context) error {
	return h.login(c, domain.KindCustomer, h.authService.CustomerLogin)
}

func (h *AuthHandler) login(
	c echo.Context,
	kind domain.PrincipalKind,
	authenticate func(ctx context.Context, email, password string) (*domain.SessionToken, error),
) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	start := time.Now()
	tok, err := authenticate(c.Request().Context(), req.Email, req.Password)
	metrics.LoginDuration.WithLabelValues(string(kind)).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.LoginsTotal.WithLabelValues(string(kind), loginResult(err)).Inc()
		return err
	}

	metrics.LoginsTotal.WithLabelValues(string(kind), "success").Inc()
	return c.JSON(http.StatusOK, loginResponse{
		Token:      tok.Token,
		Expiration: tok.Expiration.UTC(),
	})
}

func loginResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrPrincipalNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "invalid_credentials"
	default:
		return "error"
	}
}

func registerResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrDuplicateEmail),
		errors.Is(err, domain.ErrInvalidImageExtension),
		errors.Is(err, domain.ErrImageTooLarge):
		return "rejected"
	default:
		return "error"
	}
}
