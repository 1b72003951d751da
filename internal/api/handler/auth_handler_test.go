package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/b2bplatform/b2b-backend/internal/core/domain"
	"github.com/b2bplatform/b2b-backend/internal/core/ports"
)

type stubAuthService struct {
	registerFn      func(ctx context.Context, input ports.RegisterInput) error
	userLoginFn     func(ctx context.Context, email, password string) (*domain.SessionToken, error)
	customerLoginFn func(ctx context.Context, email, password string) (*domain.SessionToken, error)
}

func (s *stubAuthService) Register(ctx context.Context, input ports.RegisterInput) error {
	return s.registerFn(ctx, input)
}

func (s *stubAuthService) UserLogin(ctx context.Context, email, password string) (*domain.SessionToken, error) {
	return s.userLoginFn(ctx, email, password)
}

func (s *stubAuthService) CustomerLogin(ctx context.Context, email, password string) (*domain.SessionToken, error) {
	return s.customerLoginFn(ctx, email, password)
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func multipartRegisterBody(t *testing.T, email, password, filename string) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	_ = w.WriteField("full_name", "Alice Staff")
	_ = w.WriteField("email", email)
	_ = w.WriteField("password", password)
	fw, err := w.CreateFormFile("image", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write([]byte("fake image bytes")); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return &buf, w.FormDataContentType()
}

func TestRegister_Handler_Success(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		registerFn: func(_ context.Context, input ports.RegisterInput) error {
			if input.Email != "alice@example.com" || input.Image.Filename != "avatar.png" {
				t.Fatalf("unexpected input: %+v", input)
			}
			if input.Image.Size == 0 || input.Image.Content == nil {
				t.Fatalf("expected populated image upload")
			}
			return nil
		},
	}
	h := NewAuthHandler(stub)

	body, contentType := multipartRegisterBody(t, "alice@example.com", "secret", "avatar.png")
	req := httptest.NewRequest(http.MethodPost, "/auth/register", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
}

func TestRegister_Handler_MissingImage(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		registerFn: func(context.Context, ports.RegisterInput) error {
			t.Fatalf("service should not be called")
			return nil
		},
	}
	h := NewAuthHandler(stub)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	_ = w.WriteField("email", "a@example.com")
	_ = w.WriteField("password", "secret")
	_ = w.Close()

	req := httptest.NewRequest(http.MethodPost, "/auth/register", &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	c := e.NewContext(req, httptest.NewRecorder())

	err := h.Register(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestRegister_Handler_RejectsInvalidEmail(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		registerFn: func(context.Context, ports.RegisterInput) error {
			t.Fatalf("service should not be called")
			return nil
		},
	}
	h := NewAuthHandler(stub)

	body, contentType := multipartRegisterBody(t, "not-an-email", "secret", "avatar.png")
	req := httptest.NewRequest(http.MethodPost, "/auth/register", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	c := e.NewContext(req, httptest.NewRecorder())

	err := h.Register(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestRegister_Handler_RuleFailurePropagates(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		registerFn: func(context.Context, ports.RegisterInput) error {
			return domain.ErrDuplicateEmail
		},
	}
	h := NewAuthHandler(stub)

	body, contentType := multipartRegisterBody(t, "taken@example.com", "secret", "avatar.png")
	req := httptest.NewRequest(http.MethodPost, "/auth/register", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	c := e.NewContext(req, httptest.NewRecorder())

	if err := h.Register(c); !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail to propagate, got %v", err)
	}
}

func TestUserLogin_Handler_Success(t *testing.T) {
	e := newEcho()
	expires := time.Now().Add(time.Hour).UTC()
	stub := &stubAuthService{
		userLoginFn: func(_ context.Context, email, password string) (*domain.SessionToken, error) {
			if email != "alice@example.com" || password != "secret" {
				t.Fatalf("unexpected args: %s %s", email, password)
			}
			return &domain.SessionToken{Token: "token123", Expiration: expires}, nil
		},
	}
	h := NewAuthHandler(stub)

	req := httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"email":"alice@example.com","password":"secret"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.UserLogin(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["token"] != "token123" {
		t.Fatalf("expected token, got %v", resp["token"])
	}
	if resp["expiration"] == "" {
		t.Fatalf("expected expiration in response")
	}
}

func TestUserLogin_Handler_RejectsInvalidEmail(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		userLoginFn: func(context.Context, string, string) (*domain.SessionToken, error) {
			t.Fatalf("service should not be called")
			return nil, nil
		},
	}
	h := NewAuthHandler(stub)

	req := httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"email":"not-an-email","password":"secret"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c := e.NewContext(req, httptest.NewRecorder())

	err := h.UserLogin(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestUserLogin_Handler_NotFoundPropagates(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		userLoginFn: func(context.Context, string, string) (*domain.SessionToken, error) {
			return nil, domain.ErrPrincipalNotFound
		},
	}
	h := NewAuthHandler(stub)

	req := httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"email":"ghost@example.com","password":"x"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c := e.NewContext(req, httptest.NewRecorder())

	if err := h.UserLogin(c); !errors.Is(err, domain.ErrPrincipalNotFound) {
		t.Fatalf("expected ErrPrincipalNotFound, got %v", err)
	}
}

func TestCustomerLogin_Handler_Success(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		customerLoginFn: func(_ context.Context, email, _ string) (*domain.SessionToken, error) {
			if email != "acme@example.com" {
				t.Fatalf("unexpected email %s", email)
			}
			return &domain.SessionToken{Token: "ctoken", Expiration: time.Now().Add(time.Hour)}, nil
		},
	}
	h := NewAuthHandler(stub)

	req := httptest.NewRequest(http.MethodPost, "/auth/customer-login",
		strings.NewReader(`{"email":"acme@example.com","password":"secret"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.CustomerLogin(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
