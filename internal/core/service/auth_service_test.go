package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/b2bplatform/b2b-backend/internal/core/domain"
	"github.com/b2bplatform/b2b-backend/internal/core/ports"
	"github.com/b2bplatform/b2b-backend/internal/security/hashing"
	"github.com/b2bplatform/b2b-backend/internal/security/token"
)

var testPolicy = UploadPolicy{
	AllowedExtensions: []string{".jpg", ".jpeg", ".gif", ".png"},
	MaxSizeMB:         1,
}

type stubUserRepo struct {
	users     map[string]*domain.User
	claims    map[string][]domain.OperationClaim
	insertErr error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{
		users:  make(map[string]*domain.User),
		claims: make(map[string][]domain.OperationClaim),
	}
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	u, ok := r.users[email]
	if !ok {
		return nil, domain.ErrPrincipalNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *stubUserRepo) ListOperationClaims(_ context.Context, userID string) ([]domain.OperationClaim, error) {
	return r.claims[userID], nil
}

func (r *stubUserRepo) Insert(_ context.Context, user *domain.User) (*domain.User, error) {
	if r.insertErr != nil {
		return nil, r.insertErr
	}
	if _, exists := r.users[user.Email]; exists {
		return nil, domain.ErrDuplicateEmail
	}
	clone := *user
	if clone.ID == "" {
		clone.ID = fmt.Sprintf("u%d", len(r.users)+1)
	}
	r.users[clone.Email] = &clone
	return &clone, nil
}

type stubCustomerRepo struct {
	customers map[string]*domain.Customer
}

func (r *stubCustomerRepo) FindByEmail(_ context.Context, email string) (*domain.Customer, error) {
	c, ok := r.customers[email]
	if !ok {
		return nil, domain.ErrPrincipalNotFound
	}
	clone := *c
	return &clone, nil
}

type fileStore struct {
	saved   []string
	deleted []string
	saveErr error
	delErr  error
}

func (s *fileStore) Save(_ context.Context, _ io.Reader, filename string) (string, error) {
	if s.saveErr != nil {
		return "", s.saveErr
	}
	key := fmt.Sprintf("stored-%d-%s", len(s.saved), filename)
	s.saved = append(s.saved, key)
	return key, nil
}

func (s *fileStore) Delete(_ context.Context, storageKey string) error {
	if s.delErr != nil {
		return s.delErr
	}
	s.deleted = append(s.deleted, storageKey)
	return nil
}

func seedUser(t *testing.T, repo *stubUserRepo, email, password string, claims ...string) *domain.User {
	t.Helper()
	hash, salt, err := hashing.Hash(password)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user, err := repo.Insert(context.Background(), &domain.User{
		FullName:     "Test User",
		Email:        email,
		PasswordHash: hash,
		PasswordSalt: salt,
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	ocs := make([]domain.OperationClaim, 0, len(claims))
	for i, name := range claims {
		ocs = append(ocs, domain.OperationClaim{ID: fmt.Sprintf("%d", i+1), Name: name})
	}
	repo.claims[user.ID] = ocs
	return user
}

func newTestAuthService(users *stubUserRepo, customers *stubCustomerRepo) (*AuthService, *token.Issuer, *fileStore, *stubQueue) {
	if customers == nil {
		customers = &stubCustomerRepo{customers: make(map[string]*domain.Customer)}
	}
	issuer := token.NewIssuer("test-secret", time.Hour)
	files := &fileStore{}
	queue := &stubQueue{}
	svc := NewAuthService(users, customers, issuer, files, queue, testPolicy, zerolog.Nop())
	return svc, issuer, files, queue
}

func TestUserLogin_Success(t *testing.T) {
	users := newStubUserRepo()
	seedUser(t, users, "carol@example.com", "s3cret", "admin", "editor")
	svc, issuer, _, _ := newTestAuthService(users, nil)

	tok, err := svc.UserLogin(context.Background(), "carol@example.com", "s3cret")
	if err != nil {
		t.Fatalf("UserLogin returned error: %v", err)
	}
	if tok.Token == "" {
		t.Fatalf("expected token")
	}

	claims, err := issuer.Parse(tok.Token)
	if err != nil {
		t.Fatalf("token failed to parse: %v", err)
	}
	if claims.Kind != domain.KindStaff {
		t.Fatalf("expected staff kind, got %s", claims.Kind)
	}
	if len(claims.Claims) != 2 || claims.Claims[0] != "admin" || claims.Claims[1] != "editor" {
		t.Fatalf("unexpected claim set: %v", claims.Claims)
	}
}

func TestUserLogin_EmailNormalized(t *testing.T) {
	users := newStubUserRepo()
	seedUser(t, users, "carol@example.com", "s3cret")
	svc, _, _, _ := newTestAuthService(users, nil)

	if _, err := svc.UserLogin(context.Background(), "  Carol@Example.COM ", "s3cret"); err != nil {
		t.Fatalf("expected case-normalized lookup to succeed: %v", err)
	}
}

func TestUserLogin_PrincipalNotFound(t *testing.T) {
	users := newStubUserRepo()
	svc, _, _, _ := newTestAuthService(users, nil)

	_, err := svc.UserLogin(context.Background(), "ghost@example.com", "whatever")
	if !errors.Is(err, domain.ErrPrincipalNotFound) {
		t.Fatalf("expected ErrPrincipalNotFound, got %v", err)
	}
}

func TestUserLogin_WrongPassword(t *testing.T) {
	users := newStubUserRepo()
	seedUser(t, users, "dave@example.com", "goodpass")
	svc, _, _, _ := newTestAuthService(users, nil)

	_, err := svc.UserLogin(context.Background(), "dave@example.com", "badpass")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestCustomerLogin_Success(t *testing.T) {
	hash, salt, err := hashing.Hash("customer-pass")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	customers := &stubCustomerRepo{customers: map[string]*domain.Customer{
		"acme@example.com": {ID: "c1", CompanyName: "Acme", Email: "acme@example.com", PasswordHash: hash, PasswordSalt: salt},
	}}
	svc, issuer, _, _ := newTestAuthService(newStubUserRepo(), customers)

	tok, err := svc.CustomerLogin(context.Background(), "acme@example.com", "customer-pass")
	if err != nil {
		t.Fatalf("CustomerLogin returned error: %v", err)
	}

	claims, err := issuer.Parse(tok.Token)
	if err != nil {
		t.Fatalf("token failed to parse: %v", err)
	}
	if claims.Kind != domain.KindCustomer {
		t.Fatalf("expected customer kind, got %s", claims.Kind)
	}
	if len(claims.Claims) != 0 {
		t.Fatalf("customer token must carry no claims, got %v", claims.Claims)
	}
}

func TestCustomerLogin_NotFound(t *testing.T) {
	svc, _, _, _ := newTestAuthService(newStubUserRepo(), nil)

	_, err := svc.CustomerLogin(context.Background(), "nobody@example.com", "pass")
	if !errors.Is(err, domain.ErrPrincipalNotFound) {
		t.Fatalf("expected ErrPrincipalNotFound, got %v", err)
	}
}

func registerInput(email, filename string, size int64) ports.RegisterInput {
	return ports.RegisterInput{
		FullName: "New User",
		Email:    email,
		Password: "initial-pass",
		Image: ports.ImageUpload{
			Filename: filename,
			Size:     size,
			Content:  bytes.NewReader([]byte("fake image bytes")),
		},
	}
}

func TestRegister_Success(t *testing.T) {
	users := newStubUserRepo()
	svc, _, files, _ := newTestAuthService(users, nil)

	if err := svc.Register(context.Background(), registerInput("new@example.com", "avatar.png", 500_000)); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	user, err := users.FindByEmail(context.Background(), "new@example.com")
	if err != nil {
		t.Fatalf("registered user not found: %v", err)
	}
	if len(user.PasswordHash) == 0 || len(user.PasswordSalt) == 0 {
		t.Fatalf("expected stored hash and salt")
	}
	if !hashing.Verify("initial-pass", user.PasswordHash, user.PasswordSalt) {
		t.Fatalf("stored credential does not verify")
	}
	if len(files.saved) != 1 || user.ImageURL != files.saved[0] {
		t.Fatalf("expected profile image saved, got %v / %q", files.saved, user.ImageURL)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	users := newStubUserRepo()
	seedUser(t, users, "taken@example.com", "pass")
	svc, _, files, _ := newTestAuthService(users, nil)

	err := svc.Register(context.Background(), registerInput("taken@example.com", "avatar.png", 1000))
	if !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
	if len(files.saved) != 0 {
		t.Fatalf("no file should be saved on rule failure")
	}
}

func TestRegister_BadExtension(t *testing.T) {
	users := newStubUserRepo()
	svc, _, _, _ := newTestAuthService(users, nil)

	err := svc.Register(context.Background(), registerInput("new@example.com", "avatar.bmp", 1000))
	if !errors.Is(err, domain.ErrInvalidImageExtension) {
		t.Fatalf("expected ErrInvalidImageExtension, got %v", err)
	}
	if len(users.users) != 0 {
		t.Fatalf("no user should be inserted on rule failure")
	}
}

func TestRegister_ImageTooLarge(t *testing.T) {
	users := newStubUserRepo()
	svc, _, _, _ := newTestAuthService(users, nil)

	err := svc.Register(context.Background(), registerInput("new@example.com", "avatar.png", 2_000_000))
	if !errors.Is(err, domain.ErrImageTooLarge) {
		t.Fatalf("expected ErrImageTooLarge, got %v", err)
	}
	if len(users.users) != 0 {
		t.Fatalf("no user should be inserted on rule failure")
	}
}

func TestRegister_RuleOrder(t *testing.T) {
	// Duplicate email is checked first, so a request that also carries a bad
	// image reports only the duplicate.
	users := newStubUserRepo()
	seedUser(t, users, "taken@example.com", "pass")
	svc, _, _, _ := newTestAuthService(users, nil)

	err := svc.Register(context.Background(), registerInput("taken@example.com", "avatar.bmp", 9_000_000))
	if !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected first failure ErrDuplicateEmail, got %v", err)
	}
}

func TestRegister_InsertFailureReleasesImage(t *testing.T) {
	users := newStubUserRepo()
	users.insertErr = errors.New("mongo topology gone")
	svc, _, files, _ := newTestAuthService(users, nil)

	err := svc.Register(context.Background(), registerInput("new@example.com", "avatar.png", 1000))
	if err == nil {
		t.Fatalf("expected Register to fail")
	}
	if len(files.saved) != 1 {
		t.Fatalf("expected one saved file, got %v", files.saved)
	}
	if len(files.deleted) != 1 || files.deleted[0] != files.saved[0] {
		t.Fatalf("expected saved file released after insert failure, got %v", files.deleted)
	}
}

func TestRegister_InsertFailureQueuesWhenReleaseFails(t *testing.T) {
	users := newStubUserRepo()
	users.insertErr = errors.New("mongo topology gone")
	svc, _, files, queue := newTestAuthService(users, nil)
	files.delErr = errors.New("disk detached")

	if err := svc.Register(context.Background(), registerInput("new@example.com", "avatar.png", 1000)); err == nil {
		t.Fatalf("expected Register to fail")
	}
	if len(files.saved) != 1 {
		t.Fatalf("expected one saved file, got %v", files.saved)
	}
	if len(queue.keys) != 1 || queue.keys[0] != files.saved[0] {
		t.Fatalf("expected failed release queued for retry, got %v", queue.keys)
	}
}

func TestRegister_StorageFailureIsSystemError(t *testing.T) {
	users := newStubUserRepo()
	svc, _, files, _ := newTestAuthService(users, nil)
	files.saveErr = domain.ErrStorageUnavailable

	err := svc.Register(context.Background(), registerInput("new@example.com", "avatar.png", 1000))
	if !errors.Is(err, domain.ErrStorageUnavailable) {
		t.Fatalf("expected wrapped ErrStorageUnavailable, got %v", err)
	}
	if !strings.Contains(err.Error(), "save profile image") {
		t.Fatalf("expected wrapped context, got %v", err)
	}
}
