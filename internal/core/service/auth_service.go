package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/b2bplatform/b2b-backend/internal/core/domain"
	"github.com/b2bplatform/b2b-backend/internal/core/ports"
	"github.com/b2bplatform/b2b-backend/internal/core/rules"
	"github.com/b2bplatform/b2b-backend/internal/security/hashing"
	"github.com/b2bplatform/b2b-backend/internal/security/token"
)

// UploadPolicy is the single shared set of upload constraints applied to
// every image check in the system.
type UploadPolicy struct {
	AllowedExtensions []string
	MaxSizeMB         float64
}

// AuthService implements registration and the two login flows.
type AuthService struct {
	users     ports.UserRepository
	customers ports.CustomerRepository
	issuer    *token.Issuer
	files     ports.FileStore
	cleanup   ReleaseQueue
	policy    UploadPolicy
	log       zerolog.Logger
}

// NewAuthService returns an AuthService. cleanup may be nil.
func NewAuthService(
	users ports.UserRepository,
	customers ports.CustomerRepository,
	issuer *token.Issuer,
	files ports.FileStore,
	cleanup ReleaseQueue,
	policy UploadPolicy,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		customers: customers,
		issuer:    issuer,
		files:     files,
		cleanup:   cleanup,
		policy:    policy,
		log:       log,
	}
}

// credential is the capability set a principal kind exposes to the shared
// login flow: stored credential bytes plus a token factory for its shape.
type credential struct {
	hash  []byte
	salt  []byte
	issue func() (*domain.SessionToken, error)
}

// UserLogin authenticates a staff user and issues a token carrying the
// user's operation claims.
func (s *AuthService) UserLogin(ctx context.Context, email, password string) (*domain.SessionToken, error) {
	return s.login(string(domain.KindStaff), password, func() (*credential, error) {
		user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
		if err != nil {
			return nil, err
		}
		return &credential{
			hash: user.PasswordHash,
			salt: user.PasswordSalt,
			issue: func() (*domain.SessionToken, error) {
				claims, err := s.users.ListOperationClaims(ctx, user.ID)
				if err != nil {
					return nil, fmt.Errorf("list operation claims: %w", err)
				}
				return s.issuer.IssueStaff(user, claims)
			},
		}, nil
	})
}

// CustomerLogin authenticates a customer and issues a claimless token.
func (s *AuthService) CustomerLogin(ctx context.Context, email, password string) (*domain.SessionToken, error) {
	return s.login(string(domain.KindCustomer), password, func() (*credential, error) {
		customer, err := s.customers.FindByEmail(ctx, normalizeEmail(email))
		if err != nil {
			return nil, err
		}
		return &credential{
			hash:  customer.PasswordHash,
			salt:  customer.PasswordSalt,
			issue: func() (*domain.SessionToken, error) { return s.issuer.IssueCustomer(customer) },
		}, nil
	})
}

// login is the one flow both principal kinds share: lookup, verify, issue.
// An absent principal and a failed verification are distinct error kinds.
func (s *AuthService) login(kind, password string, lookup func() (*credential, error)) (*domain.SessionToken, error) {
	cred, err := lookup()
	if err != nil {
		if errors.Is(err, domain.ErrPrincipalNotFound) {
			return nil, domain.ErrPrincipalNotFound
		}
		return nil, fmt.Errorf("lookup principal: %w", err)
	}

	if !hashing.Verify(password, cred.hash, cred.salt) {
		return nil, domain.ErrInvalidCredentials
	}

	tok, err := cred.issue()
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("kind", kind).Msg("login succeeded")
	return tok, nil
}

// Register creates a staff user after the registration rules pass. The first
// failing rule aborts the operation and its message is surfaced unchanged.
func (s *AuthService) Register(ctx context.Context, input ports.RegisterInput) error {
	email := normalizeEmail(input.Email)

	if err := rules.Run(
		s.emailNotRegistered(ctx, email),
		rules.ExtensionAllowed(input.Image.Filename, s.policy.AllowedExtensions),
		rules.SizeWithin(input.Image.Size, s.policy.MaxSizeMB),
	); err != nil {
		return err
	}

	hash, salt, err := hashing.Hash(input.Password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	imageURL, err := s.files.Save(ctx, input.Image.Content, input.Image.Filename)
	if err != nil {
		return fmt.Errorf("save profile image: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		FullName:     input.FullName,
		Email:        email,
		PasswordHash: hash,
		PasswordSalt: salt,
		ImageURL:     imageURL,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if _, err := s.users.Insert(ctx, user); err != nil {
		// The account never existed; reclaim the image just written.
		s.release(ctx, imageURL)
		return fmt.Errorf("insert user: %w", err)
	}

	s.log.Info().Str("email", email).Msg("user registered")
	return nil
}

// release deletes a stored file, falling back to the retry queue on failure.
func (s *AuthService) release(ctx context.Context, storageKey string) {
	if err := s.files.Delete(ctx, storageKey); err != nil {
		s.log.Warn().Err(err).Str("storage_key", storageKey).Msg("file release failed, queued for retry")
		if s.cleanup != nil {
			s.cleanup.Enqueue(storageKey)
		}
	}
}

// emailNotRegistered fails when the email already belongs to a staff user.
func (s *AuthService) emailNotRegistered(ctx context.Context, email string) rules.Check {
	return func() error {
		_, err := s.users.FindByEmail(ctx, email)
		switch {
		case err == nil:
			return domain.ErrDuplicateEmail
		case errors.Is(err, domain.ErrPrincipalNotFound):
			return nil
		default:
			return fmt.Errorf("check email: %w", err)
		}
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
