package ports

import (
	"context"

	"github.com/b2bplatform/b2b-backend/internal/core/domain"
)

// RegisterInput carries a staff registration request, including the profile
// image upload validated by the registration rules.
type RegisterInput struct {
	FullName string
	Email    string
	Password string
	Image    ImageUpload
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) error
	UserLogin(ctx context.Context, email, password string) (*domain.SessionToken, error)
	CustomerLogin(ctx context.Context, email, password string) (*domain.SessionToken, error)
}
