package ports

import (
	"context"

	"github.com/b2bplatform/b2b-backend/internal/core/domain"
)

// UserRepository is the persistence capability for staff users.
// FindByEmail returns domain.ErrPrincipalNotFound when no user matches.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	ListOperationClaims(ctx context.Context, userID string) ([]domain.OperationClaim, error)
	Insert(ctx context.Context, user *domain.User) (*domain.User, error)
}

// CustomerRepository is the persistence capability for customer accounts.
// FindByEmail returns domain.ErrPrincipalNotFound when no customer matches.
type CustomerRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.Customer, error)
}
