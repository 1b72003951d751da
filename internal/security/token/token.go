// Package token issues and parses the signed session tokens returned on
// login. Tokens are self-contained: validity is signature plus expiry, with
// no server-side session store.
package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/b2bplatform/b2b-backend/internal/core/domain"
)

// Claims is the payload embedded in every session token. Staff tokens carry
// the user's operation claims; customer tokens always carry an empty set.
type Claims struct {
	PrincipalID string               `json:"principal_id"`
	Kind        domain.PrincipalKind `json:"kind"`
	Claims      []string             `json:"claims,omitempty"`
	jwt.RegisteredClaims
}

// Issuer signs session tokens with a shared HS256 secret. Secret and expiry
// policy are configuration inputs.
type Issuer struct {
	secret []byte
	ttl    time.Duration
}

func NewIssuer(secret string, ttl time.Duration) *Issuer {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Issuer{secret: []byte(secret), ttl: ttl}
}

// IssueStaff creates a token for a staff user embedding the full claim set.
func (i *Issuer) IssueStaff(user *domain.User, claims []domain.OperationClaim) (*domain.SessionToken, error) {
	names := make([]string, 0, len(claims))
	for _, c := range claims {
		names = append(names, c.Name)
	}
	return i.sign(user.ID, domain.KindStaff, names)
}

// IssueCustomer creates a token for a customer. Customers carry no
// operation claims.
func (i *Issuer) IssueCustomer(customer *domain.Customer) (*domain.SessionToken, error) {
	return i.sign(customer.ID, domain.KindCustomer, nil)
}

func (i *Issuer) sign(principalID string, kind domain.PrincipalKind, claimNames []string) (*domain.SessionToken, error) {
	expiresAt := time.Now().Add(i.ttl)
	claims := Claims{
		PrincipalID: principalID,
		Kind:        kind,
		Claims:      claimNames,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSigningFailure, err)
	}
	return &domain.SessionToken{Token: signed, Expiration: expiresAt}, nil
}

// Parse validates the signature and expiry of a raw token and returns its
// claims. Only HS256 is accepted.
func (i *Issuer) Parse(raw string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return i.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, jwt.ErrTokenSignatureInvalid
	}
	return claims, nil
}
