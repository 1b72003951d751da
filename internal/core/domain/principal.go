package domain

import "time"

// PrincipalKind discriminates the two authenticatable identities.
type PrincipalKind string

const (
	KindStaff    PrincipalKind = "staff"
	KindCustomer PrincipalKind = "customer"
)

// OperationClaim is a named permission granted to a staff user.
type OperationClaim struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// User is an internal staff account. Staff users own a set of operation
// claims that is embedded into their session tokens on login.
type User struct {
	ID           string    `json:"id"`
	FullName     string    `json:"full_name"`
	Email        string    `json:"email"`
	PasswordHash []byte    `json:"-"`
	PasswordSalt []byte    `json:"-"`
	ImageURL     string    `json:"image_url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Customer is an external B2B account. Customers authenticate the same way
// as staff but never carry operation claims.
type Customer struct {
	ID           string    `json:"id"`
	CompanyName  string    `json:"company_name"`
	Email        string    `json:"email"`
	PasswordHash []byte    `json:"-"`
	PasswordSalt []byte    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// SessionToken is a stateless, signed proof of authentication. Validity is
// determined purely by signature and expiry; nothing is stored server-side.
type SessionToken struct {
	Token      string    `json:"token"`
	Expiration time.Time `json:"expiration"`
}
