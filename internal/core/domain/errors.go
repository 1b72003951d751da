package domain

import "errors"

// Expected business outcomes. These surface as failure results with a
// human-readable message and map to 4xx at the API boundary.
var (
	ErrPrincipalNotFound     = errors.New("no account is registered under that email")
	ErrInvalidCredentials    = errors.New("email or password is incorrect")
	ErrDuplicateEmail        = errors.New("email address is already registered")
	ErrInvalidImageExtension = errors.New("image must be one of .jpg, .jpeg, .gif, .png")
	ErrImageTooLarge         = errors.New("image exceeds the maximum allowed size")
	ErrImageNotFound         = errors.New("product image not found")
)

// Infrastructure failures. Wrapped and propagated as system errors so the
// boundary layer can distinguish rejected input from an unhealthy system.
var (
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrSigningFailure     = errors.New("token signing failed")
)
