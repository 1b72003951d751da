// Package rules is the shared guard for mutating operations. A Check is a
// side-effect-free predicate; Run evaluates checks strictly in declaration
// order and stops at the first failure, so later checks are never observed.
package rules

import (
	"path/filepath"
	"strings"

	"github.com/b2bplatform/b2b-backend/internal/core/domain"
)

// Check reports nil on pass or a business error on failure.
type Check func() error

// Run evaluates checks in order and returns the first failure, or nil when
// every check passes. Callers must treat a non-nil result as "operation
// aborted" and propagate the message unchanged.
func Run(checks ...Check) error {
	for _, check := range checks {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}

// ExtensionAllowed checks the file extension against the allow-set,
// case-insensitively. Extensions in allowed carry the leading dot.
func ExtensionAllowed(filename string, allowed []string) Check {
	return func() error {
		ext := strings.ToLower(filepath.Ext(filename))
		for _, a := range allowed {
			if ext == a {
				return nil
			}
		}
		return domain.ErrInvalidImageExtension
	}
}

// SizeWithin checks an upload size in bytes against a megabyte cap using a
// decimal megabyte (size × 0.000001).
func SizeWithin(sizeBytes int64, maxMB float64) Check {
	return func() error {
		if float64(sizeBytes)*0.000001 > maxMB {
			return domain.ErrImageTooLarge
		}
		return nil
	}
}
