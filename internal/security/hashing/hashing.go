// Package hashing derives and verifies salted password hashes.
package hashing

import (
	"crypto/rand"
	"crypto/sha512"
	"crypto/subtle"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	saltLength = 16
	keyLength  = 64
	iterations = 210_000
)

// Hash derives a PBKDF2-SHA512 hash of plaintext under a fresh random salt
// and returns both. The salt must be stored alongside the hash.
func Hash(plaintext string) (hash, salt []byte, err error) {
	salt = make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, nil, fmt.Errorf("generate salt: %w", err)
	}
	return pbkdf2.Key([]byte(plaintext), salt, iterations, keyLength, sha512.New), salt, nil
}

// Verify recomputes the hash of plaintext under storedSalt and compares it
// against storedHash in constant time. It never logs or returns secrets.
func Verify(plaintext string, storedHash, storedSalt []byte) bool {
	computed := pbkdf2.Key([]byte(plaintext), storedSalt, iterations, keyLength, sha512.New)
	return subtle.ConstantTimeCompare(computed, storedHash) == 1
}
