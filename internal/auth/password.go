// Package auth implements the identity boundary: salted one-way credential
// hashing, bearer-token issue/verify, and resolution of the acting
// clinician. The rest of the core trusts the resolved identity verbatim.
package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/yashankkothari/Lung-Cancer-Detection-Using-ML/internal/domain"
)

// HashPassword produces a salted one-way hash. Credentials are never stored
// or compared in plaintext.
func HashPassword(password string) (string, error) {
	if len(password) < 8 {
		return "", fmt.Errorf("password must be at least 8 characters: %w", domain.ErrInvalidInput)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether the password matches the stored hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
