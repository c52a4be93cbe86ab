package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	apperrors "voiceclone/internal/errors"
)

const bcryptCost = 10

// MaxPasswordBytes is the longest password bcrypt accepts. Multi-byte
// characters count once per byte.
const MaxPasswordBytes = 72

// HashPassword returns a salted bcrypt hash of plain.
func HashPassword(plain string) (string, error) {
	if len(plain) > MaxPasswordBytes {
		return "", fmt.Errorf("hash password: %w", apperrors.ErrPasswordTooLong)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

// VerifyPassword reports whether plain matches hash. A malformed hash is
// returned as err so the caller can log it; match is false in that case.
func VerifyPassword(plain, hash string) (match bool, err error) {
	err = bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword), errors.Is(err, bcrypt.ErrPasswordTooLong):
		return false, nil
	default:
		return false, fmt.Errorf("compare password: %w", err)
	}
}
