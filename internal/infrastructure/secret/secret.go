package secret

import (
	"errors"

	"github.com/acornforum/oidc-store/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

// Hash hashes a client secret using bcrypt
func Hash(secret string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Verify checks if a presented secret matches its stored hash
func Verify(presented, hash string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(presented))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return domain.ErrInvalidSecret
		}
		return err
	}
	return nil
}
