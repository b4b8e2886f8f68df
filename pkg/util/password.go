package util

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultBCryptCost is the cost factor used when none is configured
const DefaultBCryptCost = 12

// HashPassword hashes a password using bcrypt
func HashPassword(password string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBCryptCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword compares a provided password with its hash
func VerifyPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// BcryptHasher is the credential store used for both the write path
// (create, update) and the verify path (login).
type BcryptHasher struct {
	Cost int
}

func NewBcryptHasher(cost int) *BcryptHasher {
	return &BcryptHasher{Cost: cost}
}

func (h *BcryptHasher) Hash(password string) (string, error) {
	return HashPassword(password, h.Cost)
}

func (h *BcryptHasher) Verify(password, hash string) bool {
	return VerifyPassword(password, hash)
}
