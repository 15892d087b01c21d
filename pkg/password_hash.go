package pkg

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// TokenHashCost is the bcrypt cost used when hashing api tokens.
const TokenHashCost = 14

func HashPassword(password string) (string, error) {
	return HashPasswordWithCost(password, TokenHashCost)
}

func HashPasswordWithCost(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt hash: %w", err)
	}
	return string(hash), nil
}

// CheckPasswordHash reports whether password matches the bcrypt hash.
func CheckPasswordHash(password, hash string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
