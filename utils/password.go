package utils

import (
	"os"
	"strconv"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword hashes with the cost from BCRYPT_ROUNDS, falling back to the
// library default when unset.
func HashPassword(password string) (string, error) {
	cost := bcrypt.DefaultCost
	if raw := os.Getenv("BCRYPT_ROUNDS"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			cost = parsed
		}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
