package utils

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// GenerateToken issues an HS256 bearer token whose subject is the user's
// object id. Lifetime comes from JWT_LIFETIME (seconds, default 2h).
func GenerateToken(userID, email string) (string, error) {
	lifetime := 2 * time.Hour
	if raw := os.Getenv("JWT_LIFETIME"); raw != "" {
		seconds, err := strconv.Atoi(raw)
		if err != nil {
			return "", fmt.Errorf("invalid JWT_LIFETIME %q: %w", raw, err)
		}
		lifetime = time.Duration(seconds) * time.Second
	}

	claims := &Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(lifetime)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(os.Getenv("JWT_SECRET")))
}

func ValidateToken(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(os.Getenv("JWT_SECRET")), nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	if claims.ExpiresAt != nil && claims.ExpiresAt.Before(time.Now()) {
		return nil, fmt.Errorf("token has expired")
	}
	return claims, nil
}
