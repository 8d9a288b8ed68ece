package utils

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestTokenRoundTrip(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("JWT_LIFETIME", "3600")

	userID := primitive.NewObjectID().Hex()
	token, err := GenerateToken(userID, "user@example.com")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.Subject != userID {
		t.Fatalf("subject = %q, want %q", claims.Subject, userID)
	}
	if claims.Email != "user@example.com" {
		t.Fatalf("email = %q, want user@example.com", claims.Email)
	}
}

func TestValidateToken_Garbage(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	if _, err := ValidateToken("not-a-token"); err == nil {
		t.Fatalf("expected error for garbage token")
	}
}

func TestValidateToken_WrongSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret-one")
	token, err := GenerateToken(primitive.NewObjectID().Hex(), "user@example.com")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	t.Setenv("JWT_SECRET", "secret-two")
	if _, err := ValidateToken(token); err == nil {
		t.Fatalf("expected error for token signed with another secret")
	}
}
