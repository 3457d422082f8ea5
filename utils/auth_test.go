package utils

import (
	"errors"
	"testing"
)

func init() {
	SetJWTConfig("test-secret", 60)
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("greencoins")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if !CheckPasswordHash("greencoins", hash) {
		t.Error("correct password rejected")
	}
	if CheckPasswordHash("wrong", hash) {
		t.Error("wrong password accepted")
	}
}

func TestJWTRoundTrip(t *testing.T) {
	token, err := GenerateJWTToken("user-1", "alice", "alice@example.com")
	if err != nil {
		t.Fatalf("GenerateJWTToken failed: %v", err)
	}

	claims, err := ParseJWTToken(token)
	if err != nil {
		t.Fatalf("ParseJWTToken failed: %v", err)
	}
	if claims.UserID != "user-1" || claims.Username != "alice" || claims.Email != "alice@example.com" {
		t.Errorf("claims lost fields: %+v", claims)
	}
}

func TestParseJWTTokenRejectsGarbage(t *testing.T) {
	if _, err := ParseJWTToken("not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("garbage token: got %v, want ErrInvalidToken", err)
	}
}
