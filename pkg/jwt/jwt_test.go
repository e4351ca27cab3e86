package jwt

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestGenerateAndValidateToken(t *testing.T) {
	userID := uuid.New()
	privileges := []string{"sale:create", "shift:open"}

	token, err := GenerateToken(userID, "kasir@example.com", "Kasir Satu", "CASHIER", privileges, "v1")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.UserID != userID {
		t.Errorf("user_id = %s, want %s", claims.UserID, userID)
	}
	if claims.RoleCode != "CASHIER" {
		t.Errorf("role_code = %s, want CASHIER", claims.RoleCode)
	}
	if len(claims.Privileges) != 2 || claims.Privileges[0] != "sale:create" {
		t.Errorf("privileges = %v, want %v", claims.Privileges, privileges)
	}
	if claims.TokenVersion != "v1" {
		t.Errorf("token_version = %s, want v1", claims.TokenVersion)
	}
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	if _, err := ValidateToken("not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("err = %v, want ErrInvalidToken", err)
	}
}

func TestValidateTokenRejectsTampered(t *testing.T) {
	token, err := GenerateToken(uuid.New(), "a@example.com", "A", "ADMIN", nil, "v1")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	tampered := token[:len(token)-2] + "xx"
	if _, err := ValidateToken(tampered); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("err = %v, want ErrInvalidToken", err)
	}
}
