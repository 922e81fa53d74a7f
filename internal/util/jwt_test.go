package util

import (
	"testing"
	"time"
)

func TestGenerateAndParseToken(t *testing.T) {
	token, err := GenerateToken("secret", "taawoon-sub000", 7, "admin", time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := ParseToken("secret", token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.StaffID != 7 {
		t.Errorf("StaffID = %d, want 7", claims.StaffID)
	}
	if claims.Role != "admin" {
		t.Errorf("Role = %q, want admin", claims.Role)
	}
	if claims.Issuer != "taawoon-sub000" {
		t.Errorf("Issuer = %q, want taawoon-sub000", claims.Issuer)
	}
	if claims.ExpiresAt == nil || !claims.ExpiresAt.After(time.Now()) {
		t.Errorf("ExpiresAt = %v, want future", claims.ExpiresAt)
	}
}

func TestParseTokenWrongSecret(t *testing.T) {
	token, err := GenerateToken("secret", "", 1, "staff", time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if _, err := ParseToken("other", token); err == nil {
		t.Error("ParseToken with wrong secret expected error, got nil")
	}
	if _, err := ParseToken("secret", "not-a-token"); err == nil {
		t.Error("ParseToken with garbage expected error, got nil")
	}
}
