package service_test

import (
	"classroomlive/internal/service"
	"testing"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := service.NewAuthService("test-secret")

	token, err := svc.GenerateToken("user-1", "Ada")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.UserID != "user-1" || claims.Username != "Ada" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	token, err := service.NewAuthService("secret-a").GenerateToken("user-1", "Ada")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	if _, err := service.NewAuthService("secret-b").ValidateToken(token); err == nil {
		t.Fatal("expected validation to fail with a different secret")
	}
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	svc := service.NewAuthService("test-secret")
	for _, token := range []string{"", "not-a-jwt", "a.b.c"} {
		if _, err := svc.ValidateToken(token); err == nil {
			t.Fatalf("expected %q to be rejected", token)
		}
	}
}
