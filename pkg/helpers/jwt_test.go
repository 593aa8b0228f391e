package helpers

import (
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)
	token, exp, err := m.Generate("user-1", "alice", "alice@example.com")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if time.Until(exp) > time.Hour || time.Until(exp) < 59*time.Minute {
		t.Fatalf("unexpected expiry: %v", exp)
	}

	claims, err := m.Parse(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != "user-1" || claims.Username != "alice" || claims.Email != "alice@example.com" {
		t.Fatalf("claims mismatch: %+v", claims)
	}
}

func TestTokenExpired(t *testing.T) {
	m := NewTokenManager("test-secret", -time.Minute)
	token, _, err := m.Generate("user-1", "alice", "alice@example.com")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := m.Parse(token); err == nil {
		t.Fatal("expected expired token to fail parsing")
	}
}

func TestTokenWrongSecret(t *testing.T) {
	m := NewTokenManager("secret-a", time.Hour)
	token, _, err := m.Generate("user-1", "alice", "alice@example.com")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	other := NewTokenManager("secret-b", time.Hour)
	if _, err := other.Parse(token); err == nil {
		t.Fatal("expected token signed with different secret to fail")
	}
}

func TestTokenGarbage(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)
	if _, err := m.Parse("not.a.token"); err == nil {
		t.Fatal("expected malformed token to fail")
	}
}
