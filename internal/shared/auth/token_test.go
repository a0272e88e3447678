package auth

import (
	"testing"
	"time"
)

func TestIssueAndVerify(t *testing.T) {
	issuer := &Issuer{Secret: []byte("test-secret")}

	token, err := issuer.Issue("user-123", "USER", time.Hour)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	principal, err := issuer.Verify(token)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if principal.UserID != "user-123" {
		t.Errorf("expected subject user-123, got %s", principal.UserID)
	}
	if principal.Role != "USER" {
		t.Errorf("expected role USER, got %s", principal.Role)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	token, err := (&Issuer{Secret: []byte("secret-a")}).Issue("user-123", "USER", time.Hour)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if _, err := (&Issuer{Secret: []byte("secret-b")}).Verify(token); err == nil {
		t.Error("expected verification with a different secret to fail")
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	issuer := &Issuer{Secret: []byte("test-secret")}

	token, err := issuer.Issue("user-123", "USER", -time.Minute)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if _, err := issuer.Verify(token); err == nil {
		t.Error("expected expired token to fail verification")
	}
}

func TestVerifyRejectsEmptySubject(t *testing.T) {
	issuer := &Issuer{Secret: []byte("test-secret")}

	token, err := issuer.Issue("", "USER", time.Hour)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if _, err := issuer.Verify(token); err == nil {
		t.Error("expected token without subject to fail verification")
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	issuer := &Issuer{Secret: []byte("test-secret")}

	if _, err := issuer.Verify("not.a.token"); err == nil {
		t.Error("expected malformed token to fail verification")
	}
}
