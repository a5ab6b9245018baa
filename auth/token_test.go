package auth

import (
	"testing"
	"time"
)

func TestIssueUserTokenRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("user-secret", "admin-secret")

	token, err := issuer.IssueUserToken("user-1")
	if err != nil {
		t.Fatalf("IssueUserToken returned error: %v", err)
	}

	claims, err := issuer.Validate(token)
	if err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	if claims.UserID != "user-1" {
		t.Fatalf("expected user id user-1, got %s", claims.UserID)
	}
	if claims.Domain != DomainUser {
		t.Fatalf("expected user domain, got %s", claims.Domain)
	}
}

func TestIssueAdminTokenCarriesIssuedAt(t *testing.T) {
	issuer := NewTokenIssuer("user-secret", "admin-secret")
	issuedAt := time.Now().Truncate(time.Second)

	token, err := issuer.IssueAdminToken("admin-1", issuedAt)
	if err != nil {
		t.Fatalf("IssueAdminToken returned error: %v", err)
	}

	claims, err := issuer.Validate(token)
	if err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	if claims.Domain != DomainAdmin {
		t.Fatalf("expected admin domain, got %s", claims.Domain)
	}
	if claims.IssuedAt == nil || !claims.IssuedAt.Time.Equal(issuedAt) {
		t.Fatalf("expected issued at %v, got %v", issuedAt, claims.IssuedAt)
	}
}

func TestValidateRejectsForgedDomain(t *testing.T) {
	issuer := NewTokenIssuer("user-secret", "admin-secret")

	// A token signed with the user secret but claiming the admin
	// domain must not verify: the declared domain selects the admin
	// secret and the signature check fails.
	forged := NewTokenIssuer("user-secret", "user-secret")
	token, err := forged.IssueAdminToken("user-1", time.Now())
	if err != nil {
		t.Fatalf("IssueAdminToken returned error: %v", err)
	}

	if _, err := issuer.Validate(token); err == nil {
		t.Fatalf("expected forged token to be rejected")
	}
}

func TestValidateRejectsGarbage(t *testing.T) {
	issuer := NewTokenIssuer("user-secret", "admin-secret")

	for _, token := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := issuer.Validate(token); err == nil {
			t.Fatalf("expected %q to be rejected", token)
		}
	}
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	issuer := NewTokenIssuer("user-secret", "admin-secret")
	other := NewTokenIssuer("other-user-secret", "other-admin-secret")

	token, err := other.IssueUserToken("user-1")
	if err != nil {
		t.Fatalf("IssueUserToken returned error: %v", err)
	}

	if _, err := issuer.Validate(token); err == nil {
		t.Fatalf("expected mis-signed token to be rejected")
	}
}

func TestCheckPassword(t *testing.T) {
	hash, err := HashPassword("hunter2")
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	if !CheckPassword("hunter2", hash) {
		t.Fatalf("expected correct password to verify")
	}
	if CheckPassword("wrong", hash) {
		t.Fatalf("expected wrong password to fail")
	}
}
