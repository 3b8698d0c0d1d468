package auth

import (
	"testing"
	"time"
)

func TestTokenExpired(t *testing.T) {
	now := time.Now()
	expired := Token{ExpiresAt: now.Add(-time.Second)}
	if !expired.Expired(now) {
		t.Fatalf("expected token to be expired")
	}

	valid := Token{ExpiresAt: now.Add(time.Minute)}
	if valid.Expired(now) {
		t.Fatalf("expected token to be valid")
	}
}

func TestTokenExpiredAtExactBoundary(t *testing.T) {
	now := time.Now()
	tok := Token{ExpiresAt: now}
	if !tok.Expired(now) {
		t.Fatalf("expected token expiring exactly now to be reported expired")
	}
}

func TestTokenRenewable(t *testing.T) {
	if (Token{}).Renewable() {
		t.Fatalf("expected token with no refresh token to be non-renewable")
	}
	if !(Token{RefreshToken: "r"}).Renewable() {
		t.Fatalf("expected token with a refresh token to be renewable")
	}
}
