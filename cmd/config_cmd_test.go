package cmd

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signed(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatal(err)
	}
	return tok
}

func TestDescribeExpiry(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	future := signed(t, jwt.MapClaims{"exp": now.Add(72 * time.Hour).Unix()})
	if got := describeExpiry(future, now); !strings.HasSuffix(got, "(in 3d)") {
		t.Errorf("future token: %q", got)
	}

	past := signed(t, jwt.MapClaims{"exp": now.Add(-time.Hour).Unix()})
	if got := describeExpiry(past, now); !strings.HasSuffix(got, "(expired)") {
		t.Errorf("expired token: %q", got)
	}

	noExp := signed(t, jwt.MapClaims{"sub": "user-1"})
	if got := describeExpiry(noExp, now); got != "never" {
		t.Errorf("token without exp: %q", got)
	}

	if got := describeExpiry("opaque-api-key", now); got != "unknown (not a JWT)" {
		t.Errorf("opaque token: %q", got)
	}
}
