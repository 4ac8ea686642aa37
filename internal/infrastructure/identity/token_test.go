package identity

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestTokenExpiry_JWT(t *testing.T) {
	wantExp := time.Now().Add(30 * time.Minute).Truncate(time.Second)
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "sophie@example.com",
		"exp": wantExp.Unix(),
	}).SignedString([]byte("test-key"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	exp, ok := TokenExpiry(raw)
	if !ok {
		t.Fatalf("expected expiry from JWT token")
	}
	if !exp.Equal(wantExp) {
		t.Fatalf("expected %v, got %v", wantExp, exp)
	}
}

func TestTokenExpiry_OpaqueToken(t *testing.T) {
	if _, ok := TokenExpiry("4|zX9fBm2kQ7wL"); ok {
		t.Fatalf("opaque tokens carry no expiry")
	}
	if _, ok := TokenExpiry(""); ok {
		t.Fatalf("empty token carries no expiry")
	}
}

func TestTokenExpiry_JWTWithoutExp(t *testing.T) {
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "sophie@example.com",
	}).SignedString([]byte("test-key"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, ok := TokenExpiry(raw); ok {
		t.Fatalf("token without exp claim should yield no expiry")
	}
}
