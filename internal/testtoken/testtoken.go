// Package testtoken mints signed tokens shaped like the identity service's for
// tests. Signatures use a throwaway HS256 key; nothing under test verifies them.
package testtoken

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var signingKey = []byte("test-only-signing-key")

// Claims builds the standard payload for username with the given role and
// authorities, valid for one hour.
func Claims(username, role string, authorities ...string) jwt.MapClaims {
	auths := make([]map[string]string, 0, len(authorities))
	for _, a := range authorities {
		auths = append(auths, map[string]string{"authority": a})
	}
	now := time.Now()
	return jwt.MapClaims{
		"sub":         username,
		"name":        username + " display",
		"role":        role,
		"authorities": auths,
		"iat":         now.Unix(),
		"exp":         now.Add(time.Hour).Unix(),
	}
}

// Sign returns a compact HS256 token for claims.
func Sign(t testing.TB, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(signingKey)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return tok
}

// New is shorthand for Sign(t, Claims(...)).
func New(t testing.TB, username, role string, authorities ...string) string {
	t.Helper()
	return Sign(t, Claims(username, role, authorities...))
}

// WithPayload assembles a token around a raw payload, bypassing JSON encoding.
func WithPayload(payload string) string {
	enc := base64.RawURLEncoding
	return enc.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`)) + "." +
		enc.EncodeToString([]byte(payload)) + ".c2ln"
}
