package jwt

import (
	"errors"
	"testing"
	"time"

	"github.com/MrEthical07/goSession/identity"
	"github.com/MrEthical07/goSession/internal/testtoken"
)

func TestDecodeWellFormedToken(t *testing.T) {
	tok := testtoken.New(t, "alice", "ADMINISTRATOR", "ROLE_ADMINISTRATOR", "READ_ALL_PRODUCTS", "CREATE_ONE_PRODUCT")

	claims, err := Decode(tok)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if claims.Subject != "alice" {
		t.Fatalf("expected sub alice, got %q", claims.Subject)
	}
	if claims.Name != "alice display" {
		t.Fatalf("expected name, got %q", claims.Name)
	}
	if claims.Role != "ADMINISTRATOR" {
		t.Fatalf("expected role ADMINISTRATOR, got %q", claims.Role)
	}
	if claims.RoleAuthority != "ROLE_ADMINISTRATOR" {
		t.Fatalf("expected role marker, got %q", claims.RoleAuthority)
	}
	if len(claims.Authorities) != 3 {
		t.Fatalf("expected 3 authorities, got %d", len(claims.Authorities))
	}
	if claims.IssuedAt.IsZero() || claims.ExpiresAt.IsZero() {
		t.Fatalf("expected iat/exp populated, got %v %v", claims.IssuedAt, claims.ExpiresAt)
	}
	if claims.Expired(time.Now()) {
		t.Fatal("expected fresh token to be unexpired")
	}
}

func TestDecodeLosslessForIdentityFields(t *testing.T) {
	cases := []struct {
		user  string
		role  string
		auths []string
		perms int
	}{
		{"alice", "ADMINISTRATOR", []string{"ROLE_ADMINISTRATOR", "READ_ALL_PRODUCTS", "READ_ALL_CATEGORIES"}, 2},
		{"bob", "CUSTOMER", []string{"READ_MY_PROFILE"}, 1},
		{"carol", "ASSISTANT_ADMINISTRATOR", nil, 0},
		{"dave", "CUSTOMER", []string{"ROLE_CUSTOMER"}, 0},
	}

	for _, tc := range cases {
		claims, err := Decode(testtoken.New(t, tc.user, tc.role, tc.auths...))
		if err != nil {
			t.Fatalf("%s: Decode failed: %v", tc.user, err)
		}
		id := ToIdentity(claims)
		if id.Username != tc.user {
			t.Fatalf("%s: expected username preserved, got %q", tc.user, id.Username)
		}
		if id.DisplayName != tc.user+" display" {
			t.Fatalf("%s: expected display name preserved, got %q", tc.user, id.DisplayName)
		}
		if id.Role.Name != tc.role {
			t.Fatalf("%s: expected role %q, got %q", tc.user, tc.role, id.Role.Name)
		}
		if len(id.Role.Permissions) != tc.perms {
			t.Fatalf("%s: expected %d permissions, got %d", tc.user, tc.perms, len(id.Role.Permissions))
		}
	}
}

func TestToIdentitySynthesizesSequentialIDs(t *testing.T) {
	claims, err := Decode(testtoken.New(t, "alice", "ADMINISTRATOR",
		"READ_ALL_PRODUCTS", "ROLE_ADMINISTRATOR", "CREATE_ONE_PRODUCT", "READ_ALL_PRODUCTS"))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	id := ToIdentity(claims)
	if id.Source != identity.SourceToken {
		t.Fatalf("expected token source, got %v", id.Source)
	}
	want := []string{"READ_ALL_PRODUCTS", "CREATE_ONE_PRODUCT"}
	got := id.Role.OperationNames()
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i, p := range id.Role.Permissions {
		if p.Operation.Name != want[i] {
			t.Fatalf("expected %q at %d, got %q", want[i], i, p.Operation.Name)
		}
		if p.ID != int64(i+1) || p.Operation.ID != int64(i+1) {
			t.Fatalf("expected sequential id %d, got %d/%d", i+1, p.ID, p.Operation.ID)
		}
		if p.Operation.Path != "" || p.Operation.HTTPMethod != "" {
			t.Fatalf("expected empty path/verb, got %+v", p.Operation)
		}
		if p.Operation.Module.Name != "GENERAL" {
			t.Fatalf("expected GENERAL module, got %+v", p.Operation.Module)
		}
	}
}

func TestDecodeAcceptsBareStringAuthorities(t *testing.T) {
	tok := testtoken.WithPayload(`{"sub":"root","name":"Root","role":"ADMINISTRATOR",` +
		`"authorities":["ROLE_ADMINISTRATOR","READ_ALL_PRODUCTS"],"iat":1700000000,"exp":1700003600}`)

	claims, err := Decode(tok)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	id := ToIdentity(claims)
	if len(id.Role.Permissions) != 1 || id.Role.Permissions[0].Operation.Name != "READ_ALL_PRODUCTS" {
		t.Fatalf("unexpected permissions %+v", id.Role.Permissions)
	}
}

func TestDecodeIgnoresUnreadRegisteredClaims(t *testing.T) {
	for name, extra := range map[string]string{
		"numeric jti":  `"jti":42`,
		"numeric aud":  `"aud":7`,
		"string nbf":   `"nbf":"soon"`,
		"object iss":   `"iss":{"host":"idp"}`,
		"unknown type": `"tenant":[1,2]`,
	} {
		t.Run(name, func(t *testing.T) {
			tok := testtoken.WithPayload(`{"sub":"root","name":"Root","role":"ADMINISTRATOR",` +
				`"authorities":["ROLE_ADMINISTRATOR"],"iat":1700000000,"exp":1700003600,` + extra + `}`)
			claims, err := Decode(tok)
			if err != nil {
				t.Fatalf("expected decode to succeed, got %v", err)
			}
			if claims.Subject != "root" || claims.ExpiresAt.Unix() != 1700003600 {
				t.Fatalf("unexpected claims %+v", claims)
			}
		})
	}
}

func TestDecodeMalformedTokens(t *testing.T) {
	cases := []struct {
		name  string
		token string
		kind  Kind
	}{
		{"empty", "", KindSegments},
		{"one segment", "abc", KindSegments},
		{"two segments", "abc.def", KindSegments},
		{"four segments", "a.b.c.d", KindSegments},
		{"empty signature", "eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiJ4In0.", KindSegments},
		{"empty header", ".eyJzdWIiOiJ4In0.sig", KindSegments},
		{"bad base64", "aGVhZGVy.!!!not-base64!!!.sig", KindEncoding},
		{"non json", testtoken.WithPayload("hello world"), KindJSON},
		{"json array", testtoken.WithPayload("[1,2,3]"), KindJSON},
		{"wrong claim type", testtoken.WithPayload(`{"sub":"a","name":"A","role":7,"authorities":[],"iat":1,"exp":2}`), KindJSON},
		{"string iat", testtoken.WithPayload(`{"sub":"a","name":"A","role":"R","authorities":[],"iat":"x","exp":2}`), KindJSON},
		{"null payload", testtoken.WithPayload("null"), KindClaims},
		{"missing sub", testtoken.WithPayload(`{"name":"A","role":"R","authorities":[],"iat":1,"exp":2}`), KindClaims},
		{"missing name", testtoken.WithPayload(`{"sub":"a","role":"R","authorities":[],"iat":1,"exp":2}`), KindClaims},
		{"empty role", testtoken.WithPayload(`{"sub":"a","name":"A","role":"","authorities":[],"iat":1,"exp":2}`), KindClaims},
		{"missing authorities", testtoken.WithPayload(`{"sub":"a","name":"A","role":"R","iat":1,"exp":2}`), KindClaims},
		{"missing exp", testtoken.WithPayload(`{"sub":"a","name":"A","role":"R","authorities":[],"iat":1}`), KindClaims},
		{"empty authority", testtoken.WithPayload(`{"sub":"a","name":"A","role":"R","authorities":[{"authority":""}],"iat":1,"exp":2}`), KindClaims},
		{"two role markers", testtoken.WithPayload(`{"sub":"a","name":"A","role":"R","authorities":["ROLE_A","ROLE_B"],"iat":1,"exp":2}`), KindClaims},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			claims, err := Decode(tc.token)
			if err == nil {
				t.Fatalf("expected failure, got claims %+v", claims)
			}
			if claims != nil {
				t.Fatalf("expected nil claims on failure, got %+v", claims)
			}
			if !errors.Is(err, ErrMalformed) {
				t.Fatalf("expected ErrMalformed, got %v", err)
			}
			var de *DecodeError
			if !errors.As(err, &de) {
				t.Fatalf("expected *DecodeError, got %T", err)
			}
			if de.Kind != tc.kind {
				t.Fatalf("expected kind %v, got %v (%v)", tc.kind, de.Kind, err)
			}
		})
	}
}

func TestDecodeInvalidUTF8Payload(t *testing.T) {
	tok := testtoken.WithPayload("{\"sub\":\"\xff\xfe\"}")
	_, err := Decode(tok)
	var de *DecodeError
	if !errors.As(err, &de) || de.Kind != KindEncoding {
		t.Fatalf("expected encoding failure, got %v", err)
	}
}

func TestCodecCustomRolePrefix(t *testing.T) {
	c := NewCodec(Config{RolePrefix: "R:"})
	claims, err := c.Decode(testtoken.New(t, "alice", "CUSTOMER", "R:CUSTOMER", "ROLE_LOOKALIKE"))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	id := c.ToIdentity(claims)
	if got := id.Role.OperationNames(); len(got) != 1 || got[0] != "ROLE_LOOKALIKE" {
		t.Fatalf("expected only ROLE_LOOKALIKE as operation, got %v", got)
	}
}

func TestToIdentityNil(t *testing.T) {
	if ToIdentity(nil) != nil {
		t.Fatal("expected nil identity for nil claims")
	}
}
