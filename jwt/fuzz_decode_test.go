package jwt

import (
	"errors"
	"testing"

	"github.com/MrEthical07/goSession/internal/testtoken"
)

// FuzzDecode: no panics; failures are always typed DecodeErrors.
func FuzzDecode(f *testing.F) {
	f.Add(testtoken.New(f, "alice", "ADMINISTRATOR", "ROLE_ADMINISTRATOR", "READ_ALL_PRODUCTS"))
	f.Add("")
	f.Add("not.a.jwt")
	f.Add("..")
	f.Add("eyJhbGciOiJub25lIn0.eyJ1aWQiOiJ0ZXN0In0.")
	f.Add(testtoken.WithPayload(`{"sub":"a","name":"A","role":"R","authorities":[{"authority":1}],"iat":1,"exp":2}`))

	f.Fuzz(func(t *testing.T, input string) {
		claims, err := Decode(input)
		if err != nil {
			var de *DecodeError
			if !errors.As(err, &de) || !errors.Is(err, ErrMalformed) {
				t.Fatalf("untyped decode failure: %v", err)
			}
			return
		}
		if claims == nil {
			t.Fatal("Decode returned nil claims without error")
		}
		if claims.Subject == "" || claims.Role == "" {
			t.Fatalf("Decode accepted claims missing required fields: %+v", claims)
		}
		if ToIdentity(claims) == nil {
			t.Fatal("ToIdentity returned nil for decoded claims")
		}
	})
}
