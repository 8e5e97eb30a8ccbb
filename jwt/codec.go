package jwt

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/MrEthical07/goSession/identity"
	"github.com/golang-jwt/jwt/v5"
)

// ErrMalformed is matched by every [DecodeError].
var ErrMalformed = errors.New("malformed token")

// DefaultRolePrefix marks the role authority inside the authorities claim.
const DefaultRolePrefix = "ROLE_"

// Kind classifies a decode failure.
type Kind uint8

const (
	// KindSegments means the token is not three non-empty dot-separated segments.
	KindSegments Kind = iota + 1
	// KindEncoding means the payload is not base64url or not valid UTF-8.
	KindEncoding
	// KindJSON means the payload is not a JSON object of the expected shape.
	KindJSON
	// KindClaims means a required claim is missing or invalid.
	KindClaims
)

func (k Kind) String() string {
	switch k {
	case KindSegments:
		return "segments"
	case KindEncoding:
		return "encoding"
	case KindJSON:
		return "json"
	case KindClaims:
		return "claims"
	default:
		return "unknown"
	}
}

// DecodeError is the typed failure returned by [Codec.Decode].
type DecodeError struct {
	Kind  Kind
	Field string
	Err   error
}

func (e *DecodeError) Error() string {
	msg := "malformed token: " + e.Kind.String()
	if e.Field != "" {
		msg += " (" + e.Field + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the sentinel and the underlying cause.
func (e *DecodeError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrMalformed}
	}
	return []error{ErrMalformed, e.Err}
}

// Claims is the decoded, validated token payload.
type Claims struct {
	Subject       string
	Name          string
	Role          string
	Authorities   []string
	RoleAuthority string
	IssuedAt      time.Time
	ExpiresAt     time.Time
}

// Expired reports whether exp is at or before now. Informational only: the
// session store relies on remote validation, not on this.
func (c *Claims) Expired(now time.Time) bool {
	return c != nil && !c.ExpiresAt.After(now)
}

// Authority is one entry of the authorities claim. It decodes from either
// {"authority": "X"} or a bare "X".
type Authority struct {
	Authority string `json:"authority"`
}

func (a *Authority) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		a.Authority = s
		return nil
	}
	var obj struct {
		Authority string `json:"authority"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	a.Authority = obj.Authority
	return nil
}

// payload names only the claims the codec reads; other registered claims
// (jti, aud, nbf, iss) are ignored whatever their JSON type.
type payload struct {
	Subject     string           `json:"sub"`
	Name        *string          `json:"name"`
	Role        *string          `json:"role"`
	Authorities *[]Authority     `json:"authorities"`
	IssuedAt    *jwt.NumericDate `json:"iat"`
	ExpiresAt   *jwt.NumericDate `json:"exp"`
}

// Config tunes identity reconstruction.
type Config struct {
	RolePrefix string
	// Module is attached to every reconstructed operation since tokens carry
	// no module detail.
	Module identity.Module
}

// Codec decodes token payloads. It is stateless and safe for concurrent use.
type Codec struct {
	config Config
	parser *jwt.Parser
}

// NewCodec returns a Codec, filling zero config fields with defaults.
func NewCodec(cfg Config) *Codec {
	if cfg.RolePrefix == "" {
		cfg.RolePrefix = DefaultRolePrefix
	}
	if cfg.Module == (identity.Module{}) {
		cfg.Module = identity.Module{ID: 1, Name: "GENERAL", BasePath: "/api/v1"}
	}
	return &Codec{config: cfg, parser: jwt.NewParser()}
}

var defaultCodec = NewCodec(Config{})

// Decode decodes token with the default codec.
func Decode(token string) (*Claims, error) {
	return defaultCodec.Decode(token)
}

// ToIdentity reconstructs an identity with the default codec.
func ToIdentity(c *Claims) *identity.Identity {
	return defaultCodec.ToIdentity(c)
}

// Decode splits token, decodes its payload and validates the claim schema.
// The header and signature segments are checked for presence only.
func (c *Codec) Decode(token string) (*Claims, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, &DecodeError{Kind: KindSegments, Err: fmt.Errorf("expected 3 segments, got %d", len(parts))}
	}
	for i, p := range parts {
		if p == "" {
			return nil, &DecodeError{Kind: KindSegments, Err: fmt.Errorf("segment %d is empty", i)}
		}
	}

	raw, err := c.parser.DecodeSegment(parts[1])
	if err != nil {
		return nil, &DecodeError{Kind: KindEncoding, Err: err}
	}
	if !utf8.Valid(raw) {
		return nil, &DecodeError{Kind: KindEncoding, Err: errors.New("payload is not valid utf-8")}
	}

	var p payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, &DecodeError{Kind: KindJSON, Err: err}
	}

	return c.validate(&p)
}

func (c *Codec) validate(p *payload) (*Claims, error) {
	switch {
	case p.Subject == "":
		return nil, missing("sub")
	case p.Name == nil:
		return nil, missing("name")
	case p.Role == nil || *p.Role == "":
		return nil, missing("role")
	case p.Authorities == nil:
		return nil, missing("authorities")
	case p.IssuedAt == nil:
		return nil, missing("iat")
	case p.ExpiresAt == nil:
		return nil, missing("exp")
	}

	claims := &Claims{
		Subject:     p.Subject,
		Name:        *p.Name,
		Role:        *p.Role,
		Authorities: make([]string, 0, len(*p.Authorities)),
		IssuedAt:    p.IssuedAt.Time,
		ExpiresAt:   p.ExpiresAt.Time,
	}

	for i, a := range *p.Authorities {
		if a.Authority == "" {
			return nil, &DecodeError{Kind: KindClaims, Field: fmt.Sprintf("authorities[%d]", i), Err: errors.New("empty authority")}
		}
		if strings.HasPrefix(a.Authority, c.config.RolePrefix) {
			if claims.RoleAuthority != "" {
				return nil, &DecodeError{Kind: KindClaims, Field: "authorities", Err: errors.New("more than one role marker")}
			}
			claims.RoleAuthority = a.Authority
		}
		claims.Authorities = append(claims.Authorities, a.Authority)
	}

	return claims, nil
}

func missing(field string) *DecodeError {
	return &DecodeError{Kind: KindClaims, Field: field, Err: errors.New("required claim missing")}
}

// ToIdentity maps claims to an identity.
//
// This is a lossy reconstruction: tokens carry neither user, role and
// permission IDs nor operation paths, verbs or modules. IDs are synthesized
// (user and role 1, permissions 1..n in token order) and every operation gets
// the configured default module. Duplicate operation markers collapse to the
// first occurrence. Replace with a profile fetch when real metadata matters.
func (c *Codec) ToIdentity(claims *Claims) *identity.Identity {
	if claims == nil {
		return nil
	}

	perms := make([]identity.Permission, 0, len(claims.Authorities))
	seen := make(map[string]struct{}, len(claims.Authorities))
	for _, name := range claims.Authorities {
		if strings.HasPrefix(name, c.config.RolePrefix) {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		id := int64(len(perms) + 1)
		perms = append(perms, identity.Permission{
			ID: id,
			Operation: identity.Operation{
				ID:     id,
				Name:   name,
				Module: c.config.Module,
			},
		})
	}

	return &identity.Identity{
		ID:          1,
		Username:    claims.Subject,
		DisplayName: claims.Name,
		Role: identity.Role{
			ID:          1,
			Name:        claims.Role,
			Permissions: perms,
		},
		Source: identity.SourceToken,
	}
}
