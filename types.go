package goSession

import (
	"fmt"
	"strings"
	"time"

	"github.com/MrEthical07/goSession/identity"
)

// Status is the session lifecycle state.
type Status uint8

const (
	// StatusBootstrapping is the initial state, held until Bootstrap completes.
	// It is never re-entered.
	StatusBootstrapping Status = iota
	// StatusAnonymous means no identity and no token.
	StatusAnonymous
	// StatusAuthenticated means an identity backed by a token.
	StatusAuthenticated
)

func (s Status) String() string {
	switch s {
	case StatusBootstrapping:
		return "bootstrapping"
	case StatusAnonymous:
		return "anonymous"
	case StatusAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Snapshot is an immutable view of the session at one instant.
//
// Identity is non-nil iff Token is non-empty iff Status is
// StatusAuthenticated. Identity is shared with the Store and must not be
// mutated; use [Store.CurrentUser] for a private copy.
type Snapshot struct {
	Status    Status
	Identity  *identity.Identity
	Token     string
	SessionID string
	Since     time.Time
}

// Bootstrapped reports whether the initial restore has finished.
func (s Snapshot) Bootstrapped() bool {
	return s.Status != StatusBootstrapping
}

// Authenticated reports whether the snapshot carries an identity.
func (s Snapshot) Authenticated() bool {
	return s.Status == StatusAuthenticated
}

// Credentials are the username and password sent to authenticate.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Profile is a self-registration request.
type Profile struct {
	Name             string `json:"name"`
	Username         string `json:"username"`
	Password         string `json:"password"`
	RepeatedPassword string `json:"repeatedPassword"`
}

const (
	minNameLength     = 2
	minUsernameLength = 3
	minPasswordLength = 8
)

// Validate applies the registration form rules. [Store.Register] does not
// call it; the identity service has the final say.
func (p Profile) Validate() error {
	switch {
	case strings.TrimSpace(p.Name) == "":
		return fmt.Errorf("%w: name is required", ErrProfileInvalid)
	case len([]rune(strings.TrimSpace(p.Name))) < minNameLength:
		return fmt.Errorf("%w: name must be at least %d characters", ErrProfileInvalid, minNameLength)
	case p.Username == "":
		return fmt.Errorf("%w: username is required", ErrProfileInvalid)
	case len([]rune(p.Username)) < minUsernameLength:
		return fmt.Errorf("%w: username must be at least %d characters", ErrProfileInvalid, minUsernameLength)
	case p.Password == "":
		return fmt.Errorf("%w: password is required", ErrProfileInvalid)
	case len([]rune(p.Password)) < minPasswordLength:
		return fmt.Errorf("%w: password must be at least %d characters", ErrProfileInvalid, minPasswordLength)
	case p.Password != p.RepeatedPassword:
		return fmt.Errorf("%w: passwords do not match", ErrProfileInvalid)
	}
	return nil
}
