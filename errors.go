package goSession

import "errors"

var (
	// ErrMalformedToken reports a token that failed structural decoding.
	ErrMalformedToken = errors.New("malformed token")
	// ErrCredentialRejected reports an authenticate or register call refused by the identity service.
	ErrCredentialRejected = errors.New("credentials rejected")
	// ErrGatewayUnavailable reports a transport failure or unusable response from the identity service.
	ErrGatewayUnavailable = errors.New("identity service unavailable")
	// ErrTokenRejected reports a persisted token the identity service no longer accepts.
	ErrTokenRejected = errors.New("token rejected by identity service")
	// ErrRevocationFailed reports a failed best-effort server-side logout.
	ErrRevocationFailed = errors.New("token revocation failed")
	// ErrTokenStorage reports a failure reading, writing or clearing the persisted token.
	ErrTokenStorage = errors.New("token storage failure")
	// ErrRateLimited reports a mutation refused by the client-side throttle.
	ErrRateLimited = errors.New("session mutation rate limited")
	// ErrNotAuthenticated reports an operation that needs an authenticated session.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrProfileMismatch reports a fetched profile that belongs to another user.
	ErrProfileMismatch = errors.New("profile does not match session")
	// ErrProfileUnsupported reports a gateway that cannot fetch profiles.
	ErrProfileUnsupported = errors.New("gateway does not support profile fetch")
	// ErrProfileInvalid reports a registration profile that fails pre-validation.
	ErrProfileInvalid = errors.New("invalid registration profile")
	// ErrStoreClosed reports a mutation attempted after Close.
	ErrStoreClosed = errors.New("session store closed")
	// ErrInvalidConfig reports a configuration that fails validation.
	ErrInvalidConfig = errors.New("invalid configuration")
)
