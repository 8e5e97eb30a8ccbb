package cli

import (
	"context"
	"errors"
	"net/http"

	goSession "github.com/MrEthical07/goSession"
)

// sessionView is the JSON shape printed by whoami and served at /session.
type sessionView struct {
	Status      string   `json:"status"`
	Username    string   `json:"username,omitempty"`
	Name        string   `json:"name,omitempty"`
	Role        string   `json:"role,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
	SessionID   string   `json:"session_id,omitempty"`
	Source      string   `json:"source,omitempty"`
}

func viewOf(snap goSession.Snapshot) sessionView {
	v := sessionView{Status: snap.Status.String(), SessionID: snap.SessionID}
	if snap.Identity != nil {
		v.Username = snap.Identity.Username
		v.Name = snap.Identity.DisplayName
		v.Role = snap.Identity.Role.Name
		v.Permissions = snap.Identity.Role.OperationNames()
		v.Source = snap.Identity.Source.String()
	}
	return v
}

// statusFor maps a Store error onto an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, goSession.ErrProfileInvalid):
		return http.StatusBadRequest
	case errors.Is(err, goSession.ErrCredentialRejected),
		errors.Is(err, goSession.ErrNotAuthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, goSession.ErrProfileMismatch):
		return http.StatusConflict
	case errors.Is(err, goSession.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, goSession.ErrProfileUnsupported):
		return http.StatusNotImplemented
	case errors.Is(err, goSession.ErrGatewayUnavailable),
		errors.Is(err, goSession.ErrMalformedToken):
		return http.StatusBadGateway
	case errors.Is(err, goSession.ErrStoreClosed),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
