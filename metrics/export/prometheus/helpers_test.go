package prometheus

import (
	"context"

	goSession "github.com/MrEthical07/goSession"
)

type nopGateway struct{}

func (nopGateway) Authenticate(context.Context, string, string) (string, error) {
	return "", goSession.ErrCredentialRejected
}

func (nopGateway) Register(context.Context, goSession.Profile) (string, error) {
	return "", goSession.ErrCredentialRejected
}

func (nopGateway) ValidateToken(context.Context, string) (bool, error) { return false, nil }

func (nopGateway) Revoke(context.Context, string) error { return nil }
