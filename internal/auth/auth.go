// Package auth defines the port to the auth provider and the sign-in
// session state machine that drives bootstrap-or-sync. A bundled local
// email provider is included; external providers (e.g. Google) plug in
// through the same interface.
package auth

import (
	"context"

	"finanzas/internal/models"
)

// Cuenta is the provider-shaped account record returned by a successful
// sign-in or sign-up. Token authenticates remote document store calls.
type Cuenta struct {
	UID         string
	Email       string
	DisplayName string
	PhotoURL    string
	Proveedor   models.Proveedor
	Token       string
	// EsNueva marks an account the provider created during this call.
	EsNueva bool
}

// Provider is the outbound port to the auth provider.
type Provider interface {
	SignIn(ctx context.Context, email, password string) (*Cuenta, error)
	SignUp(ctx context.Context, email, password, displayName string) (*Cuenta, error)
	SignOut(ctx context.Context, uid string) error
}
