// Package identity wraps the external identity provider behind an explicit
// interface, so the auth layer never depends on provider-specific error
// strings or client types.
package identity

import "context"

// Account is the locally used view of a provider-owned credential.
type Account struct {
	UID           string
	Email         string
	DisplayName   string
	PhoneNumber   string
	PhotoURL      string
	EmailVerified bool
}

// Provider exposes the credential operations consumed by the auth layer.
// All calls are single-attempt; retries are the caller's concern (and the
// auth layer deliberately performs none).
type Provider interface {
	// CreateAccount registers a new credential.
	CreateAccount(ctx context.Context, email, password string) (*Account, error)
	// SignIn verifies an email/password pair and returns the account.
	SignIn(ctx context.Context, email, password string) (*Account, error)
	// SignOut ends the provider session for the account by revoking its
	// refresh tokens.
	SignOut(ctx context.Context, uid string) error
	// UpdateDisplayName changes the display name on an existing account.
	UpdateDisplayName(ctx context.Context, uid, name string) error
	// EmailVerificationLink generates a verification link for the address.
	EmailVerificationLink(ctx context.Context, email string) (string, error)
	// PasswordResetLink generates a password-reset link for the address.
	// The provider decides whether the address maps to an account.
	PasswordResetLink(ctx context.Context, email string) (string, error)
}
