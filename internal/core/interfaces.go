package core

import (
	"context"

	"omanga-backend-go/internal/identity"
	"omanga-backend-go/internal/models"
)

// AuthResult is the structured outcome of every public auth operation.
// Operations never return raw errors to callers; failures are mapped to
// user-facing messages.
type AuthResult struct {
	Success bool                `json:"success"`
	User    *models.UserProfile `json:"user,omitempty"`
	Error   string              `json:"error,omitempty"`
}

// SignUpParams carries the fields collected by the sign-up form.
type SignUpParams struct {
	Email    string
	Password string
	Phone    string
	Name     string
}

// LoginParams carries the credential pair plus device metadata for the
// session audit record.
type LoginParams struct {
	Email    string
	Password string
	Device   models.DeviceInfo
}

// AuthPhase is the session lifecycle state of the service.
type AuthPhase int

const (
	PhaseUnauthenticated AuthPhase = iota
	PhaseAuthenticating
	PhaseAuthenticated
)

func (p AuthPhase) String() string {
	switch p {
	case PhaseAuthenticating:
		return "authenticating"
	case PhaseAuthenticated:
		return "authenticated"
	default:
		return "unauthenticated"
	}
}

// StateChange is pushed to subscribers whenever the session snapshot changes,
// including changes not triggered by the subscriber's own calls.
type StateChange struct {
	Phase   AuthPhase
	User    *identity.Account
	Profile *models.UserProfile
}

// AuthService is the single authoritative bridge between the identity
// provider, the document store and the rest of the application.
type AuthService interface {
	SignUp(ctx context.Context, params SignUpParams) AuthResult
	Login(ctx context.Context, params LoginParams) AuthResult
	ResetPassword(ctx context.Context, email string) AuthResult
	Logout(ctx context.Context) AuthResult
	UpdateProfile(ctx context.Context, fields map[string]interface{}) AuthResult

	// GetUserDocument returns the profile document for an account ID.
	// A missing document is a valid empty state reported as (nil, nil).
	GetUserDocument(ctx context.Context, uid string) (*models.UserProfile, error)

	CurrentUser() *identity.Account
	CurrentProfile() *models.UserProfile
	IsAuthenticated() bool
	Phase() AuthPhase

	// Subscribe registers for session state pushes. The returned func
	// releases the subscription and closes the channel.
	Subscribe() (<-chan StateChange, func())
}

// PackageService exposes the travel-package catalog.
type PackageService interface {
	ListPackages(ctx context.Context) ([]*models.TravelPackage, error)
}

// EventPublisher publishes auth lifecycle events to the message queue.
// Publishing is always fire-and-forget from the caller's perspective.
type EventPublisher interface {
	Publish(event string, payload map[string]interface{}) error
}

// Mailer delivers transactional email (verification and reset links).
type Mailer interface {
	Send(to, subject, htmlBody string) error
}
