package db

import (
	"context"
	"time"

	"omanga-backend-go/internal/models"
)

// UserRepository defines the interface for user-profile document storage.
type UserRepository interface {
	// GetByID returns the profile document for a Firebase Auth UID.
	// A missing document is reported as an error wrapping ErrNotFound.
	GetByID(ctx context.Context, uid string) (*models.UserProfile, error)
	// Create writes a new profile document keyed by profile.UID.
	// Creating an already existing document returns an error wrapping ErrAlreadyExists.
	Create(ctx context.Context, profile *models.UserProfile) error
	// UpdatePartial merges the given fields into an existing document and
	// stamps a fresh updatedAt.
	UpdatePartial(ctx context.Context, uid string, fields map[string]interface{}) error
}

// SessionRepository defines the interface for the session audit trail.
// Records are append-only; closing marks them inactive, never deletes.
type SessionRepository interface {
	// Append stores a new session record and returns its store-assigned ID.
	Append(ctx context.Context, session *models.Session) (string, error)
	// CloseAllForUser marks every active session of the user as inactive,
	// stamping logoutAt, in a single atomic batch. Returns the number of
	// records closed.
	CloseAllForUser(ctx context.Context, userID string, at time.Time) (int, error)
}

// PackageRepository defines the interface for the travel-package catalog.
type PackageRepository interface {
	GetAll(ctx context.Context) ([]*models.TravelPackage, error)
}
