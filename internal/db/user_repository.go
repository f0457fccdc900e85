package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"omanga-backend-go/internal/models"
)

// Firestore collections owned by this application. The packages catalog is
// read-only from this layer.
const (
	usersCollection    = "users"
	sessionsCollection = "sessions"
	packagesCollection = "packages"
)

// ErrNotFound is returned (wrapped) when a document does not exist.
var ErrNotFound = errors.New("document not found")

// ErrAlreadyExists is returned (wrapped) when a Create targets an existing document.
var ErrAlreadyExists = errors.New("document already exists")

// firestoreUserRepository implements the UserRepository interface using Firestore.
type firestoreUserRepository struct {
	client *firestore.Client
}

// NewFirestoreUserRepository creates a new instance of firestoreUserRepository.
func NewFirestoreUserRepository(client *firestore.Client) UserRepository {
	if client == nil {
		panic("Firestore client is not initialized for UserRepository")
	}
	return &firestoreUserRepository{client: client}
}

// GetByID retrieves a profile document by its Firebase Auth UID.
func (r *firestoreUserRepository) GetByID(ctx context.Context, uid string) (*models.UserProfile, error) {
	if uid == "" {
		return nil, errors.New("uid cannot be empty for GetByID operation")
	}
	docSnap, err := r.client.Collection(usersCollection).Doc(uid).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("user profile '%s' not found: %w", uid, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user profile '%s': %w", uid, err)
	}

	var profile models.UserProfile
	if err := docSnap.DataTo(&profile); err != nil {
		return nil, fmt.Errorf("failed to decode user profile '%s': %w", uid, err)
	}
	profile.UID = docSnap.Ref.ID

	return &profile, nil
}

// Create adds a new profile document using the Firebase Auth UID as the
// Firestore document ID.
func (r *firestoreUserRepository) Create(ctx context.Context, profile *models.UserProfile) error {
	if profile.UID == "" {
		return errors.New("profile UID cannot be empty for Create operation")
	}
	_, err := r.client.Collection(usersCollection).Doc(profile.UID).Create(ctx, profile)
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return fmt.Errorf("user profile '%s': %w", profile.UID, ErrAlreadyExists)
		}
		return fmt.Errorf("failed to create user profile '%s': %w", profile.UID, err)
	}
	return nil
}

// UpdatePartial merges the given fields into an existing profile document.
// Nested maps merge field-by-field, so a preferences update does not clobber
// sibling preference fields. Every update stamps a fresh updatedAt.
func (r *firestoreUserRepository) UpdatePartial(ctx context.Context, uid string, fields map[string]interface{}) error {
	if uid == "" {
		return errors.New("uid cannot be empty for UpdatePartial operation")
	}
	if len(fields) == 0 {
		return errors.New("no fields provided for UpdatePartial operation")
	}

	merged := make(map[string]interface{}, len(fields)+1)
	for k, v := range fields {
		merged[k] = v
	}
	merged["updatedAt"] = time.Now().UTC()

	_, err := r.client.Collection(usersCollection).Doc(uid).Set(ctx, merged, firestore.MergeAll)
	if err != nil {
		return fmt.Errorf("failed to update user profile '%s': %w", uid, err)
	}
	return nil
}
