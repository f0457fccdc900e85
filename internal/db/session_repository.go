package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"omanga-backend-go/internal/models"
)

// firestoreSessionRepository implements the SessionRepository interface using Firestore.
type firestoreSessionRepository struct {
	client *firestore.Client
}

// NewFirestoreSessionRepository creates a new instance of firestoreSessionRepository.
func NewFirestoreSessionRepository(client *firestore.Client) SessionRepository {
	if client == nil {
		panic("Firestore client is not initialized for SessionRepository")
	}
	return &firestoreSessionRepository{client: client}
}

// Append stores a new session record with an auto-generated document ID.
func (r *firestoreSessionRepository) Append(ctx context.Context, session *models.Session) (string, error) {
	if session == nil || session.UserID == "" {
		return "", errors.New("session with a userId is required for Append operation")
	}
	docRef := r.client.Collection(sessionsCollection).NewDoc()
	session.ID = docRef.ID

	if _, err := docRef.Create(ctx, session); err != nil {
		return "", fmt.Errorf("failed to append session for user '%s': %w", session.UserID, err)
	}
	return docRef.ID, nil
}

// CloseAllForUser marks every active session of the user as inactive in a
// single write batch, so the audit trail is closed atomically. Records are
// never deleted.
func (r *firestoreSessionRepository) CloseAllForUser(ctx context.Context, userID string, at time.Time) (int, error) {
	if userID == "" {
		return 0, errors.New("userID cannot be empty for CloseAllForUser operation")
	}

	query := r.client.Collection(sessionsCollection).
		Where("userId", "==", userID).
		Where("isActive", "==", true)

	iter := query.Documents(ctx)
	defer iter.Stop()

	batch := r.client.Batch()
	count := 0
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("failed to iterate active sessions for user '%s': %w", userID, err)
		}
		batch.Set(doc.Ref, map[string]interface{}{
			"isActive": false,
			"logoutAt": at,
		}, firestore.MergeAll)
		count++
	}

	if count == 0 {
		return 0, nil // nothing to close, skip the empty commit
	}

	if _, err := batch.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to close %d session(s) for user '%s': %w", count, userID, err)
	}
	return count, nil
}
