package db

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"omanga-backend-go/internal/models"
)

// firestorePackageRepository implements the PackageRepository interface using Firestore.
type firestorePackageRepository struct {
	client *firestore.Client
}

// NewFirestorePackageRepository creates a new instance of firestorePackageRepository.
func NewFirestorePackageRepository(client *firestore.Client) PackageRepository {
	if client == nil {
		panic("Firestore client is not initialized for PackageRepository")
	}
	return &firestorePackageRepository{client: client}
}

// GetAll returns the full travel-package catalog ordered by title.
func (r *firestorePackageRepository) GetAll(ctx context.Context) ([]*models.TravelPackage, error) {
	iter := r.client.Collection(packagesCollection).OrderBy("title", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	var packages []*models.TravelPackage
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate packages: %w", err)
		}

		var pkg models.TravelPackage
		if err := doc.DataTo(&pkg); err != nil {
			return nil, fmt.Errorf("failed to decode package '%s': %w", doc.Ref.ID, err)
		}
		pkg.ID = doc.Ref.ID
		packages = append(packages, &pkg)
	}

	return packages, nil
}
