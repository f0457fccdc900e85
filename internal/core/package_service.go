package core

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"omanga-backend-go/internal/db"
	"omanga-backend-go/internal/models"
	"omanga-backend-go/pkg/cache"
)

const (
	packageCatalogCacheKey = "packages:catalog"
	packageCatalogCacheTTL = 10 * time.Minute
)

// packageService implements the PackageService interface. The catalog is
// small and changes rarely, so reads go through an optional cache.
type packageService struct {
	packages db.PackageRepository
	cache    cache.Cache // optional
	logger   *zap.Logger
}

// NewPackageService creates a PackageService. cache may be nil, in which
// case every read hits the store.
func NewPackageService(packages db.PackageRepository, c cache.Cache, logger *zap.Logger) PackageService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &packageService{packages: packages, cache: c, logger: logger}
}

// ListPackages returns the travel-package catalog, cached when possible.
// Cache faults are logged and fall through to the store.
func (s *packageService) ListPackages(ctx context.Context) ([]*models.TravelPackage, error) {
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, packageCatalogCacheKey); err != nil {
			s.logger.Warn("package catalog cache read failed", zap.Error(err))
		} else if raw != "" {
			var cached []*models.TravelPackage
			if err := json.Unmarshal([]byte(raw), &cached); err == nil {
				return cached, nil
			}
			s.logger.Warn("package catalog cache entry is corrupt, refreshing")
		}
	}

	packages, err := s.packages.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if raw, err := json.Marshal(packages); err == nil {
			if err := s.cache.Set(ctx, packageCatalogCacheKey, string(raw), packageCatalogCacheTTL); err != nil {
				s.logger.Warn("package catalog cache write failed", zap.Error(err))
			}
		}
	}

	return packages, nil
}
