package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"omanga-backend-go/internal/core"
)

// PackageHandler handles the travel-package catalog endpoints.
type PackageHandler struct {
	packageService core.PackageService
}

// NewPackageHandler creates a new PackageHandler.
func NewPackageHandler(svc core.PackageService) *PackageHandler {
	return &PackageHandler{packageService: svc}
}

// ListPackages handles GET /api/v1/packages.
func (h *PackageHandler) ListPackages(c *gin.Context) {
	packages, err := h.packageService.ListPackages(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to list packages"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"packages": packages})
}
