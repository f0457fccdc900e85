package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"omanga-backend-go/internal/core"
	"omanga-backend-go/internal/models"
)

// UserHandler handles user-profile endpoints.
type UserHandler struct {
	authService core.AuthService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(svc core.AuthService) *UserHandler {
	return &UserHandler{authService: svc}
}

// GetProfile handles GET /api/v1/users/me. It returns the profile document
// of the authenticated account; a missing document is returned as null.
func (h *UserHandler) GetProfile(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		return
	}

	profile, err := h.authService.GetUserDocument(c.Request.Context(), uid)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to retrieve user profile"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": profile})
}

// UpdateProfile handles PATCH /api/v1/users/me with a partial update.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	if !sessionMatchesCaller(c, h.authService) {
		return
	}

	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}

	fields := profileUpdateFields(req)
	if len(fields) == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "No fields provided for update"})
		return
	}

	result := h.authService.UpdateProfile(c.Request.Context(), fields)
	if !result.Success {
		c.JSON(http.StatusBadRequest, result)
		return
	}
	c.JSON(http.StatusOK, result)
}

// SelectPackages handles PUT /api/v1/users/me/packages, replacing the set of
// selected packages in the profile preferences.
func (h *UserHandler) SelectPackages(c *gin.Context) {
	if !sessionMatchesCaller(c, h.authService) {
		return
	}

	var req models.SelectPackagesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}

	result := h.authService.UpdateProfile(c.Request.Context(), map[string]interface{}{
		"preferences": map[string]interface{}{
			"selectedPackages": req.PackageIDs,
		},
	})
	if !result.Success {
		c.JSON(http.StatusBadRequest, result)
		return
	}
	c.JSON(http.StatusOK, result)
}

// profileUpdateFields converts the request into the store's partial-update
// shape, keeping nested fields under their sub-documents.
func profileUpdateFields(req models.UpdateProfileRequest) map[string]interface{} {
	fields := make(map[string]interface{})
	if req.Phone != nil {
		fields["phone"] = *req.Phone
	}
	if req.Name != nil {
		fields["name"] = *req.Name
	}

	details := make(map[string]interface{})
	if req.ProfilePicture != nil {
		details["profilePicture"] = *req.ProfilePicture
	}
	if req.DateOfBirth != nil {
		details["dateOfBirth"] = *req.DateOfBirth
	}
	if req.Address != nil {
		details["address"] = *req.Address
	}
	if len(details) > 0 {
		fields["profile"] = details
	}
	return fields
}

// sessionMatchesCaller verifies that the token-verified caller is the account
// the service's session snapshot currently holds. Snapshot-backed operations
// act on whoever is signed in on this instance, so a caller holding a valid
// token for a different account must be rejected, not routed to someone
// else's state.
func sessionMatchesCaller(c *gin.Context, svc core.AuthService) bool {
	uid, ok := userIDFromContext(c)
	if !ok {
		return false
	}
	current := svc.CurrentUser()
	if current == nil || current.UID != uid {
		c.JSON(http.StatusConflict, ErrorResponse{Error: "No active session for this account on this instance"})
		return false
	}
	return true
}

// userIDFromContext pulls the UID set by the auth middleware, responding
// with an error when it is absent.
func userIDFromContext(c *gin.Context) (string, bool) {
	raw, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Authentication error: User ID not found in context"})
		return "", false
	}
	uid, ok := raw.(string)
	if !ok || uid == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid user ID format in context"})
		return "", false
	}
	return uid, true
}
