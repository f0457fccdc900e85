package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"omanga-backend-go/internal/core"
	"omanga-backend-go/internal/models"
)

// AuthHandler handles the account lifecycle endpoints.
type AuthHandler struct {
	authService core.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc core.AuthService) *AuthHandler {
	return &AuthHandler{authService: svc}
}

// SignUp handles POST /api/v1/auth/signup.
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req models.SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}

	result := h.authService.SignUp(c.Request.Context(), core.SignUpParams{
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
		Name:     req.Name,
	})
	if !result.Success {
		c.JSON(http.StatusBadRequest, result)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// Login handles POST /api/v1/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}

	device := deviceFromRequest(c, req.Device)
	result := h.authService.Login(c.Request.Context(), core.LoginParams{
		Email:    req.Email,
		Password: req.Password,
		Device:   device,
	})
	if !result.Success {
		c.JSON(http.StatusUnauthorized, result)
		return
	}
	// A missing profile document is not a failure; result.User may be null.
	c.JSON(http.StatusOK, result)
}

// ResetPassword handles POST /api/v1/auth/reset-password.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req models.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}

	result := h.authService.ResetPassword(c.Request.Context(), req.Email)
	if !result.Success {
		c.JSON(http.StatusBadRequest, result)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Logout handles POST /api/v1/auth/logout. Requires authentication. A caller
// whose token names a different account than the active session is rejected;
// a caller with no active session left to end still gets a success.
func (h *AuthHandler) Logout(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		return
	}
	if current := h.authService.CurrentUser(); current != nil && current.UID != uid {
		c.JSON(http.StatusConflict, ErrorResponse{Error: "No active session for this account on this instance"})
		return
	}

	result := h.authService.Logout(c.Request.Context())
	if !result.Success {
		c.JSON(http.StatusBadGateway, result)
		return
	}
	c.JSON(http.StatusOK, result)
}

// deviceFromRequest builds the session device metadata, preferring an
// explicit body field over the conventional headers.
func deviceFromRequest(c *gin.Context, explicit *models.DeviceInfo) models.DeviceInfo {
	if explicit != nil {
		return *explicit
	}
	return models.DeviceInfo{
		Platform:   c.GetHeader("X-Platform"),
		DeviceID:   c.GetHeader("X-Device-ID"),
		AppVersion: c.GetHeader("X-App-Version"),
	}
}
