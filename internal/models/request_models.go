package models

// SignUpRequest represents the request body for creating a new account.
type SignUpRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Phone    string `json:"phone,omitempty"`
	Name     string `json:"name,omitempty"`
}

// LoginRequest represents the request body for authenticating an account.
type LoginRequest struct {
	Email    string      `json:"email" binding:"required,email"`
	Password string      `json:"password" binding:"required"`
	Device   *DeviceInfo `json:"device,omitempty"`
}

// ResetPasswordRequest represents the request body for dispatching a
// password-reset email.
type ResetPasswordRequest struct {
	Email string `json:"email" binding:"required"`
}

// UpdateProfileRequest represents a partial profile update.
// Pointers distinguish fields to update from fields not provided.
type UpdateProfileRequest struct {
	Phone          *string `json:"phone,omitempty"`
	Name           *string `json:"name,omitempty"`
	ProfilePicture *string `json:"profilePicture,omitempty"`
	DateOfBirth    *string `json:"dateOfBirth,omitempty"`
	Address        *string `json:"address,omitempty"`
}

// SelectPackagesRequest replaces the set of packages a user has selected.
type SelectPackagesRequest struct {
	PackageIDs []string `json:"packageIds" binding:"required,min=1"`
}
