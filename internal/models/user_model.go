package models

import "time"

// KYC verification stages for a user profile.
const (
	KYCStatusNotStarted = "not_started"
	KYCStatusPending    = "pending"
	KYCStatusVerified   = "verified"
	KYCStatusRejected   = "rejected"
)

// DefaultCurrency is applied to newly created profiles.
const DefaultCurrency = "NGN"

// ProfileDetails holds the optional personal sub-fields of a user profile.
type ProfileDetails struct {
	ProfilePicture *string `json:"profilePicture" firestore:"profilePicture"`
	DateOfBirth    *string `json:"dateOfBirth" firestore:"dateOfBirth"`
	Address        *string `json:"address" firestore:"address"`
}

// Preferences holds user-selectable settings.
type Preferences struct {
	SelectedPackages []string `json:"selectedPackages" firestore:"selectedPackages"`
	DefaultCurrency  string   `json:"defaultCurrency" firestore:"defaultCurrency"`
}

// Verification tracks the verification state of a user's contact details and KYC.
type Verification struct {
	EmailVerified bool   `json:"emailVerified" firestore:"emailVerified"`
	PhoneVerified bool   `json:"phoneVerified" firestore:"phoneVerified"`
	KYCStatus     string `json:"kycStatus" firestore:"kycStatus"`
}

// UserProfile is the application-owned profile document, keyed 1:1 by the
// Firebase Auth UID. Exactly one document exists per account once created;
// it is never deleted by this layer.
type UserProfile struct {
	UID          string         `json:"uid" firestore:"uid"`
	Email        string         `json:"email" firestore:"email"`
	Phone        string         `json:"phone" firestore:"phone"`
	Name         string         `json:"name" firestore:"name"`
	Profile      ProfileDetails `json:"profile" firestore:"profile"`
	Preferences  Preferences    `json:"preferences" firestore:"preferences"`
	Verification Verification   `json:"verification" firestore:"verification"`
	CreatedAt    time.Time      `json:"createdAt" firestore:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt" firestore:"updatedAt"`
}
