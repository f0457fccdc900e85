package models

import "time"

// DeviceInfo describes the device a session was opened from.
type DeviceInfo struct {
	Platform   string `json:"platform" firestore:"platform"`
	DeviceID   string `json:"deviceId" firestore:"deviceId"`
	AppVersion string `json:"appVersion" firestore:"appVersion"`
}

// Session is an append-only audit record of a login/logout cycle.
// One document is created per successful login; on logout every active
// session for the account is marked inactive in a single batch.
// Sessions are never deleted.
type Session struct {
	ID       string     `json:"id" firestore:"-"` // Firestore document ID
	UserID   string     `json:"userId" firestore:"userId"`
	Device   DeviceInfo `json:"deviceInfo" firestore:"deviceInfo"`
	LoginAt  time.Time  `json:"loginAt" firestore:"loginAt"`
	IsActive bool       `json:"isActive" firestore:"isActive"`
	LogoutAt *time.Time `json:"logoutAt,omitempty" firestore:"logoutAt,omitempty"`
}
