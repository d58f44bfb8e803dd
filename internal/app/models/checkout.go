package models

import "time"

// CheckoutToken binds a caller to a specific (student, version) snapshot for
// a bounded window. It is never persisted as part of the student aggregate;
// it only exists as a commit precondition.
type CheckoutToken struct {
	Token     string    `json:"token" example:"8f2e9c2a-1b7d-4b25-9a61-0d9a8c2f41be"`
	StudentID int64     `json:"studentId" example:"1"`
	Version   int64     `json:"version" example:"3"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired reports whether the token is past its expiry at the given instant
func (t *CheckoutToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
