package models

import (
	"time"

	"github.com/gofrs/uuid"
)

// RefreshToken is an opaque, single-use credential exchanged for a fresh
// access token. Rotated on every refresh and deleted on logout.
type RefreshToken struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;index"`
	Token     uuid.UUID `json:"token" gorm:"type:uuid;uniqueIndex;not null"`
	ExpiresAt time.Time `json:"expires_at" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
}

func (t *RefreshToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
