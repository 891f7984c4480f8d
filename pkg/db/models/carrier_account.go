package models

import "time"

// CarrierAccount is the singleton row mirroring the carrier credential so a
// fresh process (or a second instance) can adopt a still-valid token instead
// of re-authenticating. At most one row exists.
type CarrierAccount struct {
	ID             int        `gorm:"column:id;primaryKey"`
	Email          string     `gorm:"column:email;not null"`
	Token          *string    `gorm:"column:token"`
	TokenExpiresAt *time.Time `gorm:"column:token_expires_at"`
	UpdatedAt      time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
