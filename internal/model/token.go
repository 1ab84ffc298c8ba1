package model

import "time"

const (
	TokenAccess        = "access"
	TokenVerifyEmail   = "verify_email"
	TokenResetPassword = "reset_password"
)

// Token is the persisted side of an issued credential. The signed string is
// the primary key; a token that parses but has no row here is dead.
type Token struct {
	Token       string    `gorm:"primaryKey"`
	UserUUID    string    `gorm:"index;not null"`
	Type        string    `gorm:"index;not null"`
	ExpiresAt   time.Time `gorm:"index;not null"`
	Blacklisted bool      `gorm:"default:false"`
	CreatedAt   time.Time
}
