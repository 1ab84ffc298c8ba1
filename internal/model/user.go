package model

import "time"

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

type User struct {
	UUID          string `gorm:"primaryKey"`
	Email         string `gorm:"uniqueIndex;not null"`
	PasswordHash  string `gorm:"not null" json:"-"`
	Status        string `gorm:"default:active"`
	EmailVerified bool   `gorm:"default:false"`
	TermsVersion  int
	LastActive    *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time

	RoleAssignment *RoleAssignment `gorm:"foreignKey:UserUUID;references:UUID"`
	Tokens         []Token         `gorm:"foreignKey:UserUUID;references:UUID"`
}
