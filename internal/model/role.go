package model

import "time"

// Role ids are a fixed enumeration. They match the values assigned by the
// national-society onboarding process and are not user extensible.
const (
	RoleNSAdmin    = 1
	RoleNSEditor   = 2
	RoleAPIUser    = 3
	RoleSuperAdmin = 4
	RoleGDPCAdmin  = 5
	RoleReviewer   = 6
)

// RoleAssignment holds the single role a user acts under. The unique index
// on UserUUID keeps it at most one row per user.
type RoleAssignment struct {
	ID        int    `gorm:"primaryKey;autoIncrement"`
	UserUUID  string `gorm:"uniqueIndex;not null"`
	RoleID    int    `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// KnownRole reports whether id is part of the fixed enumeration.
func KnownRole(id int) bool {
	return id >= RoleNSAdmin && id <= RoleReviewer
}
