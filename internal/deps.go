package internal

import (
	"whatnow/cms-api/internal/auth"
	"whatnow/cms-api/internal/rbac"
	"whatnow/cms-api/internal/service"
	"whatnow/cms-api/internal/token"
	"whatnow/cms-api/pkg/security"

	"gorm.io/gorm"
)

// Deps holds the stateless services built once at startup and shared by
// every request.
type Deps struct {
	DB     *gorm.DB
	Argon  *security.ArgonHash
	Tokens *token.Service
	Auth   *auth.Service
	Perms  *rbac.Table
	Mail   *service.MailQueue
	Reaper *service.Reaper
}
