// Package middleware contains the custom middleware used in the app
package middleware

import (
	"context"
	"errors"
	"strings"
	"time"

	"whatnow/cms-api/internal"
	"whatnow/cms-api/internal/model"
	"whatnow/cms-api/internal/rbac"
	"whatnow/cms-api/pkg/apperr"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Context keys set by the guard on success.
const (
	CtxUserUUID = "userUUID"
	CtxRoleID   = "roleID"
)

// NewAuthGuard gates one route group. Checks run in order: bearer header,
// token verification, role lookup, permission entry. Every failure aborts
// with the same 401 "Please authenticate" so a caller can't tell a missing
// token from a forbidden role.
func NewAuthGuard(d *internal.Deps, group rbac.Group) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerToken(c)
		if !ok {
			abortUnauthenticated(c)
			return
		}

		rec, err := d.Tokens.Verify(c.Request.Context(), raw, model.TokenAccess)
		if err != nil {
			abortUnauthenticated(c)
			return
		}

		var assignment model.RoleAssignment
		err = d.DB.WithContext(c.Request.Context()).
			Where("user_uuid = ?", rec.UserUUID).
			First(&assignment).
			Error
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				zap.L().Error("Failed to look up role assignment",
					zap.String("user_uuid", rec.UserUUID), zap.Error(err))
			}
			abortUnauthenticated(c)
			return
		}

		if !d.Perms.Allowed(group, assignment.RoleID) {
			abortUnauthenticated(c)
			return
		}

		c.Set(CtxUserUUID, rec.UserUUID)
		c.Set(CtxRoleID, assignment.RoleID)

		// Best effort; a failed write must never fail the request
		go touchLastActive(d.DB, rec.UserUUID)

		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false
	}

	scheme, raw, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || raw == "" {
		return "", false
	}

	return raw, true
}

func abortUnauthenticated(c *gin.Context) {
	c.AbortWithStatusJSON(401, apperr.Authentication("Please authenticate"))
}

func touchLastActive(db *gorm.DB, userUUID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	now := time.Now()
	err := db.WithContext(ctx).
		Model(model.User{}).
		Where("uuid = ?", userUUID).
		Update("last_active", now).
		Error
	if err != nil {
		zap.L().Warn("Failed to update last_active",
			zap.String("user_uuid", userUUID), zap.Error(err))
	}
}
