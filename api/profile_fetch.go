package api

import (
	"errors"
	"net/http"

	"whatnow/cms-api/internal/model"
	"whatnow/cms-api/middleware"
	"whatnow/cms-api/pkg/apperr"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ProfileFetch returns the authenticated caller's own record.
func (a *API) ProfileFetch(c *gin.Context) {
	userUUID := c.GetString(middleware.CtxUserUUID)

	var user model.User
	err := a.Deps.DB.WithContext(c.Request.Context()).
		Where("uuid = ?", userUUID).
		First(&user).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(c, apperr.NotFound("User not found"))
			return
		}
		fail(c, apperr.Upstream(err))
		return
	}

	ok(c, http.StatusOK, "", gin.H{
		"uuid":           user.UUID,
		"email":          user.Email,
		"status":         user.Status,
		"email_verified": user.EmailVerified,
		"terms_version":  user.TermsVersion,
		"last_active":    user.LastActive,
		"role_id":        c.GetInt(middleware.CtxRoleID),
	})
}
