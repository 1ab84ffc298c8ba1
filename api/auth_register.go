package api

import (
	"net/http"

	"whatnow/cms-api/pkg/apperr"
	"whatnow/cms-api/validators"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type registerBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	RoleID   int    `json:"role_id"`
}

func (a *API) AuthRegister(c *gin.Context) {
	var data registerBody
	if err := c.ShouldBind(&data); err != nil {
		fail(c, apperr.Validation("Invalid request body"))
		return
	}

	if err := validators.EmailValidator(data.Email); err != nil {
		fail(c, apperr.Validation(err.Error()))
		return
	}

	if err := validators.PasswordValidator(data.Password); err != nil {
		fail(c, apperr.Validation(err.Error()))
		return
	}

	user, err := a.Deps.Auth.Register(c.Request.Context(), data.Email, data.Password, data.RoleID)
	if err != nil {
		fail(c, err)
		return
	}

	// The account stays unverified until the mailed link is followed
	if err := a.Deps.Auth.SendActivationToken(c.Request.Context(), user.Email); err != nil {
		zap.L().Error("Failed to send activation mail after registration",
			zap.String("requestID", c.GetString("requestID")), zap.Error(err))
	}

	ok(c, http.StatusOK, "User registered", gin.H{
		"uuid":           user.UUID,
		"email":          user.Email,
		"status":         user.Status,
		"email_verified": user.EmailVerified,
	})
}
