package api

import (
	"net/http"

	"whatnow/cms-api/pkg/apperr"
	"whatnow/cms-api/validators"

	"github.com/gin-gonic/gin"
)

type resetBody struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

func (a *API) AuthSendReset(c *gin.Context) {
	var data emailBody
	if err := c.ShouldBind(&data); err != nil {
		fail(c, apperr.Validation("Invalid request body"))
		return
	}

	if err := validators.EmailValidator(data.Email); err != nil {
		fail(c, apperr.Validation(err.Error()))
		return
	}

	if err := a.Deps.Auth.SendResetToken(c.Request.Context(), data.Email); err != nil {
		fail(c, err)
		return
	}

	ok(c, http.StatusOK, "Reset mail sent", nil)
}

func (a *API) AuthResetPassword(c *gin.Context) {
	var data resetBody
	if err := c.ShouldBind(&data); err != nil {
		fail(c, apperr.Validation("Invalid request body"))
		return
	}

	if data.Token == "" {
		fail(c, apperr.Validation("No reset token provided"))
		return
	}

	if err := validators.PasswordValidator(data.NewPassword); err != nil {
		fail(c, apperr.Validation(err.Error()))
		return
	}

	if err := a.Deps.Auth.ResetPassword(c.Request.Context(), data.Token, data.NewPassword); err != nil {
		fail(c, err)
		return
	}

	ok(c, http.StatusOK, "Password updated", nil)
}
