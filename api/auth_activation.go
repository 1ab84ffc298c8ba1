package api

import (
	"net/http"

	"whatnow/cms-api/pkg/apperr"
	"whatnow/cms-api/validators"

	"github.com/gin-gonic/gin"
)

type emailBody struct {
	Email string `json:"email"`
}

type tokenBody struct {
	Token string `json:"token"`
}

func (a *API) AuthSendActivation(c *gin.Context) {
	var data emailBody
	if err := c.ShouldBind(&data); err != nil {
		fail(c, apperr.Validation("Invalid request body"))
		return
	}

	if err := validators.EmailValidator(data.Email); err != nil {
		fail(c, apperr.Validation(err.Error()))
		return
	}

	if err := a.Deps.Auth.SendActivationToken(c.Request.Context(), data.Email); err != nil {
		fail(c, err)
		return
	}

	ok(c, http.StatusOK, "Activation mail sent", nil)
}

func (a *API) AuthVerifyEmail(c *gin.Context) {
	var data tokenBody
	if err := c.ShouldBind(&data); err != nil {
		fail(c, apperr.Validation("Invalid request body"))
		return
	}

	if data.Token == "" {
		fail(c, apperr.Validation("No verification token provided"))
		return
	}

	if err := a.Deps.Auth.VerifyEmail(c.Request.Context(), data.Token); err != nil {
		fail(c, err)
		return
	}

	ok(c, http.StatusOK, "Email verified", nil)
}
