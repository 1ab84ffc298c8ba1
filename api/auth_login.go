package api

import (
	"net/http"

	"whatnow/cms-api/pkg/apperr"

	"github.com/gin-gonic/gin"
)

type loginBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (a *API) AuthLogin(c *gin.Context) {
	var data loginBody
	if err := c.ShouldBind(&data); err != nil {
		fail(c, apperr.Validation("Invalid request body"))
		return
	}

	if data.Email == "" {
		fail(c, apperr.Validation("Email field can't be empty"))
		return
	}

	if data.Password == "" {
		fail(c, apperr.Validation("Password field can't be empty"))
		return
	}

	user, err := a.Deps.Auth.Login(c.Request.Context(), data.Email, data.Password)
	if err != nil {
		fail(c, err)
		return
	}

	raw, expiresAt, err := a.Deps.Auth.IssueAccessToken(c.Request.Context(), user)
	if err != nil {
		fail(c, err)
		return
	}

	ok(c, http.StatusOK, "Logged in", gin.H{
		"uuid":  user.UUID,
		"email": user.Email,
		"token": gin.H{
			"token":      raw,
			"expires_at": expiresAt,
		},
	})
}
