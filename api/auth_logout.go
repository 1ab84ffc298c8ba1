package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthLogout revokes the presented bearer token. It reports success even for
// tokens that were never issued; there is nothing useful to tell the caller.
func (a *API) AuthLogout(c *gin.Context) {
	header := c.GetHeader("Authorization")
	scheme, raw, found := strings.Cut(header, " ")
	if found && strings.EqualFold(scheme, "Bearer") && raw != "" {
		if err := a.Deps.Auth.Logout(c.Request.Context(), raw); err != nil {
			zap.L().Error("Failed to revoke token on logout",
				zap.String("requestID", c.GetString("requestID")), zap.Error(err))
		}
	}

	ok(c, http.StatusOK, "Logged out", nil)
}
