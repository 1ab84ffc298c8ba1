package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Validate only ever runs behind the auth guard, so reaching it means the
// token passed every check.
func (a *API) Validate(c *gin.Context) {
	c.Status(http.StatusOK)
}
