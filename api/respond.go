package api

import (
	"errors"

	"whatnow/cms-api/pkg/apperr"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type envelope struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func ok(c *gin.Context, status int, message string, data any) {
	c.JSON(status, envelope{
		Status:  status,
		Code:    "ok",
		Message: message,
		Data:    data,
	})
}

// fail is the single place errors become responses. Typed errors keep their
// status and message; anything unclassified is treated as upstream and
// genericized so internals never leak to a client.
func fail(c *gin.Context, err error) {
	e := apperr.From(err)

	if e.Code == apperr.CodeUpstream {
		zap.L().Error("Upstream failure",
			zap.String("requestID", c.GetString("requestID")),
			zap.Error(errors.Unwrap(e)))
	}

	c.JSON(e.Status, e)
}
