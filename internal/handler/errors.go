package handler

import (
	"errors"
	"net/http"

	"orgregistry/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// statusRule maps a service sentinel to the status a route answers with
type statusRule struct {
	err    error
	status int
}

// writeError answers with the first matching rule. Unmatched errors are
// logged and reported as a bare 500.
func writeError(c *gin.Context, err error, rules ...statusRule) {
	for _, r := range rules {
		if errors.Is(err, r.err) {
			detail := err.Error()
			if detail == r.err.Error() {
				detail = ""
			}
			c.JSON(r.status, model.NewErrorResponse(r.err.Error(), detail))
			return
		}
	}

	_ = c.Error(err)
	zerolog.Ctx(c.Request.Context()).Error().Err(err).Str("route", c.FullPath()).Msg("request failed")
	c.JSON(http.StatusInternalServerError, model.NewErrorResponse("Internal server error", ""))
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, model.NewErrorResponse("Invalid request body", err.Error()))
}
