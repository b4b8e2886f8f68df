package handler

import (
	"context"
	"net/http"
	"time"

	"orgregistry/internal/model"
	"orgregistry/internal/version"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const pingTimeout = 2 * time.Second

// Pinger reports whether storage is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	store Pinger
}

func NewHealthHandler(store Pinger) *HealthHandler {
	return &HealthHandler{store: store}
}

// Healthz reports whether storage answers a ping
// @Router /healthz [get]
func (h *HealthHandler) Healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), pingTimeout)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("storage ping failed")
		c.JSON(http.StatusServiceUnavailable, model.NewErrorResponse("Storage unavailable", ""))
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Version returns build information
// @Router /version [get]
func (h *HealthHandler) Version(c *gin.Context) {
	c.JSON(http.StatusOK, version.Get())
}
