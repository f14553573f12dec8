package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

type Pinger interface {
	PingContext(ctx context.Context) error
}

type OpsHandler struct {
	db  Pinger
	log zerolog.Logger
}

func NewOpsHandler(db Pinger, log zerolog.Logger) *OpsHandler {
	return &OpsHandler{db: db, log: log.With().Str("component", "ops").Logger()}
}

// Health reports whether the meeting store is reachable.
func (h *OpsHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		h.log.Error().Err(err).Msg("database ping failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": "database unreachable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *OpsHandler) Metrics() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
