package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/preetsinghmakkar/meetingsync/internal/handlers"
	"github.com/preetsinghmakkar/meetingsync/internal/middlewares"
)

func RegisterPublicEndpoints(
	router *gin.Engine,
	webhookHandler *handlers.WebhookHandler,
	verifier middlewares.WebhookVerifier,
	maxBodyBytes int64,
	log zerolog.Logger,
) {
	public := router.Group("/api")

	// Provider callbacks are authenticated by signature, not by session
	public.POST("/webhook",
		middlewares.WebhookSignatureMiddleware(verifier, maxBodyBytes, log),
		webhookHandler.HandleWebhook,
	)
}
