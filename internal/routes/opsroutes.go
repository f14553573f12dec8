package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/preetsinghmakkar/meetingsync/internal/handlers"
)

func RegisterOpsEndpoints(router *gin.Engine, opsHandler *handlers.OpsHandler) {
	router.GET("/healthz", opsHandler.Health)
	router.GET("/metrics", opsHandler.Metrics())
}
