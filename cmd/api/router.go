package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	kbDelivery "supportmail-backend/internal/knowledge/delivery"
	msgDelivery "supportmail-backend/internal/message/delivery"
	msgUsecase "supportmail-backend/internal/message/usecase"
)

func SetupRoutes(r *gin.Engine, messageHandler *msgDelivery.MessageHandler, knowledgeHandler *kbDelivery.KnowledgeHandler, messageUsecase msgUsecase.MessageUsecase) {
	settingsHandler := NewSettingsHandler(messageUsecase)

	api := r.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		// Pipeline trigger: inline batch or full poll cycle
		api.POST("/process", messageHandler.Process)

		// Record routes
		records := api.Group("/records")
		{
			records.GET("", messageHandler.GetRecords)
			records.GET("/:id", messageHandler.GetRecord)
			records.PATCH("/:id/status", messageHandler.UpdateStatus)
			records.POST("/:id/regenerate", messageHandler.Regenerate)
			records.POST("/:id/send", messageHandler.Send)
		}

		// Knowledge base maintenance
		knowledge := api.Group("/knowledge")
		{
			knowledge.GET("", knowledgeHandler.GetAll)
			knowledge.PUT("/:category/:key", knowledgeHandler.Set)
		}

		// Settings routes - runtime configuration
		settings := api.Group("/settings")
		{
			settings.GET("/autosend", settingsHandler.GetAutoSend)
			settings.PUT("/autosend", settingsHandler.UpdateAutoSend)
			settings.GET("/ollama", settingsHandler.GetOllamaSettings)
			settings.PUT("/ollama", settingsHandler.UpdateOllamaSettings)
		}
	}
}
