package api

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	kbDelivery "supportmail-backend/internal/knowledge/delivery"
	kbUsecasePkg "supportmail-backend/internal/knowledge/usecase"
	msgDelivery "supportmail-backend/internal/message/delivery"
	msgUsecasePkg "supportmail-backend/internal/message/usecase"
	"supportmail-backend/pkg/ai"
	"supportmail-backend/pkg/config"
	"supportmail-backend/pkg/mailer"
)

type Handler struct {
	messageUsecase   msgUsecasePkg.MessageUsecase
	knowledgeUsecase kbUsecasePkg.KnowledgeUsecase
	config           *config.Config
	messageHandler   *msgDelivery.MessageHandler
	knowledgeHandler *kbDelivery.KnowledgeHandler
}

// NewHandler wires the optional services (AI client, mail source, seen
// cache) into the usecase and builds the HTTP handlers. Every optional
// service that fails to initialize is logged and skipped; the pipeline
// runs degraded instead of refusing to start.
func NewHandler(messageUc msgUsecasePkg.MessageUsecase, knowledgeUc kbUsecasePkg.KnowledgeUsecase, cfg *config.Config) *Handler {
	// Initialize runtime config for settings API
	InitRuntimeConfig(cfg.OllamaBaseURL, cfg.OllamaModel)

	// AI client with dynamic config getters for runtime updates
	aiClient, err := ai.NewClientWithDynamicConfig(ai.DynamicConfig{
		Provider:         ai.ProviderType(cfg.AIProvider),
		GeminiAPIKey:     cfg.GeminiAPIKey,
		GetOllamaBaseURL: GetRuntimeOllamaBaseURL,
		GetOllamaModel:   GetRuntimeOllamaModel,
	})
	if err != nil {
		log.Printf("Warning: Failed to initialize AI client: %v. Heuristic fallbacks will be used.", err)
	} else {
		messageUc.SetAIClient(aiClient)
		log.Printf("AI client initialized with provider: %s", cfg.AIProvider)
	}

	mailSource, err := mailer.NewSource(cfg)
	if err != nil {
		log.Printf("Warning: Failed to initialize mail source: %v. Polling and sending disabled.", err)
	} else {
		messageUc.SetMailSource(mailSource)
		log.Printf("Mail source initialized with provider: %s", cfg.MailProvider)
	}

	if cfg.RedisAddr != "" {
		messageUc.SetSeenCache(redis.NewClient(&redis.Options{Addr: cfg.RedisAddr}))
		log.Printf("Seen-cache enabled at %s", cfg.RedisAddr)
	}

	return &Handler{
		messageUsecase:   messageUc,
		knowledgeUsecase: knowledgeUc,
		config:           cfg,
		messageHandler:   msgDelivery.NewMessageHandler(messageUc),
		knowledgeHandler: kbDelivery.NewKnowledgeHandler(knowledgeUc),
	}
}

func (h *Handler) Start(addr string) error {
	r := gin.Default()
	gin.SetMode(gin.ReleaseMode)

	// CORS middleware
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		} else {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	SetupRoutes(r, h.messageHandler, h.knowledgeHandler, h.messageUsecase)

	return r.Run(addr)
}
