package delivery

import (
	"net/http"

	"github.com/gin-gonic/gin"

	kbdomain "supportmail-backend/internal/knowledge/domain"
	kbusecase "supportmail-backend/internal/knowledge/usecase"
	"supportmail-backend/internal/message/dto"
)

// KnowledgeHandler exposes the knowledge base maintenance API
type KnowledgeHandler struct {
	knowledgeUsecase kbusecase.KnowledgeUsecase
}

// NewKnowledgeHandler creates a new KnowledgeHandler
func NewKnowledgeHandler(knowledgeUsecase kbusecase.KnowledgeUsecase) *KnowledgeHandler {
	return &KnowledgeHandler{knowledgeUsecase: knowledgeUsecase}
}

// GetAll handles GET /api/knowledge
func (h *KnowledgeHandler) GetAll(c *gin.Context) {
	entries, err := h.knowledgeUsecase.GetAll()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load knowledge base"})
		return
	}
	c.JSON(http.StatusOK, entries)
}

// Set handles PUT /api/knowledge/:category/:key
func (h *KnowledgeHandler) Set(c *gin.Context) {
	var req dto.SetKnowledgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "value is required"})
		return
	}

	category := kbdomain.Category(c.Param("category"))
	entry, err := h.knowledgeUsecase.Set(category, c.Param("key"), req.Value)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, entry)
}
