package delivery

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	msgdomain "supportmail-backend/internal/message/domain"
	"supportmail-backend/internal/message/dto"
	"supportmail-backend/internal/message/repository"
	"supportmail-backend/internal/message/usecase"
)

// MessageHandler exposes the processing pipeline over HTTP
type MessageHandler struct {
	messageUsecase usecase.MessageUsecase
}

// NewMessageHandler creates a new MessageHandler
func NewMessageHandler(messageUsecase usecase.MessageUsecase) *MessageHandler {
	return &MessageHandler{messageUsecase: messageUsecase}
}

// Process handles POST /api/process. With a message list in the body it
// processes exactly those messages; with an empty body it runs one full
// poll cycle against the mail source.
func (h *MessageHandler) Process(c *gin.Context) {
	var req dto.ProcessRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Messages) == 0 {
		result, cycleErr := h.messageUsecase.RunCycle(c.Request.Context())
		if cycleErr != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": cycleErr.Error()})
			return
		}
		c.JSON(http.StatusOK, result)
		return
	}

	messages := make([]msgdomain.Message, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, m.ToDomain())
	}

	result := h.messageUsecase.ProcessBatch(c.Request.Context(), messages)
	c.JSON(http.StatusOK, result)
}

// GetRecords handles GET /api/records with optional status, category,
// priority, limit and offset query parameters
func (h *MessageHandler) GetRecords(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	criteria := repository.ListCriteria{
		Status:   c.Query("status"),
		Category: c.Query("category"),
		Priority: c.Query("priority"),
		Limit:    limit,
		Offset:   offset,
	}

	records, total, err := h.messageUsecase.ListRecords(criteria)
	if err != nil {
		log.Printf("[Handler] Failed to list records: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list records"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": records, "total": total})
}

// GetRecord handles GET /api/records/:id
func (h *MessageHandler) GetRecord(c *gin.Context) {
	record, err := h.messageUsecase.GetRecord(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch record"})
		return
	}
	if record == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "record not found"})
		return
	}
	c.JSON(http.StatusOK, record)
}

// UpdateStatus handles PATCH /api/records/:id/status
func (h *MessageHandler) UpdateStatus(c *gin.Context) {
	var req dto.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
		return
	}

	record, err := h.messageUsecase.UpdateStatus(c.Param("id"), req.Status)
	if err != nil {
		status := http.StatusBadRequest
		if err.Error() == "record not found" {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, record)
}

// Regenerate handles POST /api/records/:id/regenerate
func (h *MessageHandler) Regenerate(c *gin.Context) {
	var req dto.RegenerateResponseRequest
	_ = c.ShouldBindJSON(&req) // empty body means default tone

	id := c.Param("id")
	if req.Reanalyze {
		if _, err := h.messageUsecase.RegenerateAnalysis(c.Request.Context(), id); err != nil {
			status := http.StatusInternalServerError
			if err.Error() == "record not found" {
				status = http.StatusNotFound
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}
	}

	draft, err := h.messageUsecase.RegenerateResponse(c.Request.Context(), id, req.Tone)
	if err != nil {
		status := http.StatusInternalServerError
		if err.Error() == "record not found" {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, draft)
}

// Send handles POST /api/records/:id/send
func (h *MessageHandler) Send(c *gin.Context) {
	draft, err := h.messageUsecase.SendResponse(c.Request.Context(), c.Param("id"))
	if err != nil {
		status := http.StatusInternalServerError
		switch err.Error() {
		case "record not found", "record has no response draft":
			status = http.StatusNotFound
		case "mail source not configured":
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, draft)
}
