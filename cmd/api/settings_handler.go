package api

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"supportmail-backend/internal/message/dto"
	msgUsecase "supportmail-backend/internal/message/usecase"
)

// Runtime Ollama configuration, readable by the AI client through getters
// so updates apply to the next completion without a restart.
var (
	runtimeMu          sync.RWMutex
	runtimeOllamaBase  string
	runtimeOllamaModel string
)

// InitRuntimeConfig seeds the runtime settings from the environment config
func InitRuntimeConfig(baseURL, model string) {
	runtimeMu.Lock()
	defer runtimeMu.Unlock()
	runtimeOllamaBase = baseURL
	runtimeOllamaModel = model
}

// GetRuntimeOllamaBaseURL returns the current Ollama base URL
func GetRuntimeOllamaBaseURL() string {
	runtimeMu.RLock()
	defer runtimeMu.RUnlock()
	return runtimeOllamaBase
}

// GetRuntimeOllamaModel returns the current Ollama model name
func GetRuntimeOllamaModel() string {
	runtimeMu.RLock()
	defer runtimeMu.RUnlock()
	return runtimeOllamaModel
}

// SettingsHandler exposes runtime pipeline configuration
type SettingsHandler struct {
	messageUsecase msgUsecase.MessageUsecase
}

func NewSettingsHandler(messageUsecase msgUsecase.MessageUsecase) *SettingsHandler {
	return &SettingsHandler{messageUsecase: messageUsecase}
}

// GetAutoSend handles GET /api/settings/autosend
func (h *SettingsHandler) GetAutoSend(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"enabled": h.messageUsecase.AutoSendEnabled()})
}

// UpdateAutoSend handles PUT /api/settings/autosend
func (h *SettingsHandler) UpdateAutoSend(c *gin.Context) {
	var req dto.AutoSendRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Enabled == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "enabled is required"})
		return
	}

	h.messageUsecase.SetAutoSend(*req.Enabled)
	c.JSON(http.StatusOK, gin.H{"enabled": h.messageUsecase.AutoSendEnabled()})
}

type ollamaSettingsRequest struct {
	BaseURL string `json:"base_url"`
	Model   string `json:"model"`
}

// GetOllamaSettings handles GET /api/settings/ollama
func (h *SettingsHandler) GetOllamaSettings(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"base_url": GetRuntimeOllamaBaseURL(),
		"model":    GetRuntimeOllamaModel(),
	})
}

// UpdateOllamaSettings handles PUT /api/settings/ollama
func (h *SettingsHandler) UpdateOllamaSettings(c *gin.Context) {
	var req ollamaSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	runtimeMu.Lock()
	if req.BaseURL != "" {
		runtimeOllamaBase = req.BaseURL
	}
	if req.Model != "" {
		runtimeOllamaModel = req.Model
	}
	runtimeMu.Unlock()

	c.JSON(http.StatusOK, gin.H{
		"base_url": GetRuntimeOllamaBaseURL(),
		"model":    GetRuntimeOllamaModel(),
	})
}
