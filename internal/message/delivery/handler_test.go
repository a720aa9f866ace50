package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	msgdomain "supportmail-backend/internal/message/domain"
	"supportmail-backend/internal/message/repository"
	"supportmail-backend/internal/message/usecase"
	"supportmail-backend/pkg/ai"
	"supportmail-backend/pkg/mailer"
)

// fakeUsecase is a canned MessageUsecase for handler tests
type fakeUsecase struct {
	records     map[string]*msgdomain.ProcessingRecord
	batchResult *usecase.BatchResult
	cycleErr    error
	sentDraft   *msgdomain.ResponseDraft
	sendErr     error
	autoSend    bool
}

func (f *fakeUsecase) ProcessBatch(ctx context.Context, messages []msgdomain.Message) *usecase.BatchResult {
	if f.batchResult != nil {
		return f.batchResult
	}
	return &usecase.BatchResult{Processed: len(messages)}
}

func (f *fakeUsecase) RunCycle(ctx context.Context) (*usecase.BatchResult, error) {
	if f.cycleErr != nil {
		return nil, f.cycleErr
	}
	return &usecase.BatchResult{}, nil
}

func (f *fakeUsecase) GetRecord(id string) (*msgdomain.ProcessingRecord, error) {
	return f.records[id], nil
}

func (f *fakeUsecase) ListRecords(criteria repository.ListCriteria) ([]*msgdomain.ProcessingRecord, int64, error) {
	var out []*msgdomain.ProcessingRecord
	for _, r := range f.records {
		out = append(out, r)
	}
	return out, int64(len(out)), nil
}

func (f *fakeUsecase) RegenerateAnalysis(ctx context.Context, id string) (*msgdomain.ProcessingRecord, error) {
	if r, ok := f.records[id]; ok {
		return r, nil
	}
	return nil, fmt.Errorf("record not found")
}

func (f *fakeUsecase) RegenerateResponse(ctx context.Context, id, tone string) (*msgdomain.ResponseDraft, error) {
	if _, ok := f.records[id]; !ok {
		return nil, fmt.Errorf("record not found")
	}
	return &msgdomain.ResponseDraft{RecordID: id, Tone: tone, Body: "draft"}, nil
}

func (f *fakeUsecase) SendResponse(ctx context.Context, id string) (*msgdomain.ResponseDraft, error) {
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	return f.sentDraft, nil
}

func (f *fakeUsecase) UpdateStatus(id string, status string) (*msgdomain.ProcessingRecord, error) {
	record, ok := f.records[id]
	if !ok {
		return nil, fmt.Errorf("record not found")
	}
	s := msgdomain.Status(status)
	if !s.IsValid() {
		return nil, fmt.Errorf("invalid status: %s", status)
	}
	record.Status = s
	return record, nil
}

func (f *fakeUsecase) SetAutoSend(enabled bool)           { f.autoSend = enabled }
func (f *fakeUsecase) AutoSendEnabled() bool              { return f.autoSend }
func (f *fakeUsecase) SetAIClient(client ai.Client)       {}
func (f *fakeUsecase) SetMailSource(source mailer.Source) {}
func (f *fakeUsecase) SetSeenCache(cache *redis.Client)   {}

func setupRouter(uc usecase.MessageUsecase) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewMessageHandler(uc)

	r.POST("/api/process", h.Process)
	r.GET("/api/records", h.GetRecords)
	r.GET("/api/records/:id", h.GetRecord)
	r.PATCH("/api/records/:id/status", h.UpdateStatus)
	r.POST("/api/records/:id/regenerate", h.Regenerate)
	r.POST("/api/records/:id/send", h.Send)
	return r
}

func TestProcessInlineMessages(t *testing.T) {
	uc := &fakeUsecase{records: map[string]*msgdomain.ProcessingRecord{}}
	r := setupRouter(uc)

	payload := `{"messages":[{"from":"bob@example.com","subject":"Hi","body":"hello"}]}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/process", bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var result usecase.BatchResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, 1, result.Processed)
}

func TestProcessEmptyBodyRunsCycle(t *testing.T) {
	uc := &fakeUsecase{cycleErr: fmt.Errorf("mail source not configured")}
	r := setupRouter(uc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/process", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestGetRecordNotFound(t *testing.T) {
	uc := &fakeUsecase{records: map[string]*msgdomain.ProcessingRecord{}}
	r := setupRouter(uc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/records/missing", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetRecordFound(t *testing.T) {
	uc := &fakeUsecase{records: map[string]*msgdomain.ProcessingRecord{
		"abc": {ID: "abc", ExternalID: "msg-1", From: "bob@example.com", Status: msgdomain.StatusPending},
	}}
	r := setupRouter(uc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/records/abc", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var record msgdomain.ProcessingRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &record))
	assert.Equal(t, "abc", record.ID)
}

func TestUpdateStatusRejectsInvalid(t *testing.T) {
	uc := &fakeUsecase{records: map[string]*msgdomain.ProcessingRecord{
		"abc": {ID: "abc", Status: msgdomain.StatusPending},
	}}
	r := setupRouter(uc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/api/records/abc/status", bytes.NewBufferString(`{"status":"escalated"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateStatusMissingBody(t *testing.T) {
	uc := &fakeUsecase{records: map[string]*msgdomain.ProcessingRecord{}}
	r := setupRouter(uc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/api/records/abc/status", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegenerateNotFound(t *testing.T) {
	uc := &fakeUsecase{records: map[string]*msgdomain.ProcessingRecord{}}
	r := setupRouter(uc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/records/missing/regenerate", bytes.NewBufferString(`{"tone":"friendly"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSendWithoutMailSource(t *testing.T) {
	uc := &fakeUsecase{sendErr: fmt.Errorf("mail source not configured")}
	r := setupRouter(uc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/records/abc/send", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
