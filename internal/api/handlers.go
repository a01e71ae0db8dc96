package api

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/YadurajManu/bolonyay-server/internal/apperr"
	"github.com/YadurajManu/bolonyay-server/internal/bhashini"
	"github.com/YadurajManu/bolonyay-server/internal/cache"
	"github.com/YadurajManu/bolonyay-server/internal/config"
	"github.com/YadurajManu/bolonyay-server/internal/database"
	"github.com/YadurajManu/bolonyay-server/internal/document"
	"github.com/YadurajManu/bolonyay-server/internal/filing"
	"github.com/YadurajManu/bolonyay-server/internal/language"
	"github.com/YadurajManu/bolonyay-server/internal/llm"
	"github.com/YadurajManu/bolonyay-server/internal/reports"
	"github.com/YadurajManu/bolonyay-server/pkg/logger"
)

// Handlers holds all HTTP handlers
type Handlers struct {
	db           *gorm.DB
	cache        cache.Cache
	orchestrator *filing.Orchestrator
	speech       bhashini.Client
	detector     *language.Detector
	store        *reports.Store
	logger       *logger.Logger
	cfg          *config.Config
}

// NewHandlers creates a new handlers instance
func NewHandlers(db *gorm.DB, cache cache.Cache, orchestrator *filing.Orchestrator, speech bhashini.Client, llmClient llm.Client, store *reports.Store, logger *logger.Logger, cfg *config.Config) *Handlers {
	return &Handlers{
		db:           db,
		cache:        cache,
		orchestrator: orchestrator,
		speech:       speech,
		detector:     language.NewDetector(llmClient),
		store:        store,
		logger:       logger,
		cfg:          cfg,
	}
}

// audioRequest is the voice payload posted by the mobile client. The
// client sets permission_denied when the device refused microphone
// access; the audio is then absent by definition.
type audioRequest struct {
	Audio            string `json:"audio"`
	PermissionDenied bool   `json:"permission_denied"`
}

func (r *audioRequest) decode() ([]byte, error) {
	if r.PermissionDenied {
		return nil, apperr.ErrPermissionDenied
	}
	if r.Audio == "" {
		return nil, fmt.Errorf("audio payload is empty")
	}
	data, err := base64.StdEncoding.DecodeString(r.Audio)
	if err != nil {
		return nil, fmt.Errorf("audio payload is not valid base64: %w", err)
	}
	return data, nil
}

// respondError maps pipeline errors to HTTP status codes.
func (h *Handlers) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError

	var apiErr *apperr.APIError
	switch {
	case errors.Is(err, apperr.ErrUserNotFound):
		status = http.StatusNotFound
	case errors.Is(err, apperr.ErrPermissionDenied):
		status = http.StatusForbidden
	case errors.Is(err, apperr.ErrRecordingActive):
		status = http.StatusConflict
	case errors.As(err, &apiErr),
		errors.Is(err, apperr.ErrConfiguration),
		errors.Is(err, apperr.ErrInvalidResponse),
		errors.Is(err, apperr.ErrNoTranscript),
		errors.Is(err, apperr.ErrLanguageDetection):
		status = http.StatusBadGateway
	}

	c.JSON(status, gin.H{
		"success": false,
		"error":   err.Error(),
	})
}

// HealthCheck returns the health status
func (h *Handlers) HealthCheck(c *gin.Context) {
	var count int64
	dbHealthy := h.db.Model(&database.CaseRecord{}).Count(&count).Error == nil

	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"database": dbHealthy,
		"cache":    h.cache.Stats(),
		"time":     time.Now().Unix(),
	})
}

// CacheStats returns cache statistics
func (h *Handlers) CacheStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"stats":   h.cache.Stats(),
	})
}

// CreateUser registers a citizen or advocate.
func (h *Handlers) CreateUser(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Name     string `json:"name" binding:"required"`
		UserType string `json:"user_type"`
		Language string `json:"language"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	user := &database.User{
		Email:    req.Email,
		Name:     req.Name,
		UserType: req.UserType,
		Language: string(language.Validate(req.Language)),
	}
	if err := h.db.Create(user).Error; err != nil {
		h.respondError(c, fmt.Errorf("failed to create user: %w", err))
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": user})
}

// ListUserCases returns all cases filed by a user, newest first.
func (h *Handlers) ListUserCases(c *gin.Context) {
	userID := c.Param("id")

	var user database.User
	if err := h.db.First(&user, "id = ?", userID).Error; err != nil {
		h.respondError(c, apperr.ErrUserNotFound)
		return
	}

	var cases []database.CaseRecord
	h.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&cases)

	c.JSON(http.StatusOK, gin.H{"success": true, "data": cases})
}

// StartFiling opens a voice filing session.
func (h *Handlers) StartFiling(c *gin.Context) {
	var req struct {
		UserID   string `json:"user_id" binding:"required"`
		Language string `json:"language"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	session, err := h.orchestrator.StartSession(c.Request.Context(), req.UserID, language.Validate(req.Language))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": session})
}

// GetFiling returns the current session state.
func (h *Handlers) GetFiling(c *gin.Context) {
	session, ok := h.orchestrator.Session(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "filing session not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":          true,
		"data":             session,
		"current_question": session.CurrentQuestion(),
	})
}

// SubmitStatement accepts the citizen's opening statement recording.
func (h *Handlers) SubmitStatement(c *gin.Context) {
	var req audioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	audio, err := req.decode()
	if err != nil {
		if errors.Is(err, apperr.ErrPermissionDenied) {
			h.respondError(c, err)
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	session, err := h.orchestrator.SubmitStatement(c.Request.Context(), c.Param("id"), audio)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":          true,
		"data":             session,
		"current_question": session.CurrentQuestion(),
	})
}

// SubmitAnswer accepts one voice answer for the current question.
func (h *Handlers) SubmitAnswer(c *gin.Context) {
	var req audioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	audio, err := req.decode()
	if err != nil {
		if errors.Is(err, apperr.ErrPermissionDenied) {
			h.respondError(c, err)
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	session, err := h.orchestrator.SubmitAnswer(c.Request.Context(), c.Param("id"), audio)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":          true,
		"data":             session,
		"current_question": session.CurrentQuestion(),
		"answered_all":     session.AnsweredAll(),
	})
}

// SkipAnswer records an empty answer for the current question.
func (h *Handlers) SkipAnswer(c *gin.Context) {
	session, err := h.orchestrator.SkipAnswer(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":          true,
		"data":             session,
		"current_question": session.CurrentQuestion(),
	})
}

// FinalizeFiling runs extraction, renders the court document, and saves
// the report.
func (h *Handlers) FinalizeFiling(c *gin.Context) {
	ctx := c.Request.Context()

	record, content, err := h.orchestrator.Finalize(ctx, c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	pdf, pageCount, err := document.Render(record, content)
	if err != nil {
		h.respondError(c, err)
		return
	}

	report, err := h.store.Save(ctx, pdf, record, document.SelectTemplate(record.CaseType), pageCount)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"case":    record,
		"report":  report,
	})
}

// GetCase returns one filed case.
func (h *Handlers) GetCase(c *gin.Context) {
	var record database.CaseRecord
	if err := h.db.First(&record, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "case not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": record})
}

// UpdateCaseStatus is the operator path for moving a case past filed.
func (h *Handlers) UpdateCaseStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	if err := h.orchestrator.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// DetectLanguage identifies the language of text or audio. Text goes
// through the LLM gateway; audio goes through the speech pipeline.
func (h *Handlers) DetectLanguage(c *gin.Context) {
	var req struct {
		Text  string `json:"text"`
		Audio string `json:"audio"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.cfg.BhashiniTimeout)
	defer cancel()

	if req.Text != "" {
		lang, err := h.detector.DetectFromText(ctx, req.Text)
		if err != nil {
			h.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "language": lang, "source": "text"})
		return
	}

	if req.Audio == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "either text or audio is required"})
		return
	}

	audio, err := base64.StdEncoding.DecodeString(req.Audio)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "audio payload is not valid base64"})
		return
	}

	detection, err := h.speech.DetectLanguage(ctx, audio)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"language": language.Validate(detection.LangCode),
		"source":   "audio",
	})
}

// ListReports returns all saved reports.
func (h *Handlers) ListReports(c *gin.Context) {
	if query := c.Query("q"); query != "" {
		results, err := h.store.Search(c.Request.Context(), query)
		if err != nil {
			h.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": results})
		return
	}

	results, err := h.store.List(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": results})
}

// GetReport returns one report's metadata.
func (h *Handlers) GetReport(c *gin.Context) {
	report, err := h.store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": report})
}

// DownloadReport streams the PDF.
func (h *Handlers) DownloadReport(c *gin.Context) {
	report, data, err := h.store.ReadFile(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.CaseNumber+".pdf"))
	c.Data(http.StatusOK, "application/pdf", data)
}

// DeleteReport removes a report and its file.
func (h *Handlers) DeleteReport(c *gin.Context) {
	if err := h.store.Delete(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
