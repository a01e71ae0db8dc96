package api

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/YadurajManu/bolonyay-server/internal/bhashini"
	"github.com/YadurajManu/bolonyay-server/internal/cache"
	"github.com/YadurajManu/bolonyay-server/internal/config"
	"github.com/YadurajManu/bolonyay-server/internal/database"
	"github.com/YadurajManu/bolonyay-server/internal/filing"
	"github.com/YadurajManu/bolonyay-server/internal/language"
	"github.com/YadurajManu/bolonyay-server/internal/reports"
	"github.com/YadurajManu/bolonyay-server/pkg/logger"
)

const classifyResponse = `CASE TYPE: Civil Case - Property Dispute
CASE DETAILS: A dispute over ancestral property.
QUESTIONS:
- What is your full name?
- Where is the property located?`

const extractResponse = `{"petitioner": {"name": "Sita Devi"}}`

const contentResponse = `CASE SUMMARY: A property dispute.
KEY FACTS:
- The property was inherited
LEGAL ISSUES:
- Title over ancestral property
RELIEF SOUGHT:
- Declaration of ownership`

type stubSpeech struct {
	text     string
	langCode string
	err      error
}

func (s *stubSpeech) Transcribe(ctx context.Context, audio []byte, source language.Language) (*bhashini.Transcript, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &bhashini.Transcript{Text: s.text, Path: bhashini.PathPipelineResponse}, nil
}

func (s *stubSpeech) DetectLanguage(ctx context.Context, audio []byte) (*bhashini.Detection, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &bhashini.Detection{LangCode: s.langCode, Path: bhashini.PathPipelineResponse}, nil
}

type stubLLM struct {
	responses []string
	calls     int
}

func (s *stubLLM) Complete(ctx context.Context, systemPrompt, userPrompt string, maxTokens int, temperature float64) (string, error) {
	if s.calls >= len(s.responses) {
		return "", fmt.Errorf("no scripted response left")
	}
	resp := s.responses[s.calls]
	s.calls++
	return resp, nil
}

type testApp struct {
	router *gin.Engine
	db     *gorm.DB
}

func setupApp(t *testing.T, speech *stubSpeech, llmStub *stubLLM) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}

	log, err := logger.NewLogger("error", "json")
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}

	cacheService := cache.NewCache(10, time.Minute)
	orchestrator := filing.NewOrchestrator(db, speech, llmStub, log)
	store, err := reports.NewStore(db, t.TempDir(), log)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	cfg := &config.Config{BhashiniTimeout: 5 * time.Second}

	router := gin.New()
	SetupRoutes(router, db, cacheService, orchestrator, speech, llmStub, store, log, cfg)

	return &testApp{router: router, db: db}
}

func (a *testApp) request(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode response body: %v", err)
	}
	return body
}

func createTestUser(t *testing.T, a *testApp) string {
	t.Helper()
	w := a.request(t, http.MethodPost, "/api/users", gin.H{
		"email": "sita@example.com",
		"name":  "Sita Devi",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201 creating user, got %d: %s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	data := body["data"].(map[string]interface{})
	return data["id"].(string)
}

func audioBody() gin.H {
	return gin.H{"audio": base64.StdEncoding.EncodeToString([]byte("voice sample"))}
}

func TestHealthCheck(t *testing.T) {
	app := setupApp(t, &stubSpeech{}, &stubLLM{})

	w := app.request(t, http.MethodGet, "/api/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	body := decodeBody(t, w)
	if body["status"] != "healthy" {
		t.Errorf("Expected healthy status, got %v", body["status"])
	}
	if body["database"] != true {
		t.Error("Database should report healthy")
	}
}

func TestCreateUser(t *testing.T) {
	app := setupApp(t, &stubSpeech{}, &stubLLM{})

	t.Run("valid user", func(t *testing.T) {
		w := app.request(t, http.MethodPost, "/api/users", gin.H{
			"email":    "ramesh@example.com",
			"name":     "Ramesh Kumar",
			"language": "hin",
		})
		if w.Code != http.StatusCreated {
			t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
		}
		data := decodeBody(t, w)["data"].(map[string]interface{})
		if data["language"] != "hindi" {
			t.Errorf("Language code should normalize to hindi, got %v", data["language"])
		}
	})

	t.Run("missing email", func(t *testing.T) {
		w := app.request(t, http.MethodPost, "/api/users", gin.H{"name": "No Email"})
		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", w.Code)
		}
	})

	t.Run("invalid email", func(t *testing.T) {
		w := app.request(t, http.MethodPost, "/api/users", gin.H{"email": "not-an-email", "name": "Bad"})
		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", w.Code)
		}
	})
}

func TestFilingPipeline(t *testing.T) {
	app := setupApp(t,
		&stubSpeech{text: "meri zameen ka jhagda hai"},
		&stubLLM{responses: []string{classifyResponse, extractResponse, contentResponse}})
	userID := createTestUser(t, app)

	w := app.request(t, http.MethodPost, "/api/filings", gin.H{"user_id": userID, "language": "hindi"})
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201 starting filing, got %d: %s", w.Code, w.Body.String())
	}
	sessionID := decodeBody(t, w)["data"].(map[string]interface{})["id"].(string)

	w = app.request(t, http.MethodPost, "/api/filings/"+sessionID+"/statement", audioBody())
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 submitting statement, got %d: %s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	if body["current_question"] != "What is your full name?" {
		t.Errorf("Unexpected first question: %v", body["current_question"])
	}

	w = app.request(t, http.MethodPost, "/api/filings/"+sessionID+"/answers", audioBody())
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 submitting answer, got %d: %s", w.Code, w.Body.String())
	}

	w = app.request(t, http.MethodPost, "/api/filings/"+sessionID+"/skip", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 skipping answer, got %d: %s", w.Code, w.Body.String())
	}
	if answered := decodeBody(t, w)["data"].(map[string]interface{}); answered == nil {
		t.Fatal("Skip response missing session data")
	}

	w = app.request(t, http.MethodPost, "/api/filings/"+sessionID+"/finalize", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 finalizing, got %d: %s", w.Code, w.Body.String())
	}
	body = decodeBody(t, w)
	caseData := body["case"].(map[string]interface{})
	if caseData["status"] != database.CaseStatusFiled {
		t.Errorf("Expected filed status, got %v", caseData["status"])
	}
	report := body["report"].(map[string]interface{})
	if report["page_count"].(float64) < 1 {
		t.Error("Report should have at least one page")
	}

	// The report is now listable and downloadable.
	w = app.request(t, http.MethodGet, "/api/reports", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 listing reports, got %d", w.Code)
	}
	if results := decodeBody(t, w)["data"].([]interface{}); len(results) != 1 {
		t.Fatalf("Expected 1 report, got %d", len(results))
	}

	reportID := report["id"].(string)
	w = app.request(t, http.MethodGet, "/api/reports/"+reportID+"/file", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 downloading report, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("Expected application/pdf, got %s", ct)
	}
	if !bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")) {
		t.Error("Download should return a PDF")
	}

	// The filed case lists under the user.
	w = app.request(t, http.MethodGet, "/api/users/"+userID+"/cases", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 listing cases, got %d", w.Code)
	}
	if cases := decodeBody(t, w)["data"].([]interface{}); len(cases) != 1 {
		t.Fatalf("Expected 1 case, got %d", len(cases))
	}

	// Delete the report; the listing is empty again.
	w = app.request(t, http.MethodDelete, "/api/reports/"+reportID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 deleting report, got %d", w.Code)
	}
	w = app.request(t, http.MethodGet, "/api/reports", nil)
	if results := decodeBody(t, w)["data"].([]interface{}); len(results) != 0 {
		t.Errorf("Expected empty listing after delete, got %d", len(results))
	}
}

func TestStartFilingUnknownUser(t *testing.T) {
	app := setupApp(t, &stubSpeech{}, &stubLLM{})

	w := app.request(t, http.MethodPost, "/api/filings", gin.H{"user_id": "missing"})
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", w.Code)
	}
}

func TestSubmitStatementPermissionDenied(t *testing.T) {
	app := setupApp(t, &stubSpeech{text: "x"}, &stubLLM{})
	userID := createTestUser(t, app)

	w := app.request(t, http.MethodPost, "/api/filings", gin.H{"user_id": userID})
	sessionID := decodeBody(t, w)["data"].(map[string]interface{})["id"].(string)

	w = app.request(t, http.MethodPost, "/api/filings/"+sessionID+"/statement",
		gin.H{"permission_denied": true})
	if w.Code != http.StatusForbidden {
		t.Errorf("Expected 403, got %d: %s", w.Code, w.Body.String())
	}
}

func TestSubmitStatementBadAudio(t *testing.T) {
	app := setupApp(t, &stubSpeech{text: "x"}, &stubLLM{})
	userID := createTestUser(t, app)

	w := app.request(t, http.MethodPost, "/api/filings", gin.H{"user_id": userID})
	sessionID := decodeBody(t, w)["data"].(map[string]interface{})["id"].(string)

	w = app.request(t, http.MethodPost, "/api/filings/"+sessionID+"/statement",
		gin.H{"audio": "not base64 at all!!!"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for invalid base64, got %d", w.Code)
	}
}

func TestGetFilingNotFound(t *testing.T) {
	app := setupApp(t, &stubSpeech{}, &stubLLM{})

	w := app.request(t, http.MethodGet, "/api/filings/missing-session", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", w.Code)
	}
}

func TestUpdateCaseStatusEndpoint(t *testing.T) {
	app := setupApp(t,
		&stubSpeech{text: "statement"},
		&stubLLM{responses: []string{classifyResponse, extractResponse, contentResponse}})
	userID := createTestUser(t, app)

	w := app.request(t, http.MethodPost, "/api/filings", gin.H{"user_id": userID})
	sessionID := decodeBody(t, w)["data"].(map[string]interface{})["id"].(string)
	app.request(t, http.MethodPost, "/api/filings/"+sessionID+"/statement", audioBody())
	w = app.request(t, http.MethodPost, "/api/filings/"+sessionID+"/finalize", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Finalize failed: %d %s", w.Code, w.Body.String())
	}
	caseID := decodeBody(t, w)["case"].(map[string]interface{})["id"].(string)

	w = app.request(t, http.MethodPatch, "/api/cases/"+caseID+"/status", gin.H{"status": "under_review"})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = app.request(t, http.MethodGet, "/api/cases/"+caseID, nil)
	if data := decodeBody(t, w)["data"].(map[string]interface{}); data["status"] != "under_review" {
		t.Errorf("Expected under_review, got %v", data["status"])
	}

	w = app.request(t, http.MethodPatch, "/api/cases/"+caseID+"/status", gin.H{"status": "bogus"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for invalid status, got %d", w.Code)
	}
}

func TestDetectLanguage(t *testing.T) {
	app := setupApp(t,
		&stubSpeech{langCode: "mar"},
		&stubLLM{responses: []string{"marathi"}})

	t.Run("from text", func(t *testing.T) {
		w := app.request(t, http.MethodPost, "/api/language/detect", gin.H{"text": "namaskar"})
		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}
		body := decodeBody(t, w)
		if body["language"] != "marathi" || body["source"] != "text" {
			t.Errorf("Unexpected detection: %v", body)
		}
	})

	t.Run("from audio", func(t *testing.T) {
		w := app.request(t, http.MethodPost, "/api/language/detect", audioBody())
		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}
		body := decodeBody(t, w)
		if body["language"] != "marathi" || body["source"] != "audio" {
			t.Errorf("Unexpected detection: %v", body)
		}
	})

	t.Run("neither text nor audio", func(t *testing.T) {
		w := app.request(t, http.MethodPost, "/api/language/detect", gin.H{})
		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", w.Code)
		}
	})
}

func TestReportNotFound(t *testing.T) {
	app := setupApp(t, &stubSpeech{}, &stubLLM{})

	w := app.request(t, http.MethodGet, "/api/reports/missing", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for Get, got %d", w.Code)
	}

	w = app.request(t, http.MethodDelete, "/api/reports/missing", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for Delete, got %d", w.Code)
	}
}

func TestCacheStatsEndpoint(t *testing.T) {
	app := setupApp(t, &stubSpeech{}, &stubLLM{})

	w := app.request(t, http.MethodGet, "/api/cache/stats", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if stats := decodeBody(t, w)["stats"].(map[string]interface{}); stats == nil {
		t.Error("Stats missing from response")
	}
}
