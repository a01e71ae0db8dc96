package filing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/YadurajManu/bolonyay-server/internal/apperr"
	"github.com/YadurajManu/bolonyay-server/internal/bhashini"
	"github.com/YadurajManu/bolonyay-server/internal/database"
	"github.com/YadurajManu/bolonyay-server/internal/document"
	"github.com/YadurajManu/bolonyay-server/internal/language"
	"github.com/YadurajManu/bolonyay-server/internal/llm"
	"github.com/YadurajManu/bolonyay-server/pkg/logger"
)

// Orchestrator drives the voice filing pipeline: transcribe the citizen's
// statement, classify it into a case type plus filing questions, collect
// one voice answer per question, extract structured fields, and persist
// the filed case. Any external failure aborts the whole session; nothing
// partial is persisted.
type Orchestrator struct {
	db     *gorm.DB
	speech bhashini.Client
	llm    llm.Client
	log    *logger.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewOrchestrator(db *gorm.DB, speech bhashini.Client, llmClient llm.Client, log *logger.Logger) *Orchestrator {
	return &Orchestrator{
		db:       db,
		speech:   speech,
		llm:      llmClient,
		log:      log.With("service", "filing"),
		sessions: make(map[string]*Session),
	}
}

// StartSession opens a filing session for a user. The session starts in
// the recording state, waiting for the citizen's statement.
func (o *Orchestrator) StartSession(ctx context.Context, userID string, lang language.Language) (*Session, error) {
	var user database.User
	if err := o.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	record := &database.SessionRecord{
		UserID:    userID,
		Messages:  database.MessageList{},
		StartedAt: time.Now(),
		Language:  string(lang),
	}
	if err := o.db.WithContext(ctx).Create(record).Error; err != nil {
		return nil, fmt.Errorf("failed to create session record: %w", err)
	}

	session := &Session{
		ID:        record.ID,
		UserID:    userID,
		Language:  lang,
		State:     StateRecording,
		StartedAt: record.StartedAt,
	}

	o.mu.Lock()
	o.sessions[session.ID] = session
	o.mu.Unlock()

	o.log.Info("Filing session started", "sessionID", session.ID, "userID", userID, "language", lang)
	return session, nil
}

// Session returns the in-memory session by id.
func (o *Orchestrator) Session(sessionID string) (*Session, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	s, ok := o.sessions[sessionID]
	return s, ok
}

// acquire flips the session into a processing state, enforcing exclusive
// recording and validating the expected current state.
func (o *Orchestrator) acquire(sessionID string, want State, next State) (*Session, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	session, ok := o.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("no active filing session %s", sessionID)
	}
	if session.inFlight {
		return nil, apperr.ErrRecordingActive
	}
	if session.State != want {
		return nil, fmt.Errorf("session %s is %s, expected %s", sessionID, session.State, want)
	}

	session.inFlight = true
	session.State = next
	return session, nil
}

func (o *Orchestrator) release(session *Session, state State) {
	o.mu.Lock()
	session.inFlight = false
	session.State = state
	o.mu.Unlock()
}

// abort discards the session on any external failure. The session record
// is closed but no case is persisted.
func (o *Orchestrator) abort(session *Session, cause error) {
	o.mu.Lock()
	delete(o.sessions, session.ID)
	o.mu.Unlock()

	now := time.Now()
	if err := o.db.Model(&database.SessionRecord{}).
		Where("id = ?", session.ID).
		Update("ended_at", &now).Error; err != nil {
		o.log.Error("Failed to close aborted session record", "sessionID", session.ID, "error", err)
	}

	o.log.Warn("Filing session aborted", "sessionID", session.ID, "error", cause)
}

// appendMessage mirrors one conversation turn into the session record.
func (o *Orchestrator) appendMessage(ctx context.Context, session *Session, msgType, text string) {
	var record database.SessionRecord
	if err := o.db.WithContext(ctx).First(&record, "id = ?", session.ID).Error; err != nil {
		o.log.Error("Failed to load session record", "sessionID", session.ID, "error", err)
		return
	}

	record.Messages = append(record.Messages, database.SessionMessage{
		Type:      msgType,
		Text:      text,
		Timestamp: time.Now(),
		Language:  string(session.Language),
	})
	record.TotalMessages = len(record.Messages)

	if err := o.db.WithContext(ctx).Save(&record).Error; err != nil {
		o.log.Error("Failed to append session message", "sessionID", session.ID, "error", err)
	}
}

// SubmitStatement transcribes the citizen's opening statement and runs
// classification, producing the case type and the filing questions.
func (o *Orchestrator) SubmitStatement(ctx context.Context, sessionID string, audio []byte) (*Session, error) {
	session, err := o.acquire(sessionID, StateRecording, StateTranscribing)
	if err != nil {
		return nil, err
	}

	transcript, err := o.speech.Transcribe(ctx, audio, session.Language)
	if err != nil {
		o.abort(session, err)
		return nil, err
	}

	o.release(session, StateClassifying)
	o.appendMessage(ctx, session, database.MessageTypeUserTranscription, transcript.Text)

	response, err := o.llm.Complete(ctx, classifySystemPrompt, classifyUserPrompt(transcript.Text), 800, 0.3)
	if err != nil {
		o.abort(session, err)
		return nil, err
	}

	caseType, caseDetails, questions, err := parseClassification(response)
	if err != nil {
		o.abort(session, err)
		return nil, err
	}

	o.mu.Lock()
	session.Summary = transcript.Text
	session.CaseType = caseType
	session.CaseDetails = caseDetails
	session.Questions = questions
	session.Responses = nil
	session.QuestionIndex = 0
	session.State = StateAwaitingAnswer
	o.mu.Unlock()

	o.appendMessage(ctx, session, database.MessageTypeAIResponse,
		fmt.Sprintf("Classified as %s. %d filing questions generated.", caseType, len(questions)))

	o.log.Info("Statement classified",
		"sessionID", session.ID,
		"caseType", caseType,
		"questions", len(questions),
	)

	return session, nil
}

// parseClassification requires the three fixed headers. A response
// missing any of them is a defect in the prompt contract; no repair is
// attempted.
func parseClassification(response string) (string, string, []string, error) {
	headers := []string{llm.HeaderCaseType, llm.HeaderCaseDetails, llm.HeaderQuestions}
	sections := llm.ParseSections(response, headers)

	caseTypeSec, ok := llm.FindSection(sections, llm.HeaderCaseType)
	if !ok || caseTypeSec.Text == "" {
		return "", "", nil, fmt.Errorf("classification response missing %s header", llm.HeaderCaseType)
	}
	detailsSec, ok := llm.FindSection(sections, llm.HeaderCaseDetails)
	if !ok {
		return "", "", nil, fmt.Errorf("classification response missing %s header", llm.HeaderCaseDetails)
	}
	questionsSec, ok := llm.FindSection(sections, llm.HeaderQuestions)
	if !ok || len(questionsSec.Items) == 0 {
		return "", "", nil, fmt.Errorf("classification response missing %s header", llm.HeaderQuestions)
	}

	return caseTypeSec.Text, detailsSec.Text, questionsSec.Items, nil
}

// SubmitAnswer transcribes one voice answer and aligns it to the current
// question by index.
func (o *Orchestrator) SubmitAnswer(ctx context.Context, sessionID string, audio []byte) (*Session, error) {
	session, err := o.acquire(sessionID, StateAwaitingAnswer, StateTranscribingAnswer)
	if err != nil {
		return nil, err
	}

	transcript, err := o.speech.Transcribe(ctx, audio, session.Language)
	if err != nil {
		o.abort(session, err)
		return nil, err
	}

	o.mu.Lock()
	session.Responses = append(session.Responses, transcript.Text)
	session.QuestionIndex++
	session.inFlight = false
	session.State = StateAwaitingAnswer
	o.mu.Unlock()

	o.appendMessage(ctx, session, database.MessageTypeUserTranscription, transcript.Text)

	return session, nil
}

// SkipAnswer records an empty response for the current question without a
// recording.
func (o *Orchestrator) SkipAnswer(ctx context.Context, sessionID string) (*Session, error) {
	session, err := o.acquire(sessionID, StateAwaitingAnswer, StateAwaitingAnswer)
	if err != nil {
		return nil, err
	}

	o.mu.Lock()
	session.Responses = append(session.Responses, "")
	session.QuestionIndex++
	session.inFlight = false
	o.mu.Unlock()

	return session, nil
}

// Finalize runs extraction and content drafting, persists the case with
// status filed, and closes the session. Callable as soon as the questions
// exist; unanswered questions are padded with empty strings so questions
// and responses stay index-aligned.
func (o *Orchestrator) Finalize(ctx context.Context, sessionID string) (*database.CaseRecord, document.Content, error) {
	session, err := o.acquire(sessionID, StateAwaitingAnswer, StateExtracting)
	if err != nil {
		return nil, document.Content{}, err
	}

	o.mu.Lock()
	for len(session.Responses) < len(session.Questions) {
		session.Responses = append(session.Responses, "")
	}
	if len(session.Responses) > len(session.Questions) {
		session.Responses = session.Responses[:len(session.Questions)]
	}
	questions := append([]string(nil), session.Questions...)
	responses := append([]string(nil), session.Responses...)
	o.mu.Unlock()

	extractResp, err := o.llm.Complete(ctx, extractSystemPrompt,
		extractUserPrompt(session.CaseType, session.CaseDetails, questions, responses), 1000, 0.1)
	if err != nil {
		o.abort(session, err)
		return nil, document.Content{}, err
	}
	// Extraction parse failures are absorbed: a malformed JSON response
	// yields placeholder fields, not an aborted filing.
	fields := document.DecodeExtractedFields(extractResp)

	contentResp, err := o.llm.Complete(ctx, contentSystemPrompt,
		contentUserPrompt(session.CaseType, session.CaseDetails, session.Summary, questions, responses), 1500, 0.3)
	if err != nil {
		o.abort(session, err)
		return nil, document.Content{}, err
	}
	content := document.ParseContent(contentResp, fields)

	o.release(session, StateFinalizing)

	record := &database.CaseRecord{
		CaseNumber:          generateCaseNumber(),
		UserID:              session.UserID,
		CaseType:            session.CaseType,
		CaseDetails:         session.CaseDetails,
		ConversationSummary: session.Summary,
		FilingQuestions:     database.StringList(questions),
		UserResponses:       database.StringList(responses),
		Status:              database.CaseStatusFiled,
		SessionID:           session.ID,
		Language:            string(session.Language),
	}
	if err := o.db.WithContext(ctx).Create(record).Error; err != nil {
		o.abort(session, err)
		return nil, document.Content{}, fmt.Errorf("failed to persist case: %w", err)
	}

	now := time.Now()
	if err := o.db.WithContext(ctx).Model(&database.SessionRecord{}).
		Where("id = ?", session.ID).
		Updates(map[string]interface{}{"ended_at": &now, "case_number": record.CaseNumber}).Error; err != nil {
		o.log.Error("Failed to close session record", "sessionID", session.ID, "error", err)
	}

	o.mu.Lock()
	session.State = StateFiled
	delete(o.sessions, session.ID)
	o.mu.Unlock()

	o.log.Info("Case filed",
		"sessionID", session.ID,
		"caseNumber", record.CaseNumber,
		"caseType", record.CaseType,
	)

	return record, content, nil
}

// UpdateStatus is the out-of-band operator path; the orchestrator itself
// never moves a case past filed.
func (o *Orchestrator) UpdateStatus(ctx context.Context, caseID, status string) error {
	if !database.ValidCaseStatus(status) {
		return fmt.Errorf("invalid case status %q", status)
	}

	result := o.db.WithContext(ctx).Model(&database.CaseRecord{}).
		Where("id = ?", caseID).
		Update("status", status)
	if result.Error != nil {
		return fmt.Errorf("failed to update case status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("case %s not found", caseID)
	}

	return nil
}

// generateCaseNumber builds a human-readable case number embedding the
// filing date.
func generateCaseNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:6])
	return fmt.Sprintf("BN-%s-%s", time.Now().Format("20060102"), suffix)
}
