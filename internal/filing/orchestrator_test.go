package filing

import (
	"context"
	"errors"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/YadurajManu/bolonyay-server/internal/apperr"
	"github.com/YadurajManu/bolonyay-server/internal/bhashini"
	"github.com/YadurajManu/bolonyay-server/internal/database"
	"github.com/YadurajManu/bolonyay-server/internal/document"
	"github.com/YadurajManu/bolonyay-server/internal/language"
	"github.com/YadurajManu/bolonyay-server/pkg/logger"
)

const classifyResponse = `CASE TYPE: Criminal Case - Cheating and Fraud
CASE DETAILS: The complainant was cheated in a business transaction.
QUESTIONS:
- What is your full name?
- When did the incident take place?
- How much money was involved?`

const extractResponse = `{"petitioner": {"name": "Ramesh Kumar"}, "incident": {"place": "Pune"}}`

const contentResponse = `CASE SUMMARY: A cheating case.
KEY FACTS:
- Money was taken under false promises
LEGAL ISSUES:
- Cheating under section 420
RELIEF SOUGHT:
- Recovery of the amount`

type fakeSpeech struct {
	text string
	err  error
}

func (f *fakeSpeech) Transcribe(ctx context.Context, audio []byte, source language.Language) (*bhashini.Transcript, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &bhashini.Transcript{Text: f.text, Path: bhashini.PathPipelineResponse}, nil
}

func (f *fakeSpeech) DetectLanguage(ctx context.Context, audio []byte) (*bhashini.Detection, error) {
	return &bhashini.Detection{LangCode: "hin", Path: bhashini.PathPipelineResponse}, nil
}

type fakeLLM struct {
	responses []string
	calls     int
	err       error
}

func (f *fakeLLM) Complete(ctx context.Context, systemPrompt, userPrompt string, maxTokens int, temperature float64) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if f.calls >= len(f.responses) {
		return "", errors.New("no scripted response left")
	}
	resp := f.responses[f.calls]
	f.calls++
	return resp, nil
}

func setupOrchestrator(t *testing.T, speech bhashini.Client, llmClient *fakeLLM) (*Orchestrator, *gorm.DB, string) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}

	user := &database.User{Email: "ramesh@example.com", Name: "Ramesh Kumar"}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}

	log, err := logger.NewLogger("error", "json")
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}

	return NewOrchestrator(db, speech, llmClient, log), db, user.ID
}

func TestStartSessionUserNotFound(t *testing.T) {
	o, _, _ := setupOrchestrator(t, &fakeSpeech{text: "x"}, &fakeLLM{})

	_, err := o.StartSession(context.Background(), "missing-user", language.Hindi)
	if !errors.Is(err, apperr.ErrUserNotFound) {
		t.Fatalf("Expected ErrUserNotFound, got %v", err)
	}
}

func TestFullFilingFlow(t *testing.T) {
	llmClient := &fakeLLM{responses: []string{classifyResponse, extractResponse, contentResponse}}
	o, db, userID := setupOrchestrator(t, &fakeSpeech{text: "mujhe dhokha diya gaya"}, llmClient)
	ctx := context.Background()

	session, err := o.StartSession(ctx, userID, language.Hindi)
	if err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}
	if session.State != StateRecording {
		t.Errorf("Expected recording state, got %s", session.State)
	}

	session, err = o.SubmitStatement(ctx, session.ID, []byte("audio"))
	if err != nil {
		t.Fatalf("SubmitStatement failed: %v", err)
	}
	if session.State != StateAwaitingAnswer {
		t.Errorf("Expected awaiting_answer, got %s", session.State)
	}
	if session.CaseType != "Criminal Case - Cheating and Fraud" {
		t.Errorf("Unexpected case type: %q", session.CaseType)
	}
	if len(session.Questions) != 3 {
		t.Fatalf("Expected 3 questions, got %d", len(session.Questions))
	}
	if session.CurrentQuestion() != "What is your full name?" {
		t.Errorf("Unexpected first question: %q", session.CurrentQuestion())
	}

	for i := 0; i < 3; i++ {
		if session, err = o.SubmitAnswer(ctx, session.ID, []byte("audio")); err != nil {
			t.Fatalf("SubmitAnswer %d failed: %v", i, err)
		}
	}
	if !session.AnsweredAll() {
		t.Error("All questions should be answered")
	}

	record, content, err := o.Finalize(ctx, session.ID)
	if err != nil {
		t.Fatalf("Finalize failed: %v", err)
	}
	if record.Status != database.CaseStatusFiled {
		t.Errorf("Expected filed status, got %s", record.Status)
	}
	if len(record.FilingQuestions) != len(record.UserResponses) {
		t.Errorf("Questions and responses misaligned: %d vs %d",
			len(record.FilingQuestions), len(record.UserResponses))
	}
	if record.CaseNumber == "" {
		t.Error("Case number not generated")
	}
	if content.Fields.Petitioner.Name != "Ramesh Kumar" {
		t.Errorf("Extracted field lost: %q", content.Fields.Petitioner.Name)
	}
	if content.Fields.Petitioner.Age != document.PlaceholderAge {
		t.Errorf("Missing field should be placeholder, got %q", content.Fields.Petitioner.Age)
	}

	// The session is gone after filing.
	if _, ok := o.Session(session.ID); ok {
		t.Error("Session should be removed after filing")
	}

	// The session record is closed and linked to the case.
	var sessionRecord database.SessionRecord
	if err := db.First(&sessionRecord, "id = ?", session.ID).Error; err != nil {
		t.Fatalf("Session record missing: %v", err)
	}
	if sessionRecord.EndedAt == nil {
		t.Error("Session record should be closed")
	}
	if sessionRecord.CaseNumber != record.CaseNumber {
		t.Errorf("Session record not linked to case: %q", sessionRecord.CaseNumber)
	}
	if sessionRecord.TotalMessages == 0 {
		t.Error("Conversation transcript not mirrored to session record")
	}
}

func TestFinalizePadsMissingAnswers(t *testing.T) {
	llmClient := &fakeLLM{responses: []string{classifyResponse, extractResponse, contentResponse}}
	o, _, userID := setupOrchestrator(t, &fakeSpeech{text: "statement"}, llmClient)
	ctx := context.Background()

	session, _ := o.StartSession(ctx, userID, language.Hindi)
	session, err := o.SubmitStatement(ctx, session.ID, []byte("audio"))
	if err != nil {
		t.Fatalf("SubmitStatement failed: %v", err)
	}

	// Answer only one of the three questions.
	if _, err := o.SubmitAnswer(ctx, session.ID, []byte("audio")); err != nil {
		t.Fatalf("SubmitAnswer failed: %v", err)
	}

	record, _, err := o.Finalize(ctx, session.ID)
	if err != nil {
		t.Fatalf("Finalize failed: %v", err)
	}

	if len(record.FilingQuestions) != 3 || len(record.UserResponses) != 3 {
		t.Fatalf("Expected 3/3 after padding, got %d/%d",
			len(record.FilingQuestions), len(record.UserResponses))
	}
	if record.UserResponses[0] != "statement" {
		t.Errorf("First answer lost: %q", record.UserResponses[0])
	}
	for i := 1; i < 3; i++ {
		if record.UserResponses[i] != "" {
			t.Errorf("Unanswered question %d should be empty string, got %q", i, record.UserResponses[i])
		}
	}
}

func TestSkipAnswer(t *testing.T) {
	llmClient := &fakeLLM{responses: []string{classifyResponse, extractResponse, contentResponse}}
	o, _, userID := setupOrchestrator(t, &fakeSpeech{text: "statement"}, llmClient)
	ctx := context.Background()

	session, _ := o.StartSession(ctx, userID, language.English)
	session, err := o.SubmitStatement(ctx, session.ID, []byte("audio"))
	if err != nil {
		t.Fatalf("SubmitStatement failed: %v", err)
	}

	session, err = o.SkipAnswer(ctx, session.ID)
	if err != nil {
		t.Fatalf("SkipAnswer failed: %v", err)
	}
	if session.QuestionIndex != 1 {
		t.Errorf("Skip should advance the question index, got %d", session.QuestionIndex)
	}
	if session.Responses[0] != "" {
		t.Errorf("Skip should record an empty response, got %q", session.Responses[0])
	}
}

func TestClassificationMissingHeaderAborts(t *testing.T) {
	llmClient := &fakeLLM{responses: []string{"CASE TYPE: Civil\nno questions here"}}
	o, _, userID := setupOrchestrator(t, &fakeSpeech{text: "statement"}, llmClient)
	ctx := context.Background()

	session, _ := o.StartSession(ctx, userID, language.Hindi)
	_, err := o.SubmitStatement(ctx, session.ID, []byte("audio"))
	if err == nil {
		t.Fatal("Expected error for classification response missing headers")
	}

	if _, ok := o.Session(session.ID); ok {
		t.Error("Session should be aborted after a classification defect")
	}
}

func TestTranscriptionFailureAborts(t *testing.T) {
	o, db, userID := setupOrchestrator(t, &fakeSpeech{err: apperr.ErrNoTranscript}, &fakeLLM{})
	ctx := context.Background()

	session, _ := o.StartSession(ctx, userID, language.Hindi)
	_, err := o.SubmitStatement(ctx, session.ID, []byte("audio"))
	if !errors.Is(err, apperr.ErrNoTranscript) {
		t.Fatalf("Expected ErrNoTranscript, got %v", err)
	}

	if _, ok := o.Session(session.ID); ok {
		t.Error("Session should be aborted after a transcription failure")
	}

	// No partial case persisted.
	var count int64
	db.Model(&database.CaseRecord{}).Count(&count)
	if count != 0 {
		t.Errorf("Expected no persisted cases after abort, got %d", count)
	}
}

func TestSubmitStatementWrongState(t *testing.T) {
	llmClient := &fakeLLM{responses: []string{classifyResponse}}
	o, _, userID := setupOrchestrator(t, &fakeSpeech{text: "statement"}, llmClient)
	ctx := context.Background()

	session, _ := o.StartSession(ctx, userID, language.Hindi)
	if _, err := o.SubmitStatement(ctx, session.ID, []byte("audio")); err != nil {
		t.Fatalf("SubmitStatement failed: %v", err)
	}

	// A second statement is not part of the protocol.
	if _, err := o.SubmitStatement(ctx, session.ID, []byte("audio")); err == nil {
		t.Fatal("Expected state error for a second statement")
	}
}

func TestUpdateStatus(t *testing.T) {
	llmClient := &fakeLLM{responses: []string{classifyResponse, extractResponse, contentResponse}}
	o, db, userID := setupOrchestrator(t, &fakeSpeech{text: "statement"}, llmClient)
	ctx := context.Background()

	session, _ := o.StartSession(ctx, userID, language.Hindi)
	if _, err := o.SubmitStatement(ctx, session.ID, []byte("audio")); err != nil {
		t.Fatalf("SubmitStatement failed: %v", err)
	}
	record, _, err := o.Finalize(ctx, session.ID)
	if err != nil {
		t.Fatalf("Finalize failed: %v", err)
	}

	if err := o.UpdateStatus(ctx, record.ID, database.CaseStatusUnderReview); err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}

	var updated database.CaseRecord
	db.First(&updated, "id = ?", record.ID)
	if updated.Status != database.CaseStatusUnderReview {
		t.Errorf("Expected under_review, got %s", updated.Status)
	}

	if err := o.UpdateStatus(ctx, record.ID, "bogus"); err == nil {
		t.Error("Expected error for an invalid status")
	}
	if err := o.UpdateStatus(ctx, "missing-case", database.CaseStatusCompleted); err == nil {
		t.Error("Expected error for a missing case")
	}
}

func TestQATranscriptAlignment(t *testing.T) {
	questions := []string{"Q one", "Q two", "Q three"}
	responses := []string{"A one"}

	got := qaTranscript(questions, responses)
	want := "Q1: Q one\nA1: A one\nQ2: Q two\nA2: \nQ3: Q three\nA3: \n"
	if got != want {
		t.Errorf("Unexpected transcript:\n%q\nwant:\n%q", got, want)
	}
}
