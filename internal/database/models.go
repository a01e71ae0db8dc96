package database

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Case status constants. Status is set to filed by the orchestrator and
// only changed afterwards by an explicit operator update.
const (
	CaseStatusFiled       = "filed"
	CaseStatusUnderReview = "under_review"
	CaseStatusPending     = "pending"
	CaseStatusCompleted   = "completed"
	CaseStatusRejected    = "rejected"
)

// Session message type constants
const (
	MessageTypeUserTranscription = "user_transcription"
	MessageTypeAIResponse        = "ai_response"
)

// ValidCaseStatus reports whether s is one of the allowed case statuses.
func ValidCaseStatus(s string) bool {
	switch s {
	case CaseStatusFiled, CaseStatusUnderReview, CaseStatusPending,
		CaseStatusCompleted, CaseStatusRejected:
		return true
	}
	return false
}

// StringList is a []string stored as a JSON text column.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	data, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = StringList{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	}
	return fmt.Errorf("unsupported type for StringList: %T", value)
}

// SessionMessage is one turn of a filing conversation.
type SessionMessage struct {
	Type      string    `json:"type"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
	Language  string    `json:"language"`
}

// MessageList is a []SessionMessage stored as a JSON text column.
type MessageList []SessionMessage

func (l MessageList) Value() (driver.Value, error) {
	if l == nil {
		l = MessageList{}
	}
	data, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (l *MessageList) Scan(value interface{}) error {
	if value == nil {
		*l = MessageList{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	}
	return fmt.Errorf("unsupported type for MessageList: %T", value)
}

// User is a registered citizen or advocate.
type User struct {
	ID        string    `json:"id" gorm:"primarykey"`
	Email     string    `json:"email" gorm:"uniqueIndex"`
	Name      string    `json:"name"`
	UserType  string    `json:"user_type"`
	Language  string    `json:"language"`
	CreatedAt time.Time `json:"created_at"`
}

// CaseRecord is the persisted outcome of one filing conversation.
// FilingQuestions and UserResponses are index-aligned.
type CaseRecord struct {
	ID                  string     `json:"id" gorm:"primarykey"`
	CaseNumber          string     `json:"case_number" gorm:"uniqueIndex"`
	UserID              string     `json:"user_id" gorm:"index"`
	CaseType            string     `json:"case_type"`
	CaseDetails         string     `json:"case_details" gorm:"type:text"`
	ConversationSummary string     `json:"conversation_summary" gorm:"type:text"`
	FilingQuestions     StringList `json:"filing_questions" gorm:"type:text"`
	UserResponses       StringList `json:"user_responses" gorm:"type:text"`
	Status              string     `json:"status" gorm:"index"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
	SessionID           string     `json:"session_id"`
	AzureSessionID      string     `json:"azure_session_id"`
	Language            string     `json:"language"`
}

// SessionRecord is one voice conversation. Messages are append-only until
// EndedAt is set.
type SessionRecord struct {
	ID            string      `json:"id" gorm:"primarykey"`
	UserID        string      `json:"user_id" gorm:"index"`
	Messages      MessageList `json:"messages" gorm:"type:text"`
	StartedAt     time.Time   `json:"started_at"`
	EndedAt       *time.Time  `json:"ended_at"`
	Language      string      `json:"language"`
	TotalMessages int         `json:"total_messages"`
	CaseNumber    string      `json:"case_number"`
}

// SavedReport is the metadata record for one generated PDF. The physical
// file lives under the reports directory; the record references its case
// by id only.
type SavedReport struct {
	ID             string     `json:"id" gorm:"primarykey"`
	CaseID         string     `json:"case_id" gorm:"index"`
	CaseNumber     string     `json:"case_number"`
	CaseType       string     `json:"case_type"`
	Title          string     `json:"title"`
	FilePath       string     `json:"file_path"`
	FileSize       int64      `json:"file_size"`
	CreatedAt      time.Time  `json:"created_at"`
	LastAccessedAt *time.Time `json:"last_accessed_at"`
	Downloaded     bool       `json:"downloaded"`
	TemplateName   string     `json:"template_name"`
	Language       string     `json:"language"`
	PageCount      int        `json:"page_count"`
	Tags           StringList `json:"tags" gorm:"type:text"`
	Summary        string     `json:"summary" gorm:"type:text"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return nil
}

func (c *CaseRecord) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}

func (s *SessionRecord) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return nil
}

func (r *SavedReport) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return nil
}

func (User) TableName() string {
	return "users"
}

func (CaseRecord) TableName() string {
	return "cases"
}

func (SessionRecord) TableName() string {
	return "sessions"
}

func (SavedReport) TableName() string {
	return "reports"
}
