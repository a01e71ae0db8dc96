package filing

import (
	"time"

	"github.com/YadurajManu/bolonyay-server/internal/language"
)

// State is the filing session's position in the pipeline.
type State string

const (
	StateIdle               State = "idle"
	StateRecording          State = "recording"
	StateTranscribing       State = "transcribing"
	StateClassifying        State = "classifying"
	StateAwaitingAnswer     State = "awaiting_answer"
	StateTranscribingAnswer State = "transcribing_answer"
	StateExtracting         State = "extracting"
	StateFinalizing         State = "finalizing"
	StateFiled              State = "filed"
)

// Session is one in-flight filing conversation. It lives in memory until
// the case is filed or the session aborts; the transcript is mirrored to
// the sessions table as it grows.
type Session struct {
	ID            string            `json:"id"`
	UserID        string            `json:"user_id"`
	Language      language.Language `json:"language"`
	State         State             `json:"state"`
	CaseType      string            `json:"case_type,omitempty"`
	CaseDetails   string            `json:"case_details,omitempty"`
	Summary       string            `json:"summary,omitempty"`
	Questions     []string          `json:"questions,omitempty"`
	Responses     []string          `json:"responses,omitempty"`
	QuestionIndex int               `json:"question_index"`
	StartedAt     time.Time         `json:"started_at"`

	// inFlight enforces exclusive recording: at most one audio
	// submission may be processing per session; a second one fails
	// fast instead of queuing.
	inFlight bool
}

// CurrentQuestion returns the question awaiting an answer, or "" when
// none remain.
func (s *Session) CurrentQuestion() string {
	if s.QuestionIndex >= 0 && s.QuestionIndex < len(s.Questions) {
		return s.Questions[s.QuestionIndex]
	}
	return ""
}

// AnsweredAll reports whether every generated question has a response.
func (s *Session) AnsweredAll() bool {
	return len(s.Questions) > 0 && len(s.Responses) >= len(s.Questions)
}
