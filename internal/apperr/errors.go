package apperr

import (
	"errors"
	"fmt"
)

// Sentinel errors for the filing pipeline. Handlers map these to HTTP
// status codes; everything else is treated as an internal error.
var (
	// ErrPermissionDenied is reported when the client signals that
	// microphone access was refused on the device.
	ErrPermissionDenied = errors.New("microphone permission denied")

	// ErrConfiguration means an external API response did not carry the
	// expected shape during pipeline discovery.
	ErrConfiguration = errors.New("pipeline configuration not found in response")

	// ErrInvalidResponse means a well-formed HTTP response could not be
	// decoded into the expected schema.
	ErrInvalidResponse = errors.New("invalid response from external API")

	// ErrNoTranscript means the ASR response was well-formed but carried
	// no transcript at any known path.
	ErrNoTranscript = errors.New("no transcript found in response")

	// ErrLanguageDetection means the ALD response carried no language
	// prediction at any known path.
	ErrLanguageDetection = errors.New("language detection failed")

	// ErrUserNotFound means a user-scoped operation was invoked for an
	// unknown user id.
	ErrUserNotFound = errors.New("user not found")

	// ErrRecordingActive means an answer recording was submitted while a
	// previous one for the same session is still being processed.
	ErrRecordingActive = errors.New("another recording is already active for this session")
)

// APIError is a non-2xx response from an external API.
type APIError struct {
	Code    int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Code, e.Message)
}

// NewAPIError builds an APIError from an upstream status code and body.
func NewAPIError(code int, message string) *APIError {
	return &APIError{Code: code, Message: message}
}
