package queue

import (
	"time"

	"github.com/google/uuid"
)

// TranscriptionEvent describes one finished transcription request.
// The transcript itself is never included.
type TranscriptionEvent struct {
	EventID      string    `json:"event_id"`
	RequestID    string    `json:"request_id,omitempty"`
	Filename     string    `json:"filename,omitempty"`
	Suffix       string    `json:"suffix"`
	Size         int64     `json:"size"`
	Model        string    `json:"model"`
	Success      bool      `json:"success"`
	TextLength   int       `json:"text_length"`
	ErrorMessage string    `json:"error_message,omitempty"`
	DurationMs   int64     `json:"duration_ms"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewTranscriptionEvent fills the identity and timing fields of an event
func NewTranscriptionEvent(requestID string, elapsed time.Duration) *TranscriptionEvent {
	return &TranscriptionEvent{
		EventID:    uuid.New().String(),
		RequestID:  requestID,
		DurationMs: elapsed.Milliseconds(),
		CreatedAt:  time.Now().UTC(),
	}
}

// SetError marks the event as failed
func (e *TranscriptionEvent) SetError(err error) {
	e.Success = false
	e.TextLength = 0
	if err != nil {
		e.ErrorMessage = err.Error()
	}
}

// SetCompleted marks the event as successful
func (e *TranscriptionEvent) SetCompleted(text string) {
	e.Success = true
	e.TextLength = len(text)
	e.ErrorMessage = ""
}
