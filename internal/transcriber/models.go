package transcriber

import (
	"context"
	"time"
)

// Transcriber turns an audio file on disk into text
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (*Result, error)
	Model() string
}

// Result represents the structured (non-streaming) transcription result
type Result struct {
	Text     string        `json:"text"`
	Language string        `json:"language,omitempty"`
	Duration time.Duration `json:"duration,omitempty"`
}

// Options configures the OpenAI transcription client
type Options struct {
	APIKey   string
	BaseURL  string
	Model    string
	Language string
	Prompt   string
}
