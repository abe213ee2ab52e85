package model

import (
	"io"
)

// ErrorLabel is the short label carried by every failed transcription response
const ErrorLabel = "failed to transcribe audio"

// UploadedAudio is the raw payload received for one request
type UploadedAudio struct {
	Body     io.Reader
	Filename string
	Size     int64
}

// TranscriptionResult is the outcome of one request: Text on success,
// Error and Detail on failure.
type TranscriptionResult struct {
	Text   string
	Error  string
	Detail string
}

// NewTextResult builds a successful result
func NewTextResult(text string) *TranscriptionResult {
	return &TranscriptionResult{Text: text}
}

// NewFailedResult builds a failed result from the underlying cause
func NewFailedResult(err error) *TranscriptionResult {
	resp := NewErrorResponse(err)
	return &TranscriptionResult{Error: resp.Error, Detail: resp.Detail}
}

// Succeeded returns true if the result carries text
func (r *TranscriptionResult) Succeeded() bool {
	return r != nil && r.Error == "" && r.Text != ""
}

// Body returns the JSON body matching the result
func (r *TranscriptionResult) Body() any {
	if r.Succeeded() {
		return TextResponse{Text: r.Text}
	}
	return ErrorResponse{Error: r.Error, Detail: r.Detail}
}

// TextResponse is the success body
type TextResponse struct {
	Text string `json:"text"`
}

// ErrorResponse is the failure body. Failure kinds share the label and
// differ only in Detail.
type ErrorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail"`
}

// NewErrorResponse builds a failure body from the underlying cause
func NewErrorResponse(err error) ErrorResponse {
	resp := ErrorResponse{Error: ErrorLabel}
	if err != nil {
		resp.Detail = err.Error()
	}
	return resp
}

// HealthResponse is returned by the liveness route
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}
