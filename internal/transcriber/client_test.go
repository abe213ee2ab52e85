package transcriber

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedRequest struct {
	path           string
	auth           string
	model          string
	responseFormat string
	language       string
	filename       string
	payload        []byte
}

func fakeOpenAI(t *testing.T, status int, body any) (*httptest.Server, *capturedRequest) {
	t.Helper()
	captured := &capturedRequest{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.path = r.URL.Path
		captured.auth = r.Header.Get("Authorization")

		if err := r.ParseMultipartForm(1 << 20); err == nil {
			captured.model = r.FormValue("model")
			captured.responseFormat = r.FormValue("response_format")
			captured.language = r.FormValue("language")
			if f, hdr, err := r.FormFile("file"); err == nil {
				captured.filename = hdr.Filename
				captured.payload, _ = io.ReadAll(f)
				f.Close()
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)

	return srv, captured
}

func writeAudio(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestNewClient_RequiresAPIKey(t *testing.T) {
	_, err := NewClient(Options{})
	assert.Error(t, err)
}

func TestNewClient_DefaultModel(t *testing.T) {
	c, err := NewClient(Options{APIKey: "sk-test"})
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, c.Model())
}

func TestClient_Transcribe_Success(t *testing.T) {
	srv, captured := fakeOpenAI(t, http.StatusOK, map[string]any{
		"text":     "bom dia",
		"language": "portuguese",
		"duration": 1.5,
	})

	c, err := NewClient(Options{
		APIKey:   "sk-test",
		BaseURL:  srv.URL + "/v1",
		Language: "pt",
	})
	require.NoError(t, err)

	path := writeAudio(t, "upload-123.webm", []byte("fake-webm-bytes"))

	result, err := c.Transcribe(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "bom dia", result.Text)
	assert.Equal(t, "portuguese", result.Language)
	assert.Equal(t, "1.5s", result.Duration.String())

	assert.Equal(t, "/v1/audio/transcriptions", captured.path)
	assert.Equal(t, "Bearer sk-test", captured.auth)
	assert.Equal(t, DefaultModel, captured.model)
	assert.Equal(t, "json", captured.responseFormat)
	assert.Equal(t, "pt", captured.language)
	assert.Equal(t, "upload-123.webm", captured.filename)
	assert.Equal(t, []byte("fake-webm-bytes"), captured.payload)
}

func TestClient_Transcribe_EmptyTextIsNotAnError(t *testing.T) {
	srv, _ := fakeOpenAI(t, http.StatusOK, map[string]any{"text": ""})

	c, err := NewClient(Options{APIKey: "sk-test", BaseURL: srv.URL + "/v1"})
	require.NoError(t, err)

	result, err := c.Transcribe(context.Background(), writeAudio(t, "a.mp3", []byte("x")))
	require.NoError(t, err)
	assert.Empty(t, result.Text)
}

func TestClient_Transcribe_APIError(t *testing.T) {
	srv, _ := fakeOpenAI(t, http.StatusUnauthorized, map[string]any{
		"error": map[string]any{
			"message": "Incorrect API key provided",
			"type":    "invalid_request_error",
		},
	})

	c, err := NewClient(Options{APIKey: "sk-bad", BaseURL: srv.URL + "/v1"})
	require.NoError(t, err)

	result, err := c.Transcribe(context.Background(), writeAudio(t, "a.wav", []byte("x")))
	require.Error(t, err)
	assert.Nil(t, result)
	assert.Contains(t, err.Error(), "Incorrect API key provided")
	assert.Contains(t, err.Error(), "openai transcription failed")
}

func TestClient_Transcribe_MissingFile(t *testing.T) {
	c, err := NewClient(Options{APIKey: "sk-test", BaseURL: "http://127.0.0.1:1/v1"})
	require.NoError(t, err)

	_, err = c.Transcribe(context.Background(), filepath.Join(t.TempDir(), "gone.webm"))
	assert.Error(t, err)
}
