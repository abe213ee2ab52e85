package transcriber

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"iuris/pkg/logger"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const DefaultModel = "gpt-4o-transcribe"

type Client struct {
	client   *openai.Client
	model    string
	language string
	prompt   string
}

// NewClient creates an OpenAI transcription client.
// Timeouts are left to the go-openai default HTTP client.
func NewClient(opts Options) (*Client, error) {
	if opts.APIKey == "" {
		return nil, errors.New("missing OpenAI API key")
	}

	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	}

	model := opts.Model
	if model == "" {
		model = DefaultModel
	}

	return &Client{
		client:   openai.NewClientWithConfig(cfg),
		model:    model,
		language: opts.Language,
		prompt:   opts.Prompt,
	}, nil
}

func (c *Client) Model() string {
	return c.model
}

// Transcribe uploads the file at audioPath and returns the JSON result.
// The file extension tells the API which container format to expect.
func (c *Client) Transcribe(ctx context.Context, audioPath string) (*Result, error) {
	logger.Debug("Starting transcription",
		zap.String("model", c.model),
		zap.String("file", filepath.Base(audioPath)))

	start := time.Now()
	resp, err := c.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    c.model,
		FilePath: audioPath,
		Language: c.language,
		Prompt:   c.prompt,
		Format:   openai.AudioResponseFormatJSON,
	})
	if err != nil {
		return nil, fmt.Errorf("openai transcription failed: %w", err)
	}

	logger.Debug("Transcription completed",
		zap.String("model", c.model),
		zap.Int("text_length", len(resp.Text)),
		zap.Duration("elapsed", time.Since(start)))

	return &Result{
		Text:     resp.Text,
		Language: resp.Language,
		Duration: time.Duration(resp.Duration * float64(time.Second)),
	}, nil
}
