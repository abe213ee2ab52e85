package gateway

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"iuris/internal/queue"
	"iuris/internal/transcriber"
	"iuris/pkg/logger"
	"iuris/pkg/metrics"
	"iuris/pkg/model"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Failure kinds. They all reach the caller as the same 500 body.
var (
	ErrStorage            = errors.New("temporary storage error")
	ErrTranscription      = errors.New("transcription service error")
	ErrEmptyTranscription = errors.New("empty transcription")
)

// EventPublisher receives one event per finished request
type EventPublisher interface {
	PublishTranscription(ctx context.Context, event *queue.TranscriptionEvent) error
}

type Options struct {
	TempDir         string
	DefaultSuffix   string
	MultipartMemory int64
}

type Gateway struct {
	transcriber     transcriber.Transcriber
	publisher       EventPublisher
	metrics         *metrics.Metrics
	tempDir         string
	defaultSuffix   string
	multipartMemory int64
}

// NewGateway creates a new transcription gateway. publisher and m may be nil.
func NewGateway(t transcriber.Transcriber, publisher EventPublisher, m *metrics.Metrics, opts Options) *Gateway {
	if opts.DefaultSuffix == "" {
		opts.DefaultSuffix = DefaultSuffix
	}
	if opts.MultipartMemory <= 0 {
		opts.MultipartMemory = 32 << 20
	}

	return &Gateway{
		transcriber:     t,
		publisher:       publisher,
		metrics:         m,
		tempDir:         opts.TempDir,
		defaultSuffix:   opts.DefaultSuffix,
		multipartMemory: opts.MultipartMemory,
	}
}

// Transcribe buffers the payload to a temp file, sends it to the
// transcription service and returns the result. The temp file is removed
// before Transcribe returns, whatever the outcome. On failure the result
// carries the error label and detail and err is one of the Err* kinds.
func (g *Gateway) Transcribe(ctx context.Context, audio model.UploadedAudio) (*model.TranscriptionResult, error) {
	text, err := g.transcribe(ctx, audio)
	if err != nil {
		return model.NewFailedResult(err), err
	}
	return model.NewTextResult(text), nil
}

func (g *Gateway) transcribe(ctx context.Context, audio model.UploadedAudio) (text string, err error) {
	start := time.Now()
	suffix := SuffixFor(audio.Filename, g.defaultSuffix)

	// declared size until the payload is on disk
	size := audio.Size
	var callElapsed time.Duration
	defer func() {
		g.report(ctx, audio.Filename, suffix, size, text, err, callElapsed, time.Since(start))
	}()

	tmp, err := WriteTempAudio(g.tempDir, suffix, audio.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrStorage, err)
	}
	defer tmp.Remove()

	if audio.Size > 0 && audio.Size != tmp.Size {
		logger.Warn("Upload size mismatch",
			zap.Int64("declared", audio.Size),
			zap.Int64("written", tmp.Size))
	}
	size = tmp.Size
	g.metrics.RecordUpload(size)

	callStart := time.Now()
	result, err := g.transcriber.Transcribe(ctx, tmp.Path)
	callElapsed = time.Since(callStart)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrTranscription, err)
	}

	if result == nil || strings.TrimSpace(result.Text) == "" {
		return "", fmt.Errorf("%w: the service returned no text", ErrEmptyTranscription)
	}

	return result.Text, nil
}

// report records metrics and publishes the request event
func (g *Gateway) report(ctx context.Context, filename, suffix string, size int64, text string, err error, callElapsed, elapsed time.Duration) {
	requestID := middleware.GetReqID(ctx)
	log := logger.With(
		zap.String("request_id", requestID),
		zap.String("suffix", suffix),
		zap.Int64("size", size),
		zap.Duration("elapsed", elapsed))

	if err != nil {
		log.Error("Transcription failed", zap.Error(err))
	} else {
		log.Info("Transcription completed", zap.Int("text_length", len(text)))
	}

	g.metrics.RecordTranscription(outcomeFor(err), callElapsed)

	if g.publisher == nil {
		return
	}

	event := queue.NewTranscriptionEvent(requestID, elapsed)
	event.Filename = filename
	event.Suffix = suffix
	event.Size = size
	event.Model = g.transcriber.Model()
	if err != nil {
		event.SetError(err)
	} else {
		event.SetCompleted(text)
	}

	if pubErr := g.publisher.PublishTranscription(context.WithoutCancel(ctx), event); pubErr != nil {
		log.Warn("Failed to publish transcription event", zap.Error(pubErr))
	}
}

func outcomeFor(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, ErrStorage):
		return metrics.OutcomeStorageError
	case errors.Is(err, ErrEmptyTranscription):
		return metrics.OutcomeEmptyResult
	default:
		return metrics.OutcomeAPIError
	}
}
