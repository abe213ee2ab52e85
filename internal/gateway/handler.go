package gateway

import (
	"encoding/json"
	"fmt"
	"net/http"

	"iuris/pkg/logger"
	"iuris/pkg/metrics"
	"iuris/pkg/model"

	"go.uber.org/zap"
)

const (
	audioField    = "audio"
	filenameField = "filename"
)

// HandleTranscribe serves POST multipart uploads with a required "audio"
// file field and an optional "filename" field.
func (g *Gateway) HandleTranscribe(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(g.multipartMemory); err != nil {
		g.rejectUpload(w, fmt.Errorf("invalid multipart form: %w", err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile(audioField)
	if err != nil {
		g.rejectUpload(w, fmt.Errorf("missing %q file field: %w", audioField, err))
		return
	}
	defer file.Close()

	filename := r.FormValue(filenameField)
	if filename == "" {
		filename = header.Filename
	}

	result, err := g.Transcribe(r.Context(), model.UploadedAudio{
		Body:     file,
		Filename: filename,
		Size:     header.Size,
	})
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, result.Body())
		return
	}

	writeJSON(w, http.StatusOK, result.Body())
}

func (g *Gateway) rejectUpload(w http.ResponseWriter, err error) {
	logger.Warn("Rejected upload", zap.Error(err))
	g.metrics.RecordTranscription(metrics.OutcomeInvalidUpload, 0)
	writeJSON(w, http.StatusBadRequest, model.NewErrorResponse(err))
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Debug("Failed to write response", zap.Error(err))
	}
}
