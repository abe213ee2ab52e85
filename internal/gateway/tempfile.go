package gateway

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"iuris/pkg/logger"

	"go.uber.org/zap"
)

const (
	DefaultSuffix = ".webm"
	tempPattern   = "transcribe-*"
	maxSuffixLen  = 10
)

// TempAudioFile is the request-scoped copy of an uploaded payload
type TempAudioFile struct {
	Path   string
	Suffix string
	Size   int64
}

// SuffixFor returns the lower-cased extension of filename, or fallback
// when the name has no usable extension.
func SuffixFor(filename, fallback string) string {
	if fallback == "" {
		fallback = DefaultSuffix
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if len(ext) < 2 || len(ext) > maxSuffixLen {
		return fallback
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return fallback
		}
	}
	return ext
}

// WriteTempAudio copies r into a new file in dir (os.TempDir when empty)
// whose name ends with suffix. Nothing is left on disk when it fails.
func WriteTempAudio(dir, suffix string, r io.Reader) (*TempAudioFile, error) {
	f, err := os.CreateTemp(dir, tempPattern+suffix)
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}

	tmp := &TempAudioFile{Path: f.Name(), Suffix: suffix}

	n, err := io.Copy(f, r)
	if err != nil {
		f.Close()
		tmp.Remove()
		return nil, fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := f.Close(); err != nil {
		tmp.Remove()
		return nil, fmt.Errorf("failed to close temp file: %w", err)
	}

	tmp.Size = n
	return tmp, nil
}

// Remove deletes the file. Errors are only logged.
func (t *TempAudioFile) Remove() {
	if t == nil || t.Path == "" {
		return
	}

	if err := os.Remove(t.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Debug("Failed to remove temp file",
			zap.String("path", t.Path),
			zap.Error(err))
	}
}
