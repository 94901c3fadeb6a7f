package services

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/songyu/bugtrack/pkg/logger"
)

// StorageService is the file sink for bug attachments. It accepts raw bytes
// plus a desired name and returns a stable path string which is stored on
// the bug record verbatim; nothing re-checks the path at bug-write time.
type StorageService struct {
	dir string
}

func NewStorageService(dir string) *StorageService {
	return &StorageService{dir: dir}
}

// sanitizeFilename keeps letters, digits, space, dash, underscore and dot,
// dropping everything else.
func sanitizeFilename(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_', r == '.':
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// SaveUpload writes an attachment under the upload directory and returns its
// path. kind labels the attachment ("screenshot", "log") and prefixes the
// stored name together with a random id to avoid collisions.
func (s *StorageService) SaveUpload(data []byte, filename, kind string) (string, error) {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", err
	}

	safe := sanitizeFilename(filename)
	if safe == "" {
		safe = "upload"
	}

	stored := fmt.Sprintf("%s_%s_%s", kind, uuid.New().String()[:8], safe)
	path := filepath.Join(s.dir, stored)

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", err
	}

	logger.Info().Str("path", path).Int("bytes", len(data)).Msg("attachment saved")
	return path, nil
}
