package services

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"screenshot.png", "screenshot.png"},
		{"my log file.txt", "my log file.txt"},
		{"../../etc/passwd", "....etcpasswd"},
		{"a/b\\c:d.log", "abcd.log"},
		{"报告.png", ".png"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := sanitizeFilename(tt.in); got != tt.want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSaveUpload(t *testing.T) {
	dir := t.TempDir()
	svc := NewStorageService(filepath.Join(dir, "uploads"))

	data := []byte("not really a png")
	path, err := svc.SaveUpload(data, "crash.png", "screenshot")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(filepath.Base(path), "screenshot_"))
	assert.True(t, strings.HasSuffix(path, "crash.png"))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, data, got)

	// Same name twice must not collide.
	other, err := svc.SaveUpload(data, "crash.png", "screenshot")
	require.NoError(t, err)
	assert.NotEqual(t, path, other)
}

func TestSaveUpload_EmptySanitizedName(t *testing.T) {
	svc := NewStorageService(t.TempDir())

	path, err := svc.SaveUpload([]byte("x"), "///", "log")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, "upload"), "fully stripped names fall back to a default")
}
