package media

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestParseMeta(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		want  Meta
	}{
		{"full", []string{"1920", "1080", "613.480000"}, Meta{1920, 1080, 613}},
		{"no duration", []string{"1280", "720"}, Meta{1280, 720, 0}},
		{"garbage duration", []string{"1280", "720", "N/A"}, Meta{1280, 720, 0}},
		{"empty", []string{""}, Meta{}},
		{"nothing", nil, Meta{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseMeta(tt.lines))
		})
	}
}

func TestRemoveFiles(t *testing.T) {
	dir := t.TempDir()
	f := filepath.Join(dir, "a.mp4")
	require.NoError(t, os.WriteFile(f, []byte("x"), 0o644))

	// Existing, missing and empty paths are all fine.
	RemoveFiles(zap.NewNop().Sugar(), f, filepath.Join(dir, "gone.jpg"), "")

	_, err := os.Stat(f)
	assert.True(t, os.IsNotExist(err))
}
