package domain

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	assert.Equal(t, DefaultSyncDelay, cfg.Sync.Delay)
	assert.Equal(t, DefaultPersistDebounce, cfg.Persist.Debounce)
	assert.Equal(t, BackendFile, cfg.Persist.Backend)
	assert.Equal(t, FormatJSON, cfg.Persist.Format)
	assert.NoError(t, cfg.Validate())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"bad backend", func(c *Config) { c.Persist.Backend = "s3" }, ErrUnknownBackend},
		{"bad format", func(c *Config) { c.Persist.Format = "xml" }, ErrUnknownFormat},
		{"bad compression", func(c *Config) { c.Persist.Compression = "gzip" }, ErrUnknownCompression},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}

	cfg := NewDefaultConfig()
	cfg.Sync.FailRate = 1.5
	assert.Error(t, cfg.Validate())
}

func TestRenderConfigTemplate(t *testing.T) {
	content := RenderConfigTemplate(NewDefaultConfig())

	assert.Contains(t, content, `backend = "file"`)
	assert.Contains(t, content, `debounce = "2.5s"`)
	assert.Contains(t, content, `delay = "1s"`)
	assert.True(t, strings.Contains(content, "show_description = true"))
}

func TestSessionDir(t *testing.T) {
	got := SessionDir("/data/opus", "work")
	assert.Equal(t, "/data/opus/sessions/work", got)
	assert.Equal(t, "/data/opus/logs/task-7.log", TaskLogPath("/data/opus", 7))
}
