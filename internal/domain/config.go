package domain

import (
	"bytes"
	_ "embed"
	"fmt"
	"text/template"
	"time"
)

//go:embed config_template.toml
var configTemplateContent string

// Persistence backends.
const (
	BackendFile = "file"
	BackendGit  = "git"
	BackendNone = "none"
)

// Snapshot formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatCBOR = "cbor"
)

// Snapshot compression algorithms.
const (
	CompressionNone = "none"
	CompressionZstd = "zstd"
	CompressionLZ4  = "lz4"
)

// Default configuration values.
const (
	DefaultSyncDelay       = 1000 * time.Millisecond
	DefaultPersistDebounce = 2500 * time.Millisecond
)

// Config represents the application configuration.
// Fields are ordered to minimize memory padding.
type Config struct {
	Warnings []string      `toml:"-"`
	Persist  PersistConfig `toml:"persist"`
	Log      LogConfig     `toml:"log"`
	Sync     SyncConfig    `toml:"sync"`
	TUI      TUIConfig     `toml:"tui"`
}

// SyncConfig holds settings for the simulated backend sync from [sync] section.
type SyncConfig struct {
	Delay    time.Duration `toml:"delay"`     // Wait before a task counts as synced
	FailRate float64       `toml:"fail_rate"` // Probability in [0,1] that a sync fails
}

// PersistConfig holds snapshot persistence settings from [persist] section.
type PersistConfig struct {
	Backend      string        `toml:"backend"`       // file, git or none
	Session      string        `toml:"session"`       // default session name
	Format       string        `toml:"format"`        // json, yaml or cbor
	Compression  string        `toml:"compression"`   // none, zstd or lz4
	IdentityFile string        `toml:"identity_file"` // age identity; enables encryption when set
	GitRepo      string        `toml:"git_repo"`      // repository used by the git backend
	Debounce     time.Duration `toml:"debounce"`      // Quiet period before a snapshot is written
}

// LogConfig holds logging settings from [log] section.
type LogConfig struct {
	Level string `toml:"level"` // Log level: debug, info, warn, error
}

// TUIConfig holds TUI settings from [tui] section.
type TUIConfig struct {
	ShowDescription bool `toml:"show_description"`
}

// NewDefaultConfig returns a Config with default values.
func NewDefaultConfig() *Config {
	return &Config{
		Sync: SyncConfig{
			Delay: DefaultSyncDelay,
		},
		Persist: PersistConfig{
			Backend:     BackendFile,
			Session:     DefaultSession,
			Format:      FormatJSON,
			Compression: CompressionNone,
			Debounce:    DefaultPersistDebounce,
		},
		Log: LogConfig{
			Level: "info",
		},
		TUI: TUIConfig{
			ShowDescription: true,
		},
	}
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	switch c.Persist.Backend {
	case BackendFile, BackendGit, BackendNone:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBackend, c.Persist.Backend)
	}
	switch c.Persist.Format {
	case FormatJSON, FormatYAML, FormatCBOR:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, c.Persist.Format)
	}
	switch c.Persist.Compression {
	case CompressionNone, CompressionZstd, CompressionLZ4:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCompression, c.Persist.Compression)
	}
	if c.Sync.Delay < 0 || c.Persist.Debounce < 0 {
		return fmt.Errorf("sync.delay and persist.debounce must not be negative")
	}
	if c.Sync.FailRate < 0 || c.Sync.FailRate > 1 {
		return fmt.Errorf("sync.fail_rate must be within [0,1], got %v", c.Sync.FailRate)
	}
	return nil
}

// templateData holds data for rendering the config template.
type templateData struct {
	Backend         string
	Session         string
	Format          string
	Compression     string
	LogLevel        string
	SyncDelay       string
	Debounce        string
	ShowDescription bool
}

// RenderConfigTemplate renders a commented config file from cfg.
func RenderConfigTemplate(cfg *Config) string {
	data := templateData{
		Backend:         cfg.Persist.Backend,
		Session:         cfg.Persist.Session,
		Format:          cfg.Persist.Format,
		Compression:     cfg.Persist.Compression,
		LogLevel:        cfg.Log.Level,
		SyncDelay:       cfg.Sync.Delay.String(),
		Debounce:        cfg.Persist.Debounce.String(),
		ShowDescription: cfg.TUI.ShowDescription,
	}

	tmpl, err := template.New("config").Delims("<<", ">>").Parse(configTemplateContent)
	if err != nil {
		// Should never happen with embedded template
		panic(fmt.Sprintf("failed to parse config template: %v", err))
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		panic(fmt.Sprintf("failed to execute config template: %v", err))
	}
	return buf.String()
}
