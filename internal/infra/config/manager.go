package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/runoshun/opus/internal/domain"
)

// Info describes a configuration file.
type Info struct {
	Path    string
	Content string
	Exists  bool
}

// Manager manages configuration files.
type Manager struct {
	globalConfDir string // Path to global config directory (e.g., ~/.config/opus)
}

// NewManager creates a new Manager.
func NewManager() *Manager {
	return &Manager{globalConfDir: defaultGlobalConfigDir()}
}

// NewManagerWithGlobalDir creates a new Manager with a custom global config directory.
// This is useful for testing.
func NewManagerWithGlobalDir(globalConfDir string) *Manager {
	return &Manager{globalConfDir: globalConfDir}
}

// GetGlobalConfigInfo returns information about the global config file.
func (m *Manager) GetGlobalConfigInfo() Info {
	if m.globalConfDir == "" {
		return Info{}
	}
	return GetInfo(filepath.Join(m.globalConfDir, domain.ConfigFileName))
}

// GetInfo reads a config file and returns its info.
func GetInfo(path string) Info {
	content, err := os.ReadFile(path)
	if err != nil {
		return Info{Path: path, Exists: false}
	}
	return Info{
		Path:    path,
		Content: string(content),
		Exists:  true,
	}
}

// InitGlobalConfig writes the config template rendered from cfg.
// It returns domain.ErrConfigExists if the file is already there.
func (m *Manager) InitGlobalConfig(cfg *domain.Config) (string, error) {
	if m.globalConfDir == "" {
		return "", errors.New("global config directory not available")
	}
	if err := os.MkdirAll(m.globalConfDir, 0o700); err != nil {
		return "", fmt.Errorf("create config directory: %w", err)
	}
	path := filepath.Join(m.globalConfDir, domain.ConfigFileName)

	if _, err := os.Stat(path); err == nil {
		return path, domain.ErrConfigExists
	}

	content := domain.RenderConfigTemplate(cfg)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return "", fmt.Errorf("write config: %w", err)
	}
	return path, nil
}
