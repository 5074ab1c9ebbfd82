// Package config provides configuration loading functionality.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/runoshun/opus/internal/domain"
)

// Loader loads configuration from TOML files.
type Loader struct {
	globalConfDir string // Path to global config directory (e.g., ~/.config/opus)
}

// NewLoader creates a new Loader using the XDG config directory.
func NewLoader() *Loader {
	return &Loader{globalConfDir: defaultGlobalConfigDir()}
}

// NewLoaderWithGlobalDir creates a new Loader with a custom global config directory.
// This is useful for testing.
func NewLoaderWithGlobalDir(globalConfDir string) *Loader {
	return &Loader{globalConfDir: globalConfDir}
}

// defaultGlobalConfigDir returns the default global config directory.
func defaultGlobalConfigDir() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return domain.GlobalConfigDir(configHome)
}

// GlobalPath returns the global config file path, or "" if unknown.
func (l *Loader) GlobalPath() string {
	if l.globalConfDir == "" {
		return ""
	}
	return filepath.Join(l.globalConfDir, domain.ConfigFileName)
}

// Load returns the merged configuration: default <- global <- explicit.
// A missing global file is not an error; a missing explicit file is.
func (l *Loader) Load(explicitPath string) (*domain.Config, error) {
	cfg := domain.NewDefaultConfig()

	if path := l.GlobalPath(); path != "" {
		global, err := loadFile(path)
		switch {
		case err == nil:
			global.applyTo(cfg)
		case !errors.Is(err, os.ErrNotExist):
			return nil, fmt.Errorf("load global config: %w", err)
		}
	}

	if explicitPath != "" {
		explicit, err := loadFile(explicitPath)
		if err != nil {
			return nil, fmt.Errorf("load config %s: %w", explicitPath, err)
		}
		explicit.applyTo(cfg)
	}

	sort.Strings(cfg.Warnings)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// fileConfig holds the values present in one file. Nil means unset,
// so an explicit false or zero still overrides an earlier source.
type fileConfig struct {
	syncDelay       *time.Duration
	failRate        *float64
	backend         *string
	session         *string
	format          *string
	compression     *string
	identityFile    *string
	gitRepo         *string
	debounce        *time.Duration
	logLevel        *string
	showDescription *bool
	warnings        []string
}

func (f *fileConfig) applyTo(cfg *domain.Config) {
	setIf(&cfg.Sync.Delay, f.syncDelay)
	setIf(&cfg.Sync.FailRate, f.failRate)
	setIf(&cfg.Persist.Backend, f.backend)
	setIf(&cfg.Persist.Session, f.session)
	setIf(&cfg.Persist.Format, f.format)
	setIf(&cfg.Persist.Compression, f.compression)
	setIf(&cfg.Persist.IdentityFile, f.identityFile)
	setIf(&cfg.Persist.GitRepo, f.gitRepo)
	setIf(&cfg.Persist.Debounce, f.debounce)
	setIf(&cfg.Log.Level, f.logLevel)
	setIf(&cfg.TUI.ShowDescription, f.showDescription)
	cfg.Warnings = append(cfg.Warnings, f.warnings...)
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// loadFile loads a configuration from a file.
func loadFile(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	return convertRaw(raw), nil
}

// convertRaw converts the raw map to a fileConfig and collects warnings.
func convertRaw(raw map[string]any) *fileConfig {
	res := &fileConfig{}
	var warnings []string
	warn := func(format string, args ...any) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	}

	for section, value := range raw {
		m, ok := value.(map[string]any)
		if !ok {
			warn("unknown key: %s", section)
			continue
		}
		switch section {
		case "sync":
			for k, v := range m {
				switch k {
				case "delay":
					res.syncDelay = durationValue(v, "sync.delay", warn)
				case "fail_rate":
					res.failRate = floatValue(v, "sync.fail_rate", warn)
				default:
					warn("unknown key in [sync]: %s", k)
				}
			}
		case "persist":
			for k, v := range m {
				switch k {
				case "backend":
					res.backend = stringValue(v, "persist.backend", warn)
				case "session":
					res.session = stringValue(v, "persist.session", warn)
				case "format":
					res.format = stringValue(v, "persist.format", warn)
				case "compression":
					res.compression = stringValue(v, "persist.compression", warn)
				case "identity_file":
					res.identityFile = stringValue(v, "persist.identity_file", warn)
				case "git_repo":
					res.gitRepo = stringValue(v, "persist.git_repo", warn)
				case "debounce":
					res.debounce = durationValue(v, "persist.debounce", warn)
				default:
					warn("unknown key in [persist]: %s", k)
				}
			}
		case "log":
			for k, v := range m {
				switch k {
				case "level":
					res.logLevel = stringValue(v, "log.level", warn)
				default:
					warn("unknown key in [log]: %s", k)
				}
			}
		case "tui":
			for k, v := range m {
				switch k {
				case "show_description":
					if b, ok := v.(bool); ok {
						res.showDescription = &b
					} else {
						warn("invalid value for tui.show_description: %v", v)
					}
				default:
					warn("unknown key in [tui]: %s", k)
				}
			}
		default:
			warn("unknown section: %s", section)
		}
	}

	res.warnings = warnings
	return res
}

func stringValue(v any, name string, warn func(string, ...any)) *string {
	s, ok := v.(string)
	if !ok {
		warn("invalid value for %s: %v", name, v)
		return nil
	}
	return &s
}

func floatValue(v any, name string, warn func(string, ...any)) *float64 {
	switch n := v.(type) {
	case float64:
		return &n
	case int64:
		f := float64(n)
		return &f
	}
	warn("invalid value for %s: %v", name, v)
	return nil
}

// durationValue accepts Go duration strings ("2.5s") or integer milliseconds.
func durationValue(v any, name string, warn func(string, ...any)) *time.Duration {
	switch d := v.(type) {
	case string:
		parsed, err := time.ParseDuration(d)
		if err == nil {
			return &parsed
		}
	case int64:
		parsed := time.Duration(d) * time.Millisecond
		return &parsed
	}
	warn("invalid value for %s: %v", name, v)
	return nil
}
