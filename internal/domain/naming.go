package domain

import (
	"fmt"
	"path/filepath"
)

// Directory and file names for opus.
const (
	AppDirName      = "opus"
	ConfigFileName  = "config.toml"
	SnapshotKey     = "opus_store" // Fixed storage key for the state tree
	DefaultSession  = "default"
	sessionsDirName = "sessions"
	logsDirName     = "logs"
	globalLogName   = "opus.log"
)

// GlobalConfigDir returns the opus config directory.
// configHome is typically XDG_CONFIG_HOME or ~/.config (resolved by caller).
func GlobalConfigDir(configHome string) string {
	return filepath.Join(configHome, AppDirName)
}

// GlobalConfigPath returns the global config path.
func GlobalConfigPath(configHome string) string {
	return filepath.Join(GlobalConfigDir(configHome), ConfigFileName)
}

// DataDir returns the opus data directory.
// dataHome is typically XDG_DATA_HOME or ~/.local/share.
func DataDir(dataHome string) string {
	return filepath.Join(dataHome, AppDirName)
}

// SessionsDir returns the directory that holds every session.
func SessionsDir(dataDir string) string {
	return filepath.Join(dataDir, sessionsDirName)
}

// SessionDir returns the directory that holds one session's snapshots.
func SessionDir(dataDir, session string) string {
	return filepath.Join(SessionsDir(dataDir), session)
}

// GlobalLogPath returns the path to the global log file.
func GlobalLogPath(dataDir string) string {
	return filepath.Join(dataDir, logsDirName, globalLogName)
}

// TaskLogPath returns the path to the task log file.
func TaskLogPath(dataDir string, id TaskID) string {
	return filepath.Join(dataDir, logsDirName, fmt.Sprintf("task-%d.log", id))
}

// LogsDir returns the log directory.
func LogsDir(dataDir string) string {
	return filepath.Join(dataDir, logsDirName)
}
