package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runoshun/opus/internal/app"
	"github.com/runoshun/opus/internal/domain"
)

// newConfigTestFactory builds real containers whose config and data
// directories live under t.TempDir().
func newConfigTestFactory(t *testing.T) (Factory, string) {
	t.Helper()
	globalDir := t.TempDir()
	dataDir := t.TempDir()
	t.Setenv(app.SessionEnv, "")

	factory := func(ctx context.Context, opts app.Options) (*app.Container, error) {
		opts.GlobalDir = globalDir
		opts.DataDir = dataDir
		return app.New(ctx, opts)
	}
	return factory, globalDir
}

func writeGlobalConfig(t *testing.T, globalDir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(globalDir, domain.ConfigFileName), []byte(content), 0o600))
}

func TestConfigCommand_NoSubcommand_ShowsHelp(t *testing.T) {
	out, _, err := execute(nil, "config")

	require.NoError(t, err)
	assert.Contains(t, out, "Available Commands:")
	assert.Contains(t, out, "show")
	assert.Contains(t, out, "template")
	assert.Contains(t, out, "init")
	assert.Contains(t, out, "identity")
}

func TestConfigShow(t *testing.T) {
	factory, globalDir := newConfigTestFactory(t)
	writeGlobalConfig(t, globalDir, "[sync]\ndelay = \"250ms\"\n\n[persist]\nformat = \"yaml\"\n")

	out := mustExecute(t, factory, "config", "show", "--session", "work")

	assert.Contains(t, out, "[Loaded from]")
	assert.Contains(t, out, filepath.Join(globalDir, domain.ConfigFileName))
	assert.NotContains(t, out, "(not found)")
	assert.Contains(t, out, "[Session]")
	assert.Contains(t, out, "name: work")
	assert.Contains(t, out, "[Effective Config]")
	assert.Contains(t, out, "250ms")
	assert.Contains(t, out, "yaml")
}

func TestConfigShow_MissingGlobal(t *testing.T) {
	factory, _ := newConfigTestFactory(t)

	out := mustExecute(t, factory, "config", "show")

	assert.Contains(t, out, "(not found)")
	assert.Contains(t, out, "name: "+domain.DefaultSession)
}

func TestConfigShow_UnknownKeysWarn(t *testing.T) {
	factory, globalDir := newConfigTestFactory(t)
	writeGlobalConfig(t, globalDir, "[colors]\nprimary = \"red\"\n")

	_, stderr, err := execute(factory, "config", "show")

	require.NoError(t, err)
	assert.Contains(t, stderr, "Warning: unknown section: colors")
}

func TestConfigTemplate(t *testing.T) {
	out := mustExecute(t, nil, "config", "template")

	assert.Contains(t, out, "[sync]")
	assert.Contains(t, out, "[persist]")
	assert.Contains(t, out, `backend = "file"`)
}

func TestConfigInit(t *testing.T) {
	factory, globalDir := newConfigTestFactory(t)

	out := mustExecute(t, factory, "config", "init")

	path := filepath.Join(globalDir, domain.ConfigFileName)
	assert.Contains(t, out, "Created config: "+path)
	assert.FileExists(t, path)

	_, _, err := execute(factory, "config", "init")
	assert.ErrorIs(t, err, domain.ErrConfigExists)
}

func TestConfigIdentity(t *testing.T) {
	path := filepath.Join(t.TempDir(), "identity.txt")

	out := mustExecute(t, nil, "config", "identity", path)

	assert.Contains(t, out, "Public key: age1")
	assert.FileExists(t, path)

	_, _, err := execute(nil, "config", "identity", path)
	assert.Error(t, err, "an existing identity is never overwritten")
}

func TestSessionsCommand(t *testing.T) {
	factory, globalDir := newConfigTestFactory(t)
	writeGlobalConfig(t, globalDir, "[sync]\ndelay = \"1ms\"\n")

	out := mustExecute(t, factory, "sessions")
	assert.Equal(t, "No sessions found\n", out)

	mustExecute(t, factory, "--session", "work", "add", "--name", "Release")
	mustExecute(t, factory, "--session", "home", "add", "--name", "Groceries")

	out = mustExecute(t, factory, "--session", "work", "sessions")
	assert.Equal(t, "  home\n* work\n", out)

	out = mustExecute(t, factory, "--session", "work", "list")
	assert.Contains(t, out, "Release")
	assert.NotContains(t, out, "Groceries")
}
