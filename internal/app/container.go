// Package app provides the dependency injection container for the application.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/runoshun/opus/internal/domain"
	"github.com/runoshun/opus/internal/effect"
	"github.com/runoshun/opus/internal/infra/config"
	"github.com/runoshun/opus/internal/infra/filestore"
	"github.com/runoshun/opus/internal/infra/gitstore"
	"github.com/runoshun/opus/internal/infra/logging"
	"github.com/runoshun/opus/internal/infra/persist"
	"github.com/runoshun/opus/internal/infra/snapshot"
	"github.com/runoshun/opus/internal/store"
	"github.com/runoshun/opus/internal/usecase"
)

// SessionEnv names the environment variable that selects the session.
const SessionEnv = "OPUS_SESSION"

// Options controls how New builds the container.
type Options struct {
	LogOutput  io.Writer // slog output; nil discards
	ConfigPath string    // Explicit config file, merged over the global one
	Session    string    // Session name; falls back to OPUS_SESSION, then config
	DataDir    string    // Overrides the XDG data directory
	GlobalDir  string    // Overrides the global config directory
}

// Paths holds the resolved filesystem locations for a session.
type Paths struct {
	DataDir    string // Root data directory (e.g., ~/.local/share/opus)
	SessionDir string // Snapshot directory of the active session
	Session    string // Active session name
}

// Container provides dependency injection for the application.
// It holds all port implementations and provides factory methods for use cases.
type Container struct {
	// Ports (interfaces bound to implementations)
	Clock   domain.Clock
	IDClock domain.Clock         // Drives task id assignment; nil uses Clock
	Backend domain.SnapshotStore // nil when persistence is off
	TaskLog domain.Logger

	// Pointer fields
	Logger        *slog.Logger
	AppConfig     *domain.Config
	ConfigLoader  *config.Loader
	ConfigManager *config.Manager
	Store         *store.Store
	Persister     *persist.Persister
	Runner        *effect.Runner
	Sync          *effect.SyncEffect
	fileLog       *logging.Logger

	// Configuration
	Paths Paths
}

// New loads configuration, opens the session storage, restores the last
// snapshot and wires the sync effect and the persister to a fresh store.
func New(ctx context.Context, opts Options) (*Container, error) {
	loader := config.NewLoader()
	manager := config.NewManager()
	if opts.GlobalDir != "" {
		loader = config.NewLoaderWithGlobalDir(opts.GlobalDir)
		manager = config.NewManagerWithGlobalDir(opts.GlobalDir)
	}

	appConfig, err := loader.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	dataDir := opts.DataDir
	if dataDir == "" {
		dataDir, err = defaultDataDir()
		if err != nil {
			return nil, err
		}
	}
	session := resolveSession(opts.Session, appConfig)
	paths := Paths{
		DataDir:    dataDir,
		SessionDir: domain.SessionDir(dataDir, session),
		Session:    session,
	}

	output := opts.LogOutput
	if output == nil {
		output = io.Discard
	}
	logger := slog.New(slog.NewTextHandler(output, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
	fileLog := logging.New(dataDir, logging.ParseLevel(appConfig.Log.Level)).WithMirror(logger)

	codec, err := snapshot.New(snapshot.Options{
		Format:       appConfig.Persist.Format,
		Compression:  appConfig.Persist.Compression,
		IdentityFile: appConfig.Persist.IdentityFile,
	})
	if err != nil {
		_ = fileLog.Close()
		return nil, err
	}

	backend, err := openBackend(appConfig.Persist, paths)
	if err != nil {
		// Unreachable storage only disables persistence for this session.
		fileLog.Warn(0, "persist", fmt.Sprintf("session storage unavailable: %v", err))
		backend = nil
	}

	c := NewWithDeps(domain.RealClock{}, backend, codec, appConfig, fileLog, logger)
	c.ConfigLoader = loader
	c.ConfigManager = manager
	c.fileLog = fileLog
	c.Paths = paths
	c.Start(ctx)
	return c, nil
}

// NewWithDeps creates a Container around the given dependencies without
// touching the filesystem. Call Start to load the snapshot.
func NewWithDeps(clock domain.Clock, backend domain.SnapshotStore, codec *snapshot.Codec, appConfig *domain.Config, taskLog domain.Logger, logger *slog.Logger) *Container {
	if taskLog == nil {
		taskLog = domain.NopLogger{}
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if appConfig == nil {
		appConfig = domain.NewDefaultConfig()
	}

	persister := persist.New(backend, codec,
		persist.WithClock(clock),
		persist.WithLogger(taskLog),
		persist.WithDebounce(appConfig.Persist.Debounce),
	)
	runner := effect.NewRunner()
	syncer := effect.NewSimulatedSyncer(appConfig.Sync.FailRate)

	return &Container{
		Clock:     clock,
		Backend:   backend,
		TaskLog:   taskLog,
		Logger:    logger,
		AppConfig: appConfig,
		Persister: persister,
		Runner:    runner,
		Sync:      effect.NewSyncEffect(runner, syncer, clock, taskLog, appConfig.Sync.Delay),
	}
}

// Start restores the snapshot into a new store and attaches the effects.
func (c *Container) Start(ctx context.Context) {
	initial, _ := c.Persister.Load(ctx)
	idClock := c.IDClock
	if idClock == nil {
		idClock = c.Clock
	}
	c.Store = store.New(initial,
		store.WithClock(c.Clock),
		store.WithLogger(c.TaskLog),
		store.WithIDGenerator(store.NewIDGenerator(idClock, initial.MaxID())),
	)
	c.Store.RegisterEffect(c.Sync)
	c.Persister.Attach(c.Store)
}

// ResumeSync restarts sync sequences left unfinished by a previous run.
func (c *Container) ResumeSync() int {
	return c.Sync.Resync(c.Store, c.Store.State().Tasks.TaskList)
}

// Shutdown waits for running effects, writes any pending snapshot and
// releases resources. Effects still running when ctx ends are cancelled.
func (c *Container) Shutdown(ctx context.Context) error {
	var waitErr error
	if err := c.Runner.WaitContext(ctx); err != nil {
		waitErr = err
	}
	c.Runner.Close()

	flushCtx := context.WithoutCancel(ctx)
	err := c.Persister.Flush(flushCtx)
	c.Persister.Close()

	if c.fileLog != nil {
		_ = c.fileLog.Close()
	}
	if err != nil {
		return err
	}
	return waitErr
}

func openBackend(cfg domain.PersistConfig, paths Paths) (domain.SnapshotStore, error) {
	switch cfg.Backend {
	case domain.BackendNone:
		return nil, nil
	case domain.BackendGit:
		repo := cfg.GitRepo
		if repo == "" {
			repo = "."
		}
		return gitstore.New(repo, paths.Session)
	case domain.BackendFile, "":
		return filestore.New(paths.SessionDir), nil
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownBackend, cfg.Backend)
	}
}

func resolveSession(flag string, cfg *domain.Config) string {
	if flag != "" {
		return flag
	}
	if env := os.Getenv(SessionEnv); env != "" {
		return env
	}
	if cfg.Persist.Session != "" {
		return cfg.Persist.Session
	}
	return domain.DefaultSession
}

func defaultDataDir() (string, error) {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve data directory: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return domain.DataDir(dataHome), nil
}

// UseCase factory methods

// AddTaskUseCase returns a new AddTask use case.
func (c *Container) AddTaskUseCase() *usecase.AddTask {
	return usecase.NewAddTask(c.Store, c.TaskLog)
}

// ChangeTaskStateUseCase returns a new ChangeTaskState use case.
func (c *Container) ChangeTaskStateUseCase() *usecase.ChangeTaskState {
	return usecase.NewChangeTaskState(c.Store, c.TaskLog)
}

// ToggleTaskUseCase returns a new ToggleTask use case.
func (c *Container) ToggleTaskUseCase() *usecase.ToggleTask {
	return usecase.NewToggleTask(c.Store, c.TaskLog)
}

// RemoveTaskUseCase returns a new RemoveTask use case.
func (c *Container) RemoveTaskUseCase() *usecase.RemoveTask {
	return usecase.NewRemoveTask(c.Store, c.TaskLog)
}

// ListTasksUseCase returns a new ListTasks use case.
func (c *Container) ListTasksUseCase() *usecase.ListTasks {
	return usecase.NewListTasks(c.Store)
}

// ShowTaskUseCase returns a new ShowTask use case.
func (c *Container) ShowTaskUseCase() *usecase.ShowTask {
	return usecase.NewShowTask(c.Store)
}

// ImportTasksUseCase returns a new ImportTasks use case.
func (c *Container) ImportTasksUseCase() *usecase.ImportTasks {
	return usecase.NewImportTasks(c.Store, c.TaskLog)
}
