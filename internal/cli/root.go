// Package cli provides the command-line interface for opus.
package cli

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/runoshun/opus/internal/app"
	"github.com/runoshun/opus/internal/tui"
)

// Command group IDs.
const (
	groupSetup = "setup"
	groupTask  = "task"
)

// Factory builds the container for one command invocation.
type Factory func(ctx context.Context, opts app.Options) (*app.Container, error)

// globalOptions holds the persistent flags shared by every command.
type globalOptions struct {
	Session    string
	ConfigPath string
}

// launchTUIFunc is a function variable for launching the TUI, allowing it to be mocked in tests.
var launchTUIFunc = func(c *app.Container) error {
	return tui.Run(c, tea.WithAltScreen())
}

// NewRootCommand creates the root command for opus.
// Each command builds its own container through factory.
func NewRootCommand(factory Factory, version string) *cobra.Command {
	global := &globalOptions{}

	root := &cobra.Command{
		Use:   "opus",
		Short: "Hierarchical task list",
		Long: `opus keeps a tree of tasks. A task can sit under several parents,
moves through open, waiting, work in progress, finished and cancelled,
and is synced in the background after it is created.

Running opus without a subcommand opens the interactive task list.
State is saved per session; pick one with --session or OPUS_SESSION.`,
		Version: version,
		// SilenceUsage prevents usage from being printed on errors
		SilenceUsage: true,
		// SilenceErrors prevents Cobra from printing errors (we handle it in main)
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd, factory, global)
		},
	}

	root.PersistentFlags().StringVar(&global.Session, "session", "", "Session name (default: $"+app.SessionEnv+" or config)")
	root.PersistentFlags().StringVar(&global.ConfigPath, "config", "", "Additional config file merged over the global one")

	// Define command groups
	root.AddGroup(
		&cobra.Group{ID: groupSetup, Title: "Setup Commands:"},
		&cobra.Group{ID: groupTask, Title: "Task Management:"},
	)

	// Setup commands
	configCmd := newConfigCommand(factory, global)
	configCmd.GroupID = groupSetup

	sessionsCmd := newSessionsCommand(factory, global)
	sessionsCmd.GroupID = groupSetup

	// Task management commands
	addCmd := newAddCommand(factory, global)
	addCmd.GroupID = groupTask

	listCmd := newListCommand(factory, global)
	listCmd.GroupID = groupTask

	showCmd := newShowCommand(factory, global)
	showCmd.GroupID = groupTask

	doneCmd := newDoneCommand(factory, global)
	doneCmd.GroupID = groupTask

	reopenCmd := newReopenCommand(factory, global)
	reopenCmd.GroupID = groupTask

	stateCmd := newStateCommand(factory, global)
	stateCmd.GroupID = groupTask

	rmCmd := newRmCommand(factory, global)
	rmCmd.GroupID = groupTask

	tuiCmd := newTUICommand(factory, global)
	tuiCmd.GroupID = groupTask

	// Add subcommands
	root.AddCommand(
		configCmd,
		sessionsCmd,
		addCmd,
		listCmd,
		showCmd,
		doneCmd,
		reopenCmd,
		stateCmd,
		rmCmd,
		tuiCmd,
	)

	return root
}
