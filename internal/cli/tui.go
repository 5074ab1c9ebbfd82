package cli

import (
	"github.com/spf13/cobra"

	"github.com/runoshun/opus/internal/app"
)

// newTUICommand creates the tui command.
func newTUICommand(factory Factory, global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Launch interactive TUI",
		Long: `Launch the interactive task list.

Tasks left mid-sync by an earlier run are synced again on start.
The session snapshot is written when you quit.

Keybindings:
  j/k or arrows  Move between tasks
  space/x        Toggle finished
  s              Cycle state
  n              New task
  a              New sub-task of the selected task
  d              Delete task
  ?              Show all keybindings
  q              Quit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd, factory, global)
		},
	}
}

// runTUI opens the TUI on a container whose logs stay off the terminal.
func runTUI(cmd *cobra.Command, factory Factory, global *globalOptions) error {
	return withContainer(cmd, factory, global, nil, func(c *app.Container) error {
		err := launchTUIFunc(c)
		// Syncs still running when the user quits are resumed next time.
		c.Runner.Close()
		return err
	})
}
