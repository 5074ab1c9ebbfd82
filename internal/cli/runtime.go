package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/runoshun/opus/internal/app"
)

// withContainer builds a container, runs fn and shuts the container down.
// Shutdown waits for in-flight syncs and writes the final snapshot, so a
// task added by a one-shot command is saved in its synced form.
func withContainer(cmd *cobra.Command, factory Factory, global *globalOptions, logOutput io.Writer, fn func(c *app.Container) error) (err error) {
	if factory == nil {
		return errors.New("no container factory configured")
	}

	c, err := factory(cmd.Context(), app.Options{
		LogOutput:  logOutput,
		ConfigPath: global.ConfigPath,
		Session:    global.Session,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}

	for _, w := range c.AppConfig.Warnings {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s\n", w)
	}

	defer func() {
		if shutdownErr := c.Shutdown(cmd.Context()); shutdownErr != nil {
			err = errors.Join(err, fmt.Errorf("shutdown: %w", shutdownErr))
		}
	}()

	return fn(c)
}

// run is withContainer for one-shot commands, which log to stderr.
func run(cmd *cobra.Command, factory Factory, global *globalOptions, fn func(c *app.Container) error) error {
	return withContainer(cmd, factory, global, cmd.ErrOrStderr(), fn)
}
