package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/runoshun/opus/internal/app"
	"github.com/runoshun/opus/internal/domain"
	"github.com/runoshun/opus/internal/infra/gitstore"
)

// newSessionsCommand creates the sessions command.
func newSessionsCommand(factory Factory, global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sessions",
		Short: "List stored sessions",
		Long: `List the sessions that have stored state in the configured backend.
The active session is marked with "*".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, factory, global, func(c *app.Container) error {
				sessions, err := listSessions(c)
				if err != nil {
					return err
				}

				w := cmd.OutOrStdout()
				if len(sessions) == 0 {
					_, _ = fmt.Fprintln(w, "No sessions found")
					return nil
				}
				for _, s := range sessions {
					marker := " "
					if s == c.Paths.Session {
						marker = "*"
					}
					_, _ = fmt.Fprintf(w, "%s %s\n", marker, s)
				}
				return nil
			})
		},
	}
}

// listSessions returns the stored session names in sorted order.
func listSessions(c *app.Container) ([]string, error) {
	var sessions []string
	switch backend := c.Backend.(type) {
	case nil:
		return nil, nil
	case *gitstore.Store:
		names, err := backend.Sessions()
		if err != nil {
			return nil, err
		}
		sessions = names
	default:
		root := domain.SessionsDir(c.Paths.DataDir)
		entries, err := os.ReadDir(root)
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read sessions: %w", err)
		}
		for _, e := range entries {
			if !e.IsDir() {
				continue
			}
			// Opening a session creates its directory; only a snapshot makes it stored.
			if _, err := os.Stat(filepath.Join(root, e.Name(), domain.SnapshotKey)); err == nil {
				sessions = append(sessions, e.Name())
			}
		}
	}
	sort.Strings(sessions)
	return sessions, nil
}
