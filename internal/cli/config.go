package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"github.com/runoshun/opus/internal/app"
	"github.com/runoshun/opus/internal/domain"
	"github.com/runoshun/opus/internal/infra/config"
	"github.com/runoshun/opus/internal/infra/snapshot"
)

// newConfigCommand creates the config command.
func newConfigCommand(factory Factory, global *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long:  `Manage opus configuration files and settings.`,
		// No RunE: shows subcommand list when called without arguments
	}

	cmd.AddCommand(newConfigShowCommand(factory, global))
	cmd.AddCommand(newConfigTemplateCommand())
	cmd.AddCommand(newConfigInitCommand(factory, global))
	cmd.AddCommand(newConfigIdentityCommand())

	return cmd
}

// newConfigShowCommand creates the config show subcommand.
func newConfigShowCommand(factory Factory, global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display effective configuration",
		Long: `Display effective configuration after merging all sources.

Shows which config files were loaded, where the active session is
stored and the final merged configuration.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, factory, global, func(c *app.Container) error {
				w := cmd.OutOrStdout()

				_, _ = fmt.Fprintln(w, "[Loaded from]")
				if c.ConfigLoader != nil {
					printConfigSource(w, config.GetInfo(c.ConfigLoader.GlobalPath()))
				}
				if global.ConfigPath != "" {
					printConfigSource(w, config.GetInfo(global.ConfigPath))
				}
				_, _ = fmt.Fprintln(w)

				_, _ = fmt.Fprintln(w, "[Session]")
				_, _ = fmt.Fprintf(w, "name: %s\n", c.Paths.Session)
				_, _ = fmt.Fprintf(w, "backend: %s\n", c.AppConfig.Persist.Backend)
				if c.AppConfig.Persist.Backend == domain.BackendFile {
					_, _ = fmt.Fprintf(w, "dir: %s\n", c.Paths.SessionDir)
				}
				_, _ = fmt.Fprintln(w)

				_, _ = fmt.Fprintln(w, "[Effective Config]")
				return formatEffectiveConfig(w, c.AppConfig)
			})
		},
	}
}

func printConfigSource(w io.Writer, info config.Info) {
	if info.Path == "" {
		return
	}
	if info.Exists {
		_, _ = fmt.Fprintf(w, "- %s\n", info.Path)
	} else {
		_, _ = fmt.Fprintf(w, "- %s (not found)\n", info.Path)
	}
}

// formatEffectiveConfig formats the effective config in TOML format.
// Durations are written as strings so the output loads back unchanged.
func formatEffectiveConfig(w io.Writer, cfg *domain.Config) error {
	persist := map[string]any{
		"backend":     cfg.Persist.Backend,
		"session":     cfg.Persist.Session,
		"format":      cfg.Persist.Format,
		"compression": cfg.Persist.Compression,
		"debounce":    cfg.Persist.Debounce.String(),
	}
	if cfg.Persist.IdentityFile != "" {
		persist["identity_file"] = cfg.Persist.IdentityFile
	}
	if cfg.Persist.GitRepo != "" {
		persist["git_repo"] = cfg.Persist.GitRepo
	}

	output := map[string]any{
		"sync": map[string]any{
			"delay":     cfg.Sync.Delay.String(),
			"fail_rate": cfg.Sync.FailRate,
		},
		"persist": persist,
		"log": map[string]any{
			"level": cfg.Log.Level,
		},
		"tui": map[string]any{
			"show_description": cfg.TUI.ShowDescription,
		},
	}

	if err := toml.NewEncoder(w).Encode(output); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// newConfigTemplateCommand creates the config template subcommand.
func newConfigTemplateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "template",
		Short: "Output configuration template",
		Long: `Output a commented configuration file with default values to stdout.

It does not read any configuration file, so it works even when the
existing one is broken.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, _ = fmt.Fprint(cmd.OutOrStdout(), domain.RenderConfigTemplate(domain.NewDefaultConfig()))
			return nil
		},
	}
}

// newConfigInitCommand creates the config init subcommand.
func newConfigInitCommand(factory Factory, global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the global config file",
		Long: `Write the configuration template to the global config path
($XDG_CONFIG_HOME/opus/config.toml). An existing file is left untouched.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, factory, global, func(c *app.Container) error {
				if c.ConfigManager == nil {
					return errors.New("config manager not available")
				}
				path, err := c.ConfigManager.InitGlobalConfig(domain.NewDefaultConfig())
				if errors.Is(err, domain.ErrConfigExists) {
					return fmt.Errorf("%w: %s", err, path)
				}
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created config: %s\n", path)
				return nil
			})
		},
	}
}

// newConfigIdentityCommand creates the config identity subcommand.
func newConfigIdentityCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "identity <path>",
		Short: "Generate an encryption identity",
		Long: `Generate an age identity file for encrypting session snapshots.

Point persist.identity_file at the new file to encrypt every snapshot
written afterwards. Snapshots written before stay readable.

Examples:
  opus config identity ~/.config/opus/identity.txt`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			recipient, err := snapshot.GenerateIdentity(args[0])
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(w, "Public key: %s\n", recipient)
			_, _ = fmt.Fprintf(w, "Set identity_file = %q in [persist] to enable encryption\n", args[0])
			return nil
		},
	}
}
