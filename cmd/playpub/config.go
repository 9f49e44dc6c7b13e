// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/playpub/playpub/internal/config"
	"github.com/playpub/playpub/internal/publish"
)

// newConfigCommand creates the `playpub config` command tree.
// Subcommands that read configuration use the App's config.Provider.
func newConfigCommand(app *App, root *rootOptions) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage playpub configuration",
		Long: `Manage playpub configuration.

Configuration is stored in:
  - Linux: ~/.config/playpub/config.cue
  - macOS: ~/Library/Application Support/playpub/config.cue
  - Windows: %APPDATA%\playpub\config.cue

A config.cue in the working directory is used when none of these exist.
PLAYPUB_* environment variables override file values; flags override both.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return showConfig(cmd.Context(), app, root)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		RunE: func(_ *cobra.Command, _ []string) error {
			return initConfig(app)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		RunE: func(_ *cobra.Command, _ []string) error {
			return showConfigPath(app)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long: `Set a configuration value and save it to the config file.

Keys: track, credentials_file, verbose, ui.color_scheme`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return setConfigValue(cmd.Context(), app, root, args[0], args[1])
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output raw configuration as CUE",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := app.Config.Load(cmd.Context(), config.LoadOptions{ConfigFilePath: root.configFile})
			if err != nil {
				return err
			}

			fmt.Fprint(app.stdout, config.GenerateCUE(cfg))
			return nil
		},
	})

	return cfgCmd
}

func showConfig(ctx context.Context, app *App, root *rootOptions) error {
	cfg, path, err := app.Config.Load(ctx, config.LoadOptions{ConfigFilePath: root.configFile})
	if err != nil {
		return err
	}

	w := app.stdout
	keyStyle := KeyStyle
	valueStyle := SuccessStyle

	fmt.Fprintln(w, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(w)

	if path != "" {
		fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config file"), path)
	} else {
		fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("track"), valueStyle.Render(cfg.Track.String()))
	if cfg.CredentialsFile != "" {
		fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("credentials_file"), valueStyle.Render(cfg.CredentialsFile))
	} else {
		fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("credentials_file"), SubtitleStyle.Render("(not set)"))
	}
	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("verbose"), valueStyle.Render(strconv.FormatBool(cfg.Verbose)))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("ui"))
	fmt.Fprintf(w, "  color_scheme: %s\n", valueStyle.Render(cfg.UI.ColorScheme.String()))

	return nil
}

func initConfig(app *App) error {
	cfgPath, created, err := config.CreateDefaultConfig("")
	if err != nil {
		return fmt.Errorf("failed to create config: %w", err)
	}

	if !created {
		fmt.Fprintf(app.stdout, "%s Configuration already exists at %s\n", WarningStyle.Render("!"), cfgPath)
		return nil
	}

	fmt.Fprintf(app.stdout, "%s Created default configuration at %s\n", SuccessStyle.Render("✓"), cfgPath)
	return nil
}

func showConfigPath(app *App) error {
	cfgDir, err := config.ConfigDir()
	if err != nil {
		return err
	}
	cfgPath, err := config.FilePath(cfgDir)
	if err != nil {
		return err
	}

	fmt.Fprintf(app.stdout, "Config directory: %s\n", cfgDir)
	fmt.Fprintf(app.stdout, "Config file: %s\n", cfgPath)
	return nil
}

func setConfigValue(ctx context.Context, app *App, root *rootOptions, key, value string) error {
	cfg, _, err := app.Config.Load(ctx, config.LoadOptions{ConfigFilePath: root.configFile})
	if err != nil {
		return err
	}

	switch key {
	case "track":
		track, err := publish.ParseTrack(value)
		if err != nil {
			return err
		}
		cfg.Track = track
	case "credentials_file":
		cfg.CredentialsFile = value
	case "verbose":
		verbose, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid value for verbose: %q (expected true or false)", value)
		}
		cfg.Verbose = verbose
	case "ui.color_scheme":
		scheme := config.ColorScheme(value)
		if ok, errs := scheme.IsValid(); !ok {
			return errs[0]
		}
		cfg.UI.ColorScheme = scheme
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}

	if err := config.Save(cfg, ""); err != nil {
		return err
	}

	fmt.Fprintf(app.stdout, "%s Set %s = %s\n", SuccessStyle.Render("✓"), KeyStyle.Render(key), value)
	return nil
}
