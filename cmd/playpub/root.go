// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime/debug"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/playpub/playpub/internal/config"
	"github.com/playpub/playpub/internal/issue"
	"github.com/playpub/playpub/pkg/types"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"

	//nolint:gochecknoglobals // Test seam
	readBuildInfo = debug.ReadBuildInfo
)

// rootOptions holds global flag values and the configuration loaded for one run.
type rootOptions struct {
	verbose    bool
	configFile string

	cfg *config.Config
	// loadErr is the configuration error deferred to commands annotated
	// with strictConfigAnnotation.
	loadErr error
}

// strictConfigAnnotation marks commands that must not run on fallback
// defaults when the configuration fails to load.
const strictConfigAnnotation = "playpub/strict-config"

// NewRootCommand builds the playpub command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	opts := &rootOptions{cfg: config.DefaultConfig()}

	rootCmd := &cobra.Command{
		Use:   "playpub",
		Short: "Publish Android packages to Google Play",
		Long: TitleStyle.Render("playpub") + SubtitleStyle.Render(" - Publish Android packages to Google Play") + `

playpub uploads an APK to the Google Play publishing API, assigns it to a
release track and commits the edit, authorized by a service-account key.

` + SubtitleStyle.Render("Examples:") + `
  playpub publish app.apk -a key.json            Publish to the alpha track
  playpub publish app.apk -a key.json -t beta    Publish to the beta track
  playpub config init                            Create a default config file
  playpub config show                            Show current configuration`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := opts.load(cmd.Context(), app); err != nil {
				if _, strict := cmd.Annotations[strictConfigAnnotation]; strict {
					opts.loadErr = err
					return nil
				}
				fmt.Fprintln(app.stderr, WarningStyle.Render("Warning: ")+formatErrorForDisplay(err, opts.verbose))
			}
			return nil
		},
	}
	rootCmd.SetOut(app.stdout)
	rootCmd.SetErr(app.stderr)

	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "config file (default is the platform config dir, then ./config.cue)")

	rootCmd.AddCommand(newPublishCommand(app, opts))
	rootCmd.AddCommand(newConfigCommand(app, opts))

	return rootCmd
}

// load reads the configuration. On error the defaults stay in effect and the
// error is returned for the caller to report.
func (o *rootOptions) load(ctx context.Context, app *App) error {
	cfg, _, err := app.Config.Load(ctx, config.LoadOptions{ConfigFilePath: o.configFile})
	if err != nil {
		o.cfg = config.DefaultConfig()
		return err
	}
	o.cfg = cfg

	if !o.verbose {
		o.verbose = cfg.Verbose
	}
	return nil
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version != "dev" {
		return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
	}
	if info, ok := readBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version + " (go install)"
	}
	return "dev (built from source)"
}

// newLogger creates the run logger. Every record carries a run id so the
// lines of one publish can be correlated.
func newLogger(w io.Writer, verbose bool) *log.Logger {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{
		Prefix: "playpub",
		Level:  level,
	}).With("run", uuid.NewString())
}

// formatErrorForDisplay formats an error for user display.
// ActionableErrors use their Format method; verbose mode shows the full chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}

// handleError prints errors that were not already rendered by a command.
func handleError(w io.Writer, styles fang.Styles, err error) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return
	}
	fang.DefaultErrorHandler(w, styles, err)
}

// exitCodeFor maps the error returned by the command tree to a process exit code.
// An ExitError carrying a code outside 0-255 reports ExitUserError.
func exitCodeFor(err error) types.ExitCode {
	if err == nil {
		return types.ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		if exitErr.Code.Validate() != nil {
			return types.ExitUserError
		}
		return exitErr.Code
	}
	return types.ExitUserError
}

// Execute runs the root command. This is called by main.main().
func Execute() {
	app := NewApp(Dependencies{})
	rootCmd := NewRootCommand(app)

	// fang overrides rootCmd.Version, so pass it via WithVersion.
	err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(handleError),
	)
	if code := exitCodeFor(err); !code.IsSuccess() {
		os.Exit(int(code))
	}
}
