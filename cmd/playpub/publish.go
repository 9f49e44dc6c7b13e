// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/playpub/playpub/internal/apk"
	"github.com/playpub/playpub/internal/issue"
	"github.com/playpub/playpub/internal/playstore"
	"github.com/playpub/playpub/internal/publish"
	"github.com/playpub/playpub/pkg/types"
)

var (
	errCredentialsMissing    = errors.New("no service-account key configured")
	errCredentialsUnreadable = errors.New("cannot read service-account key")
	errConfigLoad            = errors.New("configuration rejected")
)

// publishParams captures all inputs of one publish run.
type publishParams struct {
	stdout io.Writer
	stderr io.Writer
	logger *log.Logger

	packages   publish.PackageReader
	authorizer AuthorizerFactory

	// configErr is a failed configuration load; publishing never falls
	// back to defaults.
	configErr error

	apkPath         string
	track           string
	credentialsFile string
	verbose         bool
	colorScheme     string
}

func newPublishCommand(app *App, root *rootOptions) *cobra.Command {
	var (
		track           string
		credentialsFile string
	)

	cmd := &cobra.Command{
		Use:   "publish <apk>",
		Short: "Upload an APK and release it on a track",
		Long: `Upload an APK to Google Play, assign it to a release track and commit the edit.

The package name and version code are read from the APK manifest. The
release track defaults to the configured track (alpha unless changed).`,
		Example: `  playpub publish app-release.apk --auth key.json
  playpub publish app-release.apk -a key.json -t production -v`,
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{strictConfigAnnotation: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			params := publishParams{
				stdout:          app.stdout,
				stderr:          app.stderr,
				packages:        app.Packages,
				authorizer:      app.Authorizer,
				apkPath:         args[0],
				track:           root.cfg.Track.String(),
				credentialsFile: root.cfg.CredentialsFile,
				verbose:         root.verbose,
				colorScheme:     root.cfg.UI.ColorScheme.String(),
				configErr:       root.loadErr,
			}
			if cmd.Flags().Changed("track") {
				params.track = track
			}
			if cmd.Flags().Changed("auth") {
				params.credentialsFile = credentialsFile
			}
			params.logger = newLogger(app.stderr, params.verbose)

			err := runPublish(cmd.Context(), params)
			if err == nil {
				return nil
			}

			svcErr := describePublishError(err, params.verbose)
			renderServiceError(params.stderr, params.logger, svcErr, params.colorScheme)
			return &ExitError{Code: classifyPublishExitCode(err), Err: err}
		},
	}

	cmd.Flags().StringVarP(&track, "track", "t", publish.DefaultTrack.String(), "release track (alpha, beta, production, rollout)")
	cmd.Flags().StringVarP(&credentialsFile, "auth", "a", "", "service-account JSON key file")

	return cmd
}

// runPublish validates the inputs, publishes the package and prints the outcome.
func runPublish(ctx context.Context, p publishParams) error {
	if p.configErr != nil {
		return fmt.Errorf("%w: %w", errConfigLoad, p.configErr)
	}
	if _, err := publish.ParseTrack(p.track); err != nil {
		return err
	}

	if p.credentialsFile == "" {
		return errCredentialsMissing
	}
	credentials, err := os.ReadFile(p.credentialsFile)
	if err != nil {
		return fmt.Errorf("%w: %w", errCredentialsUnreadable, err)
	}

	logger := p.logger
	if logger == nil {
		logger = newLogger(p.stderr, p.verbose)
	}

	session := publish.NewSession(p.packages, p.authorizer(credentials), publish.WithLogger(logger))
	if err := session.SetTrack(p.track); err != nil {
		return err
	}

	manifest, err := session.Publish(ctx, p.apkPath)
	if err != nil {
		return err
	}

	fmt.Fprintln(p.stdout, SuccessStyle.Render(fmt.Sprintf("Published %s (version code %d) to %s",
		manifest.PackageName, manifest.VersionCode, session.Track())))
	return nil
}

// describePublishError turns a publish failure into a rendered ServiceError.
// The issue catalog entry is only attached in verbose mode.
func describePublishError(err error, verbose bool) *ServiceError {
	ec := issue.NewErrorContext().WithOperation("publish apk").Wrap(err)

	var (
		parseErr     *apk.PackageParseError
		stepErr      *publish.StepError
		transportErr *playstore.TransportError
		issueID      issue.Id
	)

	switch {
	case errors.Is(err, publish.ErrInvalidTrack):
		issueID = issue.InvalidTrackId
		names := make([]string, 0, len(publish.Tracks()))
		for _, t := range publish.Tracks() {
			names = append(names, t.String())
		}
		ec.WithSuggestion("Use one of: " + strings.Join(names, ", "))
	case errors.Is(err, errConfigLoad):
		issueID = issue.ConfigLoadFailedId
		ec.WithSuggestions("Fix the configuration file or the PLAYPUB_* environment variables",
			"Run 'playpub config show' to check the effective configuration")
	case errors.As(err, &parseErr):
		issueID = issue.PackageParseFailedId
		ec.WithSuggestions("Check that the file exists and is a signed APK",
			"Build the release variant, e.g. ./gradlew assembleRelease")
	case errors.Is(err, errCredentialsMissing):
		issueID = issue.CredentialsMissingId
		ec.WithSuggestions("Pass the service-account key with --auth key.json",
			"Or set credentials_file in the config file or PLAYPUB_CREDENTIALS_FILE")
	case errors.Is(err, errCredentialsUnreadable):
		issueID = issue.CredentialsMissingId
		ec.WithSuggestion("Check the path and permissions of the service-account key")
	case errors.Is(err, playstore.ErrAuthorization):
		issueID = issue.AuthorizationFailedId
		ec.WithSuggestions("Check that the key is a service-account JSON key",
			"Grant the service account release permissions in the Play Console")
	case errors.Is(err, publish.ErrRemoteProtocol):
		issueID = issue.RemoteProtocolId
		ec.WithSuggestion("Retry later; the publishing API returned an unexpected response")
	case errors.As(err, &transportErr):
		issueID = issue.RemoteTransportId
		if code := transportErr.StatusCode(); code != 0 {
			ec.WithSuggestion(fmt.Sprintf("The publishing API answered with HTTP %d", code))
		} else {
			ec.WithSuggestion("Check your network connection and retry")
		}
	}

	if errors.As(err, &stepErr) && stepErr.EditID != "" {
		ec.WithResource("edit " + stepErr.EditID).
			WithSuggestion("The edit was left open; rerun publish to start a new one")
		if issueID == 0 {
			issueID = issue.EditLeftOpenId
		}
	}

	ae := ec.WithIssue(issueID).Build()
	styled := ErrorStyle.Render("✗ ") + ae.Format(verbose) + "\n"

	if !verbose {
		issueID = 0
	}
	return newServiceError(ae, issueID, styled)
}

// classifyPublishExitCode maps remote failures to ExitRemoteError and
// everything else to ExitUserError.
func classifyPublishExitCode(err error) types.ExitCode {
	switch {
	case err == nil:
		return types.ExitSuccess
	case errors.Is(err, publish.ErrRemoteProtocol), errors.Is(err, playstore.ErrTransport):
		return types.ExitRemoteError
	default:
		return types.ExitUserError
	}
}
