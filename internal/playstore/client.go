// SPDX-License-Identifier: MPL-2.0

package playstore

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"google.golang.org/api/androidpublisher/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// releaseStatusCompleted publishes the release to the whole track audience.
// Fractional rollouts are not supported.
const releaseStatusCompleted = "completed"

type (
	// Edit identifies a server-side edit session.
	Edit struct {
		ID string
	}

	// UploadedAPK is the server's confirmation of an APK upload.
	UploadedAPK struct {
		VersionCode int64
		SHA1        string
		SHA256      string
	}

	// TrackInfo is the server's confirmation of a track update.
	TrackInfo struct {
		Track string
	}

	// Client issues edit-scoped calls against the publishing API.
	Client struct {
		svc *androidpublisher.Service
	}

	// settings holds the construction options shared by ServiceAccount and Client.
	settings struct {
		endpoint   string       // API base URL override, mostly for test servers
		httpClient *http.Client // base transport for token exchange and API calls
		userAgent  string
	}

	// Option configures a ServiceAccount or Client during construction.
	Option func(*settings)
)

// WithEndpoint overrides the publishing API base URL, primarily for test servers.
func WithEndpoint(endpoint string) Option {
	return func(s *settings) {
		s.endpoint = strings.TrimRight(endpoint, "/") + "/"
	}
}

// WithHTTPClient sets the base HTTP client used for the token exchange and,
// once authorized, as the transport under the API client.
func WithHTTPClient(c *http.Client) Option {
	return func(s *settings) {
		s.httpClient = c
	}
}

// WithUserAgent sets the User-Agent sent with every API request.
func WithUserAgent(ua string) Option {
	return func(s *settings) {
		s.userAgent = ua
	}
}

func newSettings(opts []Option) settings {
	s := settings{userAgent: "playpub/dev"}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// newClient creates a Client on top of an HTTP client that already attaches
// credentials to outgoing requests.
func newClient(ctx context.Context, httpClient *http.Client, s settings) (*Client, error) {
	apiOpts := []option.ClientOption{option.WithHTTPClient(httpClient)}
	if s.endpoint != "" {
		apiOpts = append(apiOpts, option.WithEndpoint(s.endpoint))
	}

	svc, err := androidpublisher.NewService(ctx, apiOpts...)
	if err != nil {
		return nil, fmt.Errorf("creating publishing API client: %w", err)
	}
	if s.endpoint != "" {
		svc.BasePath = s.endpoint
	}
	svc.UserAgent = s.userAgent

	return &Client{svc: svc}, nil
}

// InsertEdit opens a new edit for packageName. A response without an id is
// returned as an empty Edit; interpreting that is up to the caller.
func (c *Client) InsertEdit(ctx context.Context, packageName string) (Edit, error) {
	edit, err := c.svc.Edits.Insert(packageName, &androidpublisher.AppEdit{}).Context(ctx).Do()
	if err != nil {
		return Edit{}, &TransportError{Op: "insert edit", Err: err}
	}
	if edit == nil {
		return Edit{}, nil
	}
	return Edit{ID: edit.Id}, nil
}

// UploadAPK streams body into the edit as a new APK.
func (c *Client) UploadAPK(ctx context.Context, packageName, editID, mediaType string, body io.Reader) (UploadedAPK, error) {
	uploaded, err := c.svc.Edits.Apks.Upload(packageName, editID).
		Media(body, googleapi.ContentType(mediaType)).
		Context(ctx).
		Do()
	if err != nil {
		return UploadedAPK{}, &TransportError{Op: "upload apk", Err: err}
	}

	result := UploadedAPK{VersionCode: uploaded.VersionCode}
	if uploaded.Binary != nil {
		result.SHA1 = uploaded.Binary.Sha1
		result.SHA256 = uploaded.Binary.Sha256
	}
	return result, nil
}

// UpdateTrack replaces the releases of track with a single completed release
// containing versionCodes.
func (c *Client) UpdateTrack(ctx context.Context, packageName, editID, track string, versionCodes []int64) (TrackInfo, error) {
	body := &androidpublisher.Track{
		Track: track,
		Releases: []*androidpublisher.TrackRelease{
			{
				VersionCodes: versionCodes,
				Status:       releaseStatusCompleted,
			},
		},
	}

	updated, err := c.svc.Edits.Tracks.Update(packageName, editID, track, body).Context(ctx).Do()
	if err != nil {
		return TrackInfo{}, &TransportError{Op: "update track", Err: err}
	}
	return TrackInfo{Track: updated.Track}, nil
}

// CommitEdit commits all changes made in the edit.
func (c *Client) CommitEdit(ctx context.Context, packageName, editID string) error {
	if _, err := c.svc.Edits.Commit(packageName, editID).Context(ctx).Do(); err != nil {
		return &TransportError{Op: "commit edit", Err: err}
	}
	return nil
}
