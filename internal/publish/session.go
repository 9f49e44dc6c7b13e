// SPDX-License-Identifier: MPL-2.0

package publish

import (
	"context"
	"errors"
	"io"
	"sync/atomic"

	"github.com/charmbracelet/log"

	"github.com/playpub/playpub/internal/apk"
	"github.com/playpub/playpub/internal/playstore"
)

// Compile-time check that the API adapter satisfies EditsService.
var _ EditsService = (*playstore.Client)(nil)

type (
	// PackageReader extracts the manifest of a package file.
	PackageReader interface {
		Parse(path string) (*apk.Source, error)
	}

	// EditsService is the edit-scoped subset of the publishing API used by a Session.
	EditsService interface {
		InsertEdit(ctx context.Context, packageName string) (playstore.Edit, error)
		UploadAPK(ctx context.Context, packageName, editID, mediaType string, body io.Reader) (playstore.UploadedAPK, error)
		UpdateTrack(ctx context.Context, packageName, editID, track string, versionCodes []int64) (playstore.TrackInfo, error)
		CommitEdit(ctx context.Context, packageName, editID string) error
	}

	// Authorizer produces an authorized EditsService.
	Authorizer interface {
		Authorize(ctx context.Context) (EditsService, error)
	}

	// AuthorizerFunc adapts a function to the Authorizer interface.
	AuthorizerFunc func(ctx context.Context) (EditsService, error)

	// Observer is notified of every state transition.
	Observer func(from, to State)

	// Option configures a Session.
	Option func(*Session)

	// Session publishes one package. A Session is single-use: a second call
	// to Publish fails with ErrSessionUsed.
	Session struct {
		reader     PackageReader
		authorizer Authorizer
		logger     *log.Logger
		observer   Observer

		track   Track
		state   atomic.Int32
		started atomic.Bool
	}

	// editOpen is the result of createEdit.
	editOpen struct {
		svc    EditsService
		source *apk.Source
		editID string
	}

	// uploaded is the result of uploadAPK.
	uploaded struct {
		editOpen
		remote playstore.UploadedAPK
	}

	// trackAssigned is the result of assignTrack.
	trackAssigned struct {
		uploaded
		confirmed playstore.TrackInfo
	}
)

// Authorize calls f(ctx).
func (f AuthorizerFunc) Authorize(ctx context.Context) (EditsService, error) {
	return f(ctx)
}

// WithLogger sets the logger. Sessions log nothing by default.
func WithLogger(l *log.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithObserver registers fn to receive every state transition.
func WithObserver(fn Observer) Option {
	return func(s *Session) {
		s.observer = fn
	}
}

// NewSession creates an Idle Session targeting DefaultTrack.
func NewSession(reader PackageReader, authorizer Authorizer, opts ...Option) *Session {
	s := &Session{
		reader:     reader,
		authorizer: authorizer,
		logger:     log.New(io.Discard),
		track:      DefaultTrack,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetTrack selects the release track. On error the previous track is kept.
func (s *Session) SetTrack(name string) error {
	t, err := ParseTrack(name)
	if err != nil {
		return err
	}
	s.track = t
	return nil
}

// Track returns the selected release track.
func (s *Session) Track() Track { return s.track }

// State returns the current state.
func (s *Session) State() State { return State(s.state.Load()) }

// Publish parses the package at path and runs the edit transaction against
// the authorized service. On success it returns the locally parsed manifest.
func (s *Session) Publish(ctx context.Context, path string) (apk.Manifest, error) {
	if !s.started.CompareAndSwap(false, true) {
		return apk.Manifest{}, ErrSessionUsed
	}

	logger := s.logger.With("apk", path, "track", s.track)

	source, err := s.reader.Parse(path)
	if err != nil {
		logger.Error("Failed to read package", "err", err)
		s.moveTo(StateFailed)
		return apk.Manifest{}, err
	}
	manifest := source.Manifest()
	logger = logger.With("package", manifest.PackageName, "version_code", manifest.VersionCode)
	logger.Debug("Read package manifest", "version_name", manifest.VersionName)

	svc, err := s.authorizer.Authorize(ctx)
	if err != nil {
		logger.Error("Authorization failed", "err", err)
		s.moveTo(StateFailed)
		return apk.Manifest{}, err
	}

	open, err := s.createEdit(ctx, logger, svc, source)
	if err != nil {
		return apk.Manifest{}, s.abort(logger, err)
	}
	logger = logger.With("edit", open.editID)

	up, err := s.uploadAPK(ctx, logger, open)
	if err != nil {
		return apk.Manifest{}, s.abort(logger, err)
	}

	assigned, err := s.assignTrack(ctx, logger, up)
	if err != nil {
		return apk.Manifest{}, s.abort(logger, err)
	}

	if err := s.commitEdit(ctx, logger, assigned); err != nil {
		return apk.Manifest{}, s.abort(logger, err)
	}

	return manifest, nil
}

// createEdit moves Idle to EditOpen. A response without an edit id is a
// protocol error.
func (s *Session) createEdit(ctx context.Context, logger *log.Logger, svc EditsService, source *apk.Source) (editOpen, error) {
	packageName := source.Manifest().PackageName

	edit, err := svc.InsertEdit(ctx, packageName)
	if err != nil {
		return editOpen{}, &StepError{Target: StateEditOpen, Err: err}
	}
	if edit.ID == "" {
		return editOpen{}, &StepError{
			Target: StateEditOpen,
			Err:    &RemoteProtocolError{Op: "insert edit", Msg: "unable to create edit"},
		}
	}

	s.moveTo(StateEditOpen)
	logger.Info("Created edit", "edit", edit.ID)

	return editOpen{svc: svc, source: source, editID: edit.ID}, nil
}

// uploadAPK moves EditOpen to Uploaded. The package stream is opened here and
// read once by the upload.
func (s *Session) uploadAPK(ctx context.Context, logger *log.Logger, e editOpen) (uploaded, error) {
	local := e.source.Manifest()

	body, err := e.source.Open()
	if err != nil {
		return uploaded{}, &StepError{Target: StateUploaded, EditID: e.editID, Err: err}
	}
	defer func() {
		_ = body.Close() // Read-only handle.
	}()

	remote, err := e.svc.UploadAPK(ctx, local.PackageName, e.editID, apk.MediaType, body)
	if err != nil {
		return uploaded{}, &StepError{Target: StateUploaded, EditID: e.editID, Err: err}
	}

	s.moveTo(StateUploaded)
	logger.Info("Uploaded apk", "remote_version_code", remote.VersionCode, "sha1", remote.SHA1)
	if remote.VersionCode != 0 && remote.VersionCode != local.VersionCode {
		logger.Warn("Server reported a different version code; assigning the local one",
			"local", local.VersionCode, "remote", remote.VersionCode)
	}

	return uploaded{editOpen: e, remote: remote}, nil
}

// assignTrack moves Uploaded to TrackAssigned using the locally parsed
// version code, never the one echoed by the upload.
func (s *Session) assignTrack(ctx context.Context, logger *log.Logger, u uploaded) (trackAssigned, error) {
	local := u.source.Manifest()

	confirmed, err := u.svc.UpdateTrack(ctx, local.PackageName, u.editID, s.track.String(), []int64{local.VersionCode})
	if err != nil {
		return trackAssigned{}, &StepError{Target: StateTrackAssigned, EditID: u.editID, Err: err}
	}

	s.moveTo(StateTrackAssigned)
	logger.Info("Track updated", "confirmed_track", confirmed.Track)

	return trackAssigned{uploaded: u, confirmed: confirmed}, nil
}

// commitEdit moves TrackAssigned to Committed.
func (s *Session) commitEdit(ctx context.Context, logger *log.Logger, a trackAssigned) error {
	if err := a.svc.CommitEdit(ctx, a.source.Manifest().PackageName, a.editID); err != nil {
		return &StepError{Target: StateCommitted, EditID: a.editID, Err: err}
	}

	s.moveTo(StateCommitted)
	logger.Info("Committed changes")

	return nil
}

// abort records a failed transition. Edits are never rolled back.
func (s *Session) abort(logger *log.Logger, err error) error {
	from := s.State()
	s.moveTo(StateFailed)

	logger.Error("Publishing failed", "state", from, "err", err)

	var stepErr *StepError
	if errors.As(err, &stepErr) && stepErr.EditID != "" {
		logger.Warn("Edit left open on the server; it expires unless committed or deleted", "edit", stepErr.EditID)
	}
	return err
}

func (s *Session) moveTo(to State) {
	from := State(s.state.Swap(int32(to)))
	s.logger.Debug("State transition", "from", from, "to", to)
	if s.observer != nil {
		s.observer(from, to)
	}
}
