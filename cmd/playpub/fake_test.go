// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"io"
	"os"
	"testing"

	"github.com/playpub/playpub/internal/apk"
	"github.com/playpub/playpub/internal/config"
	"github.com/playpub/playpub/internal/playstore"
	"github.com/playpub/playpub/internal/publish"
	"github.com/playpub/playpub/internal/testutil"
)

// fakeEdits is a recording publish.EditsService.
type fakeEdits struct {
	ops    []string
	track  string
	editID string

	insertErr error
	uploadErr error
	commitErr error
}

func (f *fakeEdits) InsertEdit(context.Context, string) (playstore.Edit, error) {
	f.ops = append(f.ops, "insert")
	if f.insertErr != nil {
		return playstore.Edit{}, f.insertErr
	}
	return playstore.Edit{ID: f.editID}, nil
}

func (f *fakeEdits) UploadAPK(_ context.Context, _, _, _ string, body io.Reader) (playstore.UploadedAPK, error) {
	f.ops = append(f.ops, "upload")
	if _, err := io.Copy(io.Discard, body); err != nil {
		return playstore.UploadedAPK{}, err
	}
	if f.uploadErr != nil {
		return playstore.UploadedAPK{}, f.uploadErr
	}
	return playstore.UploadedAPK{VersionCode: 7}, nil
}

func (f *fakeEdits) UpdateTrack(_ context.Context, _, _, track string, _ []int64) (playstore.TrackInfo, error) {
	f.ops = append(f.ops, "track")
	f.track = track
	return playstore.TrackInfo{Track: track}, nil
}

func (f *fakeEdits) CommitEdit(context.Context, string, string) error {
	f.ops = append(f.ops, "commit")
	return f.commitErr
}

// fakePackages returns a fixed manifest for any existing path.
type fakePackages struct{}

func (fakePackages) Parse(path string) (*apk.Source, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, &apk.PackageParseError{Path: path, Err: err}
	}
	return apk.NewSource(apk.Manifest{PackageName: "com.example.app", VersionCode: 7, VersionName: "1.0"}, path), nil
}

// fakeProvider returns cfg (or err) from Load.
type fakeProvider struct {
	cfg  *config.Config
	path string
	err  error
}

func (f fakeProvider) Load(context.Context, config.LoadOptions) (*config.Config, string, error) {
	if f.err != nil {
		return nil, "", f.err
	}
	if f.cfg == nil {
		return config.DefaultConfig(), f.path, nil
	}
	cfg := *f.cfg
	return &cfg, f.path, nil
}

// authorizerFor returns a factory that hands out svc, or fails with authErr.
func authorizerFor(svc *fakeEdits, authErr error) AuthorizerFactory {
	return func([]byte) publish.Authorizer {
		return publish.AuthorizerFunc(func(context.Context) (publish.EditsService, error) {
			if authErr != nil {
				return nil, authErr
			}
			return svc, nil
		})
	}
}

// writeFixtures creates a package file and a credentials file in a temp dir.
func writeFixtures(t *testing.T) (apkPath, keyPath string) {
	t.Helper()

	dir := t.TempDir()
	apkPath = testutil.MustWriteFile(t, dir, "app.apk", []byte("PK\x03\x04 apk bytes"))
	keyPath = testutil.MustWriteFile(t, dir, "key.json", []byte(`{"type":"service_account"}`))
	return apkPath, keyPath
}
