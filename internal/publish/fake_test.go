// SPDX-License-Identifier: MPL-2.0

package publish

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/playpub/playpub/internal/apk"
	"github.com/playpub/playpub/internal/playstore"
)

// call records one request received by fakeEdits.
type call struct {
	op           string
	packageName  string
	editID       string
	mediaType    string
	body         string
	track        string
	versionCodes []int64
}

// fakeEdits is a recording EditsService. Each *Err field makes the matching
// call fail; edit and uploaded are returned on success.
type fakeEdits struct {
	calls []call

	edit     playstore.Edit
	uploaded playstore.UploadedAPK

	insertErr error
	uploadErr error
	trackErr  error
	commitErr error
}

func (f *fakeEdits) InsertEdit(_ context.Context, packageName string) (playstore.Edit, error) {
	f.calls = append(f.calls, call{op: "insert", packageName: packageName})
	if f.insertErr != nil {
		return playstore.Edit{}, f.insertErr
	}
	return f.edit, nil
}

func (f *fakeEdits) UploadAPK(_ context.Context, packageName, editID, mediaType string, body io.Reader) (playstore.UploadedAPK, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return playstore.UploadedAPK{}, err
	}
	f.calls = append(f.calls, call{op: "upload", packageName: packageName, editID: editID, mediaType: mediaType, body: string(data)})
	if f.uploadErr != nil {
		return playstore.UploadedAPK{}, f.uploadErr
	}
	return f.uploaded, nil
}

func (f *fakeEdits) UpdateTrack(_ context.Context, packageName, editID, track string, versionCodes []int64) (playstore.TrackInfo, error) {
	f.calls = append(f.calls, call{op: "track", packageName: packageName, editID: editID, track: track, versionCodes: versionCodes})
	if f.trackErr != nil {
		return playstore.TrackInfo{}, f.trackErr
	}
	return playstore.TrackInfo{Track: track}, nil
}

func (f *fakeEdits) CommitEdit(_ context.Context, packageName, editID string) error {
	f.calls = append(f.calls, call{op: "commit", packageName: packageName, editID: editID})
	return f.commitErr
}

func (f *fakeEdits) ops() []string {
	ops := make([]string, 0, len(f.calls))
	for _, c := range f.calls {
		ops = append(ops, c.op)
	}
	return ops
}

// fakeReader returns a fixed manifest for an on-disk file, or err.
type fakeReader struct {
	manifest apk.Manifest
	err      error
	parsed   []string
}

func (r *fakeReader) Parse(path string) (*apk.Source, error) {
	r.parsed = append(r.parsed, path)
	if r.err != nil {
		return nil, r.err
	}
	return apk.NewSource(r.manifest, path), nil
}

// staticAuthorizer hands out svc, counting calls.
func staticAuthorizer(svc EditsService, calls *int) Authorizer {
	return AuthorizerFunc(func(context.Context) (EditsService, error) {
		*calls++
		return svc, nil
	})
}

// writePackage creates an app.apk with the given contents in a temp dir.
func writePackage(t *testing.T, contents string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "app.apk")
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("writing package: %v", err)
	}
	return path
}

func exampleManifest() apk.Manifest {
	return apk.Manifest{PackageName: "com.example.app", VersionCode: 42, VersionName: "1.4.2"}
}
