// SPDX-License-Identifier: MPL-2.0

package apk

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	androidapk "github.com/shogo82148/androidbinary/apk"
)

// MediaType is the content type declared when uploading an APK.
const MediaType = "application/vnd.android.package-archive"

var (
	// ErrPackageParse is the sentinel error wrapped by PackageParseError.
	ErrPackageParse = errors.New("error parsing apk")

	errEmptyPackageName   = errors.New("manifest has no package name")
	errInvalidVersionCode = errors.New("manifest version code must be positive")

	//nolint:gochecknoglobals // Test seam for the binary manifest decoder.
	readManifest = readAPKManifest
)

type (
	// Manifest is the immutable identity of a package file.
	Manifest struct {
		// PackageName is the application id, e.g. "com.example.app".
		PackageName string
		// VersionCode is the version ordinal assigned by the package author.
		VersionCode int64
		// VersionName is the human-readable version, informational only.
		VersionName string
	}

	// Source pairs a Manifest with the file it was read from.
	Source struct {
		manifest Manifest
		path     string
	}

	// Reader parses package files into Sources.
	Reader struct{}

	// PackageParseError is returned when a package file is missing or its
	// manifest cannot be read. It wraps both ErrPackageParse and the cause.
	PackageParseError struct {
		Path string
		Err  error
	}
)

// Error implements the error interface.
func (e *PackageParseError) Error() string {
	return fmt.Sprintf("%s %s: %v", ErrPackageParse, e.Path, e.Err)
}

// Unwrap exposes both the sentinel and the underlying cause to errors.Is/As.
func (e *PackageParseError) Unwrap() []error { return []error{ErrPackageParse, e.Err} }

// String renders the manifest as "package@versionCode".
func (m Manifest) String() string {
	return fmt.Sprintf("%s@%d", m.PackageName, m.VersionCode)
}

// NewSource pairs an already decoded manifest with its package file.
func NewSource(m Manifest, path string) *Source {
	return &Source{manifest: m, path: path}
}

// Manifest returns the metadata parsed from the file.
func (s *Source) Manifest() Manifest { return s.manifest }

// Path returns the package file path.
func (s *Source) Path() string { return s.path }

// Open returns a fresh stream over the package file. The caller must close it.
func (s *Source) Open() (io.ReadCloser, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("opening package %s: %w", s.path, err)
	}
	return f, nil
}

// NewReader creates a Reader.
func NewReader() Reader { return Reader{} }

// Parse reads the manifest of the package at path.
func (Reader) Parse(path string) (*Source, error) {
	return Parse(path)
}

// Parse reads the manifest of the package at path. Every failure is returned
// as a *PackageParseError.
func Parse(path string) (*Source, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &PackageParseError{Path: path, Err: err}
	}
	if info.IsDir() {
		return nil, &PackageParseError{Path: path, Err: fmt.Errorf("%s is a directory", path)}
	}

	m, err := readManifest(path)
	if err != nil {
		return nil, &PackageParseError{Path: path, Err: err}
	}

	m.PackageName = strings.TrimSpace(m.PackageName)
	if m.PackageName == "" {
		return nil, &PackageParseError{Path: path, Err: errEmptyPackageName}
	}
	if m.VersionCode <= 0 {
		return nil, &PackageParseError{Path: path, Err: fmt.Errorf("%w (got %d)", errInvalidVersionCode, m.VersionCode)}
	}

	return NewSource(m, path), nil
}

// readAPKManifest decodes the binary AndroidManifest.xml inside the archive.
func readAPKManifest(path string) (_ Manifest, err error) {
	pkg, err := androidapk.OpenFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("opening archive: %w", err)
	}
	defer func() {
		// Read-only archive handle; close errors are not actionable.
		_ = pkg.Close()
	}()

	manifest := pkg.Manifest()

	versionCode, err := manifest.VersionCode.Int32()
	if err != nil {
		return Manifest{}, fmt.Errorf("reading version code: %w", err)
	}

	// versionName is optional in the manifest.
	versionName, _ := manifest.VersionName.String() //nolint:errcheck // Informational field.

	return Manifest{
		PackageName: pkg.PackageName(),
		VersionCode: int64(versionCode),
		VersionName: versionName,
	}, nil
}
