// SPDX-License-Identifier: MPL-2.0

// Package apk reads the identifying metadata of an Android application
// package: the package name and the version code from the binary
// AndroidManifest.xml. The package file itself is never buffered; a Source
// reopens it on demand so the caller can stream it into an upload request.
package apk
