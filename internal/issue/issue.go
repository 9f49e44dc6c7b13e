// SPDX-License-Identifier: EPL-2.0

package issue

import (
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/exp/slices"
)

type Id int

const (
	PackageParseFailedId Id = iota + 1
	CredentialsMissingId
	AuthorizationFailedId
	InvalidTrackId
	RemoteProtocolId
	RemoteTransportId
	EditLeftOpenId
	ConfigLoadFailedId
)

type MarkdownMsg string

type HttpLink string

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink  // publishing API documentation
	extLinks []HttpLink  // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

// Render renders the issue with the glamour style at stylePath ("dark",
// "light" or a JSON style file).
func (i *Issue) Render(stylePath string) (string, error) {
	md := string(i.mdMsg)
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		md += "\n\n## See also\n"
		for _, link := range i.docLinks {
			md += "\n- <" + string(link) + ">"
		}
		for _, link := range i.extLinks {
			md += "\n- <" + string(link) + ">"
		}
	}
	return render(md, stylePath)
}

// StyleFor maps a color scheme ("auto", "dark", "light") to a glamour style.
// "auto" asks the terminal for its background.
func StyleFor(scheme string) string {
	switch scheme {
	case "dark", "light":
		return scheme
	default:
		if hasDarkBackground() {
			return "dark"
		}
		return "light"
	}
}

var (
	render = glamour.Render

	hasDarkBackground = lipgloss.HasDarkBackground

	packageParseFailedIssue = &Issue{
		id: PackageParseFailedId,
		mdMsg: `
# Could not read the APK!

playpub reads the package name and the version code from the binary
AndroidManifest.xml inside the APK before talking to Google Play.

## Things you can try:
- Check that the path points at an existing ` + "`.apk`" + ` file, not a directory or an ` + "`.aab`" + ` bundle
- Rebuild the package and make sure the build finished
- Inspect the manifest:
~~~
$ aapt2 dump badging app-release.apk | head -1
~~~`,
		extLinks: []HttpLink{"https://developer.android.com/studio/publish/versioning"},
	}

	credentialsMissingIssue = &Issue{
		id: CredentialsMissingId,
		mdMsg: `
# No service-account credentials!

Publishing requires a Google Cloud service-account JSON key with access to
your app in the Play Console.

## Things you can try:
- Pass the key explicitly:
~~~
$ playpub publish app.apk --auth ./service-account.json
~~~

- Or set it once in your config file:
~~~cue
credentials_file: "/path/to/service-account.json"
~~~

- Or use the environment:
~~~
$ export PLAYPUB_CREDENTIALS_FILE=/path/to/service-account.json
~~~`,
		docLinks: []HttpLink{"https://developers.google.com/android-publisher/getting_started"},
	}

	authorizationFailedIssue = &Issue{
		id: AuthorizationFailedId,
		mdMsg: `
# Authorization failed!

The service-account key could not be exchanged for an access token.

## Common causes:
- The file is not a service-account key (e.g. an OAuth client secret)
- The key was deleted or rotated in Google Cloud
- The machine clock is far off, which invalidates the signed JWT

## Things you can try:
- Download a fresh JSON key for the service account
- Check that the Google Play Android Developer API is enabled for the project
- Synchronize the system clock`,
		docLinks: []HttpLink{"https://developers.google.com/android-publisher/getting_started"},
	}

	invalidTrackIssue = &Issue{
		id: InvalidTrackId,
		mdMsg: `
# Invalid track!

The track must be one of: ` + "`alpha`, `beta`, `production`, `rollout`" + `.

## Things you can try:
~~~
$ playpub publish app.apk --track beta
~~~`,
		docLinks: []HttpLink{"https://developers.google.com/android-publisher/tracks"},
	}

	remoteProtocolIssue = &Issue{
		id: RemoteProtocolId,
		mdMsg: `
# Unexpected response from Google Play!

The publishing API accepted the request but its answer was missing a
required field, such as the id of a new edit.

## Things you can try:
- Retry the command; this is usually a transient server condition
- Check the Google Play status dashboard`,
		docLinks: []HttpLink{"https://developers.google.com/android-publisher/edits"},
	}

	remoteTransportIssue = &Issue{
		id: RemoteTransportId,
		mdMsg: `
# Google Play rejected the request!

A publishing API call failed. The HTTP status tells you why:

- **401/403**: the service account is not invited to the app in the Play Console, or lacks the release permission
- **404**: the package name is not registered in the Play Console
- **400/409**: the version code was already used, or the APK is not signed with the app signing key
- **429**: the daily API quota is exhausted

## Things you can try:
- Grant the service account access in *Users and permissions*
- Bump ` + "`versionCode`" + ` and rebuild`,
		docLinks: []HttpLink{
			"https://developers.google.com/android-publisher/edits",
			"https://developers.google.com/android-publisher/quotas",
		},
	}

	editLeftOpenIssue = &Issue{
		id: EditLeftOpenId,
		mdMsg: `
# An edit was left open!

playpub does not roll back. A failure after the edit was created leaves that
edit open on the server. Uncommitted edits expire on their own and do not
affect what users see, but an open edit can block changes made in the Play
Console until it expires.

## Things you can try:
- Rerun ` + "`playpub publish`" + `; it always starts a new edit
- Delete the edit with the ` + "`edits.delete`" + ` API call`,
		docLinks: []HttpLink{"https://developers.google.com/android-publisher/edits"},
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

The configuration file exists but could not be read or does not match the
schema.

## Things you can try:
- Show where playpub looks for it:
~~~
$ playpub config path
~~~

- Regenerate a default file:
~~~
$ playpub config init
~~~

## Example config.cue:
~~~cue
track: "beta"
credentials_file: "/home/me/keys/play.json"
verbose: false
ui: color_scheme: "auto"
~~~`,
	}

	// catalog lists every issue in Id order.
	catalog = []*Issue{
		packageParseFailedIssue,
		credentialsMissingIssue,
		authorizationFailedIssue,
		invalidTrackIssue,
		remoteProtocolIssue,
		remoteTransportIssue,
		editLeftOpenIssue,
		configLoadFailedIssue,
	}
)

// Values returns every catalog entry in Id order.
func Values() []*Issue {
	return slices.Clone(catalog)
}

// Get returns the issue with id, or nil.
func Get(id Id) *Issue {
	idx := slices.IndexFunc(catalog, func(i *Issue) bool { return i.id == id })
	if idx < 0 {
		return nil
	}
	return catalog[idx]
}
