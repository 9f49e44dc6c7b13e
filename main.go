// SPDX-License-Identifier: MPL-2.0

// Command playpub uploads an Android application package to Google Play
// and assigns it to a release track.
package main

import cmd "github.com/playpub/playpub/cmd/playpub"

func main() {
	cmd.Execute()
}
