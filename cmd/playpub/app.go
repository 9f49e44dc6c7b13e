// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"io"
	"os"

	"github.com/playpub/playpub/internal/apk"
	"github.com/playpub/playpub/internal/config"
	"github.com/playpub/playpub/internal/playstore"
	"github.com/playpub/playpub/internal/publish"
)

type (
	// AuthorizerFactory builds an Authorizer from the raw service-account key.
	AuthorizerFactory func(credentialsJSON []byte) publish.Authorizer

	// App wires CLI services and shared dependencies. It is the composition root for
	// the CLI layer: Cobra handlers receive an App and delegate through its fields.
	App struct {
		Config     config.Provider
		Packages   publish.PackageReader
		Authorizer AuthorizerFactory
		stdout     io.Writer
		stderr     io.Writer
	}

	// Dependencies defines the injection points for building an App. Nil fields are
	// replaced with production defaults by NewApp.
	Dependencies struct {
		Config     config.Provider
		Packages   publish.PackageReader
		Authorizer AuthorizerFactory
		Stdout     io.Writer
		Stderr     io.Writer
	}
)

// NewApp creates an App, filling unset dependencies with production defaults.
func NewApp(deps Dependencies) *App {
	app := &App{
		Config:     deps.Config,
		Packages:   deps.Packages,
		Authorizer: deps.Authorizer,
		stdout:     deps.Stdout,
		stderr:     deps.Stderr,
	}
	if app.Config == nil {
		app.Config = config.NewProvider()
	}
	if app.Packages == nil {
		app.Packages = apk.NewReader()
	}
	if app.Authorizer == nil {
		app.Authorizer = serviceAccountAuthorizer
	}
	if app.stdout == nil {
		app.stdout = os.Stdout
	}
	if app.stderr == nil {
		app.stderr = os.Stderr
	}
	return app
}

// serviceAccountAuthorizer authorizes against the publishing API with a
// service-account JSON key.
func serviceAccountAuthorizer(credentialsJSON []byte) publish.Authorizer {
	account := playstore.NewServiceAccount(credentialsJSON, playstore.WithUserAgent("playpub/"+Version))
	return publish.AuthorizerFunc(func(ctx context.Context) (publish.EditsService, error) {
		client, err := account.Authorize(ctx)
		if err != nil {
			return nil, err
		}
		return client, nil
	})
}
