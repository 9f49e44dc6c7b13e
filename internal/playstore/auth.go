// SPDX-License-Identifier: MPL-2.0

package playstore

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/androidpublisher/v3"
)

var errEmptyCredentials = errors.New("credentials are empty")

// ServiceAccount exchanges a service-account JSON key for an authorized
// publishing API client. The key is bound to the single publishing scope.
type ServiceAccount struct {
	credentials []byte
	settings    settings
}

// NewServiceAccount creates a ServiceAccount from the raw JSON key. The key
// is not parsed until Authorize is called.
func NewServiceAccount(credentialsJSON []byte, opts ...Option) *ServiceAccount {
	return &ServiceAccount{
		credentials: credentialsJSON,
		settings:    newSettings(opts),
	}
}

// Authorize parses the key, exchanges it for an access token and returns a
// Client that attaches the token to every request. All failures are
// returned as *AuthorizationError.
func (a *ServiceAccount) Authorize(ctx context.Context) (*Client, error) {
	if len(a.credentials) == 0 {
		return nil, &AuthorizationError{Err: errEmptyCredentials}
	}

	conf, err := google.JWTConfigFromJSON(a.credentials, androidpublisher.AndroidpublisherScope)
	if err != nil {
		return nil, &AuthorizationError{Err: fmt.Errorf("parsing credentials: %w", err)}
	}

	// The oauth2 package picks its base transport from the context.
	if a.settings.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, a.settings.httpClient)
	}

	ts := conf.TokenSource(ctx)
	tok, err := ts.Token()
	if err != nil {
		return nil, &AuthorizationError{Err: fmt.Errorf("exchanging token for %s: %w", conf.Email, err)}
	}

	authorized := oauth2.NewClient(ctx, oauth2.ReuseTokenSource(tok, ts))

	return newClient(ctx, authorized, a.settings)
}
