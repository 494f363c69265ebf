// Package secrets stores the OAuth client credentials, the OAuth token and the application password.
//
// Each store is scoped to a single service name (e.g. 'smartsheet'). Values are never logged.
package secrets

import (
	"context"
	"fmt"
	"strings"
)

// Well known secret keys.
const (
	ClientID     = "client_id"
	ClientSecret = "client_secret"
	OAuthToken   = "oauth_token"
	AppPassword  = "app_password"
)

// Store is a named-secret store. Get returns an empty slice and a nil error for a secret that does not exist.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Require retrieves a secret, returning an error if it does not exist or is blank.
func Require(ctx context.Context, store Store, key string) (string, error) {
	v, err := store.Get(ctx, key)
	if err != nil {
		return "", err
	} else if strings.TrimSpace(string(v)) == "" {
		return "", fmt.Errorf("missing '%v' secret", key)
	}

	return strings.TrimSpace(string(v)), nil
}

func validate(key string) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("secret key cannot be empty")
	}

	return nil
}
