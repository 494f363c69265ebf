// Package auth acquires an authorised HTTP client for the spreadsheet service.
//
// The OAuth token is kept in the secret store. A stored token is refreshed on every acquisition and the
// refreshed token is saved back to the store. If there is no usable token the operator is asked to authorise
// the application in a browser.
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/moves-management/moves-upload/errs"
	"github.com/moves-management/moves-upload/secrets"
)

const (
	SmartsheetAuthURL  = "https://app.smartsheet.com/b/authorize"
	SmartsheetTokenURL = "https://api.smartsheet.com/2.0/token"
	RedirectURL        = "http://127.0.0.1:8080/"

	SHEETS = "https://www.googleapis.com/auth/spreadsheets"
)

// Timeout is the HTTP client timeout for the spreadsheet and token requests.
const Timeout = 60 * time.Second

var SmartsheetScopes = []string{"READ_SHEETS", "WRITE_SHEETS"}

// Prompt asks the operator to authorise the application at url and returns the authorisation code. state
// is the value the authorisation server returns with the code.
type Prompt func(ctx context.Context, url string, state string) (string, error)

type Provider struct {
	config *oauth2.Config
	store  secrets.Store
	prompt Prompt
	Warn   func(format string, args ...any)
}

// NewSmartsheet returns a provider for the Smartsheet API using the OAuth client credentials in the
// secret store.
func NewSmartsheet(ctx context.Context, store secrets.Store, prompt Prompt) (*Provider, error) {
	id, err := secrets.Require(ctx, store, secrets.ClientID)
	if err != nil {
		return nil, errs.ConfigError("credentials", "%v", err)
	}

	secret, err := secrets.Require(ctx, store, secrets.ClientSecret)
	if err != nil {
		return nil, errs.ConfigError("credentials", "%v", err)
	}

	config := oauth2.Config{
		ClientID:     id,
		ClientSecret: secret,
		Endpoint: oauth2.Endpoint{
			AuthURL:   SmartsheetAuthURL,
			TokenURL:  SmartsheetTokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
		RedirectURL: RedirectURL,
		Scopes:      SmartsheetScopes,
	}

	return NewProvider(&config, store, prompt), nil
}

// NewGoogle returns a provider for the Google Sheets API using the OAuth client in a Google 'credentials.json'
// file.
func NewGoogle(credentials string, store secrets.Store, prompt Prompt) (*Provider, error) {
	b, err := os.ReadFile(credentials)
	if err != nil {
		return nil, errs.ConfigError("credentials", "unable to read credentials file (%v)", err)
	}

	config, err := google.ConfigFromJSON(b, SHEETS)
	if err != nil {
		return nil, errs.ConfigError("credentials", "invalid credentials file (%v)", err)
	}

	if config.RedirectURL == "" || strings.HasPrefix(config.RedirectURL, "urn:") {
		config.RedirectURL = RedirectURL
	}

	return NewProvider(config, store, prompt), nil
}

func NewProvider(config *oauth2.Config, store secrets.Store, prompt Prompt) *Provider {
	return &Provider{
		config: config,
		store:  store,
		prompt: prompt,
	}
}

// AuthCodeURL returns the authorisation URL for a state token.
func (p *Provider) AuthCodeURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// Acquire returns an HTTP client that adds a valid bearer token to every request. A stored token is always
// refreshed first and the manual authorisation flow is only run if there is no stored token or the refresh
// fails.
func (p *Provider) Acquire(ctx context.Context) (*http.Client, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, &http.Client{Timeout: Timeout})

	token, err := p.load(ctx)
	if err != nil {
		return nil, err
	}

	if token != nil {
		if refreshed, err := p.refresh(ctx, token); err != nil {
			p.warn("token refresh failed (%v) - reauthorising", err)
			if err := p.store.Delete(ctx, secrets.OAuthToken); err != nil {
				return nil, errs.AuthError("acquire", err)
			}

			token = nil
		} else {
			token = refreshed
		}
	}

	if token == nil {
		if token, err = p.Authorise(ctx); err != nil {
			return nil, err
		}
	}

	src := &persistent{
		src:   p.config.TokenSource(ctx, token),
		store: p.store,
		last:  token.AccessToken,
		warn:  p.warn,
	}

	client := oauth2.NewClient(ctx, src)
	client.Timeout = Timeout

	return client, nil
}

// Authorise runs the manual authorisation flow and saves the token.
func (p *Provider) Authorise(ctx context.Context) (*oauth2.Token, error) {
	if p.prompt == nil {
		return nil, errs.AuthError("authorise", fmt.Errorf("no valid token and interactive authorisation is not available"))
	}

	state := uuid.NewString()
	code, err := p.prompt(ctx, p.AuthCodeURL(state), state)
	if err != nil {
		return nil, errs.AuthError("authorise", err)
	} else if strings.TrimSpace(code) == "" {
		return nil, errs.AuthError("authorise", fmt.Errorf("missing authorisation code"))
	}

	token, err := p.config.Exchange(ctx, strings.TrimSpace(code))
	if err != nil {
		return nil, errs.AuthError("authorise", fmt.Errorf("unable to retrieve token (%w)", err))
	}

	if err := save(ctx, p.store, token); err != nil {
		return nil, errs.AuthError("authorise", err)
	}

	return token, nil
}

// load returns the stored token. A corrupt token is deleted and treated as missing.
func (p *Provider) load(ctx context.Context) (*oauth2.Token, error) {
	b, err := p.store.Get(ctx, secrets.OAuthToken)
	if err != nil {
		return nil, errs.AuthError("load-token", err)
	} else if len(b) == 0 {
		return nil, nil
	}

	var token oauth2.Token
	if err := json.Unmarshal(b, &token); err != nil || (token.AccessToken == "" && token.RefreshToken == "") {
		p.warn("invalid stored token - reauthorising")
		if err := p.store.Delete(ctx, secrets.OAuthToken); err != nil {
			return nil, errs.AuthError("load-token", err)
		}

		return nil, nil
	}

	return &token, nil
}

func (p *Provider) refresh(ctx context.Context, token *oauth2.Token) (*oauth2.Token, error) {
	if token.RefreshToken == "" {
		return nil, fmt.Errorf("stored token has no refresh token")
	}

	refreshed, err := p.config.TokenSource(ctx, &oauth2.Token{RefreshToken: token.RefreshToken}).Token()
	if err != nil {
		return nil, err
	}

	if err := save(ctx, p.store, refreshed); err != nil {
		return nil, err
	}

	return refreshed, nil
}

func (p *Provider) warn(format string, args ...any) {
	if p.Warn != nil {
		p.Warn(format, args...)
	}
}

func save(ctx context.Context, store secrets.Store, token *oauth2.Token) error {
	b, err := json.Marshal(token)
	if err != nil {
		return err
	}

	if err := store.Set(ctx, secrets.OAuthToken, b); err != nil {
		return fmt.Errorf("unable to save token (%w)", err)
	}

	return nil
}

// persistent saves every new token issued by the wrapped token source.
type persistent struct {
	sync.Mutex
	src   oauth2.TokenSource
	store secrets.Store
	last  string
	warn  func(format string, args ...any)
}

func (p *persistent) Token() (*oauth2.Token, error) {
	token, err := p.src.Token()
	if err != nil {
		return nil, err
	}

	p.Lock()
	defer p.Unlock()

	if token.AccessToken != p.last {
		if err := save(context.Background(), p.store, token); err != nil {
			p.warn("%v", err)
		} else {
			p.last = token.AccessToken
		}
	}

	return token, nil
}
