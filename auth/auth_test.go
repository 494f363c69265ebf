package auth

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/moves-management/moves-upload/errs"
	"github.com/moves-management/moves-upload/secrets"
)

type tokenServer struct {
	grants []string
}

func (s *tokenServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	r.ParseForm()

	grant := r.PostForm.Get("grant_type")
	s.grants = append(s.grants, grant)

	w.Header().Set("Content-Type", "application/json")

	if r.PostForm.Get("client_id") != "client" || r.PostForm.Get("client_secret") != "secret" {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"error":"invalid_client"}`)
		return
	}

	switch {
	case grant == "refresh_token" && r.PostForm.Get("refresh_token") == "good":
		io.WriteString(w, `{"access_token":"refreshed","token_type":"bearer","refresh_token":"good-2","expires_in":3600}`)

	case grant == "authorization_code" && r.PostForm.Get("code") == "abc":
		io.WriteString(w, `{"access_token":"authorised","token_type":"bearer","refresh_token":"fresh","expires_in":3600}`)

	default:
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"error":"invalid_grant"}`)
	}
}

func setup(t *testing.T, token string) (*tokenServer, *oauth2.Config, *secrets.Memory) {
	s := tokenServer{}
	server := httptest.NewServer(&s)
	t.Cleanup(server.Close)

	config := oauth2.Config{
		ClientID:     "client",
		ClientSecret: "secret",
		Endpoint: oauth2.Endpoint{
			AuthURL:   server.URL + "/authorize",
			TokenURL:  server.URL + "/token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
		RedirectURL: RedirectURL,
		Scopes:      SmartsheetScopes,
	}

	values := map[string]string{}
	if token != "" {
		values[secrets.OAuthToken] = token
	}

	return &s, &config, secrets.NewMemory(values)
}

func stored(t *testing.T, store secrets.Store) oauth2.Token {
	b, err := store.Get(context.Background(), secrets.OAuthToken)
	require.NoError(t, err)
	require.NotEmpty(t, b)

	var token oauth2.Token
	require.NoError(t, json.Unmarshal(b, &token))

	return token
}

func bearer(t *testing.T, client *http.Client) string {
	header := ""
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header = r.Header.Get("Authorization")
	}))

	defer api.Close()

	response, err := client.Get(api.URL)
	require.NoError(t, err)
	response.Body.Close()

	return header
}

func TestAcquireRefreshesStoredToken(t *testing.T) {
	s, config, store := setup(t, `{"access_token":"old","token_type":"bearer","refresh_token":"good"}`)

	prompted := false
	p := NewProvider(config, store, func(context.Context, string, string) (string, error) {
		prompted = true
		return "", fmt.Errorf("not expected")
	})

	client, err := p.Acquire(context.Background())
	require.NoError(t, err)

	assert.False(t, prompted)
	assert.Equal(t, []string{"refresh_token"}, s.grants)
	assert.Equal(t, "refreshed", stored(t, store).AccessToken)
	assert.Equal(t, "good-2", stored(t, store).RefreshToken)
	assert.Equal(t, Timeout, client.Timeout)
	assert.Equal(t, "Bearer refreshed", bearer(t, client))
}

func TestAcquireWithFailedRefresh(t *testing.T) {
	s, config, store := setup(t, `{"access_token":"old","token_type":"bearer","refresh_token":"revoked"}`)

	authURL := ""
	p := NewProvider(config, store, func(ctx context.Context, uri string, state string) (string, error) {
		authURL = uri
		return " abc ", nil
	})

	warnings := 0
	p.Warn = func(string, ...any) { warnings++ }

	client, err := p.Acquire(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"refresh_token", "authorization_code"}, s.grants)
	assert.Contains(t, authURL, "/authorize?")
	assert.Contains(t, authURL, "access_type=offline")
	assert.Equal(t, 1, warnings)
	assert.Equal(t, "authorised", stored(t, store).AccessToken)
	assert.Equal(t, "Bearer authorised", bearer(t, client))
}

func TestAcquireWithoutStoredToken(t *testing.T) {
	s, config, store := setup(t, "")

	p := NewProvider(config, store, func(ctx context.Context, uri string, state string) (string, error) {
		u, err := url.Parse(uri)
		require.NoError(t, err)
		assert.Equal(t, state, u.Query().Get("state"))
		assert.Equal(t, "READ_SHEETS WRITE_SHEETS", u.Query().Get("scope"))

		return "abc", nil
	})

	_, err := p.Acquire(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"authorization_code"}, s.grants)
	assert.Equal(t, "fresh", stored(t, store).RefreshToken)
}

func TestAcquireWithCorruptToken(t *testing.T) {
	s, config, store := setup(t, `{"access_token":`)

	p := NewProvider(config, store, func(context.Context, string, string) (string, error) {
		return "abc", nil
	})

	_, err := p.Acquire(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"authorization_code"}, s.grants)
	assert.Equal(t, "authorised", stored(t, store).AccessToken)
}

func TestAcquireWithInvalidCode(t *testing.T) {
	_, config, store := setup(t, "")

	p := NewProvider(config, store, func(context.Context, string, string) (string, error) {
		return "xyz", nil
	})

	_, err := p.Acquire(context.Background())

	assert.True(t, errs.IsAuth(err))

	b, _ := store.Get(context.Background(), secrets.OAuthToken)
	assert.Empty(t, b)
}

func TestAcquireWithoutPrompt(t *testing.T) {
	_, config, store := setup(t, `{"access_token":"old","token_type":"bearer","refresh_token":"revoked"}`)

	_, err := NewProvider(config, store, nil).Acquire(context.Background())

	assert.True(t, errs.IsAuth(err))

	b, _ := store.Get(context.Background(), secrets.OAuthToken)
	assert.Empty(t, b, "token that failed to refresh should be deleted")
}

func TestPersistentTokenSource(t *testing.T) {
	store := secrets.NewMemory(nil)
	src := persistent{
		src:   oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "next", RefreshToken: "r"}),
		store: store,
		last:  "first",
		warn:  func(string, ...any) {},
	}

	token, err := src.Token()
	require.NoError(t, err)

	assert.Equal(t, "next", token.AccessToken)
	assert.Equal(t, "next", stored(t, store).AccessToken)
	assert.Equal(t, "next", src.last)

	require.NoError(t, store.Delete(context.Background(), secrets.OAuthToken))

	_, err = src.Token()
	require.NoError(t, err)

	b, _ := store.Get(context.Background(), secrets.OAuthToken)
	assert.Empty(t, b, "unchanged token should not be saved again")
}

func TestNewSmartsheet(t *testing.T) {
	store := secrets.NewMemory(map[string]string{
		secrets.ClientID:     "client",
		secrets.ClientSecret: "secret",
	})

	p, err := NewSmartsheet(context.Background(), store, nil)
	require.NoError(t, err)

	uri := p.AuthCodeURL("state")
	assert.True(t, strings.HasPrefix(uri, SmartsheetAuthURL+"?"))
	assert.Contains(t, uri, "client_id=client")
	assert.Contains(t, uri, "redirect_uri="+url.QueryEscape(RedirectURL))
}

func TestNewSmartsheetWithoutClientCredentials(t *testing.T) {
	_, err := NewSmartsheet(context.Background(), secrets.NewMemory(map[string]string{secrets.ClientID: "client"}), nil)

	assert.True(t, errs.IsConfig(err))
}

func TestNewGoogle(t *testing.T) {
	credentials := filepath.Join(t.TempDir(), "credentials.json")
	content := `{"installed":{"client_id":"client.apps.googleusercontent.com","client_secret":"secret","auth_uri":"https://accounts.google.com/o/oauth2/auth","token_uri":"https://oauth2.googleapis.com/token","redirect_uris":["http://localhost"]}}`

	require.NoError(t, os.WriteFile(credentials, []byte(content), 0600))

	p, err := NewGoogle(credentials, secrets.NewMemory(nil), nil)
	require.NoError(t, err)

	assert.Contains(t, p.AuthCodeURL("state"), url.QueryEscape(SHEETS))

	_, err = NewGoogle(filepath.Join(t.TempDir(), "missing.json"), secrets.NewMemory(nil), nil)
	assert.True(t, errs.IsConfig(err))
}

func TestInteractive(t *testing.T) {
	var out strings.Builder

	prompt := Interactive("", strings.NewReader("abc123\n"), &out)

	code, err := prompt(context.Background(), "https://app.smartsheet.com/b/authorize?state=xyz", "xyz")
	require.NoError(t, err)

	assert.Equal(t, "abc123", code)
	assert.Contains(t, out.String(), "https://app.smartsheet.com/b/authorize?state=xyz")
}

func TestInteractiveReadsOnlyTheCodeLine(t *testing.T) {
	var out strings.Builder

	in := bufio.NewReader(strings.NewReader("abc123\nqwerty\n"))
	prompt := Interactive("", in, &out)

	code, err := prompt(context.Background(), "https://app.smartsheet.com/b/authorize?state=xyz", "xyz")
	require.NoError(t, err)
	assert.Equal(t, "abc123", code)

	rest, err := io.ReadAll(in)
	require.NoError(t, err)
	assert.Equal(t, "qwerty\n", string(rest))
}

func TestInteractiveWithCancelledContext(t *testing.T) {
	var out strings.Builder

	r, w := io.Pipe()
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Interactive("", r, &out)(ctx, "https://example.com", "xyz")

	assert.ErrorIs(t, err, context.Canceled)
}

func TestReadLine(t *testing.T) {
	in := strings.NewReader("abc\ndef")

	line, err := readLine(in)
	require.NoError(t, err)
	assert.Equal(t, "abc\n", line)

	line, err = readLine(in)
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, "def", line)
}

func TestInteractiveWithoutCode(t *testing.T) {
	var out strings.Builder

	_, err := Interactive("", strings.NewReader(""), &out)(context.Background(), "https://example.com", "xyz")

	assert.Error(t, err)
}

func TestParseCode(t *testing.T) {
	assert.Equal(t, "abc", ParseCode(" abc \n"))
	assert.Equal(t, "abc", ParseCode("http://127.0.0.1:8080/?code=abc&state=xyz"))
	assert.Equal(t, "", ParseCode(""))
}
