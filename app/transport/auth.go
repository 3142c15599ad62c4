package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/dghubble/oauth1"
	"golang.org/x/oauth2"
)

const (
	AuthNone   = "none"
	AuthBearer = "bearer"
	AuthOAuth2 = "oauth2"
	AuthOAuth1 = "oauth1"
)

// AuthConfig selects how outgoing requests are authorized.
type AuthConfig struct {
	Type string `yaml:"type"` // "none" | "bearer" | "oauth2" | "oauth1"

	// bearer
	Token string `yaml:"token"`

	// oauth2
	ClientID     string   `yaml:"clientId"`
	ClientSecret string   `yaml:"clientSecret"`
	AuthURL      string   `yaml:"authUrl"`
	TokenURL     string   `yaml:"tokenUrl"`
	RedirectURL  string   `yaml:"redirectUrl"`
	Scopes       []string `yaml:"scopes"`
	TokenFile    string   `yaml:"tokenFile"`

	// oauth1
	ConsumerKey    string `yaml:"consumerKey"`
	ConsumerSecret string `yaml:"consumerSecret"`
	AccessToken    string `yaml:"accessToken"`
	AccessSecret   string `yaml:"accessSecret"`
}

// Validate checks that the fields required by the selected type are set.
func (a *AuthConfig) Validate() error {
	switch strings.TrimSpace(a.Type) {
	case "", AuthNone:
		return nil
	case AuthBearer:
		if a.Token == "" {
			return fmt.Errorf("auth.token is empty")
		}
	case AuthOAuth2:
		if a.ClientID == "" || a.TokenURL == "" {
			return fmt.Errorf("auth.clientId and auth.tokenUrl are required for oauth2")
		}
		if a.TokenFile == "" {
			return fmt.Errorf("auth.tokenFile is required for oauth2")
		}
	case AuthOAuth1:
		if a.ConsumerKey == "" || a.ConsumerSecret == "" || a.AccessToken == "" || a.AccessSecret == "" {
			return fmt.Errorf("auth.consumerKey, auth.consumerSecret, auth.accessToken and auth.accessSecret are required for oauth1")
		}
	default:
		return fmt.Errorf("invalid auth.type '%s' (supported: none, bearer, oauth2, oauth1)", a.Type)
	}
	return nil
}

// OAuth2Config returns the oauth2 client configuration.
func (a *AuthConfig) OAuth2Config() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     a.ClientID,
		ClientSecret: a.ClientSecret,
		RedirectURL:  a.RedirectURL,
		Scopes:       a.Scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  a.AuthURL,
			TokenURL: a.TokenURL,
		},
	}
}

// NewHTTPClient creates an http client that authorizes requests according to auth.
func NewHTTPClient(ctx context.Context, auth AuthConfig, timeout time.Duration) (*http.Client, error) {
	if err := auth.Validate(); err != nil {
		return nil, err
	}

	var client *http.Client
	switch strings.TrimSpace(auth.Type) {
	case AuthBearer:
		client = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: auth.Token, TokenType: "Bearer"}))
	case AuthOAuth2:
		token, err := TokenFromFile(auth.TokenFile)
		if err != nil {
			return nil, fmt.Errorf("could not read token file '%s' (run the token command first): %w", auth.TokenFile, err)
		}
		src := &savingTokenSource{
			base: auth.OAuth2Config().TokenSource(ctx, token),
			path: auth.TokenFile,
			last: token.AccessToken,
		}
		client = oauth2.NewClient(ctx, src)
	case AuthOAuth1:
		config := oauth1.NewConfig(auth.ConsumerKey, auth.ConsumerSecret)
		token := oauth1.NewToken(auth.AccessToken, auth.AccessSecret)
		client = config.Client(ctx, token)
	default:
		client = &http.Client{}
	}
	client.Timeout = timeout
	return client, nil
}

// savingTokenSource writes refreshed tokens back to the token file.
type savingTokenSource struct {
	base oauth2.TokenSource
	path string

	mu   sync.Mutex
	last string
}

func (s *savingTokenSource) Token() (*oauth2.Token, error) {
	token, err := s.base.Token()
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if token.AccessToken != s.last {
		s.last = token.AccessToken
		if err := SaveToken(s.path, token); err != nil {
			slog.Warn("could not persist refreshed token", "path", s.path, "error", err)
		}
	}
	return token, nil
}

// TokenFromFile retrieves a token from a local file.
func TokenFromFile(filePath string) (*oauth2.Token, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	token := &oauth2.Token{}
	err = json.NewDecoder(file).Decode(token)
	return token, err
}

// SaveToken saves a token to a file path.
func SaveToken(path string, token *oauth2.Token) error {
	slog.Info("saving credential file", "path", path)
	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			slog.Error("error closing file", "error", cerr)
		}
	}()
	return json.NewEncoder(file).Encode(token)
}
