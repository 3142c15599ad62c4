package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"

	"github.com/joho/godotenv"
	"golang.org/x/oauth2"

	"github.com/jo-hoe/go-custom-uploader/app/config"
	"github.com/jo-hoe/go-custom-uploader/app/transport"
)

const defaultConfigPath = "config.yaml"

func main() {
	// initialize slog default logger for CLI
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	_ = godotenv.Load(".env")

	configPath := defaultConfigPath
	if len(os.Args) >= 2 {
		configPath = os.Args[1]
	}
	if err := generateToken(context.Background(), configPath); err != nil {
		slog.Error("could not generate token", "error", err)
		os.Exit(1)
	}
}

func generateToken(ctx context.Context, configPath string) error {
	cfg, err := config.NewConfigFromFile(configPath)
	if err != nil {
		return err
	}
	if cfg.Auth.Type != transport.AuthOAuth2 {
		return fmt.Errorf("auth.type in '%s' is '%s', want '%s'", configPath, cfg.Auth.Type, transport.AuthOAuth2)
	}
	if cfg.Auth.AuthURL == "" || cfg.Auth.RedirectURL == "" {
		return fmt.Errorf("auth.authUrl and auth.redirectUrl are required to request a token")
	}
	return getTokenFromWeb(ctx, cfg.Auth.OAuth2Config(), cfg.Auth.TokenFile)
}

// getTokenFromWeb runs the authorization code flow and stores the token once the browser is redirected back.
func getTokenFromWeb(ctx context.Context, oauthConfig *oauth2.Config, tokenFile string) error {
	redirect, err := url.Parse(oauthConfig.RedirectURL)
	if err != nil {
		return fmt.Errorf("invalid auth.redirectUrl: %w", err)
	}

	authURL := oauthConfig.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
	slog.Info("Open browser to authorize", "auth_url", authURL)

	done := make(chan error, 1)
	finish := func(err error) {
		select {
		case done <- err:
		default:
		}
	}
	mux := http.NewServeMux()
	mux.HandleFunc(pathOrRoot(redirect.Path), func(res http.ResponseWriter, req *http.Request) {
		if state := req.URL.Query().Get("state"); state != "state-token" {
			http.Error(res, "unexpected state", http.StatusBadRequest)
			return
		}
		authCode := req.URL.Query().Get("code")
		if authCode == "" {
			slog.Warn("authCode was empty")
			http.Error(res, "missing code", http.StatusBadRequest)
			return
		}
		token, err := oauthConfig.Exchange(ctx, authCode)
		if err != nil {
			slog.Error("token exchange failed", "error", err)
			http.Error(res, "token exchange failed", http.StatusBadGateway)
			finish(err)
			return
		}
		if err := transport.SaveToken(tokenFile, token); err != nil {
			http.Error(res, "could not save token", http.StatusInternalServerError)
			finish(err)
			return
		}
		fmt.Fprintln(res, "Token saved. You can close this window.")
		finish(nil)
	})

	server := &http.Server{Addr: redirect.Host, Handler: mux}
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			finish(err)
		}
	}()

	err = <-done
	if shutdownErr := server.Shutdown(ctx); shutdownErr != nil {
		slog.Error("error stopping callback server", "error", shutdownErr)
	}
	return err
}

func pathOrRoot(p string) string {
	if p == "" {
		return "/"
	}
	return p
}
