package cmd

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"iasctl/internal/config"
	"iasctl/internal/session"
	"iasctl/internal/tokencodec"
	"iasctl/pkg/logging"
	"iasctl/pkg/oauth"
)

// codecPurpose binds token files to this application.
const codecPurpose = "iasctl"

// defaultConfigPath returns ~/.config/iasctl, or a relative fallback when
// the home directory cannot be determined.
func defaultConfigPath() string {
	if _, err := os.UserHomeDir(); err != nil {
		return filepath.Join(".", ".iasctl")
	}
	return config.GetDefaultConfigPathOrPanic()
}

// loadConfig reads config.yaml and applies the global flag overrides.
func loadConfig() (config.IasctlConfig, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return config.IasctlConfig{}, err
	}

	if appStoreURL != "" {
		cfg.AppStore.URL = appStoreURL
	}
	if clientID != "" {
		cfg.Client.ID = clientID
	}
	if clientSecret != "" {
		cfg.Client.Secret = clientSecret
	}
	if len(clientScopes) > 0 {
		cfg.Client.Scopes = clientScopes
	}

	if err := cfg.Validate(); err != nil {
		return config.IasctlConfig{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// newSessionManager wires the OAuth client, the token key and the session
// manager for the configured host.
func newSessionManager(cfg config.IasctlConfig) (*session.Manager, error) {
	host, err := cfg.AppStore.Host()
	if err != nil {
		return nil, err
	}

	key, err := tokencodec.LoadOrCreateKey(cfg.Session.AppDataDir)
	if err != nil {
		return nil, err
	}
	codec, err := tokencodec.NewCodec(key, codecPurpose)
	if err != nil {
		return nil, err
	}

	client := oauth.NewClient(cfg.OAuthConfig(),
		oauth.WithHTTPClient(&http.Client{Timeout: cfg.Session.HTTPTimeout}),
		oauth.WithLogger(logging.Logger().With("subsystem", "OAuth")),
	)

	return session.New(session.Config{
		Host:                host,
		AppDataDir:          cfg.Session.AppDataDir,
		Codec:               codec,
		Client:              client,
		RefreshSkew:         cfg.Session.RefreshSkew,
		DefaultPollInterval: cfg.Session.DefaultPollInterval,
	})
}

// setupSession loads the configuration and builds a session manager.
func setupSession() (config.IasctlConfig, *session.Manager, error) {
	cfg, err := loadConfig()
	if err != nil {
		return config.IasctlConfig{}, nil, err
	}
	mgr, err := newSessionManager(cfg)
	if err != nil {
		return config.IasctlConfig{}, nil, err
	}
	return cfg, mgr, nil
}
