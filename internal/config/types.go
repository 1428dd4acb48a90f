package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"iasctl/pkg/oauth"
)

// IasctlConfig is the top-level configuration structure for iasctl.
type IasctlConfig struct {
	AppStore AppStoreConfig `yaml:"appStore"`
	Client   ClientConfig   `yaml:"client"`
	Session  SessionConfig  `yaml:"session"`
	DataCore DataCoreConfig `yaml:"dataCore"`
}

// AppStoreConfig locates the Industrial App Store authorization server.
type AppStoreConfig struct {
	URL                     string `yaml:"url"`
	DeviceAuthorizationPath string `yaml:"deviceAuthorizationPath,omitempty"`
	TokenPath               string `yaml:"tokenPath,omitempty"`
}

// ClientConfig identifies the registered OAuth client.
type ClientConfig struct {
	ID string `yaml:"id"`
	// Secret is optional. Empty and the public-client placeholder are never sent.
	Secret string   `yaml:"secret,omitempty"`
	Scopes []string `yaml:"scopes,omitempty"`
}

// SessionConfig tunes the session manager.
type SessionConfig struct {
	// AppDataDir holds keys and tokens. Defaults to the config directory.
	AppDataDir          string        `yaml:"appDataDir,omitempty"`
	RefreshSkew         time.Duration `yaml:"refreshSkew,omitempty"`
	DefaultPollInterval time.Duration `yaml:"defaultPollInterval,omitempty"`
	HTTPTimeout         time.Duration `yaml:"httpTimeout,omitempty"`
}

// DataCoreConfig locates the Data Core API used by "iasctl api".
type DataCoreConfig struct {
	URL string `yaml:"url"`
}

// EndpointURL resolves an API path, or an absolute URL, against the Data
// Core base URL.
func (d DataCoreConfig) EndpointURL(path string) string {
	return joinURL(d.URL, path)
}

// Host returns the App Store host name; it keys the token file.
func (a AppStoreConfig) Host() (string, error) {
	u, err := url.Parse(a.URL)
	if err != nil {
		return "", fmt.Errorf("invalid App Store URL %q: %w", a.URL, err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("App Store URL %q has no host", a.URL)
	}
	return u.Host, nil
}

// DeviceAuthorizationURL returns the absolute device authorization endpoint.
func (a AppStoreConfig) DeviceAuthorizationURL() string {
	return joinURL(a.URL, a.DeviceAuthorizationPath)
}

// TokenURL returns the absolute token endpoint.
func (a AppStoreConfig) TokenURL() string {
	return joinURL(a.URL, a.TokenPath)
}

// OAuthConfig returns the OAuth client configuration.
func (c IasctlConfig) OAuthConfig() oauth.Config {
	return oauth.Config{
		DeviceAuthorizationURL: c.AppStore.DeviceAuthorizationURL(),
		TokenURL:               c.AppStore.TokenURL(),
		ClientID:               c.Client.ID,
		ClientSecret:           c.Client.Secret,
		Scopes:                 c.Client.Scopes,
	}
}

// joinURL joins base and path, accepting an absolute path override.
func joinURL(base, path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}
