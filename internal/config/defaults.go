package config

import "time"

const (
	// DefaultAppStoreURL is the public Industrial App Store.
	DefaultAppStoreURL = "https://appstore.intelligentplant.com"

	// DefaultDeviceAuthorizationPath is the device authorization endpoint path.
	DefaultDeviceAuthorizationPath = "/AuthorizationServer/OAuth/DeviceAuthorization"

	// DefaultTokenPath is the token endpoint path.
	DefaultTokenPath = "/AuthorizationServer/OAuth/Token"

	// DefaultDataCoreURL is the Data Core API behind the public App Store.
	DefaultDataCoreURL = "https://appstore.intelligentplant.com/gestalt/datacore"

	DefaultRefreshSkew  = 30 * time.Second
	DefaultPollInterval = 5 * time.Second
	DefaultHTTPTimeout  = 30 * time.Second
)

// DefaultScopes are requested when the configuration names none.
var DefaultScopes = []string{"DataRead"}

// GetDefaultConfig returns the default configuration.
func GetDefaultConfig() IasctlConfig {
	return IasctlConfig{
		AppStore: AppStoreConfig{
			URL:                     DefaultAppStoreURL,
			DeviceAuthorizationPath: DefaultDeviceAuthorizationPath,
			TokenPath:               DefaultTokenPath,
		},
		Client: ClientConfig{
			Scopes: append([]string(nil), DefaultScopes...),
		},
		Session: SessionConfig{
			RefreshSkew:         DefaultRefreshSkew,
			DefaultPollInterval: DefaultPollInterval,
			HTTPTimeout:         DefaultHTTPTimeout,
		},
		DataCore: DataCoreConfig{
			URL: DefaultDataCoreURL,
		},
	}
}
