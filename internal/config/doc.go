// Package config provides configuration management for iasctl.
//
// Configuration is loaded from a single directory. The default directory is
// ~/.config/iasctl; users can point at another one with --config-path.
//
// # Configuration Directory
//
// The directory contains:
//   - config.yaml (main configuration file, optional)
//   - .keys/tokens.key (generated on first sign-in)
//   - .tokens/ (one encrypted token file per Industrial App Store host)
//
// The key and token locations can be moved with session.appDataDir.
//
// # Example
//
//	appStore:
//	  url: https://appstore.intelligentplant.com
//	client:
//	  id: my-registered-client
//	  scopes: [DataRead, UserInfo]
//	session:
//	  refreshSkew: 30s
//	dataCore:
//	  url: https://appstore.intelligentplant.com/gestalt/datacore
//
// A missing config.yaml is not an error: defaults are used. Command-line
// flags override values from the file.
package config
