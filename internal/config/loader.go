package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"iasctl/pkg/logging"

	"gopkg.in/yaml.v3"
)

const (
	userConfigDir  = ".config/iasctl"
	configFileName = "config.yaml"
)

func GetDefaultConfigPathOrPanic() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		panic(fmt.Errorf("could not determine user config directory: %w", err))
	}

	return filepath.Join(homeDir, userConfigDir)
}

// LoadConfig loads configuration from a single specified directory.
// Values missing from config.yaml keep their defaults.
func LoadConfig(configPath string) (IasctlConfig, error) {
	configFilePath := filepath.Join(configPath, configFileName)
	config := GetDefaultConfig()

	data, err := os.ReadFile(configFilePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logging.Info("ConfigLoader", "No config.yaml found at %s, using defaults", configFilePath)
			config.Session.AppDataDir = configPath
			return config, nil
		}
		logging.Info("ConfigLoader", "Error loading config.yaml from %s: %s", configFilePath, err)
		return IasctlConfig{}, err
	}
	err = yaml.Unmarshal(data, &config)
	if err != nil {
		// config malformed
		return IasctlConfig{}, fmt.Errorf("error loading config from %s: %w", configFilePath, err)
	}
	if config.Session.AppDataDir == "" {
		config.Session.AppDataDir = configPath
	}
	if len(config.Client.Scopes) == 0 {
		config.Client.Scopes = append([]string(nil), DefaultScopes...)
	}
	logging.Info("ConfigLoader", "Loaded configuration from %s", configFilePath)
	return config, nil
}
