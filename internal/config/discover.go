package config

import (
	"fmt"
	"os"
	"path/filepath"

	"deployfreq/internal/deploys"
)

const (
	// ConfigFileName is the file searched for when no path is given
	ConfigFileName = "deployfreq.yaml"

	// ConfigFileEnv names the environment variable holding a config path
	ConfigFileEnv = "DEPLOYFREQ_CONFIG_FILE"
)

// SearchPaths returns the config file locations, in lookup order:
// ./deployfreq.yaml, ./config/deployfreq.yaml, /etc/deployfreq/deployfreq.yaml
func SearchPaths() []string {
	return []string{
		filepath.Join(".", ConfigFileName),
		filepath.Join(".", "config", ConfigFileName),
		filepath.Join("/etc/deployfreq", ConfigFileName),
	}
}

// FindPath picks the config file to load. An explicit path wins, then the
// environment, then the first existing search path. An explicit or env path
// that does not exist is an error; finding nothing in the search paths returns
// an empty path so callers can fall back to Default.
func FindPath(explicit string) (string, error) {
	if explicit == "" {
		explicit = os.Getenv(ConfigFileEnv)
	}
	if explicit != "" {
		if !fileExists(explicit) {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	for _, path := range SearchPaths() {
		if fileExists(path) {
			return path, nil
		}
	}
	return "", nil
}

// Load finds and loads the configuration, falling back to Default when no
// file exists. The returned path is empty in that case.
func Load(explicit string) (*Config, map[string]deploys.Target, string, error) {
	path, err := FindPath(explicit)
	if err != nil {
		return nil, nil, "", err
	}

	if path == "" {
		cfg, targets, err := Resolve(Default())
		return cfg, targets, "", err
	}

	cfg, targets, err := LoadConfig(path)
	if err != nil {
		return nil, nil, path, err
	}
	return cfg, targets, path, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
