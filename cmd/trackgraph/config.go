// Config loading for the trackgraph CLI.
package main

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// configFileName is looked up in the current working directory.
const configFileName = ".trackgraph.yaml"

// cliConfig mirrors the optional .trackgraph.yaml file.
type cliConfig struct {
	// Database is the path of the lineage database file.
	Database string `yaml:"database"`
}

// resolveDatabasePath returns the database path with --db taking precedence
// over the config file. A missing config file is not an error.
func resolveDatabasePath(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}

	raw, err := os.ReadFile(configFileName)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", configFileName, err)
	}

	var cfg cliConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return "", fmt.Errorf("parse %s: %w", configFileName, err)
	}

	return cfg.Database, nil
}
