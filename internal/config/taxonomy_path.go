package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// defaultTaxonomyDir is the subdirectory within the user's home directory
// searched for relative taxonomy paths.
const defaultTaxonomyDir = ".config/admatch"

// ResolveTaxonomyPath finds the taxonomy artifact. An absolute path is used
// as is. A relative path is tried against the working directory first and
// then against ~/.config/admatch/.
func ResolveTaxonomyPath(configuredPath string) (string, error) {
	if configuredPath == "" {
		return "", errors.New("taxonomy path is empty")
	}
	if filepath.IsAbs(configuredPath) {
		return configuredPath, nil
	}

	if _, err := os.Stat(configuredPath); err == nil {
		return filepath.Abs(configuredPath)
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("taxonomy file %q not found and home directory is unknown: %w", configuredPath, err)
	}
	fallback := filepath.Join(homeDir, defaultTaxonomyDir, configuredPath)
	if _, err := os.Stat(fallback); err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("taxonomy file %q not found in the working directory or at %s", configuredPath, fallback)
		}
		return "", fmt.Errorf("failed to stat taxonomy file %s: %w", fallback, err)
	}
	return fallback, nil
}
