package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"
)

// ApplyEnvironment loads EnvFile (if any) and then sets Exports in the
// current process so that every spawned program inherits them. Exports win
// over values from EnvFile; neither overrides variables already set by the
// parent unless listed in Exports.
func (c *Config) ApplyEnvironment() error {
	if c.EnvFile != "" {
		path, err := expandHome(c.EnvFile)
		if err != nil {
			return err
		}
		if err := godotenv.Load(path); err != nil {
			return &ValidationError{Path: "env_file", Err: err}
		}
	}

	keys := make([]string, 0, len(c.Exports))
	for k := range c.Exports {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := os.Setenv(k, os.ExpandEnv(c.Exports[k])); err != nil {
			return fmt.Errorf("export %s: %w", k, err)
		}
	}
	return nil
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
