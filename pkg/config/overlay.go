package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// LoadDotEnv loads variables from the given .env files (default ".env") into
// the process environment. Variables that are already set are kept. A missing
// file is not an error.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// ApplyYAMLOverlay reads a flat YAML mapping of environment variable names to
// scalar values and sets each one that is not already present in the
// environment. The environment always wins over the file.
//
//	TO_EMAIL: someone@example.com
//	NEWS_PAGE_SIZE: 5
//	GMAIL_INTERACTIVE_AUTH: false
//
// It returns the keys it applied.
func ApplyYAMLOverlay(path string) ([]string, error) {
	// #nosec G304 -- path comes from the -config flag
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var values map[string]interface{}
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	applied := make([]string, 0, len(values))
	for key, raw := range values {
		if _, set := os.LookupEnv(key); set {
			continue
		}
		value, err := scalarString(raw)
		if err != nil {
			return applied, fmt.Errorf("config file key %s: %w", key, err)
		}
		if err := os.Setenv(key, value); err != nil {
			return applied, fmt.Errorf("set %s: %w", key, err)
		}
		applied = append(applied, key)
	}
	return applied, nil
}

func scalarString(v interface{}) (string, error) {
	switch t := v.(type) {
	case nil:
		return "", nil
	case string:
		return t, nil
	case bool:
		return strconv.FormatBool(t), nil
	case int:
		return strconv.Itoa(t), nil
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), nil
	default:
		return "", fmt.Errorf("value must be a scalar, got %T", v)
	}
}
