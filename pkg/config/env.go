// Package config provides environment variable helpers for settings that must
// fail closed: a malformed value is reported as an error instead of being
// silently replaced by its default.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// GetEnvString returns the trimmed value of an environment variable or the
// default value if not set or blank.
//
// Example:
//
//	query := GetEnvString("NEWS_QUERY", `"AI" OR "人工知能" OR "機械学習"`)
func GetEnvString(key, defaultValue string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	return value
}

// RequireEnvString returns the value of key or an error when it is unset or blank.
func RequireEnvString(key string) (string, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return "", fmt.Errorf("%s is required", key)
	}
	return value, nil
}

// GetEnvInt returns the value of an environment variable as an integer.
// An unset variable yields defaultValue; a malformed one yields an error.
//
// Example:
//
//	pageSize, err := GetEnvInt("NEWS_PAGE_SIZE", 5)
func GetEnvInt(key string, defaultValue int) (int, error) {
	valueStr := strings.TrimSpace(os.Getenv(key))
	if valueStr == "" {
		return defaultValue, nil
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue, fmt.Errorf("%s=%q is not an integer", key, valueStr)
	}
	return value, nil
}

// GetEnvBool returns the value of an environment variable as a boolean.
//
// Accepted true values: "1", "t", "T", "true", "TRUE", "True"
// Accepted false values: "0", "f", "F", "false", "FALSE", "False"
func GetEnvBool(key string, defaultValue bool) (bool, error) {
	valueStr := strings.TrimSpace(os.Getenv(key))
	if valueStr == "" {
		return defaultValue, nil
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue, fmt.Errorf("%s=%q is not a boolean", key, valueStr)
	}
	return value, nil
}

// GetEnvDuration returns the value of an environment variable as a time.Duration.
// The value must be parseable by time.ParseDuration (e.g., "10s", "1m30s").
func GetEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	valueStr := strings.TrimSpace(os.Getenv(key))
	if valueStr == "" {
		return defaultValue, nil
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue, fmt.Errorf("%s=%q is not a duration", key, valueStr)
	}
	return value, nil
}
