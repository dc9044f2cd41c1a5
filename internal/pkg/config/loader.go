package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// LoadResult is the outcome of loading one setting with fallback.
// When FallbackApplied is true, Value holds the default and Warning says why.
type LoadResult[T any] struct {
	Value           T
	Warning         string
	FallbackApplied bool
}

// LoadEnv reads envKey, parses it and validates it. An unset or empty
// variable yields the default without a warning; a value that fails parsing
// or validation yields the default with a warning. It never returns an error.
//
// Warning format:
//
//	"Invalid {envKey}='{value}': {error}, falling back to default '{default}'"
//
// Example:
//
//	result := LoadEnv("CRON_SCHEDULE", "0 8 * * *", ParseString, ValidateCronSchedule)
//	if result.FallbackApplied {
//	    logger.Warn("configuration fallback applied", slog.String("warning", result.Warning))
//	}
func LoadEnv[T any](envKey string, defaultValue T, parse func(string) (T, error), validate func(T) error) LoadResult[T] {
	raw := os.Getenv(envKey)
	if raw == "" {
		return LoadResult[T]{Value: defaultValue}
	}

	value, err := parse(raw)
	if err == nil && validate != nil {
		err = validate(value)
	}
	if err != nil {
		return LoadResult[T]{
			Value:           defaultValue,
			Warning:         fmt.Sprintf("Invalid %s='%s': %v, falling back to default '%v'", envKey, raw, err, defaultValue),
			FallbackApplied: true,
		}
	}

	return LoadResult[T]{Value: value}
}

// ParseString is the identity parser for LoadEnv.
func ParseString(s string) (string, error) { return s, nil }

// ParseInt parses a base-10 integer.
func ParseInt(s string) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid integer format")
	}
	return v, nil
}

// ParseDuration parses a Go duration string such as "10m" or "1h30m".
func ParseDuration(s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration format")
	}
	return d, nil
}

// ParseBool accepts the strconv.ParseBool spellings.
func ParseBool(s string) (bool, error) {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid boolean format")
	}
	return b, nil
}
