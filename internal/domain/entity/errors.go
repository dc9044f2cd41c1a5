package entity

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain layer operations.
var (
	// ErrInvalidInput indicates that the provided input is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrValidationFailed indicates that validation checks have failed
	ErrValidationFailed = errors.New("validation failed")
)

// ValidationError represents a validation error with detailed field information.
// It implements the error interface and provides context about which field failed validation.
type ValidationError struct {
	Field   string
	Message string
}

// Error returns a formatted error message for the validation error.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// Is makes every ValidationError match ErrValidationFailed.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidationFailed
}

// ConfigError reports a missing or malformed setting. It is raised before
// any network work starts.
type ConfigError struct {
	Key string
	Err error
}

func (e *ConfigError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("config: %v", e.Err)
	}
	return fmt.Sprintf("config %s: %v", e.Key, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// NetworkError reports a failed call to the news source.
// StatusCode is zero when no HTTP response was received.
type NetworkError struct {
	Op         string
	StatusCode int
	Code       string
	Err        error
}

func (e *NetworkError) Error() string {
	msg := e.Op
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (HTTP %d)", e.StatusCode)
	}
	if e.Code != "" {
		msg += " [" + e.Code + "]"
	}
	return fmt.Sprintf("%s: %v", msg, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// SummarizationError reports a failed summary for one article. The digest
// service turns it into the summary placeholder.
type SummarizationError struct {
	URL string
	Err error
}

func (e *SummarizationError) Error() string {
	return fmt.Sprintf("summarize %s: %v", e.URL, e.Err)
}

func (e *SummarizationError) Unwrap() error { return e.Err }

// Delivery stages.
const (
	DeliveryStageCredential = "credential"
	DeliveryStageSend       = "send"
)

// DeliveryError reports a failure to obtain a mail credential or to send.
type DeliveryError struct {
	Stage string
	Err   error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("deliver digest (%s): %v", e.Stage, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }
