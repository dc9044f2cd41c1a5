package notifier

import "context"

// NoOpAlerter is used when no alert channel is configured.
type NoOpAlerter struct{}

// NewNoOpAlerter creates a NoOpAlerter.
func NewNoOpAlerter() *NoOpAlerter {
	return &NoOpAlerter{}
}

// NotifyFailure does nothing.
func (n *NoOpAlerter) NotifyFailure(context.Context, Alert) error {
	return nil
}
