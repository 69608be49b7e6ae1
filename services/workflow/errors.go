package workflow

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrSessionNotFound is returned when no resumable state exists for a
// session id.
var ErrSessionNotFound = errors.New("wizard session not found or expired")

// ErrSubmissionInFlight is returned when a step or settlement call is
// already outstanding for the session.
var ErrSubmissionInFlight = errors.New("a submission is already in progress for this session")

// ValidationError is a local, field-scoped step failure. It never reaches
// the network and is recovered by re-prompting the user.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func newValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string]string)}
}

func (e *ValidationError) add(field, msg string) {
	e.Fields[field] = msg
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// SyncError is a failed Booking Service call. The step pointer and
// persisted state are unchanged; the caller retries manually.
type SyncError struct {
	Message string
	Err     error
}

func (e *SyncError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("booking service sync failed: %v", e.Err)
}

func (e *SyncError) Unwrap() error { return e.Err }

// PricingError is an unmapped or inconsistent (serviceType, packageType)
// combination; it blocks progression to payment.
type PricingError struct {
	Message string
}

func (e *PricingError) Error() string { return e.Message }

// PaymentError is a channel-specific settlement failure. The draft remains
// unsettled; the user may retry or switch channels.
type PaymentError struct {
	Channel string
	Message string
	Err     error
}

func (e *PaymentError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s payment failed: %s: %v", e.Channel, e.Message, e.Err)
	}
	return fmt.Sprintf("%s payment failed: %s", e.Channel, e.Message)
}

func (e *PaymentError) Unwrap() error { return e.Err }
