package models

import (
	"errors"
	"fmt"
	"time"
)

// ValidationError reports malformed or missing request input. Requests that
// fail validation are rejected before any side effect.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// RateLimitError reports a caller exceeding the per-window request ceiling
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded, retry after %s", e.RetryAfter)
}

// NotFoundError reports a requested resource resolving to nothing owned by
// the caller.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// PayloadTooLargeError reports output exceeding a format ceiling. Estimated
// is true when the rejection happened on the cheap size estimate, before any
// bytes were generated.
type PayloadTooLargeError struct {
	Format    string
	Size      int64
	Limit     int64
	Estimated bool
}

func (e *PayloadTooLargeError) Error() string {
	kind := "output"
	if e.Estimated {
		kind = "estimated output"
	}
	return fmt.Sprintf("%s %s size %d exceeds limit %d", e.Format, kind, e.Size, e.Limit)
}

// ParseError reports a file that cannot be decoded in its declared format at
// all. Record-level problems are accumulated in ParseResult.Errors instead.
type ParseError struct {
	Format string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse file as %s: %s", e.Format, e.Reason)
}

// PersistenceError reports an individual record write failure. These are
// always caught and classified into a FailedRecord outcome, never propagated
// raw to the caller.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("storage %s failed: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err is a NotFoundError
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsValidation reports whether err is a ValidationError
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsPayloadTooLarge reports whether err is a PayloadTooLargeError
func IsPayloadTooLarge(err error) bool {
	var pe *PayloadTooLargeError
	return errors.As(err, &pe)
}

// IsRateLimited reports whether err is a RateLimitError
func IsRateLimited(err error) bool {
	var re *RateLimitError
	return errors.As(err, &re)
}

// IsParseError reports whether err is a ParseError
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}
