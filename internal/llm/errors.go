package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// RateLimitError is returned when the provider answers HTTP 429.
type RateLimitError struct {
	// RetryAfter is the wait the provider asked for, zero when it gave none.
	RetryAfter time.Duration
	Err        error
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited, retry in %s: %v", e.RetryAfter, e.Err)
	}
	return fmt.Sprintf("rate limited: %v", e.Err)
}

func (e *RateLimitError) Unwrap() error { return e.Err }

// InvalidResponseError is returned when the model answered but the content
// is empty, not JSON, or does not match the request schema.
type InvalidResponseError struct {
	Content json.RawMessage
	Err     error
}

func (e *InvalidResponseError) Error() string {
	return fmt.Sprintf("unusable model response: %v", e.Err)
}

func (e *InvalidResponseError) Unwrap() error { return e.Err }

// UnavailableError is returned when the provider cannot serve the request.
// Status is the HTTP status when one was received, otherwise zero.
type UnavailableError struct {
	Status int
	Err    error
}

func (e *UnavailableError) Error() string {
	switch {
	case e.Status != 0 && e.Err != nil:
		return fmt.Sprintf("provider unavailable (HTTP %d): %v", e.Status, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("provider unavailable: %v", e.Err)
	default:
		return "provider unavailable"
	}
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// TruncatedError is returned when output stopped at the token limit before
// it formed a complete document.
type TruncatedError struct {
	Content json.RawMessage
}

func (e *TruncatedError) Error() string {
	return "model output cut off at the token limit"
}

// Retryable reports whether sending the same request again may succeed.
// Cancellation, truncation and client errors other than 408 and 429 are
// final.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var trunc *TruncatedError
	if errors.As(err, &trunc) {
		return false
	}
	var unavail *UnavailableError
	if errors.As(err, &unavail) && unavail.Status >= 400 && unavail.Status < 500 &&
		unavail.Status != http.StatusRequestTimeout {
		return false
	}
	return true
}

// statusError classifies a failed HTTP exchange with a provider API.
func statusError(status int, header http.Header, err error) error {
	if status == http.StatusTooManyRequests {
		return &RateLimitError{RetryAfter: retryAfter(header), Err: err}
	}
	return &UnavailableError{Status: status, Err: err}
}

// retryAfter reads a Retry-After header given in seconds or as an HTTP date.
func retryAfter(header http.Header) time.Duration {
	v := header.Get("Retry-After")
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(v); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
	}
	return 0
}
