package storage

import (
	"context"
	"errors"
	"io"
)

// Client defines the blob storage upload contract. Implementations return
// the public URL of the stored object.
type Client interface {
	Upload(ctx context.Context, path string, content io.Reader, contentType string) (string, error)
}

// RetryableError wraps upload failures that are worth retrying (network
// problems, 5xx responses). Everything else is terminal.
type RetryableError struct {
	Err error
}

func (e *RetryableError) Error() string {
	return "retryable upload error: " + e.Err.Error()
}

func (e *RetryableError) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether an upload error may succeed on retry.
func IsRetryable(err error) bool {
	var retryable *RetryableError
	return errors.As(err, &retryable)
}
