package ingest

import (
	"errors"
	"math/rand"
	"time"

	"codexrag/internal/llm"
	"codexrag/internal/wordpress"
)

const MaxRetries = 3

// IsRetryable checks if an error is worth retrying.
func IsRetryable(err error) bool {
	var llmErr *llm.RetryableError
	var wpErr *wordpress.RetryableError
	return errors.As(err, &llmErr) || errors.As(err, &wpErr)
}

// Backoff returns a duration for attempt n (0-indexed) with jitter.
func Backoff(attempt int) time.Duration {
	base := time.Duration(1<<uint(attempt)) * time.Second
	if base > 30*time.Second {
		base = 30 * time.Second
	}
	jitter := time.Duration(rand.Int63n(int64(base) / 2))
	return base + jitter
}
