package domain

import (
	"fmt"
	"time"
)

// RateLimitedError is a remote-imposed pacing signal. The caller must sleep
// RetryAfter before the next attempt.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited, retry after %s", e.RetryAfter)
}

// RemoteError is a rejection from the remote side (blocked recipient, chat not
// found, permission denied, ...). May be transient or permanent.
type RemoteError struct {
	Code    int
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote error %d: %s", e.Code, e.Message)
}
