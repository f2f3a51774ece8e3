package telegram

import (
	"errors"
	"fmt"
	"time"
)

// APIError is a Bot API level failure (ok=false or non-2xx HTTP status).
// RetryAfter carries the throttle duration from response parameters when the
// API asked us to back off.
type APIError struct {
	Code        int
	Description string
	RetryAfter  time.Duration
}

func (e *APIError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("telegram api %d: %s (retry after %s)", e.Code, e.Description, e.RetryAfter)
	}
	return fmt.Sprintf("telegram api %d: %s", e.Code, e.Description)
}

// IsThrottled reports whether the API signalled rate limiting (429).
func IsThrottled(err error) bool {
	var ae *APIError
	return errors.As(err, &ae) && ae.Code == 429
}

// IsForbidden reports whether the recipient is unreachable, typically
// because they blocked or removed the bot (403).
func IsForbidden(err error) bool {
	var ae *APIError
	return errors.As(err, &ae) && ae.Code == 403
}

// RetryAfter extracts the throttle delay from an error, if present.
func RetryAfter(err error) (time.Duration, bool) {
	var ae *APIError
	if errors.As(err, &ae) && ae.Code == 429 && ae.RetryAfter > 0 {
		return ae.RetryAfter, true
	}
	return 0, false
}
