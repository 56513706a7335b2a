package middleware

import (
	"net/http"
	"time"
)

// RateLimitWithClock exposes the limiter with a fake clock and its tracked client count.
func RateLimitWithClock(rpm int, now func() time.Time) (func(http.Handler) http.Handler, func() int) {
	l := newRateLimiter(rpm, now)
	return l.middleware, l.size
}
