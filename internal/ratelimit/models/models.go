// Package models holds the rate limit result and wire types.
package models

import (
	"strings"
	"time"
)

// Result is the outcome of one limiter check.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
	// RetryAfter is in whole seconds and only set when Allowed is false.
	RetryAfter int
}

// Scope names a family of limited endpoints.
type Scope string

const ScopeVerify Scope = "verify"

// IPKey builds the bucket key for ip within scope. Colons are escaped so an
// IPv6 address cannot be read as extra key segments.
func IPKey(scope Scope, ip string) string {
	return "rl:" + string(scope) + ":ip:" + SanitizeKeySegment(ip)
}

func SanitizeKeySegment(s string) string {
	return strings.ReplaceAll(s, ":", "_")
}

// RetryAfterSeconds rounds the wait until resetAt up to whole seconds, never below one.
func RetryAfterSeconds(now, resetAt time.Time) int {
	d := resetAt.Sub(now)
	secs := int((d + time.Second - 1) / time.Second)
	if secs < 1 {
		return 1
	}
	return secs
}

// ExceededResponse is written with a 429.
type ExceededResponse struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	RetryAfter int    `json:"retry_after"`
}
