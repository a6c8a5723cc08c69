package domain

import (
	"errors"
	"strings"
)

var (
	// ErrRateLimited marks a provider quota/rate-limit failure. The
	// builder retries these; everything else abandons the current file.
	ErrRateLimited = errors.New("embedding provider rate limited")

	// ErrEmptyIndex is returned by Search on an index with no chunks.
	ErrEmptyIndex = errors.New("vector index is empty")

	// ErrIndexNotFound is returned by Load when no index exists at the path.
	ErrIndexNotFound = errors.New("vector index not found")

	// ErrCorruptIndex is returned by Load when the stored index is
	// unreadable. The caller decides whether to rebuild.
	ErrCorruptIndex = errors.New("vector index is corrupt")
)

// rateLimitPatterns match provider-reported quota errors that are not
// wrapped sentinels, e.g. raw HTTP client errors.
var rateLimitPatterns = []string{
	"429",
	"quota",
	"rate limit",
	"resource_exhausted",
}

// IsRateLimited reports whether err is a quota/rate-limit failure,
// either by sentinel or by provider message pattern.
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, p := range rateLimitPatterns {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}
