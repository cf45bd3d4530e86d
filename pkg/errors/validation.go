package errors

import (
	"strings"
	"unicode"
)

// ValidateEndpoint validates an API endpoint path before it is joined to a base URL.
//
// Validation rules:
//   - Endpoint cannot be empty
//   - Maximum length of 2048 characters
//   - Must start with "/"
//   - No control characters, whitespace or backslashes
//   - No path traversal sequences (..)
//   - No scheme (absolute URLs are rejected)
func ValidateEndpoint(endpoint string) error {
	if endpoint == "" {
		return New(ErrCodeInvalidInput, "endpoint cannot be empty")
	}

	const maxEndpointLength = 2048
	if len(endpoint) > maxEndpointLength {
		return New(ErrCodeInvalidInput, "endpoint too long (max %d characters)", maxEndpointLength)
	}

	if strings.Contains(endpoint, "://") {
		return New(ErrCodeInvalidInput, "endpoint must be a path, not a URL: %q", endpoint)
	}

	if !strings.HasPrefix(endpoint, "/") {
		return New(ErrCodeInvalidInput, "endpoint must start with /: %q", endpoint)
	}

	for _, r := range endpoint {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidInput, "endpoint contains invalid characters")
		}
	}

	path, _, _ := strings.Cut(endpoint, "?")
	for _, seg := range strings.Split(path, "/") {
		if seg == ".." {
			return New(ErrCodeInvalidInput, "endpoint cannot contain path traversal segments (..)")
		}
	}

	if strings.Contains(endpoint, "\\") {
		return New(ErrCodeInvalidInput, "endpoint cannot contain backslashes")
	}

	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	// Simple scheme validation without full URL parsing
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}
