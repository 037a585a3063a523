package utils

import "strings"

// Absolute resolves a root-relative candidate ("/path") by prefixing baseURL.
// Anything else is returned unchanged; "../x" and protocol-relative "//host/x"
// are left alone and fail the base-prefix check downstream.
func Absolute(candidate, baseURL string) string {
	if strings.HasPrefix(candidate, "/") && !strings.HasPrefix(candidate, "//") {
		return baseURL + candidate
	}
	return candidate
}

// PathSuffix is the visited-store key of rawURL under baseURL.
func PathSuffix(rawURL, baseURL string) string {
	return strings.TrimPrefix(rawURL, baseURL)
}
