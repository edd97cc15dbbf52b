package middleware

import "net/http"

// hasHeader matches header names case-insensitively
func hasHeader(headers map[string]string, name string) bool {
	canonical := http.CanonicalHeaderKey(name)
	for k := range headers {
		if http.CanonicalHeaderKey(k) == canonical {
			return true
		}
	}
	return false
}
