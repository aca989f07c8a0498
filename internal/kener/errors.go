package kener

import "fmt"

// APIError is a Kener API response with a failure status. Body carries the
// beginning of the response body when the server sent one.
type APIError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("kener API: %s %s returned status %d", e.Method, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("kener API: %s %s returned status %d: %s", e.Method, e.URL, e.StatusCode, e.Body)
}
