package circleci

import "fmt"

// TransportError reports a request that could not be completed: a network
// failure, a timeout, or a non-2xx response from the API
type TransportError struct {
	Method     string
	URL        string
	StatusCode int // zero when no response was received
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("circleci: %s %s: status %d: %v", e.Method, e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("circleci: %s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// MalformedResponseError reports a response body that could not be decoded or
// that lacks a field the caller depends on
type MalformedResponseError struct {
	URL   string
	Field string // empty when the body itself could not be decoded
	Err   error
}

func (e *MalformedResponseError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("circleci: malformed response from %s: field %q: %v", e.URL, e.Field, e.Err)
	}
	return fmt.Sprintf("circleci: malformed response from %s: %v", e.URL, e.Err)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

func missingField(url, field string) *MalformedResponseError {
	return &MalformedResponseError{URL: url, Field: field, Err: fmt.Errorf("missing or empty")}
}
