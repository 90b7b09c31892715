package jira

import (
	"errors"
	"fmt"
	"net/http"
)

// TransportError is returned when Jira cannot be reached or answers with a
// non-2xx status. StatusCode is 0 when no response was received.
type TransportError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("jira request failed: %s", e.Message)
	}
	return fmt.Sprintf("Jira API error %d: %s", e.StatusCode, e.Message)
}

func (e *TransportError) Unwrap() error { return e.Err }

// StatusCode extracts the HTTP status carried by err, defaulting to 500.
func StatusCode(err error) int {
	var te *TransportError
	if errors.As(err, &te) && te.StatusCode >= 400 && te.StatusCode < 600 {
		return te.StatusCode
	}
	return http.StatusInternalServerError
}
