package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrEmptyContent is returned by SendMessage for blank content. No request is made.
var ErrEmptyContent = errors.New("message content is empty")

// APIError is returned when the concierge API answers with a non-success status
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d: %s", e.StatusCode, e.Message)
}

// TransportError is returned when no response was received
type TransportError struct {
	Method string
	Path   string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// newAPIError builds an APIError from a failed response body.
// JSON bodies of the form {"error": "..."} or {"message": "..."} contribute their text;
// anything else is used verbatim, falling back to the status text.
func newAPIError(statusCode int, body []byte) *APIError {
	text := strings.TrimSpace(string(body))

	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		switch {
		case payload.Error != "":
			text = payload.Error
		case payload.Message != "":
			text = payload.Message
		}
	}

	if text == "" {
		text = http.StatusText(statusCode)
	}
	return &APIError{StatusCode: statusCode, Message: text}
}
