package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrNotFound is matched by a TransportError carrying a 404 status.
var ErrNotFound = errors.New("not found")

// TransportError covers an unreachable backend (Status 0) and any
// non-success HTTP status. Message is the backend's own text when it sent one.
type TransportError struct {
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *TransportError) Error() string {
	switch {
	case e.Message != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	case e.Status != 0:
		return fmt.Sprintf("%s: backend returned %d %s", e.Op, e.Status, http.StatusText(e.Status))
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return e.Op + ": request failed"
	}
}

func (e *TransportError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrNotFound) match 404 responses.
func (e *TransportError) Is(target error) bool {
	return target == ErrNotFound && e.Status == http.StatusNotFound
}

// MalformedResponseError is a success status whose body could not be decoded.
// Operators see it the same way as a TransportError.
type MalformedResponseError struct {
	Op  string
	Err error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("%s: malformed response: %v", e.Op, e.Err)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// Message returns the text to show an operator for err: the backend-provided
// message when there is one, fallback otherwise.
func Message(err error, fallback string) string {
	var te *TransportError
	if errors.As(err, &te) && te.Message != "" {
		return te.Message
	}
	return fallback
}

// errorBody is the backend's error envelope. Depending on the route it uses
// either "error" or "message".
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// backendMessage extracts the envelope text from an error response body.
func backendMessage(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return ""
	}
	if s := strings.TrimSpace(eb.Error); s != "" {
		return s
	}
	return strings.TrimSpace(eb.Message)
}
