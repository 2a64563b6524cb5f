// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// NetworkErrorMessage is used when a transport failure carries no text.
const NetworkErrorMessage = "Network error"

// APIError is the only error type returned by Client.
//
// Status is the HTTP status code when the server responded, and exactly 0
// when no response was received (DNS failure, refused connection, timeout,
// cancellation).
type APIError struct {
	Status  int
	Message string
	// Data holds the decoded error body, nil when the server sent none.
	Data ErrorBody

	decode bool
	err    error
}

func (e *APIError) Error() string {
	if e.Status == 0 {
		return "api: " + e.Message
	}
	return fmt.Sprintf("api: status %d: %s", e.Status, e.Message)
}

func (e *APIError) Unwrap() error { return e.err }

// IsNetwork reports whether no HTTP response was obtained.
func (e *APIError) IsNetwork() bool { return e.Status == 0 }

// IsUnauthorized reports a 401, which callers may treat as a prompt to
// re-authenticate.
func (e *APIError) IsUnauthorized() bool { return e.Status == http.StatusUnauthorized }

func (e *APIError) IsClientError() bool { return e.Status >= 400 && e.Status < 500 }

func (e *APIError) IsServerError() bool { return e.Status >= 500 }

// IsDecode reports a response that arrived with a success status but whose
// body was not valid JSON for the requested type.
func (e *APIError) IsDecode() bool { return e.decode }

// ErrorBody is the decoded body of a failed response. It is one of
// StructuredError or UnstructuredError.
type ErrorBody interface {
	errorBody()
}

// StructuredError is a JSON error body of the {message?, error?} shape.
type StructuredError struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	// Fields holds the complete JSON object, including the two fields above.
	Fields map[string]json.RawMessage `json:"-"`
}

// UnstructuredError holds an error body that was not a JSON object.
type UnstructuredError struct {
	Raw []byte
}

func (StructuredError) errorBody()   {}
func (UnstructuredError) errorBody() {}

// AsAPIError extracts the *APIError from err.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// StatusOf returns the APIError status of err, or -1 if err is not one.
func StatusOf(err error) int {
	if apiErr, ok := AsAPIError(err); ok {
		return apiErr.Status
	}
	return -1
}

func IsNetwork(err error) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.IsNetwork()
}

func IsUnauthorized(err error) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.IsUnauthorized()
}

func IsNotFound(err error) bool {
	return StatusOf(err) == http.StatusNotFound
}

func IsClientError(err error) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.IsClientError()
}

func IsServerError(err error) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.IsServerError()
}

// UserMessage returns text suitable for showing to an end user. It never
// includes wrapped transport internals.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	apiErr, ok := AsAPIError(err)
	if !ok {
		return "Something went wrong"
	}
	switch {
	case apiErr.IsNetwork():
		return "You appear to be offline. Check your connection and try again."
	case apiErr.IsUnauthorized():
		return "Your session has expired. Please sign in again."
	case apiErr.IsServerError():
		return "The server had a problem handling the request. Please try again later."
	case apiErr.Message != "":
		return apiErr.Message
	}
	return http.StatusText(apiErr.Status)
}

// newResponseError builds the APIError for a non-2xx response body.
// The message is taken from "message", then "error", then the status text.
func newResponseError(statusCode int, status string, body []byte) *APIError {
	apiErr := &APIError{
		Status:  statusCode,
		Message: statusText(statusCode, status),
	}
	if len(body) == 0 {
		return apiErr
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil || fields == nil {
		apiErr.Data = UnstructuredError{Raw: body}
		return apiErr
	}

	structured := StructuredError{Fields: fields}
	// Non-string values are left out; the status text fallback still applies.
	_ = json.Unmarshal(fields["message"], &structured.Message)
	_ = json.Unmarshal(fields["error"], &structured.Error)
	apiErr.Data = structured

	switch {
	case structured.Message != "":
		apiErr.Message = structured.Message
	case structured.Error != "":
		apiErr.Message = structured.Error
	}
	return apiErr
}

// NetworkError wraps err the way the client reports failures that produced
// no response: status 0, err's text as the message. An *APIError in err's
// chain is returned as is.
func NetworkError(err error) *APIError {
	return newNetworkError(err)
}

// newNetworkError wraps a failure that produced no HTTP response.
func newNetworkError(err error) *APIError {
	if apiErr, ok := AsAPIError(err); ok {
		return apiErr
	}
	msg := NetworkErrorMessage
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}
	return &APIError{Status: 0, Message: msg, err: err}
}

func newDecodeError(statusCode int, err error) *APIError {
	return &APIError{
		Status:  statusCode,
		Message: "invalid JSON response: " + err.Error(),
		decode:  true,
		err:     err,
	}
}

// statusText extracts the reason phrase from a status line such as
// "404 Not Found".
func statusText(code int, status string) string {
	text := strings.TrimSpace(strings.TrimPrefix(status, strconv.Itoa(code)))
	if text == "" {
		text = http.StatusText(code)
	}
	return text
}
