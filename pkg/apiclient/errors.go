package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Problem type URIs returned by the server for tree failures.
const (
	problemTypeValidation    = "https://fms.dev/problems/validation"
	problemTypeStorage       = "https://fms.dev/problems/storage"
	problemTypeTimeout       = "https://fms.dev/problems/storage-timeout"
	problemTypeInconsistency = "https://fms.dev/problems/inconsistency"
)

// APIError is an RFC 7807 problem response from the API.
type APIError struct {
	StatusCode int    `json:"status"`
	Type       string `json:"type,omitempty"`
	Title      string `json:"title,omitempty"`
	Detail     string `json:"detail,omitempty"`
	Code       string `json:"code,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	msg := e.Detail
	if msg == "" {
		msg = e.Title
	}
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, msg)
	}
	return msg
}

// IsNotFound returns true if this is a not found error.
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// IsConflict returns true if a concurrent operation blocked the request.
func (e *APIError) IsConflict() bool {
	return e.StatusCode == http.StatusConflict
}

// IsValidationError returns true if the request was rejected before any change.
func (e *APIError) IsValidationError() bool {
	return e.Type == problemTypeValidation || e.StatusCode == http.StatusBadRequest
}

// IsStorageError returns true if the storage backend failed or timed out.
func (e *APIError) IsStorageError() bool {
	return e.Type == problemTypeStorage || e.Type == problemTypeTimeout
}

// IsInconsistency returns true if the server could not undo a partial
// change. The item tree needs an fsck.
func (e *APIError) IsInconsistency() bool {
	return e.Type == problemTypeInconsistency
}

// AsAPIError returns the *APIError in err's chain, if any.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

func decodeError(status int, body []byte) error {
	var apiErr APIError
	if json.Unmarshal(body, &apiErr) == nil && (apiErr.Detail != "" || apiErr.Title != "") {
		apiErr.StatusCode = status
		return &apiErr
	}
	return &APIError{
		StatusCode: status,
		Detail:     strings.TrimSpace(string(body)),
	}
}
