package clients

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind groups API failures by how the UI surfaces them.
type ErrorKind int

const (
	// KindGeneric covers network failures and unexpected server errors.
	KindGeneric ErrorKind = iota
	// KindValidation errors carry per-field messages shown inline.
	KindValidation
	// KindUnauthorized means the token is missing, invalid or expired.
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "generic"
	}
}

// APIError is a failed API call. StatusCode is 0 when no response arrived.
type APIError struct {
	StatusCode int
	Message    string
	Fields     map[string][]string
	Err        error
}

func (e *APIError) Error() string {
	if e.StatusCode == 0 {
		if e.Err != nil {
			return fmt.Sprintf("api request failed: %v", e.Err)
		}
		return "api request failed: " + e.Message
	}
	return fmt.Sprintf("api returned status %d: %s", e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

func (e *APIError) Kind() ErrorKind {
	switch e.StatusCode {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return KindValidation
	case http.StatusUnauthorized:
		return KindUnauthorized
	case http.StatusForbidden:
		return KindForbidden
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusConflict:
		return KindConflict
	default:
		return KindGeneric
	}
}

type errorBody struct {
	Success *bool               `json:"success"`
	Message string              `json:"message"`
	Error   string              `json:"error"`
	Errors  map[string][]string `json:"errors"`
}

func decodeAPIError(status int, raw []byte) *APIError {
	apiErr := &APIError{StatusCode: status}
	var body errorBody
	if err := json.Unmarshal(raw, &body); err == nil {
		apiErr.Message = body.Message
		if apiErr.Message == "" {
			apiErr.Message = body.Error
		}
		if len(body.Errors) > 0 {
			apiErr.Fields = body.Errors
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(status)
	}
	return apiErr
}

// AsAPIError unwraps err into an *APIError.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

func KindOf(err error) ErrorKind {
	if apiErr, ok := AsAPIError(err); ok {
		return apiErr.Kind()
	}
	return KindGeneric
}

func IsUnauthorized(err error) bool {
	return KindOf(err) == KindUnauthorized
}

func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}

// UserMessage returns the server's message for err, or fallback when the
// failure has no message fit to show (transport errors, 5xx).
func UserMessage(err error, fallback string) string {
	apiErr, ok := AsAPIError(err)
	if !ok || apiErr.StatusCode == 0 || apiErr.StatusCode >= 500 {
		return fallback
	}
	if apiErr.Message == "" || apiErr.Message == http.StatusText(apiErr.StatusCode) {
		return fallback
	}
	return apiErr.Message
}
