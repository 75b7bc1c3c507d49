package liststore

import (
	"encoding/json"
	"fmt"
)

// APIError is a non-2xx answer of the list store. Body holds the response
// body so callers can surface the remote error unchanged.
type APIError struct {
	// Op is the operation that failed (e.g. "resolve_site", "get_item").
	Op string

	// StatusCode is the HTTP status code of the response.
	StatusCode int

	// Body is the raw response body.
	Body []byte
}

// Error implements the error interface.
func (e *APIError) Error() string {
	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(e.Body, &envelope) == nil && envelope.Error.Code != "" {
		return fmt.Sprintf("liststore %s failed (status %d): %s: %s",
			e.Op, e.StatusCode, envelope.Error.Code, envelope.Error.Message)
	}
	return fmt.Sprintf("liststore %s failed (status %d)", e.Op, e.StatusCode)
}

// Details returns the response body when it is JSON.
func (e *APIError) Details() json.RawMessage {
	if len(e.Body) == 0 || !json.Valid(e.Body) {
		return nil
	}
	return json.RawMessage(e.Body)
}

// NotFound reports whether the list store answered 404.
func (e *APIError) NotFound() bool {
	return e.StatusCode == 404
}

// ListNotFoundError is returned when no list of a site has the requested
// display name.
type ListNotFoundError struct {
	Name string
}

// Error implements the error interface.
func (e *ListNotFoundError) Error() string {
	return fmt.Sprintf("List '%s' not found", e.Name)
}
