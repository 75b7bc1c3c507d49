package auth

import (
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/oauth2"
)

// AuthError is returned when the identity endpoint rejects the client
// credentials or cannot be reached.
type AuthError struct {
	// Tenant is the directory the token was requested for.
	Tenant string

	// StatusCode is the HTTP status of the token response (0 if the
	// endpoint was unreachable).
	StatusCode int

	// Code and Description are the OAuth2 error fields, when present.
	Code        string
	Description string

	// Body is the raw response body of the token endpoint.
	Body []byte

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	switch {
	case e.Code != "" && e.Description != "":
		return fmt.Sprintf("token request for tenant %q failed (status %d): %s: %s", e.Tenant, e.StatusCode, e.Code, e.Description)
	case e.Code != "":
		return fmt.Sprintf("token request for tenant %q failed (status %d): %s", e.Tenant, e.StatusCode, e.Code)
	case e.StatusCode > 0:
		return fmt.Sprintf("token request for tenant %q failed (status %d)", e.Tenant, e.StatusCode)
	default:
		return fmt.Sprintf("token request for tenant %q failed: %v", e.Tenant, e.Err)
	}
}

// Unwrap returns the underlying error for error chain support.
func (e *AuthError) Unwrap() error {
	return e.Err
}

// Details returns the token endpoint's JSON error body, or nil when the
// body is absent or not JSON.
func (e *AuthError) Details() json.RawMessage {
	if len(e.Body) == 0 || !json.Valid(e.Body) {
		return nil
	}
	return json.RawMessage(e.Body)
}

// newAuthError converts an error from the oauth2 package into an AuthError.
func newAuthError(tenant string, err error) *AuthError {
	ae := &AuthError{Tenant: tenant, Err: err}

	var re *oauth2.RetrieveError
	if errors.As(err, &re) {
		if re.Response != nil {
			ae.StatusCode = re.Response.StatusCode
		}
		ae.Code = re.ErrorCode
		ae.Description = re.ErrorDescription
		ae.Body = re.Body
	}
	return ae
}
