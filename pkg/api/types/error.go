package types

// ErrorResponse is the body of every failed API call.
//
// Details carries the remote service's JSON error body when one was
// returned, otherwise the local error message. It is omitted for errors
// raised by the gateway itself, such as a missing relation field.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// Client-facing error messages.
const (
	MsgFetchItem    = "Failed to fetch SharePoint item"
	MsgFetchLists   = "Failed to fetch SharePoint lists"
	MsgFetchRelated = "Failed to fetch client items by customer"
	MsgMissingField = "Customer field not found in booking item"
	MsgSubmit       = "Failed to send email with PDF"
	MsgInvalidBody  = "Invalid submission body"
	MsgInternal     = "Internal server error"
	MsgTimeout      = "Request timed out"
)

// NewErrorResponse creates an error body.
func NewErrorResponse(message string, details any) *ErrorResponse {
	return &ErrorResponse{Error: message, Details: details}
}
