package types

// MessageResponse acknowledges a successful submission.
type MessageResponse struct {
	Message string `json:"message"`
}

// MsgSubmitted is returned once the instruction has been emailed.
const MsgSubmitted = "Form submitted and email sent."
