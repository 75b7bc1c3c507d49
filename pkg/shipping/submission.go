// Package shipping defines the shipping-instruction form payload.
//
// No field is required. Scalar fields are Values, which accept JSON
// strings, numbers, booleans and null, and render as text.
package shipping

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Submission is the payload posted by the shipping-instruction form.
type Submission struct {
	User             *User       `json:"user,omitempty"`
	CarrierReference Value       `json:"carrierReference"`
	BillingParty     *Party      `json:"billingParty,omitempty"`
	Shipper          *Party      `json:"shipper,omitempty"`
	Consignee        *Party      `json:"consignee,omitempty"`
	ShipmentValue    Value       `json:"shipmentValue"`
	Notes            Value       `json:"notes"`
	Containers       []Container `json:"containers"`
}

// User identifies who submitted the form.
type User struct {
	Name  Value `json:"name"`
	Email Value `json:"email"`
}

// Party is a billing party, shipper or consignee.
type Party struct {
	Name     Value `json:"name"`
	Address1 Value `json:"address1"`
	Address2 Value `json:"address2"`
	City     Value `json:"city"`
	Country  Value `json:"country"`
	Postcode Value `json:"postcode"`
	Email    Value `json:"email"`
	Phone    Value `json:"phone"`
}

// Container is one line of the containers table.
type Container struct {
	ContainerNumber Value `json:"containerNumber"`
	Description     Value `json:"description"`
	Quantity        Value `json:"quantity"`
	Value           Value `json:"value"`
	HSCode          Value `json:"hsCode"`
	Weight          Value `json:"weight"`
}

// UserEmail returns the submitter's email, trimmed, or "".
func (s *Submission) UserEmail() string {
	if s == nil || s.User == nil {
		return ""
	}
	return strings.TrimSpace(s.User.Email.String())
}

// DecodeError reports a request body that is not a JSON object.
type DecodeError struct {
	Err error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("invalid submission payload: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Decode reads one submission from r. Only the JSON structure is checked.
func Decode(r io.Reader) (*Submission, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &DecodeError{Err: err}
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, &DecodeError{Err: errors.New("empty body")}
	}
	if data[0] != '{' {
		return nil, &DecodeError{Err: errors.New("payload must be a JSON object")}
	}

	var sub Submission
	if err := json.Unmarshal(data, &sub); err != nil {
		return nil, &DecodeError{Err: err}
	}
	return &sub, nil
}

// Value is a scalar form field. The zero Value is unset and renders empty.
type Value struct {
	text string
	set  bool
}

// Text returns a set Value holding s.
func Text(s string) Value {
	return Value{text: s, set: true}
}

// String returns the text of the value, or "" when unset.
func (v Value) String() string {
	return v.text
}

// IsSet reports whether the field was present and not null.
func (v Value) IsSet() bool {
	return v.set
}

// UnmarshalJSON implements json.Unmarshaler. Numbers keep their literal
// spelling, so 500 renders as "500" and 1.50 as "1.50". Objects and arrays
// are kept as compact JSON text.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*v = Value{}
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = Text(s)
	case bytes.Equal(data, []byte("true")), bytes.Equal(data, []byte("false")):
		*v = Text(string(data))
	case data[0] == '{' || data[0] == '[':
		var buf bytes.Buffer
		if err := json.Compact(&buf, data); err != nil {
			return err
		}
		*v = Text(buf.String())
	default:
		if _, err := strconv.ParseFloat(string(data), 64); err != nil {
			return fmt.Errorf("invalid scalar %s", data)
		}
		*v = Text(string(data))
	}
	return nil
}

// MarshalJSON implements json.Marshaler. Unset values encode as null.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.set {
		return []byte("null"), nil
	}
	return json.Marshal(v.text)
}
