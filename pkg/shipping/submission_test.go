package shipping

import (
	"errors"
	"strings"
	"testing"
)

func TestValueUnmarshal(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    string
		wantSet bool
	}{
		{"string", `{"notes":"fragile"}`, "fragile", true},
		{"integer", `{"notes":500}`, "500", true},
		{"decimal keeps spelling", `{"notes":1.50}`, "1.50", true},
		{"boolean", `{"notes":true}`, "true", true},
		{"null", `{"notes":null}`, "", false},
		{"absent", `{}`, "", false},
		{"object", `{"notes":{"a": 1}}`, `{"a":1}`, true},
		{"escaped string", `{"notes":"<b>é</b>"}`, "<b>é</b>", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub, err := Decode(strings.NewReader(tt.body))
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if got := sub.Notes.String(); got != tt.want {
				t.Errorf("Notes = %q, want %q", got, tt.want)
			}
			if sub.Notes.IsSet() != tt.wantSet {
				t.Errorf("IsSet() = %v, want %v", sub.Notes.IsSet(), tt.wantSet)
			}
		})
	}
}

func TestDecode(t *testing.T) {
	body := `{
		"user": {"name": "Dana", "email": " dana@example.test "},
		"carrierReference": "MSK-001",
		"billingParty": {"name": "Acme Corp", "email": "ops@acme.test"},
		"containers": [
			{"containerNumber": "CNT1", "description": "Steel", "quantity": 2, "value": 500, "hsCode": "7208", "weight": 1200}
		]
	}`

	sub, err := Decode(strings.NewReader(body))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	if sub.UserEmail() != "dana@example.test" {
		t.Errorf("UserEmail() = %q, want dana@example.test", sub.UserEmail())
	}
	if sub.Shipper != nil {
		t.Errorf("Shipper = %+v, want nil", sub.Shipper)
	}
	if len(sub.Containers) != 1 {
		t.Fatalf("len(Containers) = %d, want 1", len(sub.Containers))
	}
	c := sub.Containers[0]
	if c.Quantity.String() != "2" || c.Value.String() != "500" || c.Weight.String() != "1200" {
		t.Errorf("numeric cells = %q %q %q, want 2 500 1200", c.Quantity, c.Value, c.Weight)
	}
}

func TestDecodeContainersPresence(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantNil bool
	}{
		{"absent", `{}`, true},
		{"null", `{"containers":null}`, true},
		{"empty", `{"containers":[]}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub, err := Decode(strings.NewReader(tt.body))
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if (sub.Containers == nil) != tt.wantNil {
				t.Errorf("Containers == nil is %v, want %v", sub.Containers == nil, tt.wantNil)
			}
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty", ``},
		{"truncated", `{"user": {`},
		{"array", `[1,2]`},
		{"null", `null`},
		{"wrong container type", `{"containers": "many"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.body))
			var de *DecodeError
			if !errors.As(err, &de) {
				t.Errorf("Decode() error = %v, want *DecodeError", err)
			}
		})
	}
}

func TestUserEmailWithoutUser(t *testing.T) {
	var nilSub *Submission
	if got := nilSub.UserEmail(); got != "" {
		t.Errorf("UserEmail() = %q, want empty", got)
	}
	if got := (&Submission{User: &User{Email: Text("   ")}}).UserEmail(); got != "" {
		t.Errorf("UserEmail() = %q, want empty", got)
	}
}
