package liststore

import (
	"encoding/json"
	"testing"
)

func TestEncodeFieldName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Customer", "Customer"},
		{"Customer-ID", "Customer_x002d_ID"},
		{"Ship To", "Ship_x0020_To"},
		{"Gross_Weight", "Gross_Weight"},
		{"Zoll/Nr.", "Zoll_x002f_Nr_x002e_"},
		{"Größe", "Gr_x00f6__x00df_e"},
	}

	for _, tt := range tests {
		if got := EncodeFieldName(tt.in); got != tt.want {
			t.Errorf("EncodeFieldName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEscapeLiteral(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"ACME", "ACME"},
		{"O'Brien", "O''Brien"},
		{"' or 1 eq 1 or ''='", "'' or 1 eq 1 or ''''=''"},
	}

	for _, tt := range tests {
		if got := EscapeLiteral(tt.in); got != tt.want {
			t.Errorf("EscapeLiteral(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEqualsFilter(t *testing.T) {
	got := EqualsFilter("Customer-ID", "O'Brien")
	want := "fields/Customer_x002d_ID eq 'O''Brien'"
	if got != want {
		t.Errorf("EqualsFilter() = %q, want %q", got, want)
	}
}

func TestEncodeComponent(t *testing.T) {
	got := encodeComponent("fields/A eq 'x & y'")
	want := "fields%2FA%20eq%20%27x%20%26%20y%27"
	if got != want {
		t.Errorf("encodeComponent() = %q, want %q", got, want)
	}
}

func TestItemField(t *testing.T) {
	var item Item
	raw := `{"id":"7","fields":{"Customer":"ACME","Qty":12,"Active":true,"Empty":"","Gone":null,"Zero":0,"ZeroFloat":0.0,"Off":false,"Negative":-3},"extra":{"a":1}}`
	if err := json.Unmarshal([]byte(raw), &item); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	tests := []struct {
		field  string
		want   string
		wantOK bool
	}{
		{"Customer", "ACME", true},
		{"Qty", "12", true},
		{"Active", "true", true},
		{"Empty", "", false},
		{"Gone", "", false},
		{"Zero", "", false},
		{"ZeroFloat", "", false},
		{"Off", "", false},
		{"Negative", "-3", true},
		{"Missing", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			got, ok := item.Field(tt.field)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("Field(%q) = %q, %v, want %q, %v", tt.field, got, ok, tt.want, tt.wantOK)
			}
		})
	}

	out, err := json.Marshal(item)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(out) != raw {
		t.Errorf("Marshal() = %s, want %s", out, raw)
	}
}
