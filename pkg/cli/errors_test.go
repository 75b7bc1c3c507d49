package cli

import (
	"errors"
	"testing"
)

func TestConfigError(t *testing.T) {
	tests := []struct {
		field string
		want  string
	}{
		{"identity.client_secret", "config error in identity.client_secret: value is required"},
		{"", "config error: value is required"},
	}

	for _, tt := range tests {
		err := NewConfigError(tt.field, "value is required")
		if err.Error() != tt.want {
			t.Errorf("Error() = %q, want %q", err.Error(), tt.want)
		}
	}
}

func TestCommandError(t *testing.T) {
	cause := errors.New("List 'Bookings' not found")
	err := NewCommandError("lists", cause)

	if want := "lists: List 'Bookings' not found"; err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}

	var cmdErr *CommandError
	if !errors.As(error(err), &cmdErr) || cmdErr.Command != "lists" {
		t.Errorf("errors.As() = %+v, want command lists", cmdErr)
	}
}
