package liststore

import (
	"fmt"
	"net/url"
	"strings"
)

// EncodeFieldName converts a column display name into its internal name by
// replacing every character other than ASCII letters, digits and '_' with
// _xHHHH_, e.g. "Customer-ID" becomes "Customer_x002d_ID".
func EncodeFieldName(name string) string {
	var sb strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			sb.WriteRune(r)
		default:
			fmt.Fprintf(&sb, "_x%04x_", r)
		}
	}
	return sb.String()
}

// EscapeLiteral escapes a value for use inside a single-quoted OData
// string literal.
func EscapeLiteral(value string) string {
	return strings.ReplaceAll(value, "'", "''")
}

// EqualsFilter builds the filter clause matching items whose field equals
// value.
func EqualsFilter(field, value string) string {
	return fmt.Sprintf("fields/%s eq '%s'", EncodeFieldName(field), EscapeLiteral(value))
}

// encodeComponent percent-encodes s for a query string value, spaces
// included.
func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
