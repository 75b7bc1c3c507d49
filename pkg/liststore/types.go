package liststore

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Item is a list item. The raw JSON of the item is kept so that it can be
// returned to callers without losing properties this package does not
// model.
type Item struct {
	ID     string
	Fields map[string]json.RawMessage

	raw json.RawMessage
}

// UnmarshalJSON implements json.Unmarshaler.
func (i *Item) UnmarshalJSON(data []byte) error {
	var v struct {
		ID     string                     `json:"id"`
		Fields map[string]json.RawMessage `json:"fields"`
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	i.ID = v.ID
	i.Fields = v.Fields
	i.raw = append(json.RawMessage(nil), data...)
	return nil
}

// MarshalJSON implements json.Marshaler. It returns the item as received.
func (i Item) MarshalJSON() ([]byte, error) {
	if i.raw != nil {
		return i.raw, nil
	}
	return json.Marshal(struct {
		ID     string                     `json:"id"`
		Fields map[string]json.RawMessage `json:"fields,omitempty"`
	}{i.ID, i.Fields})
}

// Field returns the named field as text. Strings are unquoted, other
// scalars keep their JSON spelling. Missing, null, empty string, false and
// numeric zero fields report false.
func (i *Item) Field(name string) (string, bool) {
	raw, ok := i.Fields[name]
	if !ok {
		return "", false
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return "", false
	}
	switch raw[0] {
	case '"':
		var s string
		if json.Unmarshal(raw, &s) != nil {
			return "", false
		}
		return s, s != ""
	case 'n', 'f':
		// null, false
		return "", false
	}
	if f, err := strconv.ParseFloat(string(raw), 64); err == nil && f == 0 {
		return "", false
	}
	return string(raw), true
}

// List is a list of a site.
type List struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
}

// Site is a resolved site.
type Site struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
}
