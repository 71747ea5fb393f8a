// Package wikiapi provides a client for the wiki pages HTTP API.
package wikiapi

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// PageID is the opaque identifier the server assigns to a page.
// The API may encode it as a JSON number or string; it is kept verbatim.
type PageID string

// UnmarshalJSON accepts both numeric and string identifiers.
func (id *PageID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decode page id: %w", err)
		}
		*id = PageID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("decode page id: %w", err)
	}
	*id = PageID(n.String())
	return nil
}

// MarshalJSON writes numeric identifiers back as numbers.
func (id PageID) MarshalJSON() ([]byte, error) {
	if id == "" {
		return []byte("null"), nil
	}
	if json.Valid([]byte(id)) && isNumeric(string(id)) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// String returns the identifier as it appears in URLs.
func (id PageID) String() string {
	return string(id)
}

func isNumeric(s string) bool {
	for i, r := range s {
		if r == '-' && i == 0 && len(s) > 1 {
			continue
		}
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// Page is a wiki page record.
type Page struct {
	ID      PageID `json:"id"`
	Key     string `json:"key"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// PageInput is the body of create and update requests.
type PageInput struct {
	Key     string `json:"key"`
	Title   string `json:"title"`
	Content string `json:"content"`
}
