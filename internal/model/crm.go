package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// CRM entity types a sales rep can attach to a conversation.
const (
	CrmTypeCompany = "company"
	CrmTypeContact = "contact"
	CrmTypeDeal    = "deal"
)

// CrmContextItem is an opaque, caller-supplied description of a CRM entity.
type CrmContextItem struct {
	Type    string   `json:"type"`
	ID      StringID `json:"id"`
	Name    string   `json:"name"`
	Details string   `json:"details"`
}

// FormatCrmContext renders items as "- [TYPE] name: details" lines.
// Returns "" for no items.
func FormatCrmContext(items []CrmContextItem) string {
	if len(items) == 0 {
		return ""
	}
	lines := make([]string, 0, len(items))
	for _, it := range items {
		lines = append(lines, fmt.Sprintf("- [%s] %s: %s", strings.ToUpper(it.Type), it.Name, it.Details))
	}
	return strings.Join(lines, "\n")
}

// StringID accepts both JSON strings and numbers; CRM rows may be keyed by
// either depending on the source table.
type StringID string

func (s *StringID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = StringID(str)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*s = StringID(n.String())
	return nil
}
