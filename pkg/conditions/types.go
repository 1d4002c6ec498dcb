package conditions

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ConditionType selects how a condition is evaluated
type ConditionType string

// Supported condition types. Any other value is matched and reported as
// evaluated but never broken.
const (
	Required            ConditionType = "Required"
	ConfidenceThreshold ConditionType = "ConfidenceThreshold"
	ValueRegex          ConditionType = "ValueRegex"
)

// Condition is a declarative rule applied to extracted fields.
// FieldName takes precedence: a condition with FieldName set is never matched
// through FieldNameRegex.
type Condition struct {
	FieldName      string        `json:"field_name,omitempty" yaml:"field_name,omitempty"`
	FieldNameRegex string        `json:"field_name_regex,omitempty" yaml:"field_name_regex,omitempty"`
	Type           ConditionType `json:"condition_type" yaml:"condition_type"`
	Setting        *string       `json:"condition_setting" yaml:"condition_setting"` // Threshold or pattern, unused for Required
	Category       string        `json:"condition_category" yaml:"condition_category"`
	Description    string        `json:"description" yaml:"description"`
}

// ConditionSet is the ordered rule list for one document category
type ConditionSet struct {
	Category   string      `json:"category" yaml:"category"`
	Conditions []Condition `json:"conditions" yaml:"conditions"`
}

// FieldEntry is the extracted data for one field
type FieldEntry struct {
	Value      any `json:"value"`
	Confidence any `json:"confidence,omitempty"` // Number, json.Number or numeric string
	Block      any `json:"block,omitempty"`      // Provenance reference
}

// FieldMap maps field names to entries and keeps insertion order.
// A nil entry is allowed and means the field was not extracted.
type FieldMap struct {
	names   []string
	entries map[string]*FieldEntry
}

// NewFieldMap returns an empty field map
func NewFieldMap() *FieldMap {
	return &FieldMap{entries: make(map[string]*FieldEntry)}
}

// Set stores entry under name. Overwriting keeps the original position.
func (m *FieldMap) Set(name string, entry *FieldEntry) {
	if m.entries == nil {
		m.entries = make(map[string]*FieldEntry)
	}
	if _, exists := m.entries[name]; !exists {
		m.names = append(m.names, name)
	}
	m.entries[name] = entry
}

// Get returns the entry stored under name
func (m *FieldMap) Get(name string) (*FieldEntry, bool) {
	entry, ok := m.entries[name]
	return entry, ok
}

// Names returns the field names in insertion order
func (m *FieldMap) Names() []string {
	names := make([]string, len(m.names))
	copy(names, m.names)
	return names
}

// Len returns the number of fields
func (m *FieldMap) Len() int {
	return len(m.names)
}

// UnmarshalJSON decodes a JSON object, keeping the document's key order.
// Numbers are kept as json.Number so their literal text survives.
func (m *FieldMap) UnmarshalJSON(data []byte) error {
	m.names = nil
	m.entries = make(map[string]*FieldEntry)

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("field map must be a JSON object")
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected field map key %v", tok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("field %s: %w", name, err)
		}

		var entry *FieldEntry
		if !bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			entry = &FieldEntry{}
			entryDec := json.NewDecoder(bytes.NewReader(raw))
			entryDec.UseNumber()
			if err := entryDec.Decode(entry); err != nil {
				return fmt.Errorf("field %s: %w", name, err)
			}
		}
		m.Set(name, entry)
	}

	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

// MarshalJSON encodes the map as a JSON object in insertion order
func (m *FieldMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range m.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(m.entries[name])
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", name, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Record is one evaluation result. Index is set on broken records only,
// numbered from 1 in report order.
type Record struct {
	Message           string        `json:"message"`
	FieldName         string        `json:"field_name"`
	FieldValue        any           `json:"field_value"`
	ConditionType     ConditionType `json:"condition_type"`
	ConditionSetting  *string       `json:"condition_setting"`
	ConditionCategory string        `json:"condition_category"`
	Block             any           `json:"block"`
	Index             int           `json:"index,omitempty"`
}

// Report separates the conditions a field failed (Broken) from every
// condition that applied to a field regardless of outcome (Evaluated).
type Report struct {
	Broken    []Record     `json:"broken"`
	Evaluated []Record     `json:"evaluated"`
	Errors    []*EvalError `json:"errors,omitempty"`
}

// Passed reports whether no condition was broken and nothing failed to evaluate
func (r *Report) Passed() bool {
	return len(r.Broken) == 0 && len(r.Errors) == 0
}
