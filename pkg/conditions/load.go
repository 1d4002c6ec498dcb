package conditions

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadConditionSet reads a condition set from a YAML or JSON file
func LoadConditionSet(path string) (*ConditionSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read condition set: %w", err)
	}
	set, err := ParseConditionSet(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse condition set %s: %w", path, err)
	}
	return set, nil
}

// ParseConditionSet decodes a condition set. The document may be an object
// with category and conditions keys, or a bare list of conditions.
func ParseConditionSet(data []byte) (*ConditionSet, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, fmt.Errorf("empty condition set")
	}

	root := doc.Content[0]
	set := &ConditionSet{}
	switch root.Kind {
	case yaml.SequenceNode:
		if err := root.Decode(&set.Conditions); err != nil {
			return nil, err
		}
	case yaml.MappingNode:
		if err := root.Decode(set); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("condition set must be a mapping or a list, line %d", root.Line)
	}

	if set.Conditions == nil {
		set.Conditions = []Condition{}
	}
	if err := set.Validate(); err != nil {
		return nil, err
	}
	return set, nil
}

// Validate checks that every condition has a type and a selector and that
// its patterns compile
func (s *ConditionSet) Validate() error {
	for i, c := range s.Conditions {
		if c.Type == "" {
			return fmt.Errorf("condition %d: condition_type is required", i)
		}
		if c.FieldName == "" && c.FieldNameRegex == "" {
			return fmt.Errorf("condition %d: field_name or field_name_regex is required", i)
		}
		if c.FieldName == "" {
			if _, err := compilePattern(c.FieldNameRegex); err != nil {
				return fmt.Errorf("condition %d: field_name_regex: %w", i, err)
			}
		}
		if c.Type == ValueRegex && c.Setting != nil {
			if _, err := compilePattern(*c.Setting); err != nil {
				return fmt.Errorf("condition %d: condition_setting: %w", i, err)
			}
		}
	}
	return nil
}

// LoadFieldMap reads an ordered field map from a JSON file
func LoadFieldMap(path string) (*FieldMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read field map: %w", err)
	}
	fields, err := ParseFieldMap(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse field map %s: %w", path, err)
	}
	return fields, nil
}

// ParseFieldMap decodes a JSON object of field entries. A JSON null yields a
// nil map.
func ParseFieldMap(data []byte) (*FieldMap, error) {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil, nil
	}
	fields := NewFieldMap()
	if err := fields.UnmarshalJSON(data); err != nil {
		return nil, err
	}
	return fields, nil
}
