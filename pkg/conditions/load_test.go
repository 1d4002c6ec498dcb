package conditions

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const invoiceYAML = `
category: invoice
conditions:
  - field_name: invoice_id
    condition_type: Required
    condition_category: completeness
    description: Invoice id is required
  - field_name_regex: ^addr_
    condition_type: ConfidenceThreshold
    condition_setting: 0.8
    condition_category: quality
    description: Address fields need confidence 0.8
  - field_name: addr_zip
    condition_type: ValueRegex
    condition_setting: '^\d{5}$'
    condition_category: format
    description: Zip code must have five digits
`

func TestParseConditionSet(t *testing.T) {
	set, err := ParseConditionSet([]byte(invoiceYAML))
	require.NoError(t, err)

	assert.Equal(t, "invoice", set.Category)
	require.Len(t, set.Conditions, 3)

	assert.Equal(t, "invoice_id", set.Conditions[0].FieldName)
	assert.Equal(t, Required, set.Conditions[0].Type)
	assert.Nil(t, set.Conditions[0].Setting)

	require.NotNil(t, set.Conditions[1].Setting)
	assert.Equal(t, "0.8", *set.Conditions[1].Setting, "numeric settings are kept as text")
	assert.Equal(t, "^addr_", set.Conditions[1].FieldNameRegex)

	require.NotNil(t, set.Conditions[2].Setting)
	assert.Equal(t, `^\d{5}$`, *set.Conditions[2].Setting)
}

func TestParseConditionSetBareList(t *testing.T) {
	data := `[{"field_name": "total", "condition_type": "Required", "description": "total"}]`

	set, err := ParseConditionSet([]byte(data))
	require.NoError(t, err)
	assert.Empty(t, set.Category)
	require.Len(t, set.Conditions, 1)
	assert.Equal(t, "total", set.Conditions[0].FieldName)
}

func TestParseConditionSetEmptyConditions(t *testing.T) {
	set, err := ParseConditionSet([]byte("category: receipt\n"))
	require.NoError(t, err)
	assert.NotNil(t, set.Conditions)
	assert.Empty(t, set.Conditions)
}

func TestParseConditionSetErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty document", ""},
		{"scalar", "just text"},
		{"invalid yaml", "conditions: [unclosed"},
		{"no selector", "- condition_type: Required"},
		{"no type", "- field_name: total"},
		{"bad field regex", "- field_name_regex: '(['\n  condition_type: Required"},
		{"bad value regex", "- field_name: zip\n  condition_type: ValueRegex\n  condition_setting: '(['"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConditionSet([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestLoadConditionSet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "invoice.yaml")
	require.NoError(t, os.WriteFile(path, []byte(invoiceYAML), 0644))

	set, err := LoadConditionSet(path)
	require.NoError(t, err)
	assert.Len(t, set.Conditions, 3)

	_, err = LoadConditionSet(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestParseFieldMapKeepsOrder(t *testing.T) {
	data := `{
		"zeta": {"value": "last letter", "confidence": 0.99},
		"alpha": {"value": 12345, "confidence": "0.5", "block": {"page": 1}},
		"mid": null,
		"empty": {}
	}`

	fields, err := ParseFieldMap([]byte(data))
	require.NoError(t, err)
	assert.Equal(t, []string{"zeta", "alpha", "mid", "empty"}, fields.Names())
	assert.Equal(t, 4, fields.Len())

	zeta, ok := fields.Get("zeta")
	require.True(t, ok)
	assert.Equal(t, "last letter", zeta.Value)
	assert.Equal(t, json.Number("0.99"), zeta.Confidence)

	alpha, _ := fields.Get("alpha")
	assert.Equal(t, json.Number("12345"), alpha.Value)
	assert.Equal(t, map[string]any{"page": json.Number("1")}, alpha.Block)

	mid, ok := fields.Get("mid")
	assert.True(t, ok)
	assert.Nil(t, mid)

	empty, _ := fields.Get("empty")
	require.NotNil(t, empty)
	assert.Nil(t, empty.Value)
}

func TestEvaluateParsedFieldMap(t *testing.T) {
	data := `{
		"total": {"value": 1.0, "confidence": 0.75},
		"zip": {"value": 12345, "confidence": 0.95}
	}`
	fields, err := ParseFieldMap([]byte(data))
	require.NoError(t, err)

	set := &ConditionSet{Conditions: []Condition{
		{FieldName: "total", Type: ValueRegex, Setting: setting(`^\d+\.\d+$`)},
		{FieldNameRegex: ".", Type: ConfidenceThreshold, Setting: setting("0.8")},
		{FieldName: "zip", Type: ValueRegex, Setting: setting(`^\d{5}$`)},
	}}

	report := EvaluateAll(fields, set)
	require.NotNil(t, report)
	assert.Empty(t, report.Errors)
	assert.Len(t, report.Evaluated, 4)
	require.Len(t, report.Broken, 1)
	assert.Equal(t, "total", report.Broken[0].FieldName)
	assert.Equal(t, ConfidenceThreshold, report.Broken[0].ConditionType)
	assert.Equal(t, "The field [total] confidence score 0.75 is lower than the threshold 0.8", report.Broken[0].Message)
}

func TestParseFieldMapErrors(t *testing.T) {
	for _, data := range []string{`[]`, `{"a": 1}`, `{"a": {"value": }`, `{"a": {}`} {
		_, err := ParseFieldMap([]byte(data))
		assert.Error(t, err, data)
	}

	fields, err := ParseFieldMap([]byte(" null "))
	require.NoError(t, err)
	assert.Nil(t, fields)
}

func TestFieldMapSetKeepsPosition(t *testing.T) {
	fields := NewFieldMap()
	fields.Set("a", &FieldEntry{Value: "1"})
	fields.Set("b", &FieldEntry{Value: "2"})
	fields.Set("a", &FieldEntry{Value: "3"})

	assert.Equal(t, []string{"a", "b"}, fields.Names())
	a, _ := fields.Get("a")
	assert.Equal(t, "3", a.Value)

	var zero FieldMap
	zero.Set("x", nil)
	assert.Equal(t, 1, zero.Len())
}

func TestFieldMapMarshalJSON(t *testing.T) {
	fields := NewFieldMap()
	fields.Set("b", &FieldEntry{Value: "2", Confidence: 0.5})
	fields.Set("a", nil)

	data, err := json.Marshal(fields)
	require.NoError(t, err)
	assert.Equal(t, `{"b":{"value":"2","confidence":0.5},"a":null}`, string(data))

	decoded, err := ParseFieldMap(data)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, decoded.Names())
}
