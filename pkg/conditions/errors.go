package conditions

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrNoEntry is returned when a confidence rule targets a field without an entry
	ErrNoEntry = errors.New("no field entry")
	// ErrNoConfidence is returned when a confidence rule targets a field without a score
	ErrNoConfidence = errors.New("field has no confidence score")
)

// EvalError is a failure to evaluate one condition against one field.
// Evaluation of the remaining conditions and fields continues.
type EvalError struct {
	FieldName     string
	ConditionType ConditionType
	Cause         error
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("field %s: %s condition: %v", e.FieldName, e.ConditionType, e.Cause)
}

func (e *EvalError) Unwrap() error {
	return e.Cause
}

// MarshalJSON renders the error for reports
func (e *EvalError) MarshalJSON() ([]byte, error) {
	msg := ""
	if e.Cause != nil {
		msg = e.Cause.Error()
	}
	return json.Marshal(struct {
		FieldName     string        `json:"field_name"`
		ConditionType ConditionType `json:"condition_type"`
		Error         string        `json:"error"`
	}{e.FieldName, e.ConditionType, msg})
}
