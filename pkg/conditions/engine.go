// Package conditions evaluates declarative field rules against extracted
// document fields and produces a validation report.
//
// A condition selects fields by exact name or, when no name is given, by a
// regular expression searched anywhere in the field name. Every condition
// that selects a field is reported as evaluated; conditions the field fails
// are additionally reported as broken and numbered from 1. A condition that
// cannot be evaluated is still reported as evaluated and its error is listed
// separately.
//
// Value patterns run against the value's string form. Strings are used as
// is, JSON numbers keep their literal text, floats keep a decimal point
// (1.0 stays "1.0") and booleans are lower case.
//
// Key Features:
//
// - Required, ConfidenceThreshold and ValueRegex rules
// - Substring (search) regex semantics for field names and values
// - Per-record evaluation errors that never abort the report
// - Field maps that keep the document's field order
//
// Main Functions:
//
// - EvaluateField: Evaluate all conditions against one field
// - EvaluateAll: Evaluate a condition set against a field map
// - LoadConditionSet: Read a YAML or JSON condition set
// - NewEnvelope: Wrap a report with an id, status and timestamp
package conditions

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cast"
)

// MatchTimeout bounds a single regular expression match
const MatchTimeout = time.Second

// FieldResult holds the outcome of evaluating one field
type FieldResult struct {
	Broken    []Record
	Evaluated []Record
	Errors    []*EvalError
}

// Option configures an evaluation
type Option func(*evaluator)

// WithLogger sets the logger for evaluation warnings and summaries.
// Without it the logrus standard logger is used.
func WithLogger(log logrus.FieldLogger) Option {
	return func(ev *evaluator) {
		if log != nil {
			ev.log = log
		}
	}
}

// EvaluateField applies every condition selecting name to entry. entry may be
// nil when the field was not extracted.
func EvaluateField(name string, entry *FieldEntry, conditions []Condition, opts ...Option) FieldResult {
	return newEvaluator(opts...).field(name, entry, conditions)
}

// EvaluateAll evaluates the condition set against every field in map order.
// Broken records are numbered 1..N after all fields are processed.
// A nil field map or condition set yields a nil report, meaning nothing was
// configured; an empty condition set yields empty lists.
func EvaluateAll(fields *FieldMap, set *ConditionSet, opts ...Option) *Report {
	if fields == nil || set == nil {
		return nil
	}

	ev := newEvaluator(opts...)
	report := &Report{
		Broken:    []Record{},
		Evaluated: []Record{},
	}

	for _, name := range fields.Names() {
		entry, _ := fields.Get(name)
		res := ev.field(name, entry, set.Conditions)
		report.Broken = append(report.Broken, res.Broken...)
		report.Evaluated = append(report.Evaluated, res.Evaluated...)
		report.Errors = append(report.Errors, res.Errors...)
	}

	for i := range report.Broken {
		report.Broken[i].Index = i + 1
	}

	ev.log.WithFields(logrus.Fields{
		"category":  set.Category,
		"fields":    fields.Len(),
		"broken":    len(report.Broken),
		"evaluated": len(report.Evaluated),
		"errors":    len(report.Errors),
	}).Debug("evaluated condition set")

	return report
}

// evaluator caches compiled patterns for the duration of one evaluation
type evaluator struct {
	patterns map[string]*compiledPattern
	log      logrus.FieldLogger
}

type compiledPattern struct {
	re  *regexp2.Regexp
	err error
}

func newEvaluator(opts ...Option) *evaluator {
	ev := &evaluator{
		patterns: make(map[string]*compiledPattern),
		log:      logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(ev)
	}
	return ev
}

func (ev *evaluator) compile(pattern string) (*regexp2.Regexp, error) {
	if p, ok := ev.patterns[pattern]; ok {
		return p.re, p.err
	}
	re, err := compilePattern(pattern)
	ev.patterns[pattern] = &compiledPattern{re: re, err: err}
	return re, err
}

func compilePattern(pattern string) (*regexp2.Regexp, error) {
	re, err := regexp2.Compile(pattern, regexp2.None)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}
	re.MatchTimeout = MatchTimeout
	return re, nil
}

// search reports whether pattern matches anywhere in s
func (ev *evaluator) search(pattern, s string) (bool, error) {
	re, err := ev.compile(pattern)
	if err != nil {
		return false, err
	}
	return re.MatchString(s)
}

// selects reports whether the condition applies to the named field
func (ev *evaluator) selects(c *Condition, name string) (bool, error) {
	if c.FieldName != "" {
		return c.FieldName == name, nil
	}
	if c.FieldNameRegex == "" {
		return false, nil
	}
	return ev.search(c.FieldNameRegex, name)
}

func (ev *evaluator) field(name string, entry *FieldEntry, conditions []Condition) FieldResult {
	var res FieldResult

	var value, block any
	if entry != nil {
		value = entry.Value
		block = entry.Block
	}

	for i := range conditions {
		c := &conditions[i]

		ok, err := ev.selects(c, name)
		if err != nil {
			res.Errors = append(res.Errors, ev.fail(name, c, err))
			continue
		}
		if !ok {
			continue
		}

		record := Record{
			FieldName:         name,
			FieldValue:        value,
			ConditionType:     c.Type,
			ConditionSetting:  c.Setting,
			ConditionCategory: c.Category,
			Block:             block,
		}

		msg, broken, err := ev.check(c, name, entry)
		if err != nil {
			res.Errors = append(res.Errors, ev.fail(name, c, err))
		} else if broken {
			brokenRecord := record
			brokenRecord.Message = msg
			res.Broken = append(res.Broken, brokenRecord)
		}

		record.Message = c.Description
		res.Evaluated = append(res.Evaluated, record)
	}
	return res
}

// check returns the broken message and whether the field fails the condition
func (ev *evaluator) check(c *Condition, name string, entry *FieldEntry) (string, bool, error) {
	switch c.Type {
	case Required:
		if entry == nil || entry.Value == nil || valueString(entry.Value) == "" {
			return fmt.Sprintf("The required field [%s] is missing.", name), true, nil
		}

	case ConfidenceThreshold:
		if c.Setting == nil {
			return "", false, nil
		}
		if entry == nil {
			return "", false, ErrNoEntry
		}
		if entry.Confidence == nil {
			return "", false, ErrNoConfidence
		}
		confidence, err := cast.ToFloat64E(number(entry.Confidence))
		if err != nil {
			return "", false, fmt.Errorf("invalid confidence %v: %w", entry.Confidence, err)
		}
		threshold, err := cast.ToFloat64E(*c.Setting)
		if err != nil {
			return "", false, fmt.Errorf("invalid threshold %q: %w", *c.Setting, err)
		}
		if confidence < threshold {
			return fmt.Sprintf("The field [%s] confidence score %v is lower than the threshold %s",
				name, entry.Confidence, *c.Setting), true, nil
		}

	case ValueRegex:
		if entry == nil || entry.Value == nil || c.Setting == nil {
			return "", false, nil
		}
		matched, err := ev.search(*c.Setting, valueString(entry.Value))
		if err != nil {
			return "", false, err
		}
		if !matched {
			return c.Description, true, nil
		}
	}
	return "", false, nil
}

func (ev *evaluator) fail(name string, c *Condition, err error) *EvalError {
	evalErr := &EvalError{FieldName: name, ConditionType: c.Type, Cause: err}
	ev.log.WithFields(logrus.Fields{
		"field":     name,
		"condition": c.Type,
	}).WithError(err).Warn("condition could not be evaluated")
	return evalErr
}

// valueString returns the string form of a scalar field value
func valueString(v any) string {
	switch n := v.(type) {
	case json.Number:
		return n.String()
	case float64:
		return formatFloat(n, 64)
	case float32:
		return formatFloat(float64(n), 32)
	}
	if s, err := cast.ToStringE(v); err == nil {
		return s
	}
	return fmt.Sprint(v)
}

// formatFloat keeps a decimal point on integral values
func formatFloat(f float64, bits int) string {
	s := strconv.FormatFloat(f, 'f', -1, bits)
	if math.IsInf(f, 0) || math.IsNaN(f) || strings.Contains(s, ".") {
		return s
	}
	return s + ".0"
}

// number converts a JSON number literal for cast
func number(v any) any {
	if n, ok := v.(json.Number); ok {
		return n.String()
	}
	return v
}
