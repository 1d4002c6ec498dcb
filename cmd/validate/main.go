// validate is a command-line tool for checking extracted document fields against a
// declarative condition set.
//
// Conditions are read from a YAML or JSON file and select fields by exact name or by
// regular expression. Supported condition types are required fields, minimum confidence
// scores and value patterns. The result is a JSON report listing broken and evaluated
// conditions together with an overall validation status.
//
// Condition file:
//
//	category: invoice
//	conditions:
//	  - field_name: invoice_id
//	    condition_type: Required
//	    condition_category: header
//	    description: The invoice id is required
//	  - field_name_regex: "^total"
//	    condition_type: ConfidenceThreshold
//	    condition_setting: 0.8
//	    condition_category: amounts
//	    description: Totals need a confident read
//
// Usage:
//
//	validate -conditions conditions.yml <input flag> [options]
//
// Required flags:
//
//	-conditions string  Path to the condition set YAML or JSON file
//
// Input flags (exactly one required):
//
//	-fields string      Path to a JSON object of field entries
//	-docai-json string  Path to a saved Document AI response JSON
//
// Output options:
//
//	-report string      Path to save the JSON report (default stdout)
//	-category string    Document category, overrides the condition set
//	-strict             Exit with status 2 unless the report passed
//	-v                  Enable debug logging
//
// Example:
//
//	validate -conditions invoice.yml -fields fields.json -report report.json
//	validate -conditions invoice.yml -docai-json response.json -strict
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/gardar/docsift/pkg/conditions"
	"github.com/gardar/docsift/pkg/gdocai"
)

func main() {
	conditionsPath := flag.String("conditions", "", "Path to the condition set YAML or JSON file (required)")
	fieldsPath := flag.String("fields", "", "Path to a JSON object of field entries")
	docaiPath := flag.String("docai-json", "", "Path to a saved Document AI response JSON")
	reportPath := flag.String("report", "", "Path to save the JSON report (default stdout)")
	category := flag.String("category", "", "Document category, overrides the condition set")
	strict := flag.Bool("strict", false, "Exit with status 2 unless the report passed")
	verbose := flag.Bool("v", false, "Enable debug logging")

	flag.Parse()

	if *verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	// Create a map of provided flags to validate
	providedFlags := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) {
		providedFlags[f.Name] = true
	})

	if *conditionsPath == "" {
		fmt.Fprintln(os.Stderr, "Error: -conditions flag is required")
		fmt.Fprintln(os.Stderr, "Usage:")
		flag.PrintDefaults()
		os.Exit(1)
	}

	if (*fieldsPath == "" && *docaiPath == "") || (*fieldsPath != "" && *docaiPath != "") {
		fmt.Fprintln(os.Stderr, "Error: Either -fields or -docai-json flag must be provided (but not both)")
		fmt.Fprintln(os.Stderr, "Usage:")
		flag.PrintDefaults()
		os.Exit(1)
	}

	// Validate that provided flags have values
	hasError := false
	validateFlag := func(name string, value string) {
		if providedFlags[name] && value == "" {
			fmt.Fprintf(os.Stderr, "Error: -%s flag requires a value\n", name)
			hasError = true
		}
	}

	validateFlag("report", *reportPath)
	validateFlag("category", *category)

	if hasError {
		fmt.Fprintln(os.Stderr, "Usage:")
		flag.PrintDefaults()
		os.Exit(1)
	}

	set, err := conditions.LoadConditionSet(*conditionsPath)
	if err != nil {
		logrus.Fatalf("Failed to load conditions: %v", err)
	}

	var fields *conditions.FieldMap
	if *fieldsPath != "" {
		fields, err = conditions.LoadFieldMap(*fieldsPath)
		if err != nil {
			logrus.Fatalf("Failed to load fields: %v", err)
		}
	} else {
		doc, err := gdocai.LoadDocumentJSON(*docaiPath)
		if err != nil {
			logrus.Fatalf("Failed to load Document AI response: %v", err)
		}
		fields = gdocai.FieldsFromProto(doc)
	}

	docCategory := set.Category
	if *category != "" {
		docCategory = *category
	}

	report := conditions.EvaluateAll(fields, set)
	envelope := conditions.NewEnvelope(docCategory, report)

	logrus.WithFields(logrus.Fields{
		"report":    envelope.ReportID,
		"status":    envelope.Status,
		"broken":    len(envelope.Broken),
		"evaluated": len(envelope.Evaluated),
		"errors":    len(envelope.Errors),
	}).Info("Validation finished")

	data, err := envelope.JSON()
	if err != nil {
		logrus.Fatalf("Failed to convert report to JSON: %v", err)
	}

	if *reportPath != "" {
		if err := os.WriteFile(*reportPath, data, 0644); err != nil {
			logrus.Fatalf("Failed to write report: %v", err)
		}
		logrus.Infof("Report saved to: %s", *reportPath)
	} else {
		fmt.Println(string(data))
	}

	if *strict && envelope.Status != conditions.StatusPassed {
		os.Exit(2)
	}
}
