// linearize is a command-line tool for turning OCR output into reading-ordered page text.
//
// The tool reads a block graph from Textract block JSON, a saved Google Document AI
// response, an hOCR file, or a PDF sent to Document AI, and writes the linearized text
// per page, as a combined text file, or as a PDF. Tables are rebuilt from their cell
// structure and rendered as text grids. Figure, header, footer and page number text can
// be left out.
//
// Configuration:
//
// The optional YAML configuration file holds the Document AI settings (required for -pdf)
// and the linearization options:
//
//	project_id: "your-gcp-project-id"
//	location: "us"
//	processor_id: "your-processor-id"
//	linearize:
//	  table_format: grid
//	  exclude_figure_text: true
//	  exclude_page_header: false
//	  exclude_page_footer: false
//	  exclude_page_number: false
//	  skip_table: false
//	  table_match_tolerance: 0.1
//
// Usage:
//
//	linearize [-config config.yml] <input flag> [options]
//
// Input flags (exactly one required):
//
//	-textract string    Comma separated list of Textract block JSON files, linearized in parallel
//	-docai-json string  Path to a saved Document AI response JSON
//	-hocr string        Path to an hOCR file
//	-pdf string         Path to a PDF to process with Document AI (requires -config)
//
// Output options (at least one required):
//
//	-output-dir string  Directory to save page_<n>.txt files
//	-text string        Path to save the combined text of all pages
//	-pdf-output string  Path to save the page text as PDF
//	-fields string      Path to save Document AI form fields and entities as JSON
//	-debug-api string   Path to save the Document AI response JSON (-pdf only)
//
// Other options:
//
//	-table-format string  Table style, overrides the config file
//	-workers int          Documents linearized at once for -textract (default 4)
//	-v                    Enable debug logging
//
// Example:
//
//	linearize -textract page1.json,page2.json -output-dir ./text
//	linearize -config config.yml -pdf invoice.pdf -text invoice.txt -fields fields.json
//	linearize -hocr scan.hocr -pdf-output scan.pdf
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/gardar/docsift/pkg/blocks"
	"github.com/gardar/docsift/pkg/gdocai"
	"github.com/gardar/docsift/pkg/hocr"
	"github.com/gardar/docsift/pkg/linearize"
	"github.com/gardar/docsift/pkg/textpdf"
)

type yamlConfig struct {
	gdocai.Config `yaml:",inline"`
	Linearize     linearize.Options `yaml:"linearize"`
}

// loadConfig reads a YAML file into the Document AI config and the
// linearization options. Options missing from the file keep their defaults.
func loadConfig(path string) (*yamlConfig, error) {
	yc := &yamlConfig{Linearize: linearize.DefaultOptions()}
	if path == "" {
		return yc, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, yc); err != nil {
		return nil, err
	}
	return yc, nil
}

func main() {
	configPath := flag.String("config", "", "Path to the config YAML file (required with -pdf)")

	// Input flags
	textractPaths := flag.String("textract", "", "Comma-separated list of Textract block JSON files")
	docaiPath := flag.String("docai-json", "", "Path to a saved Document AI response JSON")
	hocrPath := flag.String("hocr", "", "Path to an hOCR file")
	pdfPath := flag.String("pdf", "", "Path to a PDF to process with Document AI")

	// Output flags
	outputDir := flag.String("output-dir", "", "Directory to save page_<n>.txt files")
	textPath := flag.String("text", "", "Path to save the combined text output")
	pdfOutputPath := flag.String("pdf-output", "", "Path to save the page text as PDF")
	fieldsPath := flag.String("fields", "", "Path to save Document AI form fields and entities JSON")
	debugAPIPath := flag.String("debug-api", "", "Path to save the Document AI response JSON")

	tableFormat := flag.String("table-format", "", "Table style: "+strings.Join(linearize.TableFormats(), ", "))
	workers := flag.Int("workers", 4, "Number of documents linearized at once")
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

	inputs := 0
	for _, name := range []string{"textract", "docai-json", "hocr", "pdf"} {
		if providedFlags[name] {
			inputs++
		}
	}
	if inputs != 1 {
		fmt.Fprintln(os.Stderr, "Error: Exactly one of -textract, -docai-json, -hocr or -pdf must be provided")
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

	validateFlag("config", *configPath)
	validateFlag("textract", *textractPaths)
	validateFlag("docai-json", *docaiPath)
	validateFlag("hocr", *hocrPath)
	validateFlag("pdf", *pdfPath)
	validateFlag("output-dir", *outputDir)
	validateFlag("text", *textPath)
	validateFlag("pdf-output", *pdfOutputPath)
	validateFlag("fields", *fieldsPath)
	validateFlag("debug-api", *debugAPIPath)
	validateFlag("table-format", *tableFormat)

	if *pdfPath != "" && *configPath == "" {
		fmt.Fprintln(os.Stderr, "Error: -pdf requires -config with the Document AI settings")
		hasError = true
	}
	if *fieldsPath != "" && *docaiPath == "" && *pdfPath == "" {
		fmt.Fprintln(os.Stderr, "Error: -fields requires -docai-json or -pdf")
		hasError = true
	}
	if *debugAPIPath != "" && *pdfPath == "" {
		fmt.Fprintln(os.Stderr, "Error: -debug-api requires -pdf")
		hasError = true
	}

	if hasError {
		fmt.Fprintln(os.Stderr, "Usage:")
		flag.PrintDefaults()
		os.Exit(1)
	}

	// Check if at least one output flag is provided
	hasOutputFlag := providedFlags["output-dir"] || providedFlags["text"] ||
		providedFlags["pdf-output"] || providedFlags["fields"] || providedFlags["debug-api"]

	if !hasOutputFlag {
		fmt.Fprintln(os.Stderr, "Error: At least one output flag must be provided (-output-dir, -text, -pdf-output, -fields or -debug-api)")
		fmt.Fprintln(os.Stderr, "Usage:")
		flag.PrintDefaults()
		os.Exit(1)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	opts := cfg.Linearize
	opts.Logger = logrus.StandardLogger()
	opts.SaveOutputPath = *outputDir
	if *tableFormat != "" {
		opts.TableFormat = *tableFormat
	}
	if err := opts.Validate(); err != nil {
		logrus.Fatalf("Invalid linearize options: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var graphs []*blocks.Graph
	var doc *documentaipb.Document

	switch {
	case *textractPaths != "":
		for _, path := range strings.Split(*textractPaths, ",") {
			path = strings.TrimSpace(path)
			if path == "" {
				continue
			}
			logrus.WithField("file", path).Info("Reading Textract blocks")
			g, err := blocks.LoadTextract(path)
			if err != nil {
				logrus.Fatalf("Failed to load Textract blocks: %v", err)
			}
			graphs = append(graphs, g)
		}
		if len(graphs) == 0 {
			logrus.Fatalf("No valid Textract files found in the provided list")
		}

	case *hocrPath != "":
		logrus.WithField("file", *hocrPath).Info("Reading hOCR")
		g, err := hocr.LoadGraph(*hocrPath)
		if err != nil {
			logrus.Fatalf("Failed to load hOCR: %v", err)
		}
		graphs = append(graphs, g)

	default:
		if *docaiPath != "" {
			logrus.WithField("file", *docaiPath).Info("Reading Document AI response")
			doc, err = gdocai.LoadDocumentJSON(*docaiPath)
			if err != nil {
				logrus.Fatalf("Failed to load Document AI response: %v", err)
			}
		} else {
			doc = processPDF(ctx, *pdfPath, &cfg.Config, *debugAPIPath)
		}

		g, err := gdocai.GraphFromProto(doc)
		if err != nil {
			logrus.Fatalf("Failed to convert Document AI response: %v", err)
		}
		graphs = append(graphs, g)
	}

	// Write fields JSON if flag is provided.
	if *fieldsPath != "" {
		fieldsJSON, err := json.MarshalIndent(gdocai.FieldsFromProto(doc), "", "  ")
		if err != nil {
			logrus.Fatalf("Failed to convert fields to JSON: %v", err)
		}
		if err := os.WriteFile(*fieldsPath, fieldsJSON, 0644); err != nil {
			logrus.Fatalf("Failed to write fields JSON: %v", err)
		}
		logrus.Infof("Fields JSON saved to: %s", *fieldsPath)
	}

	if !providedFlags["output-dir"] && !providedFlags["text"] && !providedFlags["pdf-output"] {
		return
	}

	var results []*linearize.Result
	if len(graphs) == 1 {
		res, err := linearize.Linearize(graphs[0], opts)
		if err != nil {
			logrus.Fatalf("Failed to linearize document: %v", err)
		}
		results = append(results, res)
	} else {
		results, err = linearize.LinearizeAll(ctx, graphs, opts, *workers)
		if err != nil {
			logrus.Fatalf("Failed to linearize documents: %v", err)
		}
	}

	warnings := 0
	for _, res := range results {
		warnings += len(res.Warnings)
	}
	logrus.WithFields(logrus.Fields{
		"documents": len(results),
		"warnings":  warnings,
	}).Info("Linearized")
	if *outputDir != "" {
		logrus.Infof("Page text saved to: %s", *outputDir)
	}

	pages := mergePages(results)

	// Write combined text output if flag is provided.
	if *textPath != "" {
		var sb strings.Builder
		for _, res := range results {
			sb.WriteString(res.Text())
		}
		if err := os.WriteFile(*textPath, []byte(sb.String()), 0644); err != nil {
			logrus.Fatalf("Failed to write text output: %v", err)
		}
		logrus.Infof("Document text saved to: %s", *textPath)
	}

	// Render the page text to PDF if flag is provided.
	if *pdfOutputPath != "" {
		if len(pages) == 0 {
			logrus.Fatalf("No page text available for PDF output")
		}
		if err := textpdf.WriteFile(*pdfOutputPath, pages, textpdf.DefaultConfig()); err != nil {
			logrus.Fatalf("Failed to write PDF output: %v", err)
		}
		logrus.Infof("Text PDF saved to: %s", *pdfOutputPath)
	}
}

// processPDF sends a PDF to Document AI and optionally saves the raw response
func processPDF(ctx context.Context, path string, cfg *gdocai.Config, debugAPIPath string) *documentaipb.Document {
	if err := cfg.Validate(); err != nil {
		logrus.Fatalf("Invalid Document AI config: %v", err)
	}

	logrus.WithField("file", path).Info("Processing PDF with Document AI")
	pdfBytes, err := os.ReadFile(path)
	if err != nil {
		logrus.Fatalf("Failed to read PDF file: %v", err)
	}

	doc, err := gdocai.ProcessDocument(ctx, pdfBytes, cfg)
	if err != nil {
		logrus.Fatalf("Error processing document: %v", err)
	}

	// Write API response JSON if flag is provided.
	if debugAPIPath != "" {
		apiJSON, err := gdocai.ToJSON(doc)
		if err != nil {
			logrus.Fatalf("Failed to convert API response to JSON: %v", err)
		}
		if err := os.WriteFile(debugAPIPath, []byte(apiJSON), 0644); err != nil {
			logrus.Fatalf("Failed to write API response JSON: %v", err)
		}
		logrus.Infof("API response JSON saved to: %s", debugAPIPath)
	}
	return doc
}

// mergePages numbers the pages of consecutive documents as one sequence
func mergePages(results []*linearize.Result) map[int]string {
	pages := make(map[int]string)
	next := 1
	for _, res := range results {
		for _, n := range res.PageNumbers() {
			pages[next] = res.Pages[n]
			next++
		}
	}
	return pages
}
