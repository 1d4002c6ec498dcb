// Package gdocai connects Google Document AI to the linearization and
// validation engines.
//
// A Document AI response is converted into a block graph that the linearize
// package can walk: page blocks and paragraphs become nested layout regions,
// lines become text lines, tables become a layout table region plus a
// structural table with spanning cells, and image visual elements become
// figure regions. Form fields and custom extractor entities are converted
// into an ordered field map for the conditions package.
//
// Key Features:
//
// - Process documents with an explicitly constructed Document AI client
// - Build a block graph ordered by text position
// - Rebuild table cell positions from header and body rows with spans
// - Extract form fields and nested entities with confidence and provenance
// - Load and save Document AI responses as JSON
//
// Main Functions:
//
// - NewClient / ProcessDocument: Send a document to Document AI
// - GraphFromProto: Convert a response into a block graph
// - FieldsFromProto: Convert form fields and entities into a field map
// - LoadDocumentJSON: Read a saved response
//
// Usage Requirements:
//
// - Google Cloud project with Document AI API enabled
// - Document AI processor configured for OCR, layout or form parsing
// - Authentication via GOOGLE_APPLICATION_CREDENTIALS environment variable
package gdocai

import "fmt"

// Config identifies the Document AI processor to call
type Config struct {
	ProjectID   string `yaml:"project_id"`
	Location    string `yaml:"location"`
	ProcessorID string `yaml:"processor_id"`
}

// Validate checks that every processor setting is present
func (c *Config) Validate() error {
	if c.ProjectID == "" || c.Location == "" || c.ProcessorID == "" {
		return fmt.Errorf("project_id, location and processor_id are required")
	}
	return nil
}

// ProcessorName returns the resource name of the configured processor
func (c *Config) ProcessorName() string {
	return fmt.Sprintf("projects/%s/locations/%s/processors/%s", c.ProjectID, c.Location, c.ProcessorID)
}

// Endpoint returns the regional API endpoint for the configured location
func (c *Config) Endpoint() string {
	return fmt.Sprintf("%s-documentai.googleapis.com:443", c.Location)
}
