package textpdf

import (
	"fmt"
)

// Config holds user options for rendering page text to PDF
type Config struct {
	Orientation string  // "P" or "L"
	PageSize    string  // fpdf page size name, e.g. "A4" or "Letter"
	Margin      float64 // Page margin in points
	LineHeight  float64 // Line height as a multiple of the font size
	PageNumbers bool    // Print "Page n" at the bottom of each page
	Compress    bool    // Compress page content streams
	Font        FontConfig
}

// FontConfig contains font settings for the page text
type FontConfig struct {
	Name  string  // Core font name; a monospace font keeps table grids aligned
	Style string  // Font style ("", "B", "I", "BI")
	Size  float64 // Font size in points
}

// DefaultFont is Courier, the monospace core font
var DefaultFont = FontConfig{
	Name:  "Courier",
	Style: "",
	Size:  9,
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() Config {
	return Config{
		Orientation: "P",
		PageSize:    "A4",
		Margin:      36,
		LineHeight:  1.25,
		PageNumbers: true,
		Compress:    true,
		Font:        DefaultFont,
	}
}

// Validate checks the config for unusable values
func (c Config) Validate() error {
	if c.Orientation != "P" && c.Orientation != "L" {
		return fmt.Errorf("orientation must be P or L, got %q", c.Orientation)
	}
	if c.Font.Name == "" {
		return fmt.Errorf("font name is required")
	}
	if c.Font.Size <= 0 {
		return fmt.Errorf("font size must be positive, got %v", c.Font.Size)
	}
	if c.LineHeight <= 0 {
		return fmt.Errorf("line height must be positive, got %v", c.LineHeight)
	}
	if c.Margin < 0 {
		return fmt.Errorf("margin must not be negative, got %v", c.Margin)
	}
	return nil
}
