// Package textpdf renders linearized page text into a PDF document.
//
// Each text page becomes one or more PDF pages set in a monospace core font,
// so rendered table grids keep their column alignment. Text is transcoded to
// ISO-8859-1 for the core fonts; runes outside that charset are replaced.
//
// Main Functions:
//
// - Render: Build a PDF from a page number -> text map
// - WriteFile: Render and write the PDF to disk
package textpdf

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"strings"

	"codeberg.org/go-pdf/fpdf"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// Render builds a PDF with the text of every page in ascending page order
func Render(pages map[int]string, cfg Config) ([]byte, error) {
	if len(pages) == 0 {
		return nil, fmt.Errorf("no page text provided")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	numbers := make([]int, 0, len(pages))
	for n := range pages {
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)

	pdf := fpdf.New(cfg.Orientation, "pt", cfg.PageSize, "")
	pdf.SetCompression(cfg.Compress)
	pdf.SetMargins(cfg.Margin, cfg.Margin, cfg.Margin)
	pdf.SetAutoPageBreak(true, cfg.Margin+cfg.Font.Size*2)
	pdf.SetFont(cfg.Font.Name, cfg.Font.Style, cfg.Font.Size)

	current := 0
	if cfg.PageNumbers {
		pdf.SetFooterFunc(func() {
			pdf.SetY(-(cfg.Margin + cfg.Font.Size))
			pdf.CellFormat(0, cfg.Font.Size, fmt.Sprintf("Page %d", current), "", 0, "C", false, 0, "")
		})
	}

	encoder := encoding.ReplaceUnsupported(charmap.ISO8859_1.NewEncoder())
	lineHeight := cfg.Font.Size * cfg.LineHeight

	for _, n := range numbers {
		pdf.AddPage()
		current = n

		text, err := encoder.String(strings.TrimRight(pages[n], "\n"))
		if err != nil {
			return nil, fmt.Errorf("failed to encode text of page %d: %w", n, err)
		}
		pdf.MultiCell(0, lineHeight, text, "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteFile renders pages and writes the PDF to path
func WriteFile(path string, pages map[int]string, cfg Config) error {
	data, err := Render(pages, cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write PDF: %w", err)
	}
	return nil
}
