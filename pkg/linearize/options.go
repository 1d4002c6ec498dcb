package linearize

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/gardar/docsift/pkg/blocks"
	"github.com/gardar/docsift/pkg/geometry"
)

// Options controls which regions are kept and how tables are rendered.
// The yaml tags match the keys of the configuration file.
type Options struct {
	TableFormat         string  `yaml:"table_format"`          // Table style, see TableFormats
	ExcludeFigureText   bool    `yaml:"exclude_figure_text"`   // Drop figures and lines inside figure boxes
	ExcludePageHeader   bool    `yaml:"exclude_page_header"`   // Drop header regions
	ExcludePageFooter   bool    `yaml:"exclude_page_footer"`   // Drop footer regions
	ExcludePageNumber   bool    `yaml:"exclude_page_number"`   // Drop page number regions
	SkipTable           bool    `yaml:"skip_table"`            // Treat table regions as plain text
	SaveOutputPath      string  `yaml:"save_output_path"`      // Directory for page_<n>.txt files, empty disables
	TableMatchTolerance float64 `yaml:"table_match_tolerance"` // Box tolerance when pairing layout and structural tables

	Logger logrus.FieldLogger `yaml:"-"` // nil uses the logrus standard logger
}

// DefaultOptions returns options with sensible defaults
func DefaultOptions() Options {
	return Options{
		TableFormat:         FormatGrid,
		ExcludeFigureText:   true,
		ExcludePageHeader:   false,
		ExcludePageFooter:   false,
		ExcludePageNumber:   false,
		SkipTable:           false,
		SaveOutputPath:      "",
		TableMatchTolerance: geometry.DefaultTolerance,
	}
}

// Validate checks the options for unsupported values
func (o Options) Validate() error {
	if _, ok := tableRenderers[o.TableFormat]; !ok {
		return fmt.Errorf("unsupported table format %q", o.TableFormat)
	}
	if o.TableMatchTolerance < 0 {
		return fmt.Errorf("table match tolerance must not be negative, got %v", o.TableMatchTolerance)
	}
	return nil
}

func (o Options) logger() logrus.FieldLogger {
	if o.Logger == nil {
		return logrus.StandardLogger()
	}
	return o.Logger
}

// excludes reports whether a layout region is dropped together with its subtree
func (o Options) excludes(b *blocks.Block) bool {
	if b.Kind != blocks.KindLayout {
		return false
	}
	switch b.Layout {
	case blocks.LayoutFigure:
		return o.ExcludeFigureText
	case blocks.LayoutHeader:
		return o.ExcludePageHeader
	case blocks.LayoutFooter:
		return o.ExcludePageFooter
	case blocks.LayoutPageNumber:
		return o.ExcludePageNumber
	default:
		return false
	}
}
