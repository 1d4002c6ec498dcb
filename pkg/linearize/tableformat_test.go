package linearize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var inventory = [][]string{
	{"Name", "Qty"},
	{"Apple", "3"},
}

func TestFormatTable(t *testing.T) {
	tests := []struct {
		format string
		want   string
	}{
		{FormatGrid, "+-------+-----+\n| Name  | Qty |\n+-------+-----+\n| Apple | 3   |\n+-------+-----+"},
		{FormatSimple, "-----  ---\nName   Qty\nApple  3\n-----  ---"},
		{FormatPlain, "Name   Qty\nApple  3"},
		{FormatPipe, "| Name  | Qty |\n|-------|-----|\n| Apple | 3   |"},
		{FormatGithub, "| Name  | Qty |\n|-------|-----|\n| Apple | 3   |"},
		{FormatTSV, "Name\tQty\nApple\t3"},
		{"unknown", "+-------+-----+\n| Name  | Qty |\n+-------+-----+\n| Apple | 3   |\n+-------+-----+"},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatTable(inventory, tt.format))
		})
	}
}

func TestFormatTableRounded(t *testing.T) {
	out := FormatTable(inventory, FormatRounded)
	assert.Contains(t, out, "Apple")
	assert.Contains(t, out, "Qty")
	assert.Contains(t, out, "╭")
	assert.Contains(t, out, "╯")
}

func TestFormatTableEmpty(t *testing.T) {
	assert.Equal(t, "", FormatTable(nil, FormatGrid))
	assert.Equal(t, "", FormatTable([][]string{{}}, FormatGrid))
}

func TestFormatTableEscapesAndWidths(t *testing.T) {
	rows := [][]string{{"a|b", "x"}, {"日本", ""}}

	pipe := FormatTable(rows, FormatPipe)
	assert.Equal(t, "| a\\|b | x   |\n|------|-----|\n| 日本 |     |", pipe)

	tsv := FormatTable([][]string{{"tab\there", "new\nline"}}, FormatTSV)
	assert.Equal(t, "tab here\tnew line", tsv)
}

func TestTableGridSpans(t *testing.T) {
	grid := newTableGrid()
	grid.place(1, 1, 2, 2, "merged")
	grid.place(1, 3, 1, 1, "c")
	grid.place(3, 2, 1, 1, "tail")

	rows := grid.rows()
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"merged", "merged", "c"}, rows[0])
	assert.Equal(t, []string{"merged", "merged", ""}, rows[1])
	assert.Equal(t, []string{"", "tail", ""}, rows[2])
}

func TestTableGridOverlapIsLastWriteWins(t *testing.T) {
	grid := newTableGrid()
	grid.place(1, 1, 1, 2, "wide")
	grid.place(1, 2, 1, 1, "late")

	assert.Equal(t, [][]string{{"wide", "late"}}, grid.rows())
}

func TestOptionsValidate(t *testing.T) {
	opts := DefaultOptions()
	require.NoError(t, opts.Validate())

	for _, format := range TableFormats() {
		opts.TableFormat = format
		assert.NoError(t, opts.Validate(), format)
	}

	opts.TableFormat = "latex"
	err := opts.Validate()
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "latex"))
}
