package output

import (
	"io"

	"github.com/olekukonko/tablewriter"
)

// Table is anything that can be written as rows under a header.
type Table interface {
	Headers() []string
	Rows() [][]string
}

// WriteTable writes t as borderless, left-aligned columns.
func WriteTable(w io.Writer, t Table) error {
	tw := newTableWriter(w, "")
	tw.SetHeader(t.Headers())
	tw.SetAutoFormatHeaders(true)
	tw.AppendBulk(t.Rows())
	tw.Render()
	return nil
}

// KeyValues is a two-column "Key: value" listing, used for single records.
type KeyValues [][2]string

// Add appends a pair and returns the listing for chaining.
func (kv KeyValues) Add(key, value string) KeyValues {
	return append(kv, [2]string{key, dash(value)})
}

// WriteKeyValues writes kv with keys and values separated by a colon.
func WriteKeyValues(w io.Writer, kv KeyValues) error {
	tw := newTableWriter(w, ":")
	tw.SetAutoFormatHeaders(false)
	for _, pair := range kv {
		tw.Append([]string{pair[0], pair[1]})
	}
	tw.Render()
	return nil
}

func newTableWriter(w io.Writer, columnSep string) *tablewriter.Table {
	tw := tablewriter.NewWriter(w)
	tw.SetAutoWrapText(false)
	tw.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	tw.SetAlignment(tablewriter.ALIGN_LEFT)
	tw.SetCenterSeparator("")
	tw.SetColumnSeparator(columnSep)
	tw.SetRowSeparator("")
	tw.SetHeaderLine(false)
	tw.SetBorder(false)
	tw.SetTablePadding("  ")
	tw.SetNoWhiteSpace(true)
	return tw
}

// dash stands in for empty cells.
func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
