// Package output renders fms command results, as aligned tables for people
// or as JSON and YAML for scripts.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/SankareshwaranS/FileManagementSystem/pkg/tree"
)

// Format is an output format selected with -o.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

var formatNames = map[string]Format{
	"":      FormatTable,
	"table": FormatTable,
	"json":  FormatJSON,
	"yaml":  FormatYAML,
	"yml":   FormatYAML,
}

// ParseFormat parses a format name case-insensitively. Empty means table.
func ParseFormat(s string) (Format, error) {
	if f, ok := formatNames[strings.ToLower(strings.TrimSpace(s))]; ok {
		return f, nil
	}
	return "", fmt.Errorf("invalid output format: %q (valid: table, json, yaml)", s)
}

func (f Format) String() string { return string(f) }

// Structured reports whether f is meant for programs rather than people.
func (f Format) Structured() bool { return f == FormatJSON || f == FormatYAML }

// Printer writes command results in one format.
type Printer struct {
	out    io.Writer
	format Format
	color  bool
}

func NewPrinter(out io.Writer, format Format, color bool) *Printer {
	return &Printer{out: out, format: format, color: color}
}

// StdoutPrinter writes to stdout. Color is only ever used for tables.
func StdoutPrinter(format Format, color bool) *Printer {
	return NewPrinter(os.Stdout, format, color && format == FormatTable)
}

func (p *Printer) Format() Format     { return p.format }
func (p *Printer) Writer() io.Writer  { return p.out }
func (p *Printer) ColorEnabled() bool { return p.color }

// Encode writes data as YAML for yaml output and as JSON otherwise.
func (p *Printer) Encode(data any) error {
	return Encode(p.out, p.format, data)
}

// Render encodes data for structured output. For table output it writes
// table instead, or emptyMsg when the table has no rows.
func (p *Printer) Render(data any, table Table, emptyMsg string) error {
	if p.format.Structured() {
		return p.Encode(data)
	}
	if len(table.Rows()) == 0 && emptyMsg != "" {
		p.Println(emptyMsg)
		return nil
	}
	return WriteTable(p.out, table)
}

// Resource encodes data for structured output and prints successMsg for
// table output.
func (p *Printer) Resource(data any, successMsg string) error {
	if p.format.Structured() {
		return p.Encode(data)
	}
	p.Success(successMsg)
	return nil
}

// Item encodes item for structured output. For table output it prints
// successMsg, when set, followed by the item's details.
func (p *Printer) Item(item *tree.Item, successMsg string) error {
	if p.format.Structured() {
		return p.Encode(item)
	}
	if successMsg != "" {
		p.Success(successMsg)
	}
	return WriteKeyValues(p.out, ItemDetails(item))
}

func (p *Printer) Println(args ...any) {
	_, _ = fmt.Fprintln(p.out, args...)
}

func (p *Printer) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(p.out, format, args...)
}

// Success prints msg in green.
func (p *Printer) Success(msg string) { p.colored("32", msg) }

// Warning prints msg in yellow.
func (p *Printer) Warning(msg string) { p.colored("33", msg) }

func (p *Printer) colored(code, msg string) {
	if p.color {
		_, _ = fmt.Fprintf(p.out, "\033[%sm%s\033[0m\n", code, msg)
		return
	}
	_, _ = fmt.Fprintln(p.out, msg)
}
