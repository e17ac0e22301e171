package output

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SankareshwaranS/FileManagementSystem/pkg/tree"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{input: "", want: FormatTable},
		{input: "  Table ", want: FormatTable},
		{input: "JSON", want: FormatJSON},
		{input: "yml", want: FormatYAML},
		{input: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if tt.wantErr {
				assert.ErrorContains(t, err, "valid: table, json, yaml")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStructured(t *testing.T) {
	assert.False(t, FormatTable.Structured())
	assert.True(t, FormatJSON.Structured())
	assert.True(t, FormatYAML.Structured())
}

func TestStdoutPrinterColor(t *testing.T) {
	assert.True(t, StdoutPrinter(FormatTable, true).ColorEnabled())
	assert.False(t, StdoutPrinter(FormatTable, false).ColorEnabled())
	assert.False(t, StdoutPrinter(FormatJSON, true).ColorEnabled())
}

func TestPrinterMessages(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, FormatTable, false)
	p.Success("folder 'reports' created")
	p.Warning("folder contents will be deleted")
	assert.Equal(t, "folder 'reports' created\nfolder contents will be deleted\n", buf.String())

	buf.Reset()
	NewPrinter(&buf, FormatTable, true).Success("ok")
	assert.Equal(t, "\033[32mok\033[0m\n", buf.String())
}

func TestPrinterRenderItems(t *testing.T) {
	items := []*tree.Item{sampleFolder(), sampleFile()}

	tests := []struct {
		format Format
		want   []string
	}{
		{FormatTable, []string{"NAME", "reports", "q3 & q4.pdf", "2.0 KiB"}},
		{FormatJSON, []string{`"name": "q3 & q4.pdf"`, `"parent_id": null`}},
		{FormatYAML, []string{"name: q3 & q4.pdf", "type: folder"}},
	}

	for _, tt := range tests {
		t.Run(tt.format.String(), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, NewPrinter(&buf, tt.format, false).Render(items, ItemTable(items), "No items found."))
			for _, want := range tt.want {
				assert.Contains(t, buf.String(), want)
			}
		})
	}
}

func TestPrinterRenderEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewPrinter(&buf, FormatTable, false).Render([]*tree.Item{}, ItemTable(nil), "No items found."))
	assert.Equal(t, "No items found.\n", buf.String())

	buf.Reset()
	require.NoError(t, NewPrinter(&buf, FormatJSON, false).Render([]*tree.Item{}, ItemTable(nil), "No items found."))
	assert.Equal(t, "[]\n", buf.String())
}

func TestPrinterItem(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewPrinter(&buf, FormatTable, false).Item(sampleFile(), "file 'q3 & q4.pdf' uploaded"))
	out := buf.String()
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("file 'q3 & q4.pdf' uploaded\n")))
	assert.Contains(t, out, "reports/q3 & q4.pdf")
	assert.Contains(t, out, "application/pdf")

	buf.Reset()
	require.NoError(t, NewPrinter(&buf, FormatYAML, false).Item(sampleFile(), "ignored"))
	assert.NotContains(t, buf.String(), "ignored")
	assert.Contains(t, buf.String(), "stored_path: reports/q3 & q4.pdf")
}

func TestPrinterResource(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewPrinter(&buf, FormatTable, false).Resource(sampleFolder(), "Deleted folder reports"))
	assert.Equal(t, "Deleted folder reports\n", buf.String())

	buf.Reset()
	require.NoError(t, NewPrinter(&buf, FormatJSON, false).Resource(sampleFolder(), "Deleted folder reports"))
	assert.Contains(t, buf.String(), `"id": "f1"`)
}

func sampleFolder() *tree.Item {
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return &tree.Item{ID: "f1", Name: "reports", Type: tree.TypeFolder, CreatedAt: ts, UpdatedAt: ts}
}

func sampleFile() *tree.Item {
	ts := time.Date(2024, 3, 2, 9, 30, 0, 0, time.UTC)
	return &tree.Item{
		ID:          "a1",
		Name:        "q3 & q4.pdf",
		Type:        tree.TypeFile,
		ParentID:    tree.ParentRef("f1"),
		StoredPath:  "reports/q3 & q4.pdf",
		Size:        2048,
		ContentType: "application/pdf",
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
}
