package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SankareshwaranS/FileManagementSystem/pkg/tree"
)

func TestItemTable(t *testing.T) {
	table := ItemTable{sampleFolder(), sampleFile()}

	assert.Equal(t, []string{"ID", "NAME", "TYPE", "PARENT", "SIZE", "UPDATED"}, table.Headers())
	rows := table.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"f1", "reports", "folder", "-", "-"}, rows[0][:5])
	assert.Equal(t, []string{"a1", "q3 & q4.pdf", "file", "f1", "2.0 KiB"}, rows[1][:5])
	assert.Contains(t, rows[1][5], "ago")
}

func TestItemDetails(t *testing.T) {
	keys := func(kv KeyValues) []string {
		var out []string
		for _, pair := range kv {
			out = append(out, pair[0])
		}
		return out
	}

	assert.Equal(t, []string{"ID", "Name", "Type", "Parent", "Created", "Updated"}, keys(ItemDetails(sampleFolder())))

	file := ItemDetails(sampleFile())
	assert.Equal(t, []string{"ID", "Name", "Type", "Parent", "Size", "Content type", "Path", "Created", "Updated"}, keys(file))
	assert.Equal(t, [2]string{"Parent", "f1"}, file[3])
	assert.Equal(t, [2]string{"Size", "2.0 KiB"}, file[4])

	noType := sampleFile()
	noType.ContentType = ""
	assert.Equal(t, [2]string{"Content type", "-"}, ItemDetails(noType)[5])
}

func TestFindingTable(t *testing.T) {
	rows := FindingTable{
		{Kind: tree.FindingStalePath, ItemID: "a1", Type: tree.TypeFile, Path: "r/a.txt", StoredPath: "old/a.txt", Repaired: true},
		{Kind: tree.FindingUnreachable, ItemID: "b2", Type: tree.TypeFolder},
	}.Rows()

	assert.Equal(t, []string{"stale_path", "a1", "file", "r/a.txt", "old/a.txt", "yes"}, rows[0])
	assert.Equal(t, []string{"unreachable", "b2", "folder", "-", "-", "no"}, rows[1])
}

func TestComponentTable(t *testing.T) {
	rows := ComponentTable{
		{Name: "store", Kind: "sqlite", Status: "healthy", Latency: "1.2ms"},
		{Name: "backend", Kind: "s3", Status: "unhealthy", Error: "AccessDenied"},
	}.Rows()

	assert.Equal(t, []string{"store", "sqlite", "healthy", "1.2ms", "-"}, rows[0])
	assert.Equal(t, []string{"backend", "s3", "unhealthy", "-", "AccessDenied"}, rows[1])
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, ComponentTable{
		{Name: "store", Kind: "sqlite", Status: "healthy", Latency: "1.2ms"},
	}))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "COMPONENT"))
	assert.Contains(t, lines[0], "STATUS")
	assert.True(t, strings.HasPrefix(lines[1], "store"))
}

func TestWriteKeyValues(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteKeyValues(&buf, KeyValues{}.Add("Server", "http://localhost:8080").Add("Message", "")))

	out := buf.String()
	assert.Contains(t, out, "Server")
	assert.Contains(t, out, "http://localhost:8080")
	assert.Contains(t, out, ":")
	assert.Contains(t, out, "-")
}
