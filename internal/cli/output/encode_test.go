package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/SankareshwaranS/FileManagementSystem/pkg/tree"
)

func TestWriteJSONKeepsNames(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleFile()))

	out := buf.String()
	assert.Contains(t, out, `"name": "q3 & q4.pdf"`)
	assert.NotContains(t, out, `\u0026`)
	assert.Contains(t, out, "\n  \"id\": \"a1\"")
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteYAML(&buf, tree.VerifyReport{
		Checked:  3,
		Findings: []tree.Finding{{Kind: tree.FindingMissingObject, ItemID: "a1", Type: tree.TypeFile, Path: "reports/a.txt"}},
	}))

	var got tree.VerifyReport
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, 3, got.Checked)
	require.Len(t, got.Findings, 1)
	assert.Equal(t, "reports/a.txt", got.Findings[0].Path)
	assert.Contains(t, buf.String(), "kind: missing_object")
}

func TestEncodeDispatch(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, FormatYAML, sampleFolder()))
	assert.Contains(t, buf.String(), "id: f1")

	buf.Reset()
	require.NoError(t, Encode(&buf, FormatTable, sampleFolder()))
	assert.Contains(t, buf.String(), `"id": "f1"`)
}
