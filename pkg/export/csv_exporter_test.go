package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVExporterPrependsBOM(t *testing.T) {
	exporter := NewCSVExporter()

	content, err := exporter.Render(Dataset{
		Headers: []string{"児童名", "気分"},
		Rows: []map[string]string{
			{"児童名": "田中太郎", "気分": "よい"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, []byte{0xEF, 0xBB, 0xBF}, content[:3])
	body := string(content[3:])
	lines := strings.Split(strings.TrimRight(body, "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "児童名,気分", lines[0])
	assert.Equal(t, "田中太郎,よい", lines[1])
}

func TestCSVExporterFillsMissingCells(t *testing.T) {
	exporter := NewCSVExporter()

	content, err := exporter.Render(Dataset{
		Headers: []string{"a", "b"},
		Rows:    []map[string]string{{"a": "1"}},
	})
	require.NoError(t, err)
	assert.Contains(t, string(content), "1,\n")
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	exporter := NewCSVExporter()

	_, err := exporter.Render(Dataset{})
	require.Error(t, err)
}
