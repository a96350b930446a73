package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset() Dataset {
	return Dataset{
		Headers: []string{"Title", "Module"},
		Rows: []map[string]string{
			{"Title": "Week 1 notes", "Module": "CS101"},
			{"Title": "=HYPERLINK(\"x\")", "Module": "Café"},
		},
	}
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleDataset())
	require.NoError(t, err)
	assert.Equal(t, "Title,Module\nWeek 1 notes,CS101\n\"'=HYPERLINK(\"\"x\"\")\",Café\n", string(out))
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	e := NewPDFExporter()
	e.now = func() time.Time { return time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC) }

	out, err := e.Render(sampleDataset(), "Study materials")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))

	empty, err := e.Render(Dataset{Headers: []string{"Title"}}, "")
	require.NoError(t, err)
	assert.NotEmpty(t, empty)
}

func TestPDFExporterRequiresHeaders(t *testing.T) {
	_, err := NewPDFExporter().Render(Dataset{}, "x")
	assert.Error(t, err)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 25))
	assert.Equal(t, "abcdefghijklmnopqrstuvw...", truncate("abcdefghijklmnopqrstuvwxyz0123", 26))
}
