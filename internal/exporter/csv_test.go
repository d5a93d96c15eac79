package exporter

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kmarankit/Money-Stories-Final/pkg/contracts/domain"
)

func TestCSVWriterWriteRecords(t *testing.T) {
	records := []domain.Record{
		domain.RecordOf("line_item", "Revenue, net", "FY24", 1200, "Margin", 12.5),
		domain.RecordOf("line_item", "Tax", "FY24", domain.Null()),
	}

	tests := []struct {
		name    string
		options WriteOptions
		want    string
	}{
		{
			name:    "raw keys",
			options: WriteOptions{},
			want:    "line_item,FY24,Margin\n\"Revenue, net\",1200,12.50\nTax,,\n",
		},
		{
			name:    "display labels with BOM",
			options: WriteOptions{BOMPrefix: true, HeaderLabels: true},
			want:    "\xEF\xBB\xBFLine Item,Fy24,Margin\n\"Revenue, net\",1200,12.50\nTax,,\n",
		},
	}

	w := NewCSVWriter(testLogger())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, w.WriteRecords(&buf, records, tt.options))
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestCSVWriterWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "report.csv")
	records := []domain.Record{domain.RecordOf("A", "1")}

	require.NoError(t, NewCSVWriter(nil).WriteFile(path, records, WriteOptions{}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "A\n1\n", string(data))
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "13.40", formatValue(domain.Float(13.4)))
	assert.Equal(t, "-7", formatValue(domain.Int(-7)))
	assert.Equal(t, "", formatValue(domain.Null()))
	assert.Equal(t, "text", formatValue(domain.String("text")))
}
