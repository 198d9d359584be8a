package excel

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"policysim/domain/policy"
	"policysim/internal"
	"policysim/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var testPolicies = []policy.Policy{
	{ID: "KE-1", Name: "Feed-in Tariff", Country: "Kenya", CountryISO: "KE", Status: "In force", Sector: "Electricity", StartYear: policy.NewYear(2012)},
	{ID: "DE-9", Name: "Kohleausstieg, Phase 2", Country: "Germany", CountryISO: "DE", Status: "Planned", DecisionYear: policy.NewYear(2020)},
}

func newTestExporter() *CatalogExporter {
	return NewCatalogExporter(DefaultExportConfig(), internal.NewLogger(internal.LogLevelError))
}

func TestExportCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, newTestExporter().Write(&buf, FormatCSV, testPolicies))

	data, err := NewDataReader(FormatCSV, "").ReadData(&buf)

	require.NoError(t, err)
	assert.Equal(t, CatalogHeaders, data.Headers)
	require.Len(t, data.Rows, 2)
	assert.Equal(t, []string{"KE-1", "DE-9"}, data.Column("Policy ID"))
	assert.Equal(t, "Kohleausstieg, Phase 2", data.Rows[1]["Policy Name"])
	assert.Equal(t, "2012", data.Rows[0]["Start Year"])
	assert.Empty(t, data.Rows[0]["End Year"])
}

func TestExportXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, newTestExporter().Write(&buf, FormatXLSX, testPolicies))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, "Policies", f.GetSheetName(0))

	data, err := NewDataReader(FormatXLSX, "Policies").ReadData(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, CatalogHeaders, data.Headers)
	assert.Equal(t, []string{"Kenya", "Germany"}, data.Column("Country"))
	assert.Equal(t, "2020", data.Rows[1]["Decision Year"])
}

func TestExportEmptyCollection(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, newTestExporter().Write(&buf, FormatCSV, nil))

	data, err := NewDataReader(FormatCSV, "").ReadData(&buf)

	require.NoError(t, err)
	assert.Equal(t, CatalogHeaders, data.Headers)
	assert.Empty(t, data.Rows)
}

func TestWriteFilePicksFormatFromExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.csv")

	require.NoError(t, newTestExporter().WriteFile(path, testPolicies))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(raw, []byte("Policy ID,Policy Name")))
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatXLSX, false},
		{"XLSX", FormatXLSX, false},
		{" csv ", FormatCSV, false},
		{"pdf", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.wantErr {
			assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err), tt.in)
			continue
		}
		assert.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}
