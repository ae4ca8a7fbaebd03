package excel

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"idsampler/domain/sampling"
)

var testDataset = sampling.FinalDataset{
	{ID: 1, Source: sampling.ProvenanceCurrent},
	{ID: 5, Source: sampling.ProvenanceNew},
	{ID: 9, Source: sampling.ProvenanceNew},
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, testDataset))
	assert.Equal(t, "ID,Source\n1,Current\n5,New\n9,New\n", buf.String())
}

func TestWriteCSVRoundTripsThroughExtractor(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, testDataset))

	ext, err := ExtractIdentifiers("export.csv", &buf)
	require.NoError(t, err)
	assert.Equal(t, testDataset.IDs(), ext.IDs)
	assert.Equal(t, "ID", ext.Header)
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, testDataset))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{ExportSheet}, f.GetSheetList())
	rows, err := f.GetRows(ExportSheet)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"ID", "Source"},
		{"1", "Current"},
		{"5", "New"},
		{"9", "New"},
	}, rows)
}

func TestParseExportFormat(t *testing.T) {
	for in, want := range map[string]ExportFormat{
		"":      ExportCSV,
		"CSV":   ExportCSV,
		"xlsx":  ExportXLSX,
		"Excel": ExportXLSX,
	} {
		got, err := ParseExportFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseExportFormat("pdf")
	assert.Error(t, err)
}

func TestExportFileName(t *testing.T) {
	at := time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)
	assert.Equal(t, "sampled_ids_20240309_140507.csv", ExportCSV.FileName(at))
	assert.Equal(t, "sampled_ids_20240309_140507.xlsx", ExportXLSX.FileName(at))
	assert.Equal(t, "text/csv", ExportCSV.ContentType())
}
