package excel

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"idsampler/domain/sampling"
	apperrors "idsampler/internal/errors"
)

// ExportFormat is a serialisation of the final dataset
type ExportFormat string

const (
	ExportCSV  ExportFormat = "csv"
	ExportXLSX ExportFormat = "xlsx"
)

// ExportSheet is the worksheet name used for Excel exports
const ExportSheet = "Sampled IDs"

// ParseExportFormat accepts csv, xlsx, or excel (case-insensitive)
func ParseExportFormat(s string) (ExportFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "csv":
		return ExportCSV, nil
	case "xlsx", "excel":
		return ExportXLSX, nil
	default:
		return "", apperrors.InvalidInput(fmt.Sprintf("unsupported export format: %s", s))
	}
}

// ContentType is the MIME type for the format
func (f ExportFormat) ContentType() string {
	if f == ExportXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv"
}

// FileName builds the timestamped download name, e.g. sampled_ids_20240102_150405.csv
func (f ExportFormat) FileName(at time.Time) string {
	return fmt.Sprintf("sampled_ids_%s.%s", at.Format("20060102_150405"), f)
}

// Write serialises the dataset in this format
func (f ExportFormat) Write(w io.Writer, dataset sampling.FinalDataset) error {
	if f == ExportXLSX {
		return WriteXLSX(w, dataset)
	}
	return WriteCSV(w, dataset)
}

var exportHeader = []string{"ID", "Source"}

// WriteCSV writes the dataset as CSV with an ID,Source header
func WriteCSV(w io.Writer, dataset sampling.FinalDataset) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return apperrors.Wrap(err, "failed to write CSV header")
	}
	for _, e := range dataset {
		if err := cw.Write([]string{strconv.FormatInt(e.ID, 10), string(e.Source)}); err != nil {
			return apperrors.Wrapf(err, "failed to write CSV row for ID %d", e.ID)
		}
	}
	cw.Flush()
	return apperrors.Wrap(cw.Error(), "failed to flush CSV")
}

// WriteXLSX writes the dataset as a single-sheet workbook
func WriteXLSX(w io.Writer, dataset sampling.FinalDataset) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ExportSheet); err != nil {
		return apperrors.Wrap(err, "failed to name export sheet")
	}

	header := []interface{}{exportHeader[0], exportHeader[1]}
	if err := f.SetSheetRow(ExportSheet, "A1", &header); err != nil {
		return apperrors.Wrap(err, "failed to write Excel header")
	}
	for i, e := range dataset {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return apperrors.Wrap(err, "failed to address Excel row")
		}
		row := []interface{}{e.ID, string(e.Source)}
		if err := f.SetSheetRow(ExportSheet, cell, &row); err != nil {
			return apperrors.Wrapf(err, "failed to write Excel row for ID %d", e.ID)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return apperrors.Wrap(err, "failed to write Excel file")
	}
	return nil
}
