package excel

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"idsampler/adapters/datareadiness/coercer"
	"idsampler/domain/core"
	apperrors "idsampler/internal/errors"
)

// DataReader extracts identifiers from Excel and CSV files
type DataReader struct {
	filePath string
	fileType FileType
	config   ReaderConfig
	logger   *zap.Logger
}

// DetectFileType maps a file name to its FileType by extension
func DetectFileType(name string) (FileType, error) {
	ext := strings.ToLower(filepath.Ext(name))
	switch ext {
	case ".csv":
		return FileTypeCSV, nil
	case ".xlsx":
		return FileTypeXLSX, nil
	case ".xls":
		return FileTypeXLS, nil
	default:
		return "", apperrors.UnsupportedFile(ext)
	}
}

// NewDataReader creates a reader for the file at filePath
func NewDataReader(filePath string, opts ...Option) *DataReader {
	r := &DataReader{
		filePath: filePath,
		config:   DefaultReaderConfig(),
		logger:   zap.NewNop(),
	}
	r.fileType, _ = DetectFileType(filePath)
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ReadIdentifiers opens the file and extracts identifiers from its first column
func (r *DataReader) ReadIdentifiers() (*Extraction, error) {
	if r.fileType == "" {
		return nil, apperrors.UnsupportedFile(strings.ToLower(filepath.Ext(r.filePath)))
	}
	f, err := os.Open(r.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.InvalidInput(fmt.Sprintf("%s file not found: %s", strings.ToUpper(string(r.fileType)), r.filePath))
		}
		return nil, apperrors.Wrapf(err, "failed to open %s", r.filePath)
	}
	defer f.Close()

	return r.extract(filepath.Base(r.filePath), f)
}

// ExtractIdentifiers reads an uploaded file whose format is inferred from name
func ExtractIdentifiers(name string, src io.Reader, opts ...Option) (*Extraction, error) {
	r := NewDataReader(name, opts...)
	if r.fileType == "" {
		return nil, apperrors.UnsupportedFile(strings.ToLower(filepath.Ext(name)))
	}
	return r.extract(name, src)
}

func (r *DataReader) extract(name string, src io.Reader) (*Extraction, error) {
	start := time.Now()

	var (
		column []string
		err    error
	)
	switch r.fileType {
	case FileTypeCSV:
		column, err = r.readCSVColumn(src)
	case FileTypeXLSX, FileTypeXLS:
		column, err = r.readExcelColumn(src)
	default:
		return nil, apperrors.UnsupportedFile(string(r.fileType))
	}
	if err != nil {
		return nil, err
	}

	ext := r.extractColumn(column)
	ext.Source = name
	ext.FileType = r.fileType

	r.logger.Info("identifiers extracted",
		zap.String("source", name),
		zap.String("type", string(r.fileType)),
		zap.Int("rows", ext.Rows),
		zap.Int("ids", len(ext.IDs)),
		zap.Int("dropped", ext.Dropped),
		zap.Bool("header_skipped", ext.HeaderSkipped),
		zap.Duration("elapsed", time.Since(start)))

	return ext, nil
}

// readExcelColumn reads the first column of the configured (or first) sheet
func (r *DataReader) readExcelColumn(src io.Reader) ([]string, error) {
	openStart := time.Now()
	f, err := excelize.OpenReader(src)
	if err != nil {
		return nil, apperrors.MalformedTable("failed to open Excel file", err)
	}
	defer f.Close()
	r.logger.Debug("excel file opened", zap.Duration("elapsed", time.Since(openStart)))

	sheet := r.config.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, apperrors.MalformedTable("Excel file has no worksheets", core.ErrEmptyTable)
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, apperrors.MalformedTable(fmt.Sprintf("failed to read sheet %q", sheet), err)
	}
	if len(rows) == 0 {
		return nil, apperrors.MalformedTable(core.ErrEmptyTable.Error(), core.ErrEmptyTable)
	}
	r.logger.Debug("sheet read", zap.String("sheet", sheet), zap.Int("rows", len(rows)))

	return firstColumn(rows), nil
}

// readCSVColumn reads the first field of every CSV record
func (r *DataReader) readCSVColumn(src io.Reader) ([]string, error) {
	data, err := io.ReadAll(src)
	if err != nil {
		return nil, apperrors.MalformedTable("failed to read CSV file", err)
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, apperrors.MalformedTable("failed to read CSV file", err)
	}
	if len(rows) == 0 {
		return nil, apperrors.MalformedTable(core.ErrEmptyTable.Error(), core.ErrEmptyTable)
	}

	return firstColumn(rows), nil
}

func firstColumn(rows [][]string) []string {
	column := make([]string, len(rows))
	for i, row := range rows {
		if len(row) > 0 {
			column[i] = row[0]
		}
	}
	return column
}

// extractColumn applies the header heuristic and the drop-and-continue
// policy. The first non-empty cell is a header when it is not numeric; every
// other cell that does not coerce is dropped and counted.
func (r *DataReader) extractColumn(column []string) *Extraction {
	c := coercer.NewTypeCoercer(r.config.CoercionConfig)
	ext := &Extraction{IDs: make([]int64, 0, len(column))}

	first := -1
	for i, cell := range column {
		if strings.TrimSpace(cell) != "" {
			first = i
			break
		}
	}
	if first >= 0 && !c.IsNumeric(column[first]) {
		ext.HeaderSkipped = true
		ext.Header = strings.TrimSpace(column[first])
	}

	data := make([]string, 0, len(column))
	for i, cell := range column {
		if ext.HeaderSkipped && i == first {
			continue
		}
		data = append(data, cell)
		id, ok := c.CoerceIdentifier(cell)
		if !ok {
			ext.Dropped++
			if len(ext.DroppedSample) < maxDroppedSample {
				ext.DroppedSample = append(ext.DroppedSample, cell)
			}
			continue
		}
		ext.IDs = append(ext.IDs, id)
	}

	ext.Rows = len(data)
	ext.Analysis = c.AnalyzeTypeDistribution(data)
	return ext
}
