package excel

import (
	"idsampler/adapters/datareadiness/coercer"
)

// FileType is a supported tabular input format
type FileType string

const (
	FileTypeCSV  FileType = "csv"
	FileTypeXLSX FileType = "xlsx"
	FileTypeXLS  FileType = "xls"
)

// Extraction is the identifier sequence read from the first column of a file,
// plus the data-quality signals of the drop-and-continue policy
type Extraction struct {
	Source        string               `json:"source"`
	FileType      FileType             `json:"file_type"`
	IDs           []int64              `json:"ids"`
	Rows          int                  `json:"rows"`
	HeaderSkipped bool                 `json:"header_skipped"`
	Header        string               `json:"header,omitempty"`
	Dropped       int                  `json:"dropped"`
	DroppedSample []string             `json:"dropped_sample,omitempty"`
	Analysis      coercer.TypeAnalysis `json:"analysis"`
}

// maxDroppedSample caps how many dropped cells an Extraction remembers
const maxDroppedSample = 5
