package excel

import (
	"path/filepath"
	"strings"

	"policysim/internal/errors"
)

// Format is an export file format
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// ParseFormat accepts "xlsx" or "csv" in any case
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatXLSX, "":
		return FormatXLSX, nil
	case FormatCSV:
		return FormatCSV, nil
	default:
		return "", errors.InvalidInput("Export format must be xlsx or csv.")
	}
}

// FormatFromPath picks the format from a file extension, defaulting to xlsx
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return FormatCSV
	}
	return FormatXLSX
}

// ContentType is the MIME type served for a download
func (f Format) ContentType() string {
	if f == FormatCSV {
		return "text/csv; charset=utf-8"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// ExportConfig holds export settings
type ExportConfig struct {
	SheetName string `json:"sheet_name"`
	// FreezeHeader keeps the header row visible while scrolling an xlsx file
	FreezeHeader bool `json:"freeze_header"`
}

// DefaultExportConfig returns the settings used by the BFF and CLI
func DefaultExportConfig() ExportConfig {
	return ExportConfig{
		SheetName:    "Policies",
		FreezeHeader: true,
	}
}
