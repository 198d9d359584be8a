package excel

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// DataReader reads an exported sheet back into rows keyed by header so
// tests can check what a user would see when opening the file
type DataReader struct {
	format Format
	sheet  string
}

// NewDataReader creates a reader for the given format. sheet is only used
// for xlsx and defaults to the first sheet.
func NewDataReader(format Format, sheet string) *DataReader {
	return &DataReader{format: format, sheet: sheet}
}

// ReadData reads the whole sheet
func (r *DataReader) ReadData(src io.Reader) (*ExcelData, error) {
	switch r.format {
	case FormatCSV:
		return r.readCSVData(src)
	case FormatXLSX:
		return r.readExcelData(src)
	default:
		return nil, fmt.Errorf("unsupported file type: %s", r.format)
	}
}

func (r *DataReader) readExcelData(src io.Reader) (*ExcelData, error) {
	f, err := excelize.OpenReader(src)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheet := r.sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", sheet, err)
	}
	return processRows(rows)
}

func (r *DataReader) readCSVData(src io.Reader) (*ExcelData, error) {
	rows, err := csv.NewReader(src).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	return processRows(rows)
}

// processRows converts raw string rows into ExcelData format
func processRows(rows [][]string) (*ExcelData, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet has no header row")
	}

	headers := make([]string, len(rows[0]))
	for i, header := range rows[0] {
		headers[i] = strings.TrimSpace(header)
	}

	data := &ExcelData{Headers: headers, Rows: make([]RawRowData, 0, len(rows)-1)}
	for _, row := range rows[1:] {
		rowData := make(RawRowData, len(headers))
		for j, cell := range row {
			if j < len(headers) {
				rowData[headers[j]] = strings.TrimSpace(cell)
			}
		}
		data.Rows = append(data.Rows, rowData)
	}
	return data, nil
}

// RawRowData represents a row of raw sheet data keyed by column header
type RawRowData map[string]string

// ExcelData represents a complete sheet
type ExcelData struct {
	Headers []string     // Column headers
	Rows    []RawRowData // Data rows
}

// Column returns every value of one column, in row order
func (d *ExcelData) Column(header string) []string {
	out := make([]string, len(d.Rows))
	for i, row := range d.Rows {
		out[i] = row[header]
	}
	return out
}
