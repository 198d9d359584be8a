package excel

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"policysim/domain/policy"
	"policysim/internal"
	"policysim/internal/errors"

	"github.com/xuri/excelize/v2"
)

// CatalogHeaders are the exported columns, in order
var CatalogHeaders = []string{
	"Policy ID",
	"Policy Name",
	"Country",
	"ISO",
	"Status",
	"Type",
	"Instrument",
	"Sector",
	"Start Year",
	"End Year",
	"Decision Year",
	"Description",
}

// CatalogExporter writes a policy collection as a spreadsheet
type CatalogExporter struct {
	cfg ExportConfig
	log *internal.Logger
}

// NewCatalogExporter creates an exporter
func NewCatalogExporter(cfg ExportConfig, logger *internal.Logger) *CatalogExporter {
	if cfg.SheetName == "" {
		cfg.SheetName = DefaultExportConfig().SheetName
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &CatalogExporter{cfg: cfg, log: logger.WithComponent("Export")}
}

// CatalogRows flattens policies into string rows matching CatalogHeaders
func CatalogRows(policies []policy.Policy) [][]string {
	rows := make([][]string, len(policies))
	for i, p := range policies {
		rows[i] = []string{
			p.ID.String(),
			p.Name,
			p.Country,
			p.CountryISO,
			p.Status,
			p.Type,
			p.Instrument,
			p.Sector,
			p.StartYear.String(),
			p.EndYear.String(),
			p.DecisionYear.String(),
			p.Description,
		}
	}
	return rows
}

// Write encodes policies in the given format
func (e *CatalogExporter) Write(w io.Writer, format Format, policies []policy.Policy) error {
	switch format {
	case FormatCSV:
		return e.writeCSV(w, policies)
	case FormatXLSX:
		return e.writeXLSX(w, policies)
	default:
		return errors.InvalidInput(fmt.Sprintf("unsupported export format %q", format))
	}
}

// WriteFile exports to path, choosing the format from its extension
func (e *CatalogExporter) WriteFile(path string, policies []policy.Policy) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", path)
	}
	if err := e.Write(f, FormatFromPath(path), policies); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (e *CatalogExporter) writeCSV(w io.Writer, policies []policy.Policy) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CatalogHeaders); err != nil {
		return errors.Wrap(err, "failed to write CSV header")
	}
	if err := cw.WriteAll(CatalogRows(policies)); err != nil {
		return errors.Wrap(err, "failed to write CSV rows")
	}
	e.log.Debug("wrote %d policies as CSV", len(policies))
	return nil
}

func (e *CatalogExporter) writeXLSX(w io.Writer, policies []policy.Policy) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := e.cfg.SheetName
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return errors.Wrap(err, "failed to name sheet")
	}

	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return errors.Wrap(err, "failed to open sheet writer")
	}
	if e.cfg.FreezeHeader {
		if err := sw.SetPanes(&excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
			return errors.Wrap(err, "failed to freeze header row")
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return errors.Wrap(err, "failed to create header style")
	}
	header := make([]interface{}, len(CatalogHeaders))
	for i, h := range CatalogHeaders {
		header[i] = excelize.Cell{StyleID: headerStyle, Value: h}
	}
	if err := sw.SetRow("A1", header); err != nil {
		return errors.Wrap(err, "failed to write header row")
	}

	for i, p := range policies {
		addr, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return errors.Wrap(err, "failed to address row")
		}
		if err := sw.SetRow(addr, xlsxRow(p)); err != nil {
			return errors.Wrapf(err, "failed to write row %d", i+2)
		}
	}

	if err := sw.Flush(); err != nil {
		return errors.Wrap(err, "failed to flush sheet")
	}

	if _, err := f.WriteTo(w); err != nil {
		return errors.Wrap(err, "failed to write workbook")
	}
	e.log.Debug("wrote %d policies as XLSX", len(policies))
	return nil
}

// xlsxRow mirrors CatalogRows but writes years as numbers so they sort
// and filter in a spreadsheet
func xlsxRow(p policy.Policy) []interface{} {
	return []interface{}{
		p.ID.String(),
		p.Name,
		p.Country,
		p.CountryISO,
		p.Status,
		p.Type,
		p.Instrument,
		p.Sector,
		yearCell(p.StartYear),
		yearCell(p.EndYear),
		yearCell(p.DecisionYear),
		p.Description,
	}
}

func yearCell(y policy.Year) interface{} {
	if !y.Valid {
		return nil
	}
	return y.Value
}
