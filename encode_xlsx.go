package findash

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const (
	sheetData = "Data"
	sheetKPIs = "KPIs"
)

// EncodeXLSX writes the dataset and its KPIs as an Excel workbook.
//
// The "Data" sheet holds the table, with the same header as the CSV file, and
// the "KPIs" sheet the headline figures.
func EncodeXLSX(w io.Writer, ds *Dataset) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetData); err != nil {
		return err
	}
	header := ds.Columns()
	if err := f.SetSheetRow(sheetData, "A1", &header); err != nil {
		return err
	}
	for i, r := range ds.records {
		row := []any{
			r.Date.String(),
			r.Revenue.Float64(),
			r.Profit.Float64(),
			r.CashInflow.Float64(),
			r.CashOutflow.Float64(),
			r.CurrentRatio.Float64(),
			r.QuickRatio.Float64(),
			r.DebtToEquity.Float64(),
			r.GrossMargin.Float64(),
		}
		for _, e := range r.Expenses {
			row = append(row, e.Float64())
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetData, cell, &row); err != nil {
			return fmt.Errorf("cannot write row %s: %w", r.Date, err)
		}
	}
	for i := range header {
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheetData, name, name, 18); err != nil {
			return err
		}
	}

	if _, err := f.NewSheet(sheetKPIs); err != nil {
		return err
	}
	for i, card := range ComputeKPIs(ds).Cards() {
		row := []any{card.Title, card.Value.Float64(), card.Value.String()}
		if err := f.SetSheetRow(sheetKPIs, fmt.Sprintf("A%d", i+1), &row); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(sheetKPIs, "A", "C", 20); err != nil {
		return err
	}
	return f.Write(w)
}
