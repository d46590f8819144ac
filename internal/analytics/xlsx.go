package analytics

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const (
	summarySheet   = "Summary"
	equipmentSheet = "Equipment"
)

var summaryHeaders = []interface{}{"Department", "Corrective", "Preventive", "Total", "Duration (h)"}
var equipmentHeaders = []interface{}{"ID", "Equipment", "Under Repair", "Open Requests"}

type colWidth struct {
	from, to string
	width    float64
}

var (
	summaryWidths   = []colWidth{{"A", "A", 25}, {"B", "E", 15}}
	equipmentWidths = []colWidth{{"B", "B", 30}, {"C", "D", 15}}
)

// WriteXLSX renders the report as a workbook with a pivot sheet and an equipment sheet.
func WriteXLSX(w io.Writer, report Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	if _, err := f.NewSheet(equipmentSheet); err != nil {
		return fmt.Errorf("failed to create equipment sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	rows := make([][]interface{}, 0, len(report.Rows)+1)
	for _, r := range report.Rows {
		rows = append(rows, summaryRow(r))
	}
	rows = append(rows, summaryRow(report.Totals))
	if err := writeTable(f, summarySheet, summaryHeaders, rows, bold); err != nil {
		return err
	}
	// Totals row is bold as well.
	if err := styleRow(f, summarySheet, len(rows)+1, len(summaryHeaders), bold); err != nil {
		return fmt.Errorf("failed to style totals: %w", err)
	}
	if err := setColWidths(f, summarySheet, summaryWidths); err != nil {
		return err
	}

	eqRows := make([][]interface{}, 0, len(report.Equipment))
	for _, e := range report.Equipment {
		underRepair := "No"
		if e.IsUnderRepair {
			underRepair = "Yes"
		}
		eqRows = append(eqRows, []interface{}{e.EquipmentID, e.Name, underRepair, e.OpenRequests})
	}
	if err := writeTable(f, equipmentSheet, equipmentHeaders, eqRows, bold); err != nil {
		return err
	}
	if err := setColWidths(f, equipmentSheet, equipmentWidths); err != nil {
		return err
	}

	return f.Write(w)
}

func summaryRow(r SummaryRow) []interface{} {
	return []interface{}{r.Department, r.Corrective, r.Preventive, r.Total, r.DurationHours}
}

func writeTable(f *excelize.File, sheet string, headers []interface{}, rows [][]interface{}, headerStyle int) error {
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return fmt.Errorf("failed to write %s header: %w", sheet, err)
	}
	if err := styleRow(f, sheet, 1, len(headers), headerStyle); err != nil {
		return fmt.Errorf("failed to style %s header: %w", sheet, err)
	}
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("failed to address %s row %d: %w", sheet, i+1, err)
		}
		if err := f.SetSheetRow(sheet, cell, &rows[i]); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

// styleRow applies style to the first cols cells of a 1-based row.
func styleRow(f *excelize.File, sheet string, row, cols, style int) error {
	start, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	end, err := excelize.CoordinatesToCellName(cols, row)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, start, end, style)
}

func setColWidths(f *excelize.File, sheet string, widths []colWidth) error {
	for _, cw := range widths {
		if err := f.SetColWidth(sheet, cw.from, cw.to, cw.width); err != nil {
			return fmt.Errorf("failed to size %s columns %s:%s: %w", sheet, cw.from, cw.to, err)
		}
	}
	return nil
}
