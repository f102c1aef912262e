// Package export renders attendance history as spreadsheets
package export

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"hrms-console/internal/services"
)

const (
	// ContentType is the MIME type of an .xlsx workbook
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	SheetName   = "Attendance"
)

var headers = []string{"Date", "Employee ID", "Full Name", "Department", "Status"}

// Filename names an export taken at t
func Filename(t time.Time) string {
	return fmt.Sprintf("attendance_%s.xlsx", t.Format("20060102_150405"))
}

// AttendanceWorkbook writes rows, in order, to a single-sheet workbook
func AttendanceWorkbook(rows []services.HistoryRow) (*excelize.File, error) {
	f := excelize.NewFile()

	index, err := f.NewSheet(SheetName)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		f.Close()
		return nil, fmt.Errorf("delete default sheet: %w", err)
	}

	for col, h := range headers {
		if err := setCell(f, col, 1, h); err != nil {
			f.Close()
			return nil, err
		}
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("header style: %w", err)
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	f.SetCellStyle(SheetName, "A1", last, headerStyle)

	for i, row := range rows {
		values := []any{
			row.Record.Date.String(),
			row.Employee.EmployeeID,
			row.Employee.FullName,
			row.Employee.Department,
			string(row.Record.Status),
		}
		for col, v := range values {
			if err := setCell(f, col, i+2, v); err != nil {
				f.Close()
				return nil, err
			}
		}
	}

	f.SetColWidth(SheetName, "A", "B", 14)
	f.SetColWidth(SheetName, "C", "D", 24)
	return f, nil
}

func setCell(f *excelize.File, col, row int, value any) error {
	cell, err := excelize.CoordinatesToCellName(col+1, row)
	if err != nil {
		return err
	}
	if err := f.SetCellValue(SheetName, cell, value); err != nil {
		return fmt.Errorf("write %s: %w", cell, err)
	}
	return nil
}
