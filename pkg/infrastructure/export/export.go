// Package export writes the board and its reconstructions as CSV or Excel workbooks.
package export

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/felixgeelhaar/laborboard/pkg/domain/labor"
	"github.com/xuri/excelize/v2"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

var ErrUnknownFormat = errors.New("unknown export format")

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatXLSX:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q (use csv or xlsx)", ErrUnknownFormat, s)
}

const (
	summarySheet   = "Summary"
	employeesSheet = "Employees"
	historySheet   = "History"
)

var summaryHeader = []interface{}{"Center", "Label", "Sales", "Divisor", "Labor Hours", "Perfect Hours", "$/Hr", "Headcount", "Active"}

// Summary writes the live board. The workbook adds an Employees sheet with
// every shift record and its hours as of the summary time.
func Summary(w io.Writer, format Format, s labor.Summary, employees []labor.Employee, displays *labor.DisplayTable) error {
	if format == FormatCSV {
		_, err := io.WriteString(w, labor.SummaryCSV(s)+"\n")
		return err
	}

	wb, err := newWorkbook(summarySheet)
	if err != nil {
		return err
	}
	defer wb.Close()

	if err := wb.writeSummary(summarySheet, s, displays); err != nil {
		return err
	}

	if _, err := wb.f.NewSheet(employeesSheet); err != nil {
		return fmt.Errorf("add sheet: %w", err)
	}
	rows := [][]interface{}{{"ID", "Name", "Center", "Start", "End", "Break (min)", "Active", "Hours"}}
	for _, e := range employees {
		end := ""
		if e.EndTime != nil {
			end = e.EndTime.Format("2006-01-02 15:04")
		}
		rows = append(rows, []interface{}{
			e.ID, e.Name, e.RevenueCenter, e.StartTime.Format("2006-01-02 15:04"), end,
			e.UnpaidBreakMinutes, e.IsActive.String(), round2(e.ElapsedHours(s.At)),
		})
	}
	if err := wb.writeRows(employeesSheet, rows); err != nil {
		return err
	}
	return wb.write(w)
}

// Reconstruction writes the board as of r.Target, one row per contributor.
func Reconstruction(w io.Writer, format Format, r labor.Reconstruction, displays *labor.DisplayTable) error {
	if format == FormatCSV {
		_, err := io.WriteString(w, labor.ReconstructionCSV(r)+"\n")
		return err
	}

	wb, err := newWorkbook(summarySheet)
	if err != nil {
		return err
	}
	defer wb.Close()

	if err := wb.writeSummary(summarySheet, r.Summary, displays); err != nil {
		return err
	}

	if _, err := wb.f.NewSheet(historySheet); err != nil {
		return fmt.Errorf("add sheet: %w", err)
	}
	rows := [][]interface{}{{"Target", r.Target.Format("2006-01-02 15:04")}, {"Center", "Employee", "Hours"}}
	for _, d := range r.Details {
		for _, c := range d.Contributors {
			rows = append(rows, []interface{}{d.Name, c.Name, round2(c.Hours)})
		}
	}
	rows = append(rows, []interface{}{"TOTAL", "", round2(r.TotalLaborHours)})
	if err := wb.writeRows(historySheet, rows); err != nil {
		return err
	}
	return wb.write(w)
}

type workbook struct {
	f    *excelize.File
	bold int
}

func newWorkbook(first string) (*workbook, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", first); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("create style: %w", err)
	}
	return &workbook{f: f, bold: bold}, nil
}

func (wb *workbook) Close() error {
	return wb.f.Close()
}

func (wb *workbook) writeSummary(sheet string, s labor.Summary, displays *labor.DisplayTable) error {
	rows := [][]interface{}{summaryHeader}
	for _, c := range s.Centers {
		rows = append(rows, []interface{}{
			c.Name, displays.For(c.Name).Label, round2(c.Sales), round2(c.Divisor),
			round2(c.LaborHours), round2(c.PerfectHours), round2(c.DollarsPerHour),
			c.Headcount, c.ActiveCount,
		})
	}
	rows = append(rows, []interface{}{
		"TOTAL", "", round2(s.TotalSales), "", round2(s.TotalLaborHours),
		round2(s.TotalPerfectHours), round2(s.OverallDollarsPerHour),
	})
	rows = append(rows, []interface{}{}, []interface{}{"Staffing", s.Staffing().String()})
	if s.UnassignedHours > 0 {
		rows = append(rows, []interface{}{"Unassigned hours", round2(s.UnassignedHours)})
	}
	if err := wb.writeRows(sheet, rows); err != nil {
		return err
	}

	total, err := excelize.CoordinatesToCellName(1, len(s.Centers)+2)
	if err != nil {
		return err
	}
	if err := wb.f.SetCellStyle(sheet, total, total, wb.bold); err != nil {
		return fmt.Errorf("style total: %w", err)
	}
	return nil
}

// writeRows writes rows from A1 down and bolds the first row.
func (wb *workbook) writeRows(sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		r := row
		if err := wb.f.SetSheetRow(sheet, cell, &r); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		last, err := excelize.CoordinatesToCellName(len(rows[0]), 1)
		if err != nil {
			return err
		}
		if err := wb.f.SetCellStyle(sheet, "A1", last, wb.bold); err != nil {
			return fmt.Errorf("style header: %w", err)
		}
	}
	return nil
}

func (wb *workbook) write(w io.Writer) error {
	if err := wb.f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
