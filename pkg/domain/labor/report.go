package labor

import (
	"encoding/csv"
	"strconv"
	"strings"
)

// SummaryCSV renders the center rows and an organization total line.
func SummaryCSV(s Summary) string {
	rows := [][]string{{"Center", "Sales", "Divisor", "Labor Hours", "Perfect Hours", "$/Hr", "Headcount", "Active"}}
	for _, c := range s.Centers {
		rows = append(rows, []string{
			c.Name, twoDecimals(c.Sales), twoDecimals(c.Divisor), twoDecimals(c.LaborHours), twoDecimals(c.PerfectHours),
			twoDecimals(c.DollarsPerHour), strconv.Itoa(c.Headcount), strconv.Itoa(c.ActiveCount),
		})
	}
	rows = append(rows, []string{
		"TOTAL", twoDecimals(s.TotalSales), "", twoDecimals(s.TotalLaborHours), twoDecimals(s.TotalPerfectHours),
		twoDecimals(s.OverallDollarsPerHour), "", "",
	})
	return writeCSV(rows)
}

// ReconstructionCSV renders one row per contributing employee at the target.
func ReconstructionCSV(r Reconstruction) string {
	rows := [][]string{{"Center", "Employee", "Hours"}}
	for _, d := range r.Details {
		for _, c := range d.Contributors {
			rows = append(rows, []string{d.Name, c.Name, twoDecimals(c.Hours)})
		}
	}
	rows = append(rows, []string{"TOTAL", "", twoDecimals(r.TotalLaborHours)})
	return writeCSV(rows)
}

// writeCSV returns the rows without a trailing newline.
func writeCSV(rows [][]string) string {
	var b strings.Builder
	w := csv.NewWriter(&b)
	// Writes to a strings.Builder cannot fail.
	_ = w.WriteAll(rows)
	return strings.TrimSuffix(b.String(), "\n")
}

func twoDecimals(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
