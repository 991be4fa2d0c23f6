package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/felixgeelhaar/laborboard/pkg/domain/labor"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	summaryJSON bool
	historyAt   string
	historyJSON bool
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show labor hours and dollars per hour for each revenue center",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}
		defer services.Close()

		s, err := services.Labor.Summary()
		if err != nil {
			return MapError(err)
		}
		if summaryJSON {
			return writeJSON(cmd.OutOrStdout(), s)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Labor board at %s\n", s.At.Format("Mon Jan 2 15:04"))
		renderCenters(out, s.Centers, func(name string) string { return services.Displays.For(name).Label }, s)
		renderStaffing(out, s)
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Rebuild the board as of an earlier time today",
	Example: `  laborboard history --at 14:00
  laborboard history --at 2:30PM --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}
		defer services.Close()

		r, err := services.Labor.Reconstruct(historyAt)
		if err != nil {
			return MapError(err)
		}
		if historyJSON {
			return writeJSON(cmd.OutOrStdout(), r)
		}

		out := cmd.OutOrStdout()
		label := func(name string) string { return services.Displays.For(name).Label }
		fmt.Fprintf(out, "Labor board as of %s\n", r.Target.Format("Mon Jan 2 15:04"))
		renderCenters(out, r.Centers, label, r.Summary)

		t := table.NewWriter()
		t.SetOutputMirror(out)
		t.AppendHeader(table.Row{"Center", "Employee", "Hours"})
		for _, d := range r.Details {
			for _, c := range d.Contributors {
				t.AppendRow(table.Row{label(d.Name), c.Name, fmt.Sprintf("%.2f", c.Hours)})
			}
		}
		t.SetColumnConfigs([]table.ColumnConfig{{Number: 1, AutoMerge: true}})
		t.SetStyle(table.StyleRounded)
		t.Render()

		renderStaffing(out, r.Summary)
		return nil
	},
}

func renderCenters(out io.Writer, centers []labor.CenterSummary, label func(string) string, s labor.Summary) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.AppendHeader(table.Row{"Center", "Sales", "Labor Hours", "Perfect Hours", "$/Hr", "Staff", "On Clock"})
	for _, c := range centers {
		t.AppendRow(table.Row{
			label(c.Name), fmt.Sprintf("$%.2f", c.Sales), fmt.Sprintf("%.2f", c.LaborHours),
			fmt.Sprintf("%.2f", c.PerfectHours), fmt.Sprintf("$%.2f", c.DollarsPerHour),
			c.Headcount, c.ActiveCount,
		})
	}
	t.AppendFooter(table.Row{
		"Total", fmt.Sprintf("$%.2f", s.TotalSales), fmt.Sprintf("%.2f", s.TotalLaborHours),
		fmt.Sprintf("%.2f", s.TotalPerfectHours), fmt.Sprintf("$%.2f", s.OverallDollarsPerHour), "", "",
	})
	t.SetStyle(table.StyleRounded)
	t.Render()
}

func renderStaffing(out io.Writer, s labor.Summary) {
	fmt.Fprintf(out, "Staffing: %s\n", s.Staffing())
	if s.UnassignedHours > 0 {
		fmt.Fprintf(out, "Unassigned: %.2f hours from employees in unknown centers\n", s.UnassignedHours)
	}
	if s.InconsistentRecords > 0 {
		fmt.Fprintf(out, "Warning: %d checked-out record(s) without an end time count 0 hours\n", s.InconsistentRecords)
	}
}

func writeJSON(out io.Writer, v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	summaryCmd.Flags().BoolVar(&summaryJSON, "json", false, "Output JSON")
	historyCmd.Flags().StringVar(&historyAt, "at", "", "Time of day to rebuild, e.g. 14:00")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "Output JSON")
	_ = historyCmd.MarkFlagRequired("at")
	RootCmd.AddCommand(summaryCmd)
	RootCmd.AddCommand(historyCmd)
}
