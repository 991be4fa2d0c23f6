package cli

import (
	"fmt"
	"os"

	"github.com/felixgeelhaar/laborboard/internal/infrastructure/wiring"
	"github.com/felixgeelhaar/laborboard/pkg/application"
	"github.com/felixgeelhaar/laborboard/pkg/domain/labor"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var employeeCmd = &cobra.Command{
	Use:     "employee",
	Aliases: []string{"employees", "emp"},
	Short:   "List and correct shift records",
}

var (
	employeeActiveOnly bool
	employeeCenter     string
	employeeJSON       bool
)

var employeeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List today's shift records",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}
		defer services.Close()

		var list []labor.Employee
		if employeeCenter != "" {
			list, err = services.Labor.ListByCenter(employeeCenter, employeeActiveOnly)
		} else {
			list, err = services.Labor.ListEmployees(employeeActiveOnly)
		}
		if err != nil {
			return MapError(err)
		}

		if employeeJSON {
			if list == nil {
				list = []labor.Employee{}
			}
			return writeJSON(cmd.OutOrStdout(), list)
		}
		renderEmployees(cmd, services, list)
		return nil
	},
}

func renderEmployees(cmd *cobra.Command, services *wiring.AppServices, list []labor.Employee) {
	now := services.Clock()
	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.AppendHeader(table.Row{"ID", "Name", "Center", "In", "Out", "Break", "Status", "Hours"})

	var total float64
	for _, e := range list {
		hours := e.ElapsedHours(now)
		total += hours
		status := string(e.Status())
		if e.IsInconsistent() {
			status += " (no end time)"
		}
		t.AppendRow(table.Row{
			e.ID, e.Name, services.Displays.For(e.RevenueCenter).Label,
			formatClock(&e.StartTime), formatClock(e.EndTime),
			fmt.Sprintf("%.0f", e.UnpaidBreakMinutes), status, fmt.Sprintf("%.2f", hours),
		})
	}
	t.AppendFooter(table.Row{"", "", "", "", "", "", "Total", fmt.Sprintf("%.2f", total)})
	t.SetStyle(table.StyleRounded)
	t.Render()
}

var (
	editName     string
	editCenter   string
	editStart    string
	editEnd      string
	editClearEnd bool
	editBreak    float64
)

var employeeEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Correct a shift record without changing its state",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}
		defer services.Close()

		target, err := resolveEmployee(services, args[0])
		if err != nil {
			return err
		}

		var edit application.EmployeeEdit
		flags := cmd.Flags()
		if flags.Changed("name") {
			edit.Name = &editName
		}
		if flags.Changed("center") {
			edit.RevenueCenter = &editCenter
		}
		if flags.Changed("start") {
			if edit.StartTime, err = parseAt(services, editStart); err != nil {
				return err
			}
		}
		if flags.Changed("end") {
			if edit.EndTime, err = parseAt(services, editEnd); err != nil {
				return err
			}
		}
		edit.ClearEndTime = editClearEnd
		if flags.Changed("break") {
			edit.UnpaidBreakMinutes = &editBreak
		}

		e, err := services.Labor.EditEmployee(target.ID, edit)
		if err != nil {
			return MapError(err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Updated %s (%s): %.2f hours\n", e.Name, e.ID, e.ElapsedHours(services.Clock()))
		if e.IsInconsistent() {
			fmt.Fprintln(os.Stderr, "Warning: checked-out shift has no end time and counts 0 hours")
		}
		return nil
	},
}

var employeeRmCmd = &cobra.Command{
	Use:     "rm <id>",
	Aliases: []string{"delete"},
	Short:   "Delete a shift record",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}
		defer services.Close()

		target, err := resolveEmployee(services, args[0])
		if err != nil {
			return err
		}
		if err := services.Labor.DeleteEmployee(target.ID); err != nil {
			return MapError(err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s (%s)\n", target.Name, target.ID)
		return nil
	},
}

func init() {
	employeeListCmd.Flags().BoolVarP(&employeeActiveOnly, "active", "a", false, "Only employees on the clock")
	employeeListCmd.Flags().StringVarP(&employeeCenter, "center", "c", "", "Only this revenue center")
	employeeListCmd.Flags().BoolVar(&employeeJSON, "json", false, "Output JSON")

	employeeEditCmd.Flags().StringVar(&editName, "name", "", "Employee name")
	employeeEditCmd.Flags().StringVar(&editCenter, "center", "", "Revenue center")
	employeeEditCmd.Flags().StringVar(&editStart, "start", "", "Check-in time")
	employeeEditCmd.Flags().StringVar(&editEnd, "end", "", "Check-out time")
	employeeEditCmd.Flags().BoolVar(&editClearEnd, "clear-end", false, "Remove the check-out time")
	employeeEditCmd.Flags().Float64Var(&editBreak, "break", 0, "Unpaid break minutes")
	employeeEditCmd.MarkFlagsMutuallyExclusive("end", "clear-end")

	employeeCmd.AddCommand(employeeListCmd, employeeEditCmd, employeeRmCmd)
	RootCmd.AddCommand(employeeCmd)
}
