package cli

import (
	"fmt"
	"strconv"

	"github.com/felixgeelhaar/laborboard/pkg/domain/labor"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var centerCmd = &cobra.Command{
	Use:     "center",
	Aliases: []string{"centers"},
	Short:   "Manage revenue center sales and divisors",
}

var centerListCmd = &cobra.Command{
	Use:   "list",
	Short: "List revenue centers with their sales and divisors",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}
		defer services.Close()

		centers, err := services.Labor.ListCenters()
		if err != nil {
			return MapError(err)
		}

		t := table.NewWriter()
		t.SetOutputMirror(cmd.OutOrStdout())
		t.AppendHeader(table.Row{"Center", "Label", "Sales", "Divisor", "Perfect Hours"})
		for _, c := range centers {
			t.AppendRow(table.Row{
				c.Name, services.Displays.For(c.Name).Label,
				fmt.Sprintf("$%.2f", c.Sales), fmt.Sprintf("%.2f", c.Divisor), fmt.Sprintf("%.2f", c.PerfectHours()),
			})
		}
		t.SetStyle(table.StyleRounded)
		t.Render()
		return nil
	},
}

var centerSalesCmd = &cobra.Command{
	Use:   "sales <center> <amount>",
	Short: "Set the sales figure of a revenue center",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return updateCenter(cmd, args, "sales")
	},
}

var centerDivisorCmd = &cobra.Command{
	Use:   "divisor <center> <value>",
	Short: "Set the efficiency divisor (target sales per labor hour) of a revenue center",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return updateCenter(cmd, args, "divisor")
	},
}

func updateCenter(cmd *cobra.Command, args []string, field string) error {
	value, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		if field == "sales" {
			return MapError(fmt.Errorf("%w: %q", labor.ErrInvalidSales, args[1]))
		}
		return MapError(fmt.Errorf("%w: %q", labor.ErrInvalidDivisor, args[1]))
	}

	services, err := loadServicesForCurrentDir()
	if err != nil {
		return err
	}
	defer services.Close()

	var c labor.RevenueCenter
	if field == "sales" {
		c, err = services.Labor.SetSales(args[0], value)
	} else {
		c, err = services.Labor.SetDivisor(args[0], value)
	}
	if err != nil {
		return MapError(err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s: sales $%.2f, divisor %.2f, perfect hours %.2f\n",
		services.Displays.For(c.Name).Label, c.Sales, c.Divisor, c.PerfectHours())
	return nil
}

func init() {
	centerCmd.AddCommand(centerListCmd, centerSalesCmd, centerDivisorCmd)
	RootCmd.AddCommand(centerCmd)
}
