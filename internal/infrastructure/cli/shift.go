package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	checkinCenter string
	checkinAt     string
	checkoutAt    string
)

var checkinCmd = &cobra.Command{
	Use:   "checkin <name>",
	Short: "Check an employee in to a revenue center",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}
		defer services.Close()

		at, err := parseAt(services, checkinAt)
		if err != nil {
			return err
		}
		e, err := services.Labor.CheckIn(strings.Join(args, " "), checkinCenter, at)
		if err != nil {
			return MapError(err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Checked in %s to %s at %s (id %s)\n",
			e.Name, services.Displays.For(e.RevenueCenter).Label, e.StartTime.Format("15:04"), e.ID)
		return nil
	},
}

var checkoutCmd = &cobra.Command{
	Use:   "checkout <id|name>",
	Short: "Check an employee out, closing the shift",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}
		defer services.Close()

		target, err := resolveEmployee(services, strings.Join(args, " "))
		if err != nil {
			return err
		}
		at, err := parseAt(services, checkoutAt)
		if err != nil {
			return err
		}
		e, err := services.Labor.CheckOut(target.ID, at)
		if err != nil {
			return MapError(err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Checked out %s at %s after %.2f hours\n",
			e.Name, formatClock(e.EndTime), e.ElapsedHours(services.Clock()))
		return nil
	},
}

func init() {
	checkinCmd.Flags().StringVarP(&checkinCenter, "center", "c", "dining", "Revenue center: dining, lounge or patio")
	checkinCmd.Flags().StringVar(&checkinAt, "at", "", "Check-in time (default: now)")
	checkoutCmd.Flags().StringVar(&checkoutAt, "at", "", "Check-out time (default: now)")
	RootCmd.AddCommand(checkinCmd)
	RootCmd.AddCommand(checkoutCmd)
}
