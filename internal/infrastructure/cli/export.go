package cli

import (
	"bytes"
	"fmt"
	"os"

	"github.com/felixgeelhaar/laborboard/pkg/infrastructure/export"
	"github.com/spf13/cobra"
)

var (
	exportFormat string
	exportOutput string
	exportAt     string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the board as CSV or an Excel workbook",
	Example: `  laborboard export --format csv
  laborboard export --format xlsx -o today.xlsx
  laborboard export --format xlsx --at 14:00 -o lunch.xlsx`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := export.ParseFormat(exportFormat)
		if err != nil {
			return MapError(err)
		}

		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}
		defer services.Close()

		var buf bytes.Buffer
		if exportAt != "" {
			r, err := services.Labor.Reconstruct(exportAt)
			if err != nil {
				return MapError(err)
			}
			if err := export.Reconstruction(&buf, format, r, services.Displays); err != nil {
				return err
			}
		} else {
			s, err := services.Labor.Summary()
			if err != nil {
				return MapError(err)
			}
			employees, err := services.Labor.ListEmployees(false)
			if err != nil {
				return MapError(err)
			}
			if err := export.Summary(&buf, format, s, employees, services.Displays); err != nil {
				return err
			}
		}

		if exportOutput == "" || exportOutput == "-" {
			_, err := cmd.OutOrStdout().Write(buf.Bytes())
			return err
		}
		if err := os.WriteFile(exportOutput, buf.Bytes(), 0600); err != nil {
			return fmt.Errorf("failed to write %s: %w", exportOutput, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", exportOutput)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "csv", "Export format: csv or xlsx")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (default: stdout)")
	exportCmd.Flags().StringVar(&exportAt, "at", "", "Export the board as of a time of day instead of now")
	RootCmd.AddCommand(exportCmd)
}
