package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// projectPath overrides the board directory (defaults to the working directory).
var projectPath string

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:     "laborboard",
	Version: Version,
	Short:   "Live labor hours and dollars per hour for each revenue center",
	Long: `laborboard tracks who is on the clock in each revenue center of a restaurant
and compares the labor hours worked against what sales justify.

Check staff in and out, enter the day's sales per center, and read the board
live in the terminal or the browser, or rebuild it as of any earlier time.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() error {
	err := RootCmd.Execute()
	var cliErr *CLIError
	if errors.As(err, &cliErr) && cliErr.Hint != "" {
		fmt.Fprintf(os.Stderr, "Hint: %s\n", cliErr.Hint)
	}
	return err
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&projectPath, "dir", "C", "", "Board directory (default: current directory)")
}
