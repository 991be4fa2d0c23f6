package cli

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/felixgeelhaar/laborboard/pkg/domain/events"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Inspect and verify the change history",
}

var auditVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify the integrity of the audit trail",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}
		defer services.Close()

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Verifying audit trail integrity...")
		violations, err := services.Audit.VerifyIntegrity()
		if err != nil {
			return fmt.Errorf("verification failed: %w", err)
		}

		if len(violations) == 0 {
			fmt.Fprintln(out, "Audit trail is intact and verified.")
			return nil
		}

		fmt.Fprintf(out, "Found %d integrity violations:\n", len(violations))
		for _, v := range violations {
			fmt.Fprintf(out, "  - %s\n", v)
		}
		return &CLIError{
			Message:  fmt.Sprintf("audit trail has %d integrity violations", len(violations)),
			Hint:     "Restore .laborboard/audit.jsonl from a backup",
			ExitCode: 2,
		}
	},
}

var (
	auditEmployee string
	auditCenter   string
	auditType     string
	auditToday    bool
)

var auditLogCmd = &cobra.Command{
	Use:   "log",
	Short: "Show the audit trail, oldest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}
		defer services.Close()

		var filter events.Filter
		switch {
		case auditEmployee != "":
			filter.AggregateType = events.AggregateTypeEmployee
			filter.AggregateID = auditEmployee
			// Deleted employees no longer resolve; their ID still selects the trail.
			if e, err := resolveEmployee(services, auditEmployee); err == nil {
				filter.AggregateID = e.ID
			}
		case auditCenter != "":
			filter.AggregateType = events.AggregateTypeCenter
			filter.AggregateID = auditCenter
		}
		if auditType != "" {
			filter.Types = []string{auditType}
		}
		if auditToday {
			filter = filter.OnDay(services.Clock())
		}

		list, err := services.Audit.Query(filter)
		if err != nil {
			return fmt.Errorf("failed to load audit trail: %w", err)
		}

		if len(list) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No audit events recorded.")
			return nil
		}

		t := table.NewWriter()
		t.SetOutputMirror(cmd.OutOrStdout())
		t.AppendHeader(table.Row{"Time", "Event", "Subject", "Actor", "Details"})
		for _, e := range list {
			t.AppendRow(table.Row{
				e.Timestamp.Local().Format(time.DateTime), e.Type, e.AggregateID(), e.Actor, formatMetadata(e.Metadata),
			})
		}
		t.SetStyle(table.StyleRounded)
		t.Render()
		return nil
	},
}

func formatMetadata(m map[string]interface{}) string {
	if len(m) == 0 {
		return ""
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, m[k]))
	}
	return strings.Join(parts, " ")
}

func init() {
	auditLogCmd.Flags().StringVar(&auditEmployee, "employee", "", "Only events for this employee ID")
	auditLogCmd.Flags().StringVar(&auditCenter, "center", "", "Only events for this revenue center")
	auditLogCmd.Flags().StringVar(&auditType, "type", "", "Only events of this type, e.g. shift.checked_out")
	auditLogCmd.Flags().BoolVar(&auditToday, "today", false, "Only events recorded on the board's current day")
	auditLogCmd.MarkFlagsMutuallyExclusive("employee", "center")
	auditCmd.AddCommand(auditVerifyCmd, auditLogCmd)
	RootCmd.AddCommand(auditCmd)
}
