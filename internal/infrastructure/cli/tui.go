package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/felixgeelhaar/laborboard/pkg/domain/labor"
	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:     "tui",
	Aliases: []string{"board"},
	Short:   "Interactive live board in the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}
		defer services.Close()

		if os.Getenv("LABORBOARD_SKIP_TUI_RUN") == "true" {
			return nil
		}
		m := newBoardModel(services.Labor, services.Displays, services.Workspace.Config.RefreshInterval())
		p := tea.NewProgram(m, tea.WithAltScreen())
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("tui run failed: %w", err)
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(tuiCmd)
}

// Styles
var baseStyle = lipgloss.NewStyle().
	BorderStyle(lipgloss.NormalBorder()).
	BorderForeground(lipgloss.Color("240"))

var headerStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("#FAFAFA")).
	Background(lipgloss.Color("#263238")).
	PaddingLeft(1).
	PaddingRight(1)

var (
	overStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	underStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

type boardSource interface {
	Summary() (labor.Summary, error)
	ListEmployees(activeOnly bool) ([]labor.Employee, error)
}

type tickMsg time.Time

type boardModel struct {
	source   boardSource
	displays *labor.DisplayTable
	refresh  time.Duration

	centers   table.Model
	staff     table.Model
	focus     int
	summary   labor.Summary
	updatedAt time.Time
	err       error
}

func newBoardModel(source boardSource, displays *labor.DisplayTable, refresh time.Duration) boardModel {
	centers := table.New(
		table.WithColumns([]table.Column{
			{Title: "Center", Width: 14},
			{Title: "Sales", Width: 11},
			{Title: "Labor Hrs", Width: 10},
			{Title: "Perfect Hrs", Width: 11},
			{Title: "$/Hr", Width: 10},
			{Title: "On Clock", Width: 8},
		}),
		table.WithFocused(true),
		table.WithHeight(4),
	)
	staff := table.New(
		table.WithColumns([]table.Column{
			{Title: "Name", Width: 18},
			{Title: "Center", Width: 14},
			{Title: "In", Width: 6},
			{Title: "Break", Width: 6},
			{Title: "Hours", Width: 7},
		}),
		table.WithHeight(10),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240"))
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229"))
	centers.SetStyles(s)
	staff.SetStyles(s)

	m := boardModel{source: source, displays: displays, refresh: refresh, centers: centers, staff: staff}
	m.load()
	return m
}

// load refreshes both tables from the source.
func (m *boardModel) load() {
	summary, err := m.source.Summary()
	if err != nil {
		m.err = err
		return
	}
	active, err := m.source.ListEmployees(true)
	if err != nil {
		m.err = err
		return
	}
	m.err = nil
	m.summary = summary
	m.updatedAt = summary.At

	rows := make([]table.Row, 0, len(summary.Centers))
	for _, c := range summary.Centers {
		rows = append(rows, table.Row{
			m.displays.For(c.Name).Label,
			fmt.Sprintf("$%.2f", c.Sales),
			fmt.Sprintf("%.2f", c.LaborHours),
			fmt.Sprintf("%.2f", c.PerfectHours),
			fmt.Sprintf("$%.2f", c.DollarsPerHour),
			fmt.Sprintf("%d", c.ActiveCount),
		})
	}
	m.centers.SetRows(rows)

	staffRows := make([]table.Row, 0, len(active))
	for _, e := range active {
		staffRows = append(staffRows, table.Row{
			e.Name,
			m.displays.For(e.RevenueCenter).Label,
			e.StartTime.Format("15:04"),
			fmt.Sprintf("%.0f", e.UnpaidBreakMinutes),
			fmt.Sprintf("%.2f", e.ElapsedHours(summary.At)),
		})
	}
	m.staff.SetRows(staffRows)
}

func (m boardModel) tick() tea.Cmd {
	return tea.Tick(m.refresh, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m boardModel) Init() tea.Cmd { return m.tick() }

func (m boardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tickMsg:
		m.load()
		return m, m.tick()
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "r":
			m.load()
			return m, nil
		case "tab":
			m.focus = (m.focus + 1) % 2
			if m.focus == 0 {
				m.centers.Focus()
				m.staff.Blur()
			} else {
				m.staff.Focus()
				m.centers.Blur()
			}
			return m, nil
		}
	}
	if m.focus == 0 {
		m.centers, cmd = m.centers.Update(msg)
	} else {
		m.staff, cmd = m.staff.Update(msg)
	}
	return m, cmd
}

func (m boardModel) View() string {
	if m.err != nil {
		return fmt.Sprintf("Error loading board: %v\nPress r to retry, q to quit.", m.err)
	}

	header := headerStyle.Render(fmt.Sprintf("laborboard  %s", m.updatedAt.Format("Mon Jan 2 15:04")))

	signal := m.summary.Staffing()
	style := underStyle
	if signal.Status == labor.OverStaffed {
		style = overStyle
	}
	totals := fmt.Sprintf("Total %.2f labor hrs | %.2f perfect hrs | $%.2f sales | $%.2f/hr",
		m.summary.TotalLaborHours, m.summary.TotalPerfectHours, m.summary.TotalSales, m.summary.OverallDollarsPerHour)

	var notes []string
	if m.summary.UnassignedHours > 0 {
		notes = append(notes, fmt.Sprintf("%.2f hrs in unknown centers", m.summary.UnassignedHours))
	}
	if m.summary.InconsistentRecords > 0 {
		notes = append(notes, fmt.Sprintf("%d closed shift(s) without an end time", m.summary.InconsistentRecords))
	}

	return baseStyle.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header,
			"\nRevenue centers:",
			m.centers.View(),
			totals,
			style.Render(signal.String()),
			dimStyle.Render(strings.Join(notes, "; ")),
			"\nOn the clock:",
			m.staff.View(),
			dimStyle.Render("tab switch table | r refresh | q quit"),
		),
	) + "\n"
}
