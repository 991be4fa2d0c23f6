package cli

import (
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/felixgeelhaar/laborboard/pkg/domain/labor"
	"github.com/felixgeelhaar/laborboard/pkg/storage"
)

func TestExecuteHelp(t *testing.T) {
	out, err := runCLI(t, "--help")
	if err != nil {
		t.Fatalf("help failed: %v", err)
	}
	for _, want := range []string{"checkin", "checkout", "summary", "history", "serve", "tui"} {
		if !strings.Contains(out, want) {
			t.Errorf("help missing %q", want)
		}
	}
}

func TestInitCmd(t *testing.T) {
	quietEnv(t)
	dir, cleanup := withTempDir(t)
	defer cleanup()

	out := mustRun(t, "init")
	if !strings.Contains(out, "Initialized laborboard") || !strings.Contains(out, "3 revenue centers") {
		t.Errorf("unexpected init output: %s", out)
	}
	if _, err := os.Stat(filepath.Join(dir, storage.DataDir, storage.ConfigFile)); err != nil {
		t.Errorf("expected config file: %v", err)
	}

	if _, err := runCLI(t, "init"); !errors.Is(err, errAlreadyInitialized) {
		t.Errorf("expected errAlreadyInitialized on re-init, got %v", err)
	}

	out = mustRun(t, "center", "list")
	for _, want := range []string{"Dining Room", "Lounge", "Patio"} {
		if !strings.Contains(out, want) {
			t.Errorf("center list missing %q:\n%s", want, out)
		}
	}
}

func TestCommandsRequireInit(t *testing.T) {
	quietEnv(t)
	_, cleanup := withTempDir(t)
	defer cleanup()

	for _, args := range [][]string{{"summary"}, {"checkin", "Ana"}, {"employee", "list"}} {
		_, err := runCLI(t, args...)
		var cliErr *CLIError
		if !errors.As(err, &cliErr) || !errors.Is(err, errNotInitialized) {
			t.Errorf("%v: expected not-initialized CLIError, got %v", args, err)
		}
	}
}

func TestShiftWorkflow(t *testing.T) {
	quietEnv(t)
	_, cleanup := withTempDir(t)
	defer cleanup()

	mustRun(t, "init")
	mustRun(t, "center", "sales", "dining", "1000")
	mustRun(t, "center", "divisor", "dining", "200")

	out := mustRun(t, "checkin", "Ana", "--center", "dining", "--at", ago(2*time.Hour))
	if !strings.Contains(out, "Checked in Ana to Dining Room") {
		t.Errorf("unexpected checkin output: %s", out)
	}

	var s labor.Summary
	if err := json.Unmarshal([]byte(mustRun(t, "summary", "--json")), &s); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	dining, ok := s.Center("dining")
	if !ok || math.Abs(dining.LaborHours-2) > 0.02 || dining.PerfectHours != 5 || dining.ActiveCount != 1 {
		t.Errorf("unexpected dining summary: %+v", dining)
	}

	table := mustRun(t, "summary")
	if !strings.Contains(table, "Dining Room") || !strings.Contains(table, "Staffing: under-staffed") {
		t.Errorf("unexpected summary table:\n%s", table)
	}

	out = mustRun(t, "checkout", "ana", "--at", ago(time.Hour))
	if !strings.Contains(out, "Checked out Ana") || !strings.Contains(out, "after 1.00 hours") {
		t.Errorf("unexpected checkout output: %s", out)
	}

	list := mustRun(t, "employee", "list", "--json")
	var employees []labor.Employee
	if err := json.Unmarshal([]byte(list), &employees); err != nil {
		t.Fatal(err)
	}
	if len(employees) != 1 || bool(employees[0].IsActive) {
		t.Fatalf("expected one closed shift, got %+v", employees)
	}

	_, err := runCLI(t, "checkout", employees[0].ID)
	var transErr *labor.TransitionError
	if !errors.As(err, &transErr) {
		t.Errorf("expected TransitionError on second checkout, got %v", err)
	}

	if _, err := runCLI(t, "checkin", "Ben", "--center", "rooftop"); !errors.Is(err, labor.ErrUnknownCenter) {
		t.Errorf("expected ErrUnknownCenter, got %v", err)
	}
	if _, err := runCLI(t, "center", "divisor", "dining", "0"); !errors.Is(err, labor.ErrInvalidDivisor) {
		t.Errorf("expected ErrInvalidDivisor, got %v", err)
	}
}

func TestHistoryCmd(t *testing.T) {
	now := time.Now()
	if now.Hour() < 3 {
		t.Skip("needs a shift that started earlier today")
	}
	quietEnv(t)
	_, cleanup := withTempDir(t)
	defer cleanup()

	mustRun(t, "init")
	mustRun(t, "checkin", "Ana", "--at", ago(2*time.Hour))

	target := now.Add(-time.Hour).Format("15:04")
	var r labor.Reconstruction
	if err := json.Unmarshal([]byte(mustRun(t, "history", "--at", target, "--json")), &r); err != nil {
		t.Fatal(err)
	}
	if math.Abs(r.TotalLaborHours-1) > 0.02 {
		t.Errorf("expected about 1 hour at %s, got %.2f", target, r.TotalLaborHours)
	}

	out := mustRun(t, "history", "--at", target)
	if !strings.Contains(out, "Ana") {
		t.Errorf("expected contributor row:\n%s", out)
	}

	if _, err := runCLI(t, "history", "--at", "whenever"); !errors.Is(err, labor.ErrInvalidTime) {
		t.Errorf("expected ErrInvalidTime, got %v", err)
	}
}

func TestEmployeeEditAndRm(t *testing.T) {
	quietEnv(t)
	_, cleanup := withTempDir(t)
	defer cleanup()

	mustRun(t, "init")
	mustRun(t, "checkin", "Ana", "--center", "lounge", "--at", ago(3*time.Hour))

	out := mustRun(t, "employee", "edit", "Ana", "--break", "60", "--center", "patio")
	if !strings.Contains(out, "Updated Ana") {
		t.Errorf("unexpected edit output: %s", out)
	}

	var employees []labor.Employee
	_ = json.Unmarshal([]byte(mustRun(t, "employee", "list", "--json", "--center", "patio")), &employees)
	if len(employees) != 1 || employees[0].UnpaidBreakMinutes != 60 || !bool(employees[0].IsActive) {
		t.Fatalf("unexpected edited record: %+v", employees)
	}
	id := employees[0].ID

	if _, err := runCLI(t, "employee", "edit", id, "--break", "-5"); !errors.Is(err, labor.ErrNegativeBreak) {
		t.Errorf("expected ErrNegativeBreak, got %v", err)
	}

	out = mustRun(t, "employee", "list")
	if !strings.Contains(out, "Patio") || !strings.Contains(out, "active") {
		t.Errorf("unexpected employee table:\n%s", out)
	}

	mustRun(t, "employee", "rm", id)
	if _, err := runCLI(t, "employee", "rm", id); !errors.Is(err, labor.ErrEmployeeNotFound) {
		t.Errorf("expected ErrEmployeeNotFound, got %v", err)
	}
}

func TestExportCmd(t *testing.T) {
	quietEnv(t)
	dir, cleanup := withTempDir(t)
	defer cleanup()

	mustRun(t, "init")
	mustRun(t, "center", "sales", "lounge", "300")
	mustRun(t, "checkin", "Ana", "--center", "lounge", "--at", ago(time.Hour))

	out := mustRun(t, "export", "--format", "csv")
	if !strings.HasPrefix(out, "Center,Sales,Divisor") || !strings.Contains(out, "TOTAL,300.00") {
		t.Errorf("unexpected csv:\n%s", out)
	}

	out = mustRun(t, "export", "--format", "xlsx", "-o", "board.xlsx")
	if !strings.Contains(out, "Wrote board.xlsx") {
		t.Errorf("unexpected output: %s", out)
	}
	info, err := os.Stat(filepath.Join(dir, "board.xlsx"))
	if err != nil || info.Size() == 0 {
		t.Errorf("expected workbook on disk: %v", err)
	}

	if _, err := runCLI(t, "export", "--format", "pdf"); !strings.Contains(errString(err), "unknown export format") {
		t.Errorf("expected unknown format error, got %v", err)
	}
}

func TestAuditCmd(t *testing.T) {
	quietEnv(t)
	t.Setenv("LABORBOARD_ACTOR", "manager")
	_, cleanup := withTempDir(t)
	defer cleanup()

	mustRun(t, "init")
	mustRun(t, "checkin", "Ana")
	mustRun(t, "center", "sales", "patio", "50")

	out := mustRun(t, "audit", "verify")
	if !strings.Contains(out, "intact") {
		t.Errorf("unexpected verify output: %s", out)
	}

	out = mustRun(t, "audit", "log")
	for _, want := range []string{"shift.checked_in", "center.updated", "manager"} {
		if !strings.Contains(out, want) {
			t.Errorf("audit log missing %q:\n%s", want, out)
		}
	}

	out = mustRun(t, "audit", "log", "--center", "patio")
	if strings.Contains(out, "shift.checked_in") || !strings.Contains(out, "sales=50") {
		t.Errorf("unexpected filtered log:\n%s", out)
	}

	out = mustRun(t, "audit", "log", "--employee", "ana", "--today")
	if !strings.Contains(out, "shift.checked_in") || strings.Contains(out, "center.updated") {
		t.Errorf("expected Ana's check-in only:\n%s", out)
	}

	out = mustRun(t, "audit", "log", "--type", "shift.checked_out")
	if !strings.Contains(out, "No audit events") {
		t.Errorf("expected no check-outs yet:\n%s", out)
	}

	if _, err := runCLI(t, "audit", "log", "--employee", "ana", "--center", "patio"); err == nil {
		t.Error("expected --employee and --center to be exclusive")
	}
}

func TestMemoryDriver(t *testing.T) {
	quietEnv(t)
	_, cleanup := withTempDir(t)
	defer cleanup()

	mustRun(t, "init", "--driver", "memory")
	out := mustRun(t, "checkin", "Ana", "--center", "patio")
	if !strings.Contains(out, "Checked in Ana to Patio") {
		t.Errorf("unexpected checkin output: %s", out)
	}

	// Nothing persists between runs.
	if out := mustRun(t, "employee", "list", "--json"); strings.TrimSpace(out) != "[]" {
		t.Errorf("expected empty list, got %s", out)
	}
	if out := mustRun(t, "audit", "log"); !strings.Contains(out, "No audit events") {
		t.Errorf("unexpected audit output: %s", out)
	}
}

func TestTUISkipRun(t *testing.T) {
	quietEnv(t)
	t.Setenv("LABORBOARD_SKIP_TUI_RUN", "true")
	_, cleanup := withTempDir(t)
	defer cleanup()

	mustRun(t, "init")
	mustRun(t, "tui")
}

type fakeBoard struct {
	summary   labor.Summary
	employees []labor.Employee
	err       error
	calls     int
}

func (f *fakeBoard) Summary() (labor.Summary, error) {
	f.calls++
	return f.summary, f.err
}

func (f *fakeBoard) ListEmployees(bool) ([]labor.Employee, error) {
	return f.employees, f.err
}

func TestBoardModel(t *testing.T) {
	now := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)
	centers := []labor.RevenueCenter{{Name: "dining", Sales: 1000, Divisor: 200}, {Name: "lounge", Divisor: 100}}
	employees := []labor.Employee{{ID: "e1", Name: "Ana", RevenueCenter: "dining", StartTime: now.Add(-4 * time.Hour), IsActive: true}}
	src := &fakeBoard{summary: labor.Summarize(employees, centers, now), employees: employees}

	m := newBoardModel(src, nil, time.Minute)
	view := m.View()
	for _, want := range []string{"Dining Room", "Ana", "4.00", "$250.00", "under-staffed, need 1.0 more hours"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}

	next, cmd := m.Update(tickMsg(now))
	if cmd == nil || src.calls != 2 {
		t.Errorf("tick should reload and schedule the next tick (calls=%d)", src.calls)
	}

	src.err = errors.New("disk gone")
	next, _ = next.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	if !strings.Contains(next.View(), "disk gone") {
		t.Errorf("expected error view, got %s", next.View())
	}

	_, cmd = next.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
