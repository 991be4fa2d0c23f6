package labor

import (
	"testing"
	"time"
)

func TestHoursAsOf(t *testing.T) {
	shift := closedShift("e1", "Ana", "dining", 10, 14, 0)

	tests := []struct {
		name   string
		target time.Time
		want   float64
	}{
		{name: "mid shift", target: clock(12, 0), want: 2},
		{name: "before start", target: clock(9, 0), want: 0},
		{name: "after end is clipped", target: clock(16, 0), want: 4},
		{name: "exactly at start", target: clock(10, 0), want: 0},
		{name: "exactly at end", target: clock(14, 0), want: 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertHours(t, tt.want, HoursAsOf(shift, tt.target))
		})
	}
}

func TestHoursAsOf_Breaks(t *testing.T) {
	shift := closedShift("e1", "Ana", "dining", 10, 14, 30)
	assertHours(t, 1.5, HoursAsOf(shift, clock(12, 0)))
	assertHours(t, 0, HoursAsOf(shift, clock(10, 15)))
}

func TestHoursAsOf_OpenShift(t *testing.T) {
	shift := openShift("e1", "Ana", "dining", 10, 0)
	assertHours(t, 3, HoursAsOf(shift, clock(13, 0)))

	// A stale end time on an open shift does not clip it.
	shift.EndTime = ptr(clock(11, 0))
	assertHours(t, 3, HoursAsOf(shift, clock(13, 0)))
}

func TestHoursAsOf_ClosedWithoutEnd(t *testing.T) {
	shift := closedShift("e1", "Ana", "dining", 10, 14, 0)
	shift.EndTime = nil
	assertHours(t, 0, HoursAsOf(shift, clock(12, 0)))
}

func TestHoursAsOf_Overnight(t *testing.T) {
	// Recorded on the start date: 23:00 to 01:00.
	shift := closedShift("e1", "Ana", "lounge", 23, 1, 0)

	tests := []struct {
		name   string
		target time.Time
		want   float64
	}{
		{name: "before start", target: clock(22, 0), want: 0},
		{name: "before midnight", target: clock(23, 30), want: 0.5},
		{name: "after midnight", target: clock(0, 30).Add(day), want: 1.5},
		{name: "after end is clipped", target: clock(3, 0).Add(day), want: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertHours(t, tt.want, HoursAsOf(shift, tt.target))
		})
	}

	assertHours(t, ElapsedHours(shift.StartTime, shift.EndTime, 0, clock(12, 0)), HoursAsOf(shift, clock(3, 0).Add(day)))

	r := ReconstructAt([]Employee{shift}, testCenters(), clock(23, 30))
	lounge, ok := r.Center("lounge")
	if !ok || lounge.ActiveCount != 1 {
		t.Errorf("expected Ana on the clock at 23:30, got %+v", lounge)
	}
	assertHours(t, 0.5, r.TotalLaborHours)
}

func TestHoursAsOf_InvalidStart(t *testing.T) {
	shift := openShift("e1", "Ana", "dining", 10, 0)
	shift.StartTime = time.Time{}
	assertHours(t, 0, HoursAsOf(shift, clock(12, 0)))
}

func TestReconstructAt(t *testing.T) {
	employees := []Employee{
		closedShift("e1", "Ben", "dining", 10, 14, 0),
		closedShift("e2", "Ana", "dining", 8, 11, 0),
		openShift("e3", "Cy", "dining", 15, 0),
		openShift("e4", "Dee", "lounge", 12, 0),
	}

	r := ReconstructAt(employees, testCenters(), clock(13, 0))

	if !r.Target.Equal(clock(13, 0)) {
		t.Errorf("target: want %v, got %v", clock(13, 0), r.Target)
	}

	dining := r.Details[0]
	if dining.Name != "dining" {
		t.Fatalf("expected dining first, got %s", dining.Name)
	}
	assertHours(t, 6, dining.LaborHours)
	if len(dining.Contributors) != 2 {
		t.Fatalf("expected 2 dining contributors, got %d", len(dining.Contributors))
	}
	if dining.Contributors[0].Name != "Ana" || dining.Contributors[1].Name != "Ben" {
		t.Errorf("contributors not sorted by name: %+v", dining.Contributors)
	}
	assertHours(t, 3, dining.Contributors[0].Hours)
	assertHours(t, 3, dining.Contributors[1].Hours)
	if dining.ActiveCount != 1 {
		t.Errorf("expected 1 on the clock at 13:00, got %d", dining.ActiveCount)
	}

	lounge := r.Details[1]
	assertHours(t, 1, lounge.LaborHours)
	if len(lounge.Contributors) != 1 || lounge.Contributors[0].EmployeeID != "e4" {
		t.Errorf("unexpected lounge contributors: %+v", lounge.Contributors)
	}

	patio := r.Details[2]
	if patio.Contributors == nil || len(patio.Contributors) != 0 {
		t.Errorf("expected empty, non-nil patio contributors, got %#v", patio.Contributors)
	}

	assertHours(t, 7, r.TotalLaborHours)
	assertHours(t, 1300/7.0, r.OverallDollarsPerHour)
}

func TestReconstructAt_MatchesSummaryForClosedShifts(t *testing.T) {
	employees := []Employee{
		closedShift("e1", "Ana", "dining", 8, 12, 30),
		closedShift("e2", "Ben", "lounge", 9, 13, 0),
	}
	late := clock(23, 0)

	s := Summarize(employees, testCenters(), late)
	r := ReconstructAt(employees, testCenters(), late)
	assertHours(t, s.TotalLaborHours, r.TotalLaborHours)
	assertHours(t, s.TotalPerfectHours, r.TotalPerfectHours)
}
