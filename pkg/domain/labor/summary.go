package labor

import (
	"fmt"
	"math"
	"time"
)

// CenterSummary is the labor picture of one revenue center.
type CenterSummary struct {
	Name           string  `json:"name"`
	Sales          float64 `json:"sales"`
	Divisor        float64 `json:"divisor"`
	LaborHours     float64 `json:"labor_hours"`
	PerfectHours   float64 `json:"perfect_hours"`
	DollarsPerHour float64 `json:"dollars_per_hour"`
	Headcount      int     `json:"headcount"`
	ActiveCount    int     `json:"active_count"`
}

// Summary is the organization-level fold over all centers at one instant.
type Summary struct {
	At                    time.Time       `json:"at"`
	Centers               []CenterSummary `json:"centers"`
	TotalLaborHours       float64         `json:"total_labor_hours"`
	TotalSales            float64         `json:"total_sales"`
	TotalPerfectHours     float64         `json:"total_perfect_hours"`
	OverallDollarsPerHour float64         `json:"overall_dollars_per_hour"`
	EfficiencyDelta       float64         `json:"efficiency_delta"`
	UnassignedHours       float64         `json:"unassigned_hours"`
	InconsistentRecords   int             `json:"inconsistent_records"`
}

// Center looks up a center summary by name.
func (s *Summary) Center(name string) (CenterSummary, bool) {
	for _, c := range s.Centers {
		if c.Name == name {
			return c, true
		}
	}
	return CenterSummary{}, false
}

// Staffing interprets the efficiency delta.
func (s *Summary) Staffing() StaffingSignal {
	return NewStaffingSignal(s.TotalLaborHours, s.TotalPerfectHours)
}

// Summarize folds the employee and center snapshots into per-center and
// organization totals as of now. Every call recomputes from the inputs.
func Summarize(employees []Employee, centers []RevenueCenter, now time.Time) Summary {
	return fold(employees, centers, now, func(e Employee) float64 {
		return e.ElapsedHours(now)
	}, func(e Employee) bool {
		return bool(e.IsActive)
	}, nil)
}

// fold is the shared reduction behind Summarize and ReconstructAt. hours
// yields the contribution of one employee and onClock whether the employee
// counts as working at the instant; visit, when set, sees every contributing
// employee with its center index.
func fold(employees []Employee, centers []RevenueCenter, at time.Time, hours func(Employee) float64, onClock func(Employee) bool, visit func(i int, e Employee, h float64)) Summary {
	s := Summary{
		At:      at,
		Centers: make([]CenterSummary, len(centers)),
	}

	index := make(map[string]int, len(centers))
	for i, c := range centers {
		s.Centers[i] = CenterSummary{Name: c.Name, Sales: c.Sales, Divisor: c.Divisor}
		if _, dup := index[c.Name]; !dup {
			index[c.Name] = i
		}
	}

	for _, e := range employees {
		if e.IsInconsistent() {
			s.InconsistentRecords++
		}
		h := hours(e)
		i, ok := index[e.RevenueCenter]
		if !ok {
			s.UnassignedHours += h
			continue
		}
		cs := &s.Centers[i]
		cs.LaborHours += h
		if h > 0 {
			cs.Headcount++
			if visit != nil {
				visit(i, e, h)
			}
		}
		if onClock(e) {
			cs.ActiveCount++
		}
	}

	for i := range s.Centers {
		cs := &s.Centers[i]
		cs.PerfectHours = PerfectHours(cs.Sales, cs.Divisor)
		cs.DollarsPerHour = DollarsPerHour(cs.Sales, cs.LaborHours)

		s.TotalLaborHours += cs.LaborHours
		if isFinite(cs.Sales) {
			s.TotalSales += cs.Sales
		}
		s.TotalPerfectHours += cs.PerfectHours
	}

	s.OverallDollarsPerHour = DollarsPerHour(s.TotalSales, s.TotalLaborHours)
	s.EfficiencyDelta = s.TotalLaborHours - s.TotalPerfectHours
	return s
}

// StaffingStatus is the sign of the efficiency delta.
type StaffingStatus string

const (
	OverStaffed  StaffingStatus = "over_staffed"
	UnderStaffed StaffingStatus = "under_staffed"
)

// StaffingSignal is the staffing verdict with the magnitude of the gap.
type StaffingSignal struct {
	Status StaffingStatus `json:"status"`
	Hours  float64        `json:"hours"`
}

// NewStaffingSignal compares actual against perfect hours. A positive delta is
// excess hours; zero or negative is the deficit still needed.
func NewStaffingSignal(laborHours, perfectHours float64) StaffingSignal {
	delta := finite(laborHours - perfectHours)
	if delta > 0 {
		return StaffingSignal{Status: OverStaffed, Hours: delta}
	}
	return StaffingSignal{Status: UnderStaffed, Hours: math.Abs(delta)}
}

func (s StaffingSignal) String() string {
	if s.Status == OverStaffed {
		return fmt.Sprintf("over-staffed, %.1f excess hours", s.Hours)
	}
	return fmt.Sprintf("under-staffed, need %.1f more hours", s.Hours)
}
