package labor

import (
	"sort"
	"time"
)

// HoursAsOf is what the employee's worked hours would have read at target.
//
// Employees that had not started contribute nothing. A shift that closed
// before target is clipped to its end; everything else runs to target. An end
// recorded before the start crosses midnight as in ElapsedHours. Unpaid breaks
// are subtracted as in ElapsedHours.
func HoursAsOf(e Employee, target time.Time) float64 {
	if e.StartTime.IsZero() || target.IsZero() || e.StartTime.After(target) {
		return 0
	}

	end := target
	if !e.IsActive {
		if e.EndTime == nil || e.EndTime.IsZero() {
			return 0
		}
		closed, ok := recordedEnd(e.StartTime, *e.EndTime)
		if !ok {
			return 0
		}
		if closed.Before(target) {
			end = closed
		}
	}

	if end.Before(e.StartTime) {
		return 0
	}
	return clampHours(end.Sub(e.StartTime).Hours() - breakHours(e.UnpaidBreakMinutes))
}

// Contribution is one employee's share of a reconstructed center total.
type Contribution struct {
	EmployeeID string  `json:"employee_id"`
	Name       string  `json:"name"`
	Hours      float64 `json:"hours"`
}

// CenterReconstruction adds the contributing employees to a center summary.
type CenterReconstruction struct {
	CenterSummary
	Contributors []Contribution `json:"contributors"`
}

// Reconstruction is a Summary evaluated at a past or present target time.
type Reconstruction struct {
	Summary
	Target  time.Time              `json:"target"`
	Details []CenterReconstruction `json:"details"`
}

// ReconstructAt rebuilds the labor picture at target from the current records.
func ReconstructAt(employees []Employee, centers []RevenueCenter, target time.Time) Reconstruction {
	contributors := make([][]Contribution, len(centers))
	s := fold(employees, centers, target, func(e Employee) float64 {
		return HoursAsOf(e, target)
	}, func(e Employee) bool {
		return onClockAt(e, target)
	}, func(i int, e Employee, h float64) {
		contributors[i] = append(contributors[i], Contribution{EmployeeID: e.ID, Name: e.Name, Hours: h})
	})

	r := Reconstruction{
		Summary: s,
		Target:  target,
		Details: make([]CenterReconstruction, len(s.Centers)),
	}
	for i, cs := range s.Centers {
		list := contributors[i]
		sort.SliceStable(list, func(a, b int) bool { return list[a].Name < list[b].Name })
		if list == nil {
			list = []Contribution{}
		}
		r.Details[i] = CenterReconstruction{CenterSummary: cs, Contributors: list}
	}
	return r
}

// onClockAt reports whether the shift was open at target.
func onClockAt(e Employee, target time.Time) bool {
	if e.StartTime.IsZero() || e.StartTime.After(target) {
		return false
	}
	if e.IsActive {
		return true
	}
	if e.EndTime == nil || e.EndTime.IsZero() {
		return false
	}
	closed, ok := recordedEnd(e.StartTime, *e.EndTime)
	return ok && closed.After(target)
}
