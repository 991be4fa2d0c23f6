package labor

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Employee is one shift record: a check-in against a revenue center and,
// once the shift is closed, its check-out time.
type Employee struct {
	ID                 string     `yaml:"id" json:"id"`
	Name               string     `yaml:"name" json:"name"`
	StartTime          time.Time  `yaml:"start_time" json:"start_time"`
	EndTime            *time.Time `yaml:"end_time,omitempty" json:"end_time,omitempty"`
	RevenueCenter      string     `yaml:"revenue_center" json:"revenue_center"`
	UnpaidBreakMinutes float64    `yaml:"unpaid_break_minutes" json:"unpaid_break_minutes"`
	IsActive           ActiveFlag `yaml:"is_active" json:"is_active"`
}

// NewEmployee creates an active shift record. End time, break minutes and the
// active flag are always system-assigned at creation.
func NewEmployee(id, name, center string, start time.Time) (Employee, error) {
	if id == "" {
		return Employee{}, fmt.Errorf("employee ID must not be empty")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return Employee{}, ErrEmptyName
	}
	if start.IsZero() {
		return Employee{}, fmt.Errorf("start time: %w", ErrInvalidTime)
	}
	return Employee{
		ID:            id,
		Name:          name,
		StartTime:     start,
		RevenueCenter: center,
		IsActive:      true,
	}, nil
}

// Status derives the shift state from the authoritative active flag.
func (e *Employee) Status() ShiftStatus {
	if e.IsActive {
		return ShiftActive
	}
	return ShiftCheckedOut
}

// CheckOut closes the shift at the given time.
func (e *Employee) CheckOut(at time.Time) error {
	sm, err := NewShiftStateMachine(e.Status(), e.ID)
	if err != nil {
		return err
	}
	if err := sm.Transition(EventCheckout); err != nil {
		return err
	}
	end := at
	e.EndTime = &end
	e.IsActive = ActiveFlag(sm.CurrentStatus() == ShiftActive)
	return nil
}

// IsInconsistent reports a closed shift that has no end time, which an edit
// that clears the end time can produce.
func (e *Employee) IsInconsistent() bool {
	return !bool(e.IsActive) && e.EndTime == nil
}

// ShiftEnd returns the effective end of the shift as of now. Open shifts end
// at now regardless of any stale end time; closed shifts end at their
// recorded end time, which is nil for inconsistent records.
func (e *Employee) ShiftEnd(now time.Time) *time.Time {
	if e.IsActive {
		n := now
		return &n
	}
	return e.EndTime
}

// ElapsedHours is the worked hours of the shift as of now.
func (e *Employee) ElapsedHours(now time.Time) float64 {
	if e.IsActive {
		return ElapsedHours(e.StartTime, nil, e.UnpaidBreakMinutes, now)
	}
	if e.EndTime == nil {
		return 0
	}
	return ElapsedHours(e.StartTime, e.EndTime, e.UnpaidBreakMinutes, now)
}

// breakHours converts unpaid break minutes to hours, treating invalid values as zero.
func breakHours(minutes float64) float64 {
	if minutes <= 0 || math.IsNaN(minutes) || math.IsInf(minutes, 0) {
		return 0
	}
	return minutes / 60.0
}
