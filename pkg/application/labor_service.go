package application

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/felixgeelhaar/laborboard/pkg/domain/events"
	"github.com/felixgeelhaar/laborboard/pkg/domain/labor"
	"github.com/google/uuid"
)

// Clock supplies "now". One call per operation keeps a pass consistent.
type Clock func() time.Time

// LaborService is the record-management surface of the board: check-in,
// check-out, corrections and center figures, plus the computed views.
type LaborService struct {
	repo     labor.Repository
	audit    *AuditService
	clock    Clock
	actor    string
	divisors map[string]float64
	newID    func() string
	logger   *slog.Logger
}

type LaborOption func(*LaborService)

func WithClock(c Clock) LaborOption {
	return func(s *LaborService) { s.clock = c }
}

// WithActor names who performs changes in the audit trail.
func WithActor(actor string) LaborOption {
	return func(s *LaborService) { s.actor = actor }
}

// WithDefaultDivisors sets the divisor each seeded center starts with.
func WithDefaultDivisors(divisors map[string]float64) LaborOption {
	return func(s *LaborService) { s.divisors = divisors }
}

func WithIDGenerator(f func() string) LaborOption {
	return func(s *LaborService) { s.newID = f }
}

func WithLogger(l *slog.Logger) LaborOption {
	return func(s *LaborService) { s.logger = l }
}

func NewLaborService(repo labor.Repository, audit *AuditService, opts ...LaborOption) *LaborService {
	s := &LaborService{
		repo:  repo,
		audit: audit,
		clock: time.Now,
		actor: "system",
		newID: func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.audit == nil {
		s.audit = NewAuditService(nil, nil, s.logger)
	}
	return s
}

// Now is the service clock.
func (s *LaborService) Now() time.Time {
	return s.clock()
}

// CheckIn opens a shift for name in center, at the given time or now.
func (s *LaborService) CheckIn(name, center string, at *time.Time) (*labor.Employee, error) {
	if strings.TrimSpace(name) == "" {
		return nil, labor.ErrEmptyName
	}
	if _, err := s.knownCenter(center); err != nil {
		return nil, err
	}

	start := s.clock()
	if at != nil {
		start = *at
	}

	e, err := labor.NewEmployee(s.newID(), name, center, start)
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreateEmployee(e); err != nil {
		return nil, fmt.Errorf("failed to save employee: %w", err)
	}

	s.logger.Info("employee checked in", "employee_id", e.ID, "revenue_center", center)
	s.record(events.EventTypeShiftCheckedIn, events.AggregateTypeEmployee, e.ID, map[string]interface{}{
		"name":           e.Name,
		"revenue_center": center,
		"start_time":     e.StartTime.Format(time.RFC3339),
	})
	return &e, nil
}

// CheckOut closes the shift of employee id, at the given time or now.
func (s *LaborService) CheckOut(id string, at *time.Time) (*labor.Employee, error) {
	e, err := s.repo.GetEmployee(id)
	if err != nil {
		return nil, err
	}

	end := s.clock()
	if at != nil {
		end = *at
	}
	if err := e.CheckOut(end); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateEmployee(e); err != nil {
		return nil, fmt.Errorf("failed to save employee: %w", err)
	}

	hours := e.ElapsedHours(end)
	s.logger.Info("employee checked out", "employee_id", e.ID, "hours", hours)
	s.record(events.EventTypeShiftCheckedOut, events.AggregateTypeEmployee, e.ID, map[string]interface{}{
		"end_time": end.Format(time.RFC3339),
		"hours":    hours,
	})
	return &e, nil
}

// EmployeeEdit is a partial correction of a shift record. Nil fields are left
// unchanged. ClearEndTime removes the end time; on a checked-out shift that
// leaves a closed record without an end, which contributes no hours.
type EmployeeEdit struct {
	Name               *string
	RevenueCenter      *string
	StartTime          *time.Time
	EndTime            *time.Time
	ClearEndTime       bool
	UnpaidBreakMinutes *float64
}

// EditEmployee applies a correction. It never changes the shift state.
func (s *LaborService) EditEmployee(id string, edit EmployeeEdit) (*labor.Employee, error) {
	e, err := s.repo.GetEmployee(id)
	if err != nil {
		return nil, err
	}

	changed := map[string]interface{}{}
	if edit.Name != nil {
		name := strings.TrimSpace(*edit.Name)
		if name == "" {
			return nil, labor.ErrEmptyName
		}
		e.Name = name
		changed["name"] = name
	}
	if edit.RevenueCenter != nil {
		if _, err := s.knownCenter(*edit.RevenueCenter); err != nil {
			return nil, err
		}
		e.RevenueCenter = *edit.RevenueCenter
		changed["revenue_center"] = e.RevenueCenter
	}
	if edit.StartTime != nil {
		if edit.StartTime.IsZero() {
			return nil, fmt.Errorf("start time: %w", labor.ErrInvalidTime)
		}
		e.StartTime = *edit.StartTime
		changed["start_time"] = e.StartTime.Format(time.RFC3339)
	}
	switch {
	case edit.ClearEndTime:
		e.EndTime = nil
		changed["end_time"] = nil
	case edit.EndTime != nil:
		end := *edit.EndTime
		e.EndTime = &end
		changed["end_time"] = end.Format(time.RFC3339)
	}
	if edit.UnpaidBreakMinutes != nil {
		m := *edit.UnpaidBreakMinutes
		if m < 0 || math.IsNaN(m) || math.IsInf(m, 0) {
			return nil, labor.ErrNegativeBreak
		}
		e.UnpaidBreakMinutes = m
		changed["unpaid_break_minutes"] = m
	}

	if err := s.repo.UpdateEmployee(e); err != nil {
		return nil, fmt.Errorf("failed to save employee: %w", err)
	}
	if e.IsInconsistent() {
		s.logger.Warn("checked-out shift has no end time", "employee_id", e.ID)
	}
	s.record(events.EventTypeEmployeeUpdated, events.AggregateTypeEmployee, e.ID, changed)
	return &e, nil
}

func (s *LaborService) DeleteEmployee(id string) error {
	if err := s.repo.DeleteEmployee(id); err != nil {
		return err
	}
	s.record(events.EventTypeEmployeeDeleted, events.AggregateTypeEmployee, id, nil)
	return nil
}

func (s *LaborService) GetEmployee(id string) (labor.Employee, error) {
	return s.repo.GetEmployee(id)
}

func (s *LaborService) ListEmployees(activeOnly bool) ([]labor.Employee, error) {
	if activeOnly {
		return s.repo.ListActiveEmployees()
	}
	return s.repo.ListEmployees()
}

func (s *LaborService) ListByCenter(center string, activeOnly bool) ([]labor.Employee, error) {
	return s.repo.ListEmployeesByCenter(center, activeOnly)
}

// SeedCenters creates the known centers that do not exist yet and returns how
// many it created. Existing centers keep their figures.
func (s *LaborService) SeedCenters() (int, error) {
	created := 0
	for _, kind := range labor.KnownCenterKinds() {
		name := kind.String()
		_, err := s.repo.GetCenter(name)
		if err == nil {
			continue
		}
		if !errors.Is(err, labor.ErrCenterNotFound) {
			return created, err
		}

		divisor := s.divisors[name]
		if labor.ValidateDivisor(divisor) != nil {
			divisor = 1
		}
		c, err := labor.NewRevenueCenter(s.newID(), name, 0, divisor)
		if err != nil {
			return created, err
		}
		if err := s.repo.CreateCenter(c); err != nil {
			return created, fmt.Errorf("failed to seed %s: %w", name, err)
		}
		created++
	}
	if created > 0 {
		s.logger.Info("seeded revenue centers", "created", created)
	}
	return created, nil
}

func (s *LaborService) ListCenters() ([]labor.RevenueCenter, error) {
	return s.repo.ListCenters()
}

// SetSales replaces the sales figure of a center.
func (s *LaborService) SetSales(center string, sales float64) (labor.RevenueCenter, error) {
	if err := labor.ValidateSales(sales); err != nil {
		return labor.RevenueCenter{}, err
	}
	return s.updateCenter(center, func(c *labor.RevenueCenter) { c.Sales = sales },
		map[string]interface{}{"sales": sales})
}

// SetDivisor replaces the efficiency divisor of a center.
func (s *LaborService) SetDivisor(center string, divisor float64) (labor.RevenueCenter, error) {
	if err := labor.ValidateDivisor(divisor); err != nil {
		return labor.RevenueCenter{}, err
	}
	return s.updateCenter(center, func(c *labor.RevenueCenter) { c.Divisor = divisor },
		map[string]interface{}{"divisor": divisor})
}

func (s *LaborService) updateCenter(name string, apply func(*labor.RevenueCenter), changed map[string]interface{}) (labor.RevenueCenter, error) {
	c, err := s.knownCenter(name)
	if err != nil {
		return labor.RevenueCenter{}, err
	}
	apply(&c)
	if err := s.repo.UpdateCenter(c); err != nil {
		return labor.RevenueCenter{}, fmt.Errorf("failed to save revenue center: %w", err)
	}
	s.record(events.EventTypeCenterUpdated, events.AggregateTypeCenter, c.Name, changed)
	return c, nil
}

// Summary is the live board as of the service clock.
func (s *LaborService) Summary() (labor.Summary, error) {
	employees, centers, err := s.snapshot()
	if err != nil {
		return labor.Summary{}, err
	}
	return labor.Summarize(employees, centers, s.clock()), nil
}

// Reconstruct rebuilds the board at a time of day on today's date, e.g. "14:00".
func (s *LaborService) Reconstruct(clock string) (labor.Reconstruction, error) {
	target, err := labor.TargetOnDay(s.clock(), clock)
	if err != nil {
		return labor.Reconstruction{}, err
	}
	return s.ReconstructAt(target)
}

func (s *LaborService) ReconstructAt(target time.Time) (labor.Reconstruction, error) {
	employees, centers, err := s.snapshot()
	if err != nil {
		return labor.Reconstruction{}, err
	}
	return labor.ReconstructAt(employees, centers, target), nil
}

func (s *LaborService) snapshot() ([]labor.Employee, []labor.RevenueCenter, error) {
	employees, err := s.repo.ListEmployees()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load employees: %w", err)
	}
	centers, err := s.repo.ListCenters()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load revenue centers: %w", err)
	}
	return employees, centers, nil
}

func (s *LaborService) knownCenter(name string) (labor.RevenueCenter, error) {
	c, err := s.repo.GetCenter(name)
	if errors.Is(err, labor.ErrCenterNotFound) {
		return labor.RevenueCenter{}, fmt.Errorf("%w: %q", labor.ErrUnknownCenter, name)
	}
	return c, err
}

// record writes the audit entry. Audit failures are logged, not returned:
// the record change has already been saved.
func (s *LaborService) record(eventType, aggregateType, id string, metadata map[string]interface{}) {
	if err := s.audit.RecordAt(s.clock(), eventType, aggregateType, id, s.actor, metadata); err != nil {
		s.logger.Warn("audit record failed", "type", eventType, "error", err)
	}
}
