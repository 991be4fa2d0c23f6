package storage

import (
	"fmt"
	"sync"

	"github.com/felixgeelhaar/laborboard/pkg/domain/labor"
)

// MemoryRepository holds records in process memory. Used by tests and by the
// "memory" storage driver for throwaway boards.
type MemoryRepository struct {
	mu        sync.RWMutex
	employees map[string]labor.Employee
	centers   map[string]labor.RevenueCenter
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		employees: make(map[string]labor.Employee),
		centers:   make(map[string]labor.RevenueCenter),
	}
}

func (r *MemoryRepository) ListEmployees() ([]labor.Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]labor.Employee, 0, len(r.employees))
	for _, e := range r.employees {
		list = append(list, copyEmployee(e))
	}
	sortEmployees(list)
	return list, nil
}

func (r *MemoryRepository) ListActiveEmployees() ([]labor.Employee, error) {
	all, _ := r.ListEmployees()
	return labor.FilterActive(all), nil
}

func (r *MemoryRepository) ListEmployeesByCenter(center string, activeOnly bool) ([]labor.Employee, error) {
	all, _ := r.ListEmployees()
	return labor.FilterByCenter(all, center, activeOnly), nil
}

func (r *MemoryRepository) GetEmployee(id string) (labor.Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.employees[id]
	if !ok {
		return labor.Employee{}, fmt.Errorf("%w: %s", labor.ErrEmployeeNotFound, id)
	}
	return copyEmployee(e), nil
}

func (r *MemoryRepository) CreateEmployee(e labor.Employee) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.employees[e.ID]; ok {
		return fmt.Errorf("employee %s already exists", e.ID)
	}
	r.employees[e.ID] = copyEmployee(e)
	return nil
}

func (r *MemoryRepository) UpdateEmployee(e labor.Employee) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.employees[e.ID]; !ok {
		return fmt.Errorf("%w: %s", labor.ErrEmployeeNotFound, e.ID)
	}
	r.employees[e.ID] = copyEmployee(e)
	return nil
}

func (r *MemoryRepository) DeleteEmployee(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.employees[id]; !ok {
		return fmt.Errorf("%w: %s", labor.ErrEmployeeNotFound, id)
	}
	delete(r.employees, id)
	return nil
}

func (r *MemoryRepository) ListCenters() ([]labor.RevenueCenter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]labor.RevenueCenter, 0, len(r.centers))
	for _, c := range r.centers {
		list = append(list, c)
	}
	sortCenters(list)
	return list, nil
}

func (r *MemoryRepository) GetCenter(name string) (labor.RevenueCenter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.centers[name]
	if !ok {
		return labor.RevenueCenter{}, fmt.Errorf("%w: %s", labor.ErrCenterNotFound, name)
	}
	return c, nil
}

func (r *MemoryRepository) CreateCenter(c labor.RevenueCenter) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.centers[c.Name]; ok {
		return fmt.Errorf("%w: %s", labor.ErrCenterExists, c.Name)
	}
	r.centers[c.Name] = c
	return nil
}

func (r *MemoryRepository) UpdateCenter(c labor.RevenueCenter) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.centers[c.Name]; !ok {
		return fmt.Errorf("%w: %s", labor.ErrCenterNotFound, c.Name)
	}
	r.centers[c.Name] = c
	return nil
}

// copyEmployee detaches the end time pointer from the caller's value.
func copyEmployee(e labor.Employee) labor.Employee {
	if e.EndTime != nil {
		end := *e.EndTime
		e.EndTime = &end
	}
	return e
}
