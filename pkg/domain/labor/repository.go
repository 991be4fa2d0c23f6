package labor

// Repository is the record store collaborator. The engine only ever reads
// snapshots from it; writes come from the application layer.
type Repository interface {
	ListEmployees() ([]Employee, error)
	ListActiveEmployees() ([]Employee, error)
	ListEmployeesByCenter(center string, activeOnly bool) ([]Employee, error)
	GetEmployee(id string) (Employee, error)
	CreateEmployee(e Employee) error
	UpdateEmployee(e Employee) error
	DeleteEmployee(id string) error

	ListCenters() ([]RevenueCenter, error)
	GetCenter(name string) (RevenueCenter, error)
	CreateCenter(c RevenueCenter) error
	UpdateCenter(c RevenueCenter) error
}

// FilterByCenter returns the employees of one center, optionally only open shifts.
// Store implementations without native indexes build their queries on it.
func FilterByCenter(employees []Employee, center string, activeOnly bool) []Employee {
	out := make([]Employee, 0, len(employees))
	for _, e := range employees {
		if e.RevenueCenter != center {
			continue
		}
		if activeOnly && !bool(e.IsActive) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// FilterActive returns the employees whose shift is open.
func FilterActive(employees []Employee) []Employee {
	out := make([]Employee, 0, len(employees))
	for _, e := range employees {
		if e.IsActive {
			out = append(out, e)
		}
	}
	return out
}
