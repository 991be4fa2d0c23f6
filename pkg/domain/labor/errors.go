package labor

import "errors"

// Domain errors for shift and revenue center management.
var (
	// ErrEmptyName indicates a check-in without an employee name.
	ErrEmptyName = errors.New("employee name must not be empty")

	// ErrUnknownCenter indicates the revenue center does not exist.
	ErrUnknownCenter = errors.New("unknown revenue center")

	// ErrEmployeeNotFound indicates no employee record has the given ID.
	ErrEmployeeNotFound = errors.New("employee not found")

	// ErrCenterNotFound indicates no revenue center has the given name.
	ErrCenterNotFound = errors.New("revenue center not found")

	// ErrCenterExists indicates a revenue center with the same name already exists.
	ErrCenterExists = errors.New("revenue center already exists")

	// ErrAlreadyCheckedOut indicates the shift has already been closed.
	ErrAlreadyCheckedOut = errors.New("employee already checked out")

	// ErrInvalidTransition indicates the requested shift transition is not allowed.
	ErrInvalidTransition = errors.New("invalid shift transition")

	// ErrInvalidSales indicates a negative or non-finite sales figure.
	ErrInvalidSales = errors.New("sales must be a non-negative number")

	// ErrInvalidDivisor indicates a zero, negative or non-finite divisor.
	ErrInvalidDivisor = errors.New("divisor must be a positive number")

	// ErrNegativeBreak indicates negative unpaid break minutes.
	ErrNegativeBreak = errors.New("unpaid break minutes must not be negative")

	// ErrInvalidTime indicates a timestamp that could not be parsed.
	ErrInvalidTime = errors.New("invalid time")
)

// TransitionError provides details about a rejected shift event.
type TransitionError struct {
	EmployeeID string
	From       string
	Event      string
}

func (e *TransitionError) Error() string {
	return "cannot " + e.Event + " employee " + e.EmployeeID + " while shift is " + e.From
}

// Is allows errors.Is to work with TransitionError.
func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}
