package cli

import (
	"errors"
	"fmt"

	"github.com/felixgeelhaar/laborboard/internal/infrastructure/config"
	"github.com/felixgeelhaar/laborboard/pkg/domain/labor"
	"github.com/felixgeelhaar/laborboard/pkg/infrastructure/export"
)

var (
	errNotInitialized     = errors.New("board not initialized")
	errAlreadyInitialized = errors.New("board already initialized")
	errAmbiguousEmployee  = errors.New("more than one employee matches")
)

// CLIError wraps domain errors with user-facing messages and actionable hints.
type CLIError struct {
	Message  string
	Hint     string
	Err      error
	ExitCode int
}

func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a CLIError with a default exit code of 1.
func NewCLIError(msg, hint string, err error) *CLIError {
	return &CLIError{
		Message:  msg,
		Hint:     hint,
		Err:      err,
		ExitCode: 1,
	}
}

// MapError converts known domain errors into CLIErrors with actionable hints.
// Unmapped errors are returned as-is.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		return err
	}

	var transErr *labor.TransitionError
	if errors.As(err, &transErr) {
		return NewCLIError(
			transErr.Error(),
			fmt.Sprintf("Employee '%s' is '%s'; use 'laborboard employee edit %s --end' to correct the end time", transErr.EmployeeID, transErr.From, transErr.EmployeeID),
			err,
		)
	}

	switch {
	case errors.Is(err, errNotInitialized):
		return NewCLIError("board not initialized", "Run 'laborboard init' first", err)
	case errors.Is(err, errAlreadyInitialized):
		return NewCLIError("board already initialized", "Run 'laborboard center list' to inspect it", err)
	case errors.Is(err, errAmbiguousEmployee):
		return NewCLIError("employee name is ambiguous", "Use the ID shown by 'laborboard employee list'", err)
	case errors.Is(err, labor.ErrEmployeeNotFound):
		return NewCLIError("employee not found", "Run 'laborboard employee list' to see IDs", err)
	case errors.Is(err, labor.ErrUnknownCenter), errors.Is(err, labor.ErrCenterNotFound):
		return NewCLIError("unknown revenue center", "Use one of: dining, lounge, patio", err)
	case errors.Is(err, labor.ErrEmptyName):
		return NewCLIError("employee name is required", "Pass the name as the first argument", err)
	case errors.Is(err, labor.ErrInvalidTime):
		return NewCLIError("invalid time", "Use a time of day such as 14:00 or 2:00PM, or 2006-01-02 15:04", err)
	case errors.Is(err, labor.ErrInvalidSales):
		return NewCLIError("invalid sales figure", "Sales must be zero or more", err)
	case errors.Is(err, labor.ErrInvalidDivisor):
		return NewCLIError("invalid divisor", "The divisor is sales per labor hour and must be above zero", err)
	case errors.Is(err, labor.ErrNegativeBreak):
		return NewCLIError("invalid break", "Unpaid break minutes must be zero or more", err)
	case errors.Is(err, config.ErrInvalidConfig):
		return NewCLIError("invalid configuration", "Check .laborboard/config.yaml and LABORBOARD_* variables", err)
	case errors.Is(err, export.ErrUnknownFormat):
		return NewCLIError("unknown export format", "Use --format csv or --format xlsx", err)
	}

	return err
}
