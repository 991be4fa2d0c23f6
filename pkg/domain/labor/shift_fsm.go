package labor

import (
	"fmt"

	"github.com/felixgeelhaar/statekit"
)

// ShiftStatus is the lifecycle state of one shift record.
type ShiftStatus string

const (
	ShiftActive     ShiftStatus = "active"
	ShiftCheckedOut ShiftStatus = "checked_out"
)

// EventCheckout closes an active shift.
const EventCheckout = "checkout"

// State constants for statekit; kept in sync with ShiftStatus.
const (
	StateActive     = "active"
	StateCheckedOut = "checked_out"
)

func init() {
	if StateActive != string(ShiftActive) || StateCheckedOut != string(ShiftCheckedOut) {
		panic("shift FSM state constants are out of sync with ShiftStatus")
	}
}

func (s ShiftStatus) IsFinal() bool {
	return s == ShiftCheckedOut
}

func (s ShiftStatus) String() string {
	return string(s)
}

// ShiftContext carries the record the machine is evaluated for.
type ShiftContext struct {
	EmployeeID string
}

// ShiftStateMachine encodes Active -> CheckedOut. CheckedOut is terminal.
type ShiftStateMachine struct {
	employeeID  string
	interpreter *statekit.Interpreter[ShiftContext]
}

func NewShiftStateMachine(initial ShiftStatus, employeeID string) (*ShiftStateMachine, error) {
	if initial != ShiftActive && initial != ShiftCheckedOut {
		return nil, fmt.Errorf("unknown shift status %q", initial)
	}

	builder := statekit.NewMachine[ShiftContext]("shift-machine").
		WithInitial(statekit.StateID(initial)).
		WithContext(ShiftContext{EmployeeID: employeeID})

	builder.State(StateActive).
		On(EventCheckout).Target(StateCheckedOut).
		Done()

	builder.State(StateCheckedOut).
		Done()

	machine, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build shift state machine: %w", err)
	}

	interpreter := statekit.NewInterpreter(machine)
	interpreter.Start()

	return &ShiftStateMachine{employeeID: employeeID, interpreter: interpreter}, nil
}

// Transition applies the event or reports why it was rejected.
func (sm *ShiftStateMachine) Transition(event string) error {
	before := sm.CurrentStatus()
	sm.interpreter.Send(statekit.Event{Type: statekit.EventType(event)})
	if sm.CurrentStatus() != before {
		return nil
	}
	if event == EventCheckout && before == ShiftCheckedOut {
		return fmt.Errorf("%w: %w", ErrAlreadyCheckedOut, &TransitionError{EmployeeID: sm.employeeID, From: string(before), Event: event})
	}
	return &TransitionError{EmployeeID: sm.employeeID, From: string(before), Event: event}
}

func (sm *ShiftStateMachine) CurrentStatus() ShiftStatus {
	return ShiftStatus(sm.interpreter.State().Value)
}
