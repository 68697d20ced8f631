package rounddomain

import (
	"errors"
	"fmt"
)

// Action is a lifecycle trigger.
type Action string

const (
	ActionJoin         Action = "join"
	ActionAllocate     Action = "set_allocations"
	ActionStart        Action = "start"
	ActionSubmitResult Action = "submit_result"
	ActionTerminate    Action = "terminate"
)

// ErrInvalidStateTransition is the sentinel behind every rejected transition.
var ErrInvalidStateTransition = errors.New("invalid state transition")

// InvalidStateTransitionError reports the status a round was in when action
// was refused.
type InvalidStateTransitionError struct {
	Current Status
	Action  Action
}

func (e *InvalidStateTransitionError) Error() string {
	switch e.Action {
	case ActionJoin:
		return fmt.Sprintf("cannot join a round with status '%s'", e.Current)
	case ActionStart:
		return fmt.Sprintf("cannot start a round with status '%s'", e.Current)
	case ActionSubmitResult:
		return fmt.Sprintf("cannot submit a result for a round with status '%s'", e.Current)
	case ActionTerminate:
		return fmt.Sprintf("cannot terminate a round with status '%s'", e.Current)
	default:
		return fmt.Sprintf("cannot %s a round with status '%s'", e.Action, e.Current)
	}
}

func (e *InvalidStateTransitionError) Unwrap() error { return ErrInvalidStateTransition }

// Transition returns the status a round in current moves to when action is
// applied, or an *InvalidStateTransitionError when the guard fails.
//
//	join            SETUP|ALLOCATION -> unchanged
//	set_allocations any non-terminal -> ALLOCATION
//	start           ALLOCATION       -> ACTIVE
//	submit_result   ACTIVE           -> COMPLETED
//	terminate       ACTIVE           -> TERMINATED
//
// COMPLETED and TERMINATED have no exits. That includes set_allocations: an
// ACTIVE round may be reallocated back to ALLOCATION, but a finished round
// keeps the allocations its result and scores were recorded against.
func Transition(current Status, action Action) (Status, error) {
	switch action {
	case ActionJoin:
		if current == StatusSetup || current == StatusAllocation {
			return current, nil
		}
	case ActionAllocate:
		if !current.Terminal() {
			return StatusAllocation, nil
		}
	case ActionStart:
		if current == StatusAllocation {
			return StatusActive, nil
		}
	case ActionSubmitResult:
		if current == StatusActive {
			return StatusCompleted, nil
		}
	case ActionTerminate:
		if current == StatusActive {
			return StatusTerminated, nil
		}
	}
	return current, &InvalidStateTransitionError{Current: current, Action: action}
}

// CanJoin reports whether participants may still join.
func (s Status) CanJoin() bool {
	_, err := Transition(s, ActionJoin)
	return err == nil
}

// CanStart reports whether the round may be started.
func (s Status) CanStart() bool {
	_, err := Transition(s, ActionStart)
	return err == nil
}

// IsActiveStatus is the value the is_active flag must hold for s.
func IsActiveStatus(s Status) bool {
	return s == StatusActive
}
