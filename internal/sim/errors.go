package sim

import (
	"fmt"
	"sort"

	"github.com/kingrea/tidewatch/internal/constraint"
)

// RegistrationConflictError reports a duplicate agent name inside one
// environment.
type RegistrationConflictError struct {
	Env   string
	Agent string
}

func (e *RegistrationConflictError) Error() string {
	return fmt.Sprintf("sim: %q already has a registered agent named %q", e.Env, e.Agent)
}

// RegistrationError reports an instance type the registry does not recognize.
type RegistrationError struct {
	Instance any
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("sim: %v (type %T) is not recognized for registration", e.Instance, e.Instance)
}

// AlreadyRegisteredError reports an instance that is still bound to another
// environment.
type AlreadyRegisteredError struct {
	Name string
	Env  string
}

func (e *AlreadyRegisteredError) Error() string {
	return fmt.Sprintf("sim: %q is already registered to %q", e.Name, e.Env)
}

// NotRegisteredError reports an agent operating without a bound environment.
type NotRegisteredError struct {
	Agent string
}

func (e *NotRegisteredError) Error() string {
	return fmt.Sprintf("sim: agent %q is not registered to an environment", e.Agent)
}

// AlreadyScheduledError reports an attempt to start a second task sequence on
// an agent whose previous sequence is still in flight.
type AlreadyScheduledError struct {
	Agent string
}

func (e *AlreadyScheduledError) Error() string {
	return fmt.Sprintf("sim: agent %q is already scheduled", e.Agent)
}

// WindowNotFoundError reports that no contiguous operational window of the
// required length exists anywhere in the remaining forecast. It carries the
// constraint set that ruled every candidate out.
type WindowNotFoundError struct {
	Agent       string
	Duration    int
	Constraints constraint.Set
}

func (e *WindowNotFoundError) Error() string {
	return fmt.Sprintf("sim: %q: no operational window of length %d satisfies:%s",
		e.Agent, e.Duration, e.Constraints)
}

// StateExhaustedError reports that the forecast ended before a suspendable
// task accumulated its required active duration.
type StateExhaustedError struct {
	Agent       string
	Length      int
	Constraints constraint.Set
}

func (e *StateExhaustedError) Error() string {
	return fmt.Sprintf("sim: %q: state data exhausted at element %d:%s",
		e.Agent, e.Length, e.Constraints)
}

// MissingKeysError reports an action log payload submitted without its
// required keys. Nothing is written when this is returned.
type MissingKeysError struct {
	Payload map[string]any
	Missing []string
}

func (e *MissingKeysError) Error() string {
	missing := append([]string(nil), e.Missing...)
	sort.Strings(missing)
	return fmt.Sprintf("sim: action log %v is missing required key(s) %v", e.Payload, missing)
}
