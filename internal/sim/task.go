package sim

import (
	"fmt"
	"math"

	"github.com/kingrea/tidewatch/internal/constraint"
	"github.com/kingrea/tidewatch/internal/kernel"
	"github.com/kingrea/tidewatch/internal/schedule"
)

// TaskSpec describes one unit of agent work. Duration is rounded up to whole
// time steps when searching the forecast; the constraint set gates when the
// work may proceed.
type TaskSpec struct {
	Name        string
	Duration    float64
	Constraints constraint.Set
	Suspendable bool
	// Extra is merged verbatim into every log entry the task emits.
	Extra map[string]any
}

// Do executes one task inside an already-running process, suspending and
// logging as the forecast dictates. Non-suspendable tasks wait for the first
// contiguous window long enough to hold the whole duration; suspendable tasks
// start at the first viable step and accumulate active time across
// interruptions.
//
// When the state series is empty or no constraint in the spec applies to it,
// the task runs for its full duration immediately.
func (a *Agent) Do(p *kernel.Proc, spec TaskSpec) error {
	if a.env == nil {
		return &NotRegisteredError{Agent: a.name}
	}
	if spec.Name == "" {
		return fmt.Errorf("sim: task name is required")
	}
	if spec.Duration < 0 || math.IsNaN(spec.Duration) {
		return fmt.Errorf("sim: task %s has invalid duration %v", spec.Name, spec.Duration)
	}
	// A zero-duration task needs no window; it completes at the current
	// instant with one log entry on either policy.
	if spec.Duration == 0 {
		return a.perform(p, spec)
	}
	forecast := a.env.Forecast()
	applicable := spec.Constraints.Applicable(forecast)
	if a.env.State().Empty() || len(applicable) == 0 {
		return a.perform(p, spec)
	}
	steps := int(math.Ceil(spec.Duration))
	mask := applicable.Mask(forecast)
	if spec.Suspendable {
		return a.accumulate(p, spec, steps, mask, applicable)
	}
	return a.window(p, spec, steps, mask, applicable)
}

// perform runs the task unconditionally for its full duration.
func (a *Agent) perform(p *kernel.Proc, spec TaskSpec) error {
	if err := p.Timeout(spec.Duration); err != nil {
		return err
	}
	return a.SubmitActionLog(spec.Name, spec.Duration, spec.Extra)
}

// window implements the non-suspendable policy: one delay to reach the first
// satisfying window, then the whole duration in a single atomic block.
func (a *Agent) window(p *kernel.Proc, spec TaskSpec, steps int, mask []bool, applicable constraint.Set) error {
	offset, found := schedule.FirstWindow(mask, steps)
	if !found {
		return &WindowNotFoundError{Agent: a.name, Duration: steps, Constraints: applicable}
	}
	if offset > 0 {
		if err := p.Timeout(float64(offset)); err != nil {
			return err
		}
		if err := a.SubmitActionLog("Delay", float64(offset), spec.Extra); err != nil {
			return err
		}
	}
	return a.perform(p, spec)
}

// accumulate implements the suspendable policy: each fragment is exactly one
// suspension followed by one log entry, Delay for blocked fragments and the
// task's action for active ones. Fragments are never batched.
func (a *Agent) accumulate(p *kernel.Proc, spec TaskSpec, steps int, mask []bool, applicable constraint.Set) error {
	fragments, found := schedule.Fragments(mask, steps)
	if !found {
		return &StateExhaustedError{Agent: a.name, Length: len(mask), Constraints: applicable}
	}
	for _, fragment := range fragments {
		if err := p.Timeout(float64(fragment.Steps)); err != nil {
			return err
		}
		action := "Delay"
		if fragment.Active {
			action = spec.Name
		}
		if err := a.SubmitActionLog(action, float64(fragment.Steps), spec.Extra); err != nil {
			return err
		}
	}
	return nil
}
