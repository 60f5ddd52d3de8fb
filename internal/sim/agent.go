package sim

import (
	"github.com/kingrea/tidewatch/internal/kernel"
)

// Agent is a named actor that performs tasks inside an environment. An agent
// must be registered before it can schedule or log anything.
type Agent struct {
	name string
	env  *Environment
}

// NewAgent creates an unbound agent.
func NewAgent(name string) *Agent {
	return &Agent{name: name}
}

// Name returns the agent's name.
func (a *Agent) Name() string { return a.name }

// String implements fmt.Stringer.
func (a *Agent) String() string { return a.name }

// Env returns the environment the agent is registered to, or nil.
func (a *Agent) Env() *Environment { return a.env }

// SubmitActionLog records one completed action with its elapsed duration.
// Extra key/values are merged into the entry verbatim.
func (a *Agent) SubmitActionLog(action string, duration float64, extra map[string]any) error {
	if a.env == nil {
		return &NotRegisteredError{Agent: a.name}
	}
	payload := map[string]any{
		"agent":    a.name,
		"action":   action,
		"duration": duration,
	}
	for key, value := range extra {
		if _, reserved := payload[key]; reserved {
			continue
		}
		payload[key] = value
	}
	return a.env.SubmitLog(payload, LevelAction)
}

// SubmitDebugLog records a diagnostic entry attributed to the agent.
func (a *Agent) SubmitDebugLog(extra map[string]any) error {
	if a.env == nil {
		return &NotRegisteredError{Agent: a.name}
	}
	payload := map[string]any{"agent": a.name}
	for key, value := range extra {
		if key == "agent" {
			continue
		}
		payload[key] = value
	}
	return a.env.SubmitLog(payload, LevelDebug)
}

// Pause suspends the running process for d simulated units and records the
// wait as a Delay action.
func (a *Agent) Pause(p *kernel.Proc, d float64) error {
	if a.env == nil {
		return &NotRegisteredError{Agent: a.name}
	}
	if err := p.Timeout(d); err != nil {
		return err
	}
	return a.SubmitActionLog("Delay", d, nil)
}

// WaitFor suspends the running process until the event fires and records how
// long the agent waited.
func (a *Agent) WaitFor(p *kernel.Proc, ev *kernel.Event, extra map[string]any) error {
	if a.env == nil {
		return &NotRegisteredError{Agent: a.name}
	}
	start := p.Now()
	if err := p.Wait(ev); err != nil {
		return err
	}
	return a.SubmitActionLog("WaitForEvent", p.Now()-start, extra)
}

// Object is a named, passive participant. Unlike agents, objects may be
// registered under duplicate names; they carry no task machinery.
type Object struct {
	name string
	env  *Environment
}

// NewObject creates an unbound object.
func NewObject(name string) *Object {
	return &Object{name: name}
}

// Name returns the object's name.
func (o *Object) Name() string { return o.name }

// String implements fmt.Stringer.
func (o *Object) String() string { return o.name }

// Env returns the environment the object is registered to, or nil.
func (o *Object) Env() *Environment { return o.env }
