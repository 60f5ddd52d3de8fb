package sim

import (
	"sort"

	"github.com/kingrea/tidewatch/internal/kernel"
	"github.com/kingrea/tidewatch/internal/series"
)

// Environment hosts registered agents and objects, the forecast data gating
// their work, and the simulation log.
type Environment struct {
	name      string
	kernel    *kernel.Kernel
	state     *series.Series
	agents    map[string]*Agent
	objects   []*Object
	scheduled map[string]struct{}
	logs      []Entry
}

// Option customizes environment construction.
type Option func(*Environment)

// WithState attaches the state series whose forecast gates constrained tasks.
func WithState(s *series.Series) Option {
	return func(e *Environment) {
		e.state = s
	}
}

// New creates an environment with a fresh kernel and an empty registry.
func New(name string, opts ...Option) *Environment {
	if name == "" {
		name = "Environment"
	}
	e := &Environment{
		name:      name,
		kernel:    kernel.New(),
		agents:    map[string]*Agent{},
		scheduled: map[string]struct{}{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// Name returns the environment name.
func (e *Environment) Name() string { return e.name }

// String implements fmt.Stringer.
func (e *Environment) String() string { return e.name }

// Kernel exposes the underlying discrete-event kernel.
func (e *Environment) Kernel() *kernel.Kernel { return e.kernel }

// Now returns the current simulated instant.
func (e *Environment) Now() float64 { return e.kernel.Now() }

// State returns the attached state series, which may be nil.
func (e *Environment) State() *series.Series { return e.state }

// Forecast returns the state series viewed from the current instant. It is
// recomputed on every call; the view is never cached because the clock only
// moves forward.
func (e *Environment) Forecast() *series.View {
	return e.state.From(e.kernel.Now())
}

// Run drives the kernel until the event queue drains, returning the first
// propagated task failure.
func (e *Environment) Run() error { return e.kernel.Run() }

// RunUntil drives the kernel up to simulated instant t.
func (e *Environment) RunUntil(t float64) error { return e.kernel.RunUntil(t) }

// Register binds an agent or object to the environment. Agent names must be
// unique per environment; objects may share names. An instance still bound to
// another environment is rejected until it is deregistered there.
func (e *Environment) Register(instance any) error {
	switch v := instance.(type) {
	case *Agent:
		if v.env != nil && v.env != e {
			return &AlreadyRegisteredError{Name: v.name, Env: v.env.name}
		}
		if _, exists := e.agents[v.name]; exists {
			return &RegistrationConflictError{Env: e.name, Agent: v.name}
		}
		e.agents[v.name] = v
		v.env = e
		return nil
	case *Object:
		if v.env != nil && v.env != e {
			return &AlreadyRegisteredError{Name: v.name, Env: v.env.name}
		}
		e.objects = append(e.objects, v)
		v.env = e
		return nil
	default:
		return &RegistrationError{Instance: instance}
	}
}

// Deregister removes an agent or object, accepting either the instance or its
// name. A name matching an agent removes that agent; otherwise every object
// registered under the name is removed. Unknown references are ignored.
func (e *Environment) Deregister(ref any) {
	switch v := ref.(type) {
	case *Agent:
		e.deregisterAgent(v.name)
	case *Object:
		for i, obj := range e.objects {
			if obj == v {
				e.objects = append(e.objects[:i], e.objects[i+1:]...)
				v.env = nil
				return
			}
		}
	case string:
		if e.deregisterAgent(v) {
			return
		}
		e.deregisterObjects(v)
	}
}

func (e *Environment) deregisterAgent(name string) bool {
	agent, ok := e.agents[name]
	if !ok {
		return false
	}
	delete(e.agents, name)
	agent.env = nil
	return true
}

func (e *Environment) deregisterObjects(name string) {
	kept := e.objects[:0]
	for _, obj := range e.objects {
		if obj.name == name {
			obj.env = nil
			continue
		}
		kept = append(kept, obj)
	}
	e.objects = kept
}

// ActiveAgents returns the names of registered agents in sorted order.
func (e *Environment) ActiveAgents() []string {
	names := make([]string, 0, len(e.agents))
	for name := range e.agents {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ActiveObjects returns the names of registered objects in registration order.
func (e *Environment) ActiveObjects() []string {
	names := make([]string, 0, len(e.objects))
	for _, obj := range e.objects {
		names = append(names, obj.name)
	}
	return names
}

// Scheduled reports whether the agent currently has a task sequence in
// flight.
func (e *Environment) Scheduled(a *Agent) bool {
	if a == nil {
		return false
	}
	_, ok := e.scheduled[a.name]
	return ok
}

// TaskFunc is the body of a guarded task sequence.
type TaskFunc func(*kernel.Proc) error

// Schedule is the guarded entry point for task sequences. It rejects agents
// with no bound environment and agents already in the task-lock before any
// kernel interaction, then holds the lock for the lifetime of the spawned
// process. The lock is released on normal completion, on a propagated
// failure, and on a benign interruption from the kernel. Sub-tasks invoked
// directly inside a running sequence bypass this guard.
func (e *Environment) Schedule(a *Agent, fn TaskFunc) (*kernel.Proc, error) {
	if a == nil || a.env == nil || a.env != e {
		name := ""
		if a != nil {
			name = a.name
		}
		return nil, &NotRegisteredError{Agent: name}
	}
	if _, registered := e.agents[a.name]; !registered {
		return nil, &NotRegisteredError{Agent: a.name}
	}
	if _, locked := e.scheduled[a.name]; locked {
		return nil, &AlreadyScheduledError{Agent: a.name}
	}
	e.scheduled[a.name] = struct{}{}
	wrapped := func(p *kernel.Proc) error {
		defer delete(e.scheduled, a.name)
		return fn(p)
	}
	proc, err := e.kernel.Spawn(a.name, a.name, wrapped)
	if err != nil {
		delete(e.scheduled, a.name)
		return nil, err
	}
	return proc, nil
}
