// Package scenario loads declarative simulation scenarios from YAML and runs
// them: a state series, a set of agents, and an ordered task list per agent.
package scenario

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kingrea/tidewatch/internal/constraint"
	"github.com/kingrea/tidewatch/internal/kernel"
	"github.com/kingrea/tidewatch/internal/series"
	"github.com/kingrea/tidewatch/internal/sim"
)

// Task is one declared unit of work for an agent.
type Task struct {
	Agent       string         `yaml:"agent"`
	Name        string         `yaml:"name"`
	Duration    float64        `yaml:"duration"`
	Suspendable bool           `yaml:"suspendable"`
	Constraints map[string]any `yaml:"constraints"`
	Extra       map[string]any `yaml:"extra"`
}

// Scenario is a fully parsed scenario document.
type Scenario struct {
	Name   string   `yaml:"name"`
	State  string   `yaml:"state"`
	Agents []string `yaml:"agents"`
	Tasks  []Task   `yaml:"tasks"`

	// Series holds the resolved state data once the scenario is loaded.
	Series *series.Series `yaml:"-"`
}

// Normalized validates the scenario and applies canonical trimming.
func (s Scenario) Normalized() (Scenario, error) {
	s.Name = strings.TrimSpace(s.Name)
	if s.Name == "" {
		return Scenario{}, fmt.Errorf("scenario: name is required")
	}
	if len(s.Agents) == 0 {
		return Scenario{}, fmt.Errorf("scenario: at least one agent is required")
	}
	known := make(map[string]bool, len(s.Agents))
	for i, name := range s.Agents {
		trimmed := strings.TrimSpace(name)
		if trimmed == "" {
			return Scenario{}, fmt.Errorf("scenario: agent %d has an empty name", i)
		}
		if known[trimmed] {
			return Scenario{}, fmt.Errorf("scenario: duplicate agent %q", trimmed)
		}
		known[trimmed] = true
		s.Agents[i] = trimmed
	}
	for i, task := range s.Tasks {
		task.Agent = strings.TrimSpace(task.Agent)
		task.Name = strings.TrimSpace(task.Name)
		if task.Name == "" {
			return Scenario{}, fmt.Errorf("scenario: task %d has no name", i)
		}
		if !known[task.Agent] {
			return Scenario{}, fmt.Errorf("scenario: task %s names unknown agent %q", task.Name, task.Agent)
		}
		if task.Duration < 0 {
			return Scenario{}, fmt.Errorf("scenario: task %s has negative duration", task.Name)
		}
		s.Tasks[i] = task
	}
	return s, nil
}

// ParseYAML decodes a scenario document. The state series is not resolved
// here; Load handles file references, and callers with inline data can set
// Series directly.
func ParseYAML(data []byte) (Scenario, error) {
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Scenario{}, fmt.Errorf("scenario: decode: %w", err)
	}
	return s.Normalized()
}

// constraintSet converts the YAML constraint map of one task. Values are
// either a bare operator string ("is_true", "is_false") or a single-entry
// mapping of operator to threshold. Thresholds run through constraint.Parse,
// so non-numeric and boolean thresholds fail here rather than mid-run.
func constraintSet(raw map[string]any) (constraint.Set, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	set := constraint.Set{}
	for column, value := range raw {
		c, err := parseConstraintValue(value)
		if err != nil {
			return nil, fmt.Errorf("scenario: constraint on %s: %w", column, err)
		}
		set[column] = c
	}
	return set, nil
}

func parseConstraintValue(value any) (constraint.Constraint, error) {
	switch v := value.(type) {
	case string:
		return constraint.Parse(v, nil)
	case map[string]any:
		if len(v) != 1 {
			return constraint.Constraint{}, fmt.Errorf("expected a single operator, got %d", len(v))
		}
		for op, threshold := range v {
			return constraint.Parse(op, threshold)
		}
	}
	return constraint.Constraint{}, fmt.Errorf("unsupported constraint value %v", value)
}

// Result captures everything a finished run produced.
type Result struct {
	Scenario string
	Elapsed  float64
	Entries  []sim.Entry
	Actions  []sim.Entry
}

// Run builds an environment from the scenario, registers its agents,
// schedules one guarded task sequence per agent, and drives the kernel until
// the queue drains (or until the optional time limit). Task failures
// propagate unchanged.
func (s Scenario) Run(until float64) (Result, error) {
	env := sim.New(s.Name, sim.WithState(s.Series))
	agents := make(map[string]*sim.Agent, len(s.Agents))
	for _, name := range s.Agents {
		agent := sim.NewAgent(name)
		if err := env.Register(agent); err != nil {
			return Result{}, err
		}
		agents[name] = agent
	}
	byAgent := make(map[string][]Task, len(agents))
	for _, task := range s.Tasks {
		byAgent[task.Agent] = append(byAgent[task.Agent], task)
	}
	for _, name := range s.Agents {
		tasks := byAgent[name]
		if len(tasks) == 0 {
			continue
		}
		specs := make([]sim.TaskSpec, 0, len(tasks))
		for _, task := range tasks {
			set, err := constraintSet(task.Constraints)
			if err != nil {
				return Result{}, err
			}
			specs = append(specs, sim.TaskSpec{
				Name:        task.Name,
				Duration:    task.Duration,
				Constraints: set,
				Suspendable: task.Suspendable,
				Extra:       task.Extra,
			})
		}
		agent := agents[name]
		if _, err := env.Schedule(agent, func(p *kernel.Proc) error {
			for _, spec := range specs {
				if err := agent.Do(p, spec); err != nil {
					return err
				}
			}
			return nil
		}); err != nil {
			return Result{}, err
		}
	}
	var err error
	if until > 0 {
		err = env.RunUntil(until)
	} else {
		err = env.Run()
	}
	if err != nil {
		return Result{}, err
	}
	return Result{
		Scenario: s.Name,
		Elapsed:  env.Now(),
		Entries:  env.Logs(),
		Actions:  env.Actions(),
	}, nil
}
