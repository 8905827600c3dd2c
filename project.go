// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package projsim

import (
	"log/slog"

	"github.com/google/uuid"
)

// Config carries every simulation setting. It is threaded explicitly from
// [Run] through the engine to the scheduler; there is no package-level
// state.
type Config struct {
	// Horizon is the maximum number of steps a trial may execute. A trial
	// that is not complete after Horizon steps fails with
	// [HorizonExceededError]. Defaults to 10000.
	Horizon int

	// StepSize is the external duration of one step in whatever unit the
	// caller plans in (hours, days). The engine itself always advances one
	// integer step at a time; StepSize only scales reported durations.
	// Defaults to 1.
	StepSize int

	// Policy selects the order in which ready tasks are offered resources.
	Policy Policy

	// Seed is the top-level random seed. Per-trial streams are derived
	// from it so that trials are independent yet the whole batch is
	// reproducible.
	Seed uint64

	// DurationMode selects when distribution specs are re-sampled.
	DurationMode DurationMode

	// NegativeSample selects how negative duration samples are handled.
	NegativeSample NegativeSample

	// Parallelism bounds how many trials run concurrently. Zero means
	// one worker per CPU.
	Parallelism int

	// Logger receives structured progress and warning records. Nil
	// discards them.
	Logger *slog.Logger
}

func (c Config) withDefaults() Config {
	if c.Horizon <= 0 {
		c.Horizon = 10000
	}
	if c.StepSize <= 0 {
		c.StepSize = 1
	}
	if c.Logger == nil {
		c.Logger = slog.New(slog.DiscardHandler)
	}
	return c
}

// A Project is the top-level container: its workflows, the resource and
// team registry, the component set, and the simulation configuration. The
// project owns every entity; all cross-references are identifiers resolved
// through an internal registry built at construction time.
//
// A Project is immutable once built. Each trial derives its own private
// runtime state from it, so a single Project may be simulated from many
// goroutines at once.
type Project struct {
	Workflows  []Workflow
	Resources  []Resource
	Teams      []Team
	Components []Component
	Config     Config

	reg *registry
}

// NewProject validates the supplied model and builds the entity registry.
// Empty identifiers are filled with generated UUIDs before validation.
// Construction fails with [CyclicWorkflowError] on a precedence cycle and
// with [InvalidDistributionParameters] on a malformed duration spec; broken
// identifier references fail with plain descriptive errors.
func NewProject(workflows []Workflow, resources []Resource, teams []Team, components []Component, cfg Config) (*Project, error) {
	workflows = fillWorkflowIDs(workflows)
	resources = fillResourceIDs(resources)
	teams = fillTeamIDs(teams)
	components = fillComponentIDs(components)

	reg, err := buildRegistry(workflows, resources, teams, components)
	if err != nil {
		return nil, err
	}

	for i := range reg.tasks {
		t := &reg.tasks[i]
		if err := t.Duration.validate(); err != nil {
			return nil, &InvalidDistributionParameters{Task: t.ID, Reason: err.Error()}
		}
	}

	return &Project{
		Workflows:  workflows,
		Resources:  resources,
		Teams:      teams,
		Components: components,
		Config:     cfg.withDefaults(),
		reg:        reg,
	}, nil
}

// Task returns the task definition for the given identifier.
func (p *Project) Task(id TaskID) (Task, bool) {
	i, ok := p.reg.taskIdx[id]
	if !ok {
		return Task{}, false
	}
	return p.reg.tasks[i], true
}

// TaskIDs returns every task identifier in definition order.
func (p *Project) TaskIDs() []TaskID {
	out := make([]TaskID, len(p.reg.tasks))
	for i := range p.reg.tasks {
		out[i] = p.reg.tasks[i].ID
	}
	return out
}

func fillWorkflowIDs(workflows []Workflow) []Workflow {
	out := make([]Workflow, len(workflows))
	for i, wf := range workflows {
		if wf.ID == "" {
			wf.ID = WorkflowID(uuid.NewString())
		}
		tasks := make([]Task, len(wf.Tasks))
		for j, t := range wf.Tasks {
			if t.ID == "" {
				t.ID = TaskID(uuid.NewString())
			}
			tasks[j] = t
		}
		wf.Tasks = tasks
		out[i] = wf
	}
	return out
}

func fillResourceIDs(resources []Resource) []Resource {
	out := make([]Resource, len(resources))
	for i, r := range resources {
		if r.ID == "" {
			r.ID = ResourceID(uuid.NewString())
		}
		out[i] = r
	}
	return out
}

func fillTeamIDs(teams []Team) []Team {
	out := make([]Team, len(teams))
	for i, t := range teams {
		if t.ID == "" {
			t.ID = TeamID(uuid.NewString())
		}
		out[i] = t
	}
	return out
}

func fillComponentIDs(components []Component) []Component {
	out := make([]Component, len(components))
	for i, c := range components {
		if c.ID == "" {
			c.ID = ComponentID(uuid.NewString())
		}
		out[i] = c
	}
	return out
}
