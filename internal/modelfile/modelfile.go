// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

// Package modelfile loads project definitions from YAML model files for the
// projsim command-line tool. The library itself is file-format agnostic;
// everything here converts declarative specs into [projsim] entities.
package modelfile

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/projsim/projsim"
)

// Model is the top-level schema of a model file.
type Model struct {
	Name       string
	Config     ConfigSpec
	Workflows  []WorkflowSpec
	Resources  []ResourceSpec
	Teams      []TeamSpec
	Components []ComponentSpec
}

// ConfigSpec mirrors [projsim.Config] plus the trial count.
type ConfigSpec struct {
	Horizon        int
	StepSize       int `mapstructure:"step_size"`
	Policy         string
	Seed           uint64
	Trials         int
	DurationMode   string `mapstructure:"duration_mode"`
	RejectNegative bool   `mapstructure:"reject_negative"`
	Parallelism    int
}

// DurationSpec is either {fixed: N} or {dist: normal|uniform|triangular,
// mean/sd/min/max/mode: ...}.
type DurationSpec struct {
	Fixed int
	Dist  string
	Mean  float64
	SD    float64
	Min   float64
	Max   float64
	Mode  float64
}

type WorkflowSpec struct {
	ID    string
	Name  string
	Tasks []TaskSpec
}

type TaskSpec struct {
	ID       string
	Name     string
	Duration DurationSpec
	After    []string
	Requires []string
	Team     string
	Inputs   []string
	Outputs  []string
}

type SkillSpec struct {
	Mean int
	SD   float64
}

type AbsenceSpec struct {
	From int
	To   int
}

type ResourceSpec struct {
	ID       string
	Name     string
	Capacity int
	Skills   map[string]SkillSpec
	Absences []AbsenceSpec
}

type TeamSpec struct {
	ID      string
	Name    string
	Members []string
}

type ComponentSpec struct {
	ID   string
	Name string
}

// Load reads a model file and builds the validated project. It returns the
// project and the configured trial count (at least one).
func Load(path string) (*projsim.Project, int, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, 0, fmt.Errorf("read model file: %w", err)
	}
	var m Model
	if err := v.Unmarshal(&m); err != nil {
		return nil, 0, fmt.Errorf("decode model file: %w", err)
	}
	return Build(&m)
}

// Build converts a decoded model into a validated [projsim.Project].
func Build(m *Model) (*projsim.Project, int, error) {
	policy, err := projsim.ParsePolicy(m.Config.Policy)
	if err != nil {
		return nil, 0, err
	}
	mode, err := projsim.ParseDurationMode(m.Config.DurationMode)
	if err != nil {
		return nil, 0, err
	}

	cfg := projsim.Config{
		Horizon:      m.Config.Horizon,
		StepSize:     m.Config.StepSize,
		Policy:       policy,
		Seed:         m.Config.Seed,
		DurationMode: mode,
		Parallelism:  m.Config.Parallelism,
	}
	if m.Config.RejectNegative {
		cfg.NegativeSample = projsim.NegativeReject
	}

	workflows := make([]projsim.Workflow, len(m.Workflows))
	for i, ws := range m.Workflows {
		tasks := make([]projsim.Task, len(ws.Tasks))
		for j, ts := range ws.Tasks {
			dur, err := buildDuration(ts)
			if err != nil {
				return nil, 0, err
			}
			tasks[j] = projsim.Task{
				ID:           projsim.TaskID(ts.ID),
				Name:         ts.Name,
				Duration:     dur,
				Predecessors: mapIDs[projsim.TaskID](ts.After),
				Requires:     ts.Requires,
				Team:         projsim.TeamID(ts.Team),
				Inputs:       mapIDs[projsim.ComponentID](ts.Inputs),
				Outputs:      mapIDs[projsim.ComponentID](ts.Outputs),
			}
		}
		workflows[i] = projsim.Workflow{
			ID:    projsim.WorkflowID(ws.ID),
			Name:  ws.Name,
			Tasks: tasks,
		}
	}

	resources := make([]projsim.Resource, len(m.Resources))
	for i, rs := range m.Resources {
		skills := make(map[string]projsim.Skill, len(rs.Skills))
		for tag, sk := range rs.Skills {
			skills[tag] = projsim.Skill{Mean: sk.Mean, SD: sk.SD}
		}
		cal := make(projsim.Calendar, len(rs.Absences))
		for j, a := range rs.Absences {
			cal[j] = projsim.Absence{From: a.From, To: a.To}
		}
		resources[i] = projsim.Resource{
			ID:       projsim.ResourceID(rs.ID),
			Name:     rs.Name,
			Capacity: rs.Capacity,
			Skills:   skills,
			Calendar: cal,
		}
	}

	teams := make([]projsim.Team, len(m.Teams))
	for i, ts := range m.Teams {
		teams[i] = projsim.Team{
			ID:      projsim.TeamID(ts.ID),
			Name:    ts.Name,
			Members: mapIDs[projsim.ResourceID](ts.Members),
		}
	}

	components := make([]projsim.Component, len(m.Components))
	for i, cs := range m.Components {
		components[i] = projsim.Component{
			ID:   projsim.ComponentID(cs.ID),
			Name: cs.Name,
		}
	}

	project, err := projsim.NewProject(workflows, resources, teams, components, cfg)
	if err != nil {
		return nil, 0, err
	}
	trials := max(m.Config.Trials, 1)
	return project, trials, nil
}

func buildDuration(ts TaskSpec) (projsim.DurationSpec, error) {
	d := ts.Duration
	switch d.Dist {
	case "":
		return projsim.Fixed(d.Fixed), nil
	case "normal":
		return projsim.NormalDist(d.Mean, d.SD), nil
	case "uniform":
		return projsim.UniformDist(d.Min, d.Max), nil
	case "triangular":
		return projsim.TriangularDist(d.Min, d.Mode, d.Max), nil
	default:
		return projsim.DurationSpec{}, fmt.Errorf("task %s: unknown duration distribution %q", ts.ID, d.Dist)
	}
}

func mapIDs[T ~string](in []string) []T {
	if len(in) == 0 {
		return nil
	}
	out := make([]T, len(in))
	for i, s := range in {
		out[i] = T(s)
	}
	return out
}
