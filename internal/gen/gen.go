// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

// Package gen draws randomized, always-valid projects for property-based
// tests. Predecessor edges only point at earlier tasks, so every drawn
// workflow is acyclic by construction, and every resourced task shares one
// capability tag with every resource, so no drawn project can starve.
package gen

import (
	"fmt"

	"pgregory.net/rapid"

	"github.com/projsim/projsim"
)

// Tag is the single capability shared by all drawn tasks and resources.
const Tag = "work"

type Config struct {
	MaxTasks        int
	MaxResources    int
	MaxPredecessors int
	MaxDuration     int
	// AutoProbability is the chance that a task requires no resources and
	// progresses on its own.
	AutoProbability float64
}

var Default = Config{
	MaxTasks:        8,
	MaxResources:    3,
	MaxPredecessors: 2,
	MaxDuration:     5,
	AutoProbability: 0.2,
}

// Project draws one validated project with fixed task durations. The horizon
// always admits a fully serialized schedule, so every trial completes.
func Project(t *rapid.T, cfg Config) (*projsim.Project, error) {
	taskCount := rapid.IntRange(1, cfg.MaxTasks).Draw(t, "taskCount")
	tasks := make([]projsim.Task, taskCount)
	totalDuration := 0
	for i := range tasks {
		name := fmt.Sprintf("t%02d", i)
		dur := rapid.IntRange(1, cfg.MaxDuration).Draw(t, name+".duration")
		totalDuration += dur
		task := projsim.Task{
			ID:       projsim.TaskID(name),
			Duration: projsim.Fixed(dur),
		}
		if rapid.Float64Range(0, 1).Draw(t, name+".auto") >= cfg.AutoProbability {
			task.Requires = []string{Tag}
		}
		for p := range i {
			if len(task.Predecessors) == cfg.MaxPredecessors {
				break
			}
			if rapid.Bool().Draw(t, fmt.Sprintf("%s.pred%d", name, p)) {
				task.Predecessors = append(task.Predecessors, tasks[p].ID)
			}
		}
		tasks[i] = task
	}

	resourceCount := rapid.IntRange(1, cfg.MaxResources).Draw(t, "resourceCount")
	resources := make([]projsim.Resource, resourceCount)
	for i := range resources {
		name := fmt.Sprintf("r%02d", i)
		resources[i] = projsim.Resource{
			ID:     projsim.ResourceID(name),
			Skills: map[string]projsim.Skill{Tag: {Mean: 1}},
		}
	}

	return projsim.NewProject(
		[]projsim.Workflow{{ID: "wf", Tasks: tasks}},
		resources, nil, nil,
		projsim.Config{
			Horizon: totalDuration + taskCount + 1,
			Seed:    rapid.Uint64().Draw(t, "seed"),
			Policy:  rapid.SampledFrom([]projsim.Policy{
				projsim.PolicyTopological,
				projsim.PolicyShortestFirst,
				projsim.PolicyMostSuccessors,
				projsim.PolicyMinSlack,
			}).Draw(t, "policy"),
		})
}
