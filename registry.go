// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package projsim

import (
	"fmt"
	"slices"

	"github.com/gammazero/deque"
)

// registry holds the canonical entity collections and every derived index
// the engine needs. All cross-references inside the registry are integer
// indices into these slices; identifiers appear only at the API boundary.
type registry struct {
	tasks   []Task
	taskIdx map[TaskID]int
	taskWF  []int // workflow index per task

	workflows []Workflow

	preds [][]int
	succs [][]int

	topoOrder   []int
	topoRank    []int
	descendants []int
	plannedDur  []int
	slack       []int

	resources []Resource
	resIdx    map[ResourceID]int

	teams       []Team
	teamIdx     map[TeamID]int
	teamMembers [][]int

	comps      []Component
	compIdx    map[ComponentID]int
	producedBy [][]int // per component: producing task indices

	taskInputs  [][]int // per task: required component indices
	taskOutputs [][]int // per task: produced component indices
}

func buildRegistry(workflows []Workflow, resources []Resource, teams []Team, components []Component) (*registry, error) {
	reg := &registry{
		workflows: workflows,
		taskIdx:   make(map[TaskID]int),
		resIdx:    make(map[ResourceID]int),
		teamIdx:   make(map[TeamID]int),
		compIdx:   make(map[ComponentID]int),
	}

	for wi, wf := range workflows {
		for _, t := range wf.Tasks {
			if _, dup := reg.taskIdx[t.ID]; dup {
				return nil, fmt.Errorf("duplicate task id %s", t.ID)
			}
			reg.taskIdx[t.ID] = len(reg.tasks)
			reg.tasks = append(reg.tasks, t)
			reg.taskWF = append(reg.taskWF, wi)
		}
	}
	if len(reg.tasks) == 0 {
		return nil, ErrNoTasks
	}

	for _, r := range resources {
		if _, dup := reg.resIdx[r.ID]; dup {
			return nil, fmt.Errorf("duplicate resource id %s", r.ID)
		}
		reg.resIdx[r.ID] = len(reg.resources)
		reg.resources = append(reg.resources, r)
	}

	for _, c := range components {
		if _, dup := reg.compIdx[c.ID]; dup {
			return nil, fmt.Errorf("duplicate component id %s", c.ID)
		}
		reg.compIdx[c.ID] = len(reg.comps)
		reg.comps = append(reg.comps, c)
	}

	for _, tm := range teams {
		if _, dup := reg.teamIdx[tm.ID]; dup {
			return nil, fmt.Errorf("duplicate team id %s", tm.ID)
		}
		members := make([]int, 0, len(tm.Members))
		for _, m := range tm.Members {
			ri, ok := reg.resIdx[m]
			if !ok {
				return nil, fmt.Errorf("team %s: unknown member resource %s", tm.ID, m)
			}
			members = append(members, ri)
		}
		reg.teamIdx[tm.ID] = len(reg.teams)
		reg.teams = append(reg.teams, tm)
		reg.teamMembers = append(reg.teamMembers, members)
	}

	if err := reg.buildEdges(); err != nil {
		return nil, err
	}
	if err := reg.buildComponents(); err != nil {
		return nil, err
	}
	if err := reg.sortTopologically(); err != nil {
		return nil, err
	}
	reg.countDescendants()
	reg.computePlannedSlack()
	return reg, nil
}

func (reg *registry) buildEdges() error {
	n := len(reg.tasks)
	reg.preds = make([][]int, n)
	reg.succs = make([][]int, n)
	for i := range reg.tasks {
		t := &reg.tasks[i]
		if t.Team != "" {
			if _, ok := reg.teamIdx[t.Team]; !ok {
				return fmt.Errorf("task %s: unknown team %s", t.ID, t.Team)
			}
		}
		for _, pid := range t.Predecessors {
			pi, ok := reg.taskIdx[pid]
			if !ok {
				return fmt.Errorf("task %s: unknown predecessor %s", t.ID, pid)
			}
			if reg.taskWF[pi] != reg.taskWF[i] {
				return fmt.Errorf("task %s: predecessor %s belongs to a different workflow", t.ID, pid)
			}
			reg.preds[i] = append(reg.preds[i], pi)
			reg.succs[pi] = append(reg.succs[pi], i)
		}
	}
	return nil
}

func (reg *registry) buildComponents() error {
	reg.producedBy = make([][]int, len(reg.comps))
	reg.taskInputs = make([][]int, len(reg.tasks))
	reg.taskOutputs = make([][]int, len(reg.tasks))
	for i := range reg.tasks {
		t := &reg.tasks[i]
		for _, cid := range t.Inputs {
			ci, ok := reg.compIdx[cid]
			if !ok {
				return fmt.Errorf("task %s: unknown input component %s", t.ID, cid)
			}
			reg.taskInputs[i] = append(reg.taskInputs[i], ci)
		}
		for _, cid := range t.Outputs {
			ci, ok := reg.compIdx[cid]
			if !ok {
				return fmt.Errorf("task %s: unknown output component %s", t.ID, cid)
			}
			reg.taskOutputs[i] = append(reg.taskOutputs[i], ci)
			reg.producedBy[ci] = append(reg.producedBy[ci], i)
		}
	}
	return nil
}

// sortTopologically computes a deterministic topological order using Kahn's
// algorithm with a FIFO frontier, breaking ties within a wave by task
// identifier. Any leftover task indicates a precedence cycle.
func (reg *registry) sortTopologically() error {
	n := len(reg.tasks)
	indegree := make([]int, n)
	for i := range reg.tasks {
		indegree[i] = len(reg.preds[i])
	}

	wave := make([]int, 0, n)
	for i := range reg.tasks {
		if indegree[i] == 0 {
			wave = append(wave, i)
		}
	}
	reg.sortByID(wave)

	var frontier deque.Deque[int]
	for _, i := range wave {
		frontier.PushBack(i)
	}

	reg.topoOrder = make([]int, 0, n)
	reg.topoRank = make([]int, n)
	for frontier.Len() > 0 {
		i := frontier.PopFront()
		reg.topoRank[i] = len(reg.topoOrder)
		reg.topoOrder = append(reg.topoOrder, i)
		wave = wave[:0]
		for _, s := range reg.succs[i] {
			indegree[s]--
			if indegree[s] == 0 {
				wave = append(wave, s)
			}
		}
		reg.sortByID(wave)
		for _, s := range wave {
			frontier.PushBack(s)
		}
	}

	if len(reg.topoOrder) == n {
		return nil
	}

	// Report the cycle against the first workflow that contains one.
	byWF := make(map[int][]TaskID)
	minWF := len(reg.workflows)
	for i := range reg.tasks {
		if indegree[i] > 0 {
			wi := reg.taskWF[i]
			byWF[wi] = append(byWF[wi], reg.tasks[i].ID)
			minWF = min(minWF, wi)
		}
	}
	ids := byWF[minWF]
	slices.Sort(ids)
	return &CyclicWorkflowError{Workflow: reg.workflows[minWF].ID, Tasks: ids}
}

func (reg *registry) sortByID(idxs []int) {
	slices.SortFunc(idxs, func(a, b int) int {
		return compareIDs(reg.tasks[a].ID, reg.tasks[b].ID)
	})
}

func compareIDs(a, b TaskID) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// countDescendants computes, for every task, how many distinct tasks are
// reachable downstream of it. Used by [PolicyMostSuccessors].
func (reg *registry) countDescendants() {
	n := len(reg.tasks)
	reg.descendants = make([]int, n)
	for i := range reg.tasks {
		seen := make([]bool, n)
		var frontier deque.Deque[int]
		frontier.PushBack(i)
		count := 0
		for frontier.Len() > 0 {
			u := frontier.PopFront()
			for _, v := range reg.succs[u] {
				if !seen[v] {
					seen[v] = true
					count++
					frontier.PushBack(v)
				}
			}
		}
		reg.descendants[i] = count
	}
}

// computePlannedSlack runs the planned-duration PERT passes once at build
// time. The resulting slack values drive [PolicyMinSlack].
func (reg *registry) computePlannedSlack() {
	reg.plannedDur = make([]int, len(reg.tasks))
	for i := range reg.tasks {
		reg.plannedDur[i] = reg.tasks[i].Duration.planned()
	}
	es, _, ls, _, _ := reg.pertFromDurations(reg.plannedDur)
	reg.slack = make([]int, len(reg.tasks))
	for i := range reg.tasks {
		reg.slack[i] = ls[i] - es[i]
	}
}
