// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package projsim

import (
	"cmp"

	"github.com/addrummond/heap"
)

// An assignment binds one committed resource to the capability tag it
// fills on a working task.
type assignment struct {
	tag string
	res int
}

// resourceRank orders candidate resources for selection: fewest committed
// capacity slots first (load balancing), then identifier for
// reproducibility.
type resourceRank struct {
	committed int
	id        ResourceID
	idx       int
}

func (a *resourceRank) Cmp(b *resourceRank) int {
	if c := cmp.Compare(a.committed, b.committed); c != 0 {
		return c
	}
	return cmp.Compare(a.id, b.id)
}

// allocate offers resources to the given candidate tasks, already ordered
// by the configured policy. Assignment is all-or-nothing per task: either
// every required capability tag receives a distinct resource this step, or
// the task is left untouched to be reconsidered next step. Newly assigned
// tasks transition to working and their log entries are appended in
// (task, tag) order.
func (st *simState) allocate(t int, candidates []int) {
	for _, ti := range candidates {
		task := &st.reg.tasks[ti]
		if len(task.Requires) == 0 {
			st.startTask(t, ti, nil)
			continue
		}
		picks, ok := st.matchResources(ti)
		if ok {
			st.startTask(t, ti, picks)
		}
	}
}

// matchResources tries to fill every capability tag of the task with a
// distinct eligible resource. No state is mutated unless every tag can be
// filled; a partial match commits nothing.
func (st *simState) matchResources(ti int) ([]assignment, bool) {
	task := &st.reg.tasks[ti]

	pool := st.candidateResources(task)
	used := make(map[int]bool, len(task.Requires))
	picks := make([]assignment, 0, len(task.Requires))

	for _, tag := range task.Requires {
		var h heap.Heap[resourceRank, heap.Min]
		for _, ri := range pool {
			if used[ri] || !st.eligible(ri, tag) {
				continue
			}
			heap.PushOrderable(&h, resourceRank{
				committed: st.res[ri].committed,
				id:        st.reg.resources[ri].ID,
				idx:       ri,
			})
		}
		best, ok := heap.PopOrderable(&h)
		if !ok {
			return nil, false
		}
		used[best.idx] = true
		picks = append(picks, assignment{tag: tag, res: best.idx})
	}
	return picks, true
}

// candidateResources returns the indices a task may draw from: the members
// of its team if one is set, otherwise every resource in the registry.
func (st *simState) candidateResources(task *Task) []int {
	if task.Team != "" {
		return st.reg.teamMembers[st.reg.teamIdx[task.Team]]
	}
	if st.allResources == nil {
		st.allResources = make([]int, len(st.reg.resources))
		for i := range st.allResources {
			st.allResources[i] = i
		}
	}
	return st.allResources
}

func (st *simState) eligible(ri int, tag string) bool {
	r := &st.reg.resources[ri]
	if _, ok := r.Skills[tag]; !ok {
		return false
	}
	run := &st.res[ri]
	return run.state != ResourceAbsent && run.committed < r.capacity()
}

// startTask commits the picked resources and transitions the task to
// working, logging one assigned entry per (task, resource) pair followed by
// a started or resumed entry.
func (st *simState) startTask(t, ti int, picks []assignment) {
	task := &st.reg.tasks[ti]
	run := &st.tasks[ti]

	for _, a := range picks {
		rr := &st.res[a.res]
		rr.committed++
		rr.state = ResourceWorking
		st.log.append(Entry{Step: t, Event: EventAssigned, Task: task.ID, Resource: st.reg.resources[a.res].ID})
	}

	event := EventStarted
	if run.state == TaskPaused {
		event = EventResumed
	}
	run.state = TaskWorking
	run.assigned = picks
	if run.started == 0 {
		run.started = t
	}
	st.log.append(Entry{Step: t, Event: event, Task: task.ID})
}
