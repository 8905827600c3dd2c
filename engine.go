// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package projsim

import (
	"context"
	"math"
	"math/rand/v2"
)

// taskRun is the mutable per-trial state of one task.
type taskRun struct {
	state     TaskState
	total     int
	remaining int
	started   int // step of first start, 0 if never started
	finished  int // step of finish, 0 if not finished
	assigned  []assignment
}

// resourceRun is the mutable per-trial state of one resource.
type resourceRun struct {
	state     ResourceState
	committed int
	busy      bool // contributed work during the current step
}

// simState is the complete runtime state of one trial. Each trial owns a
// private simState derived from the immutable project, so trials share no
// mutable state and may run concurrently.
type simState struct {
	reg   *registry
	cfg   Config
	trial int
	rng   *rand.Rand
	log   *ExecutionLog

	tasks     []taskRun
	res       []resourceRun
	compReady []bool

	util         [][]ResourceState // per resource: state for each executed step
	allResources []int
}

// newSimState instantiates trial state: it samples every task's total work
// from its duration spec (exactly once, per the sampled-once contract) and
// marks producerless components ready. Sampling failures under
// [NegativeReject] surface before the first step runs.
func newSimState(p *Project, trial int, rng *rand.Rand) (*simState, error) {
	reg := p.reg
	st := &simState{
		reg:       reg,
		cfg:       p.Config,
		trial:     trial,
		rng:       rng,
		log:       &ExecutionLog{},
		tasks:     make([]taskRun, len(reg.tasks)),
		res:       make([]resourceRun, len(reg.resources)),
		compReady: make([]bool, len(reg.comps)),
		util:      make([][]ResourceState, len(reg.resources)),
	}
	for i := range reg.tasks {
		total, err := sampleTotal(&reg.tasks[i], reg.tasks[i].Duration, p.Config.NegativeSample, rng)
		if err != nil {
			return nil, err
		}
		st.tasks[i] = taskRun{state: TaskNotReady, total: total, remaining: total}
	}
	for ci := range reg.comps {
		if len(reg.producedBy[ci]) == 0 {
			st.compReady[ci] = true
		}
	}
	return st, nil
}

// run executes the time-stepping loop until the workflow graph reports
// completion or the horizon is exceeded. Cancellation is honored only at
// step boundaries so that a step is never left half applied. It returns
// the makespan in steps.
func (st *simState) run(ctx context.Context) (int, error) {
	makespan := 0
	for t := 1; ; t++ {
		if st.complete() {
			return makespan, nil
		}
		if t > st.cfg.Horizon {
			return st.cfg.Horizon, &HorizonExceededError{Trial: st.trial, Horizon: st.cfg.Horizon}
		}
		if err := ctx.Err(); err != nil {
			return makespan, err
		}
		st.step(t)
		makespan = t
	}
}

func (st *simState) complete() bool {
	for i := range st.tasks {
		if st.tasks[i].state != TaskFinished {
			return false
		}
	}
	return true
}

// step executes one authoritative tick. The phase order is load-bearing:
// allocation must see the step's true availability before any work is
// consumed, and readiness must reflect only the previous step's finishes,
// so a task can never start in the step its predecessor finishes.
func (st *simState) step(t int) {
	st.applyCalendars(t)
	st.refreshReadiness(t)
	st.allocate(t, st.allocationCandidates())
	st.applyProgress(t)
	st.recordUtilization()
}

// applyCalendars transitions resources in and out of calendar absences.
// A resource going absent pre-empts every task it serves: the task pauses
// and its remaining resources are released, keeping commitments
// all-or-nothing in both directions.
func (st *simState) applyCalendars(t int) {
	for ri := range st.reg.resources {
		r := &st.reg.resources[ri]
		run := &st.res[ri]
		absent := r.Calendar.Absent(t)
		switch {
		case absent && run.state != ResourceAbsent:
			st.log.append(Entry{Step: t, Event: EventAbsent, Resource: r.ID})
			if run.committed > 0 {
				st.pauseTasksOf(t, ri)
			}
			run.state = ResourceAbsent
		case !absent && run.state == ResourceAbsent:
			run.state = ResourceIdle
			st.log.append(Entry{Step: t, Event: EventReturned, Resource: r.ID})
		}
	}
}

func (st *simState) pauseTasksOf(t, cause int) {
	for ti := range st.tasks {
		run := &st.tasks[ti]
		if run.state != TaskWorking {
			continue
		}
		hit := false
		for _, a := range run.assigned {
			if a.res == cause {
				hit = true
				break
			}
		}
		if !hit {
			continue
		}
		run.state = TaskPaused
		st.log.append(Entry{Step: t, Event: EventPaused, Task: st.reg.tasks[ti].ID, Resource: st.reg.resources[cause].ID})
		for _, a := range run.assigned {
			st.releaseResource(a.res)
			if a.res != cause {
				st.log.append(Entry{Step: t, Event: EventReleased, Task: st.reg.tasks[ti].ID, Resource: st.reg.resources[a.res].ID})
			}
		}
		run.assigned = nil
	}
}

func (st *simState) releaseResource(ri int) {
	run := &st.res[ri]
	run.committed--
	if run.committed == 0 && run.state == ResourceWorking {
		run.state = ResourceIdle
	}
}

// refreshReadiness promotes not_ready tasks whose predecessors have all
// finished and whose input components are ready.
func (st *simState) refreshReadiness(t int) {
	for ti := range st.tasks {
		run := &st.tasks[ti]
		if run.state != TaskNotReady {
			continue
		}
		if !st.predecessorsFinished(ti) || !st.inputsReady(ti) {
			continue
		}
		run.state = TaskReady
		st.log.append(Entry{Step: t, Event: EventReady, Task: st.reg.tasks[ti].ID})
	}
}

func (st *simState) predecessorsFinished(ti int) bool {
	for _, p := range st.reg.preds[ti] {
		if st.tasks[p].state != TaskFinished {
			return false
		}
	}
	return true
}

func (st *simState) inputsReady(ti int) bool {
	for _, ci := range st.reg.taskInputs[ti] {
		if !st.compReady[ci] {
			return false
		}
	}
	return true
}

// allocationCandidates returns ready and paused tasks ordered by the
// configured policy. Paused tasks take part so they can be re-assigned and
// resume.
func (st *simState) allocationCandidates() []int {
	var candidates []int
	for ti := range st.tasks {
		s := st.tasks[ti].state
		if s == TaskReady || s == TaskPaused {
			candidates = append(candidates, ti)
		}
	}
	remaining := make([]int, len(st.tasks))
	for i := range st.tasks {
		remaining[i] = st.tasks[i].remaining
	}
	st.cfg.Policy.order(st.reg, remaining, candidates)
	return candidates
}

// applyProgress consumes work on every working task, finishing those whose
// remaining work reaches zero: their resources are released and their
// produced components are marked ready for the next step's readiness pass.
func (st *simState) applyProgress(t int) {
	for ri := range st.res {
		st.res[ri].busy = false
	}
	for ti := range st.tasks {
		run := &st.tasks[ti]
		if run.state != TaskWorking {
			continue
		}
		out := st.stepOutput(ti)
		run.remaining -= min(out, run.remaining)
		for _, a := range run.assigned {
			st.res[a.res].busy = true
		}
		if run.remaining > 0 {
			continue
		}
		st.finishTask(t, ti)
	}
}

// stepOutput returns the work consumed by a working task this step: the sum
// of its assigned resources' skill outputs, or one unit for a task that
// needs no resources. In variable-daily mode each output is re-drawn from
// the skill's normal noise and clamped at zero.
func (st *simState) stepOutput(ti int) int {
	run := &st.tasks[ti]
	if len(run.assigned) == 0 {
		return 1
	}
	out := 0
	for _, a := range run.assigned {
		r := &st.reg.resources[a.res]
		base := r.output(a.tag)
		if st.cfg.DurationMode == DurationVariableDaily {
			if s, ok := r.Skills[a.tag]; ok && s.SD > 0 {
				v := st.rng.NormFloat64()*s.SD + float64(base)
				base = max(int(math.Round(v)), 0)
			}
		}
		out += base
	}
	return out
}

func (st *simState) finishTask(t, ti int) {
	run := &st.tasks[ti]
	run.state = TaskFinished
	run.finished = t
	st.log.append(Entry{Step: t, Event: EventFinished, Task: st.reg.tasks[ti].ID})
	for _, a := range run.assigned {
		st.releaseResource(a.res)
		st.log.append(Entry{Step: t, Event: EventReleased, Task: st.reg.tasks[ti].ID, Resource: st.reg.resources[a.res].ID})
	}
	run.assigned = nil

	for _, ci := range st.reg.taskOutputs[ti] {
		if st.compReady[ci] {
			continue
		}
		ready := true
		for _, producer := range st.reg.producedBy[ci] {
			if st.tasks[producer].state != TaskFinished {
				ready = false
				break
			}
		}
		st.compReady[ci] = ready
	}
}

// recordUtilization appends each resource's effective state for the step
// just executed: absent if on calendar leave, working if it contributed
// work this step, idle otherwise.
func (st *simState) recordUtilization() {
	for ri := range st.res {
		run := &st.res[ri]
		s := ResourceIdle
		switch {
		case run.state == ResourceAbsent:
			s = ResourceAbsent
		case run.busy:
			s = ResourceWorking
		}
		st.util[ri] = append(st.util[ri], s)
	}
}

// schedule returns the recorded start and finish step per task index.
func (st *simState) schedule() (starts, finishes []int) {
	starts = make([]int, len(st.tasks))
	finishes = make([]int, len(st.tasks))
	for i := range st.tasks {
		starts[i] = st.tasks[i].started
		finishes[i] = st.tasks[i].finished
	}
	return starts, finishes
}
