// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package projsim

// TaskTiming is the per-task output of critical-path analysis. All times
// are 1-based step numbers; Float is latest start minus earliest start.
type TaskTiming struct {
	Task           TaskID
	EarliestStart  int
	EarliestFinish int
	LatestStart    int
	LatestFinish   int
	Float          int
	OnCriticalPath bool
}

// A CriticalPathReport holds the forward/backward pass results for one
// schedule. CriticalPath lists every zero-float task in definition order;
// when several zero-float chains exist they are all included.
type CriticalPathReport struct {
	Makespan     int
	Timings      []TaskTiming
	CriticalPath []TaskID
}

// Timing returns the timing row for the given task.
func (r *CriticalPathReport) Timing(id TaskID) (TaskTiming, bool) {
	for _, t := range r.Timings {
		if t.Task == id {
			return t, true
		}
	}
	return TaskTiming{}, false
}

// PlannedCriticalPath computes the what-if critical path from planned
// durations alone, ignoring resource contention: the classic PERT forward
// and backward passes over the precedence DAG.
func (p *Project) PlannedCriticalPath() *CriticalPathReport {
	reg := p.reg
	es, ef, ls, lf, makespan := reg.pertFromDurations(reg.plannedDur)
	return reg.buildReport(es, ef, ls, lf, makespan)
}

// CriticalPathFromLog re-derives earliest and latest times from a completed
// execution log and recomputes the critical path. It returns
// [ErrIncompleteLog] if any task lacks a start or finish entry, as happens
// when a trial exceeded its horizon.
func (p *Project) CriticalPathFromLog(log *ExecutionLog) (*CriticalPathReport, error) {
	reg := p.reg
	starts := make([]int, len(reg.tasks))
	finishes := make([]int, len(reg.tasks))
	for _, e := range log.Entries() {
		i, ok := reg.taskIdx[e.Task]
		if !ok {
			continue
		}
		switch e.Event {
		case EventStarted:
			starts[i] = e.Step
		case EventFinished:
			finishes[i] = e.Step
		}
	}
	for i := range reg.tasks {
		if starts[i] == 0 || finishes[i] == 0 {
			return nil, ErrIncompleteLog
		}
	}
	return reg.criticalFromSchedule(starts, finishes), nil
}

// criticalFromSchedule runs the backward pass over an executed schedule.
// Earliest times are the actual logged times; latest times are derived from
// the project finish so that float measures how far a task could slip by
// precedence alone without extending the executed makespan.
func (reg *registry) criticalFromSchedule(starts, finishes []int) *CriticalPathReport {
	n := len(reg.tasks)
	makespan := 0
	for i := range n {
		makespan = max(makespan, finishes[i])
	}

	ls := make([]int, n)
	lf := make([]int, n)
	for k := n - 1; k >= 0; k-- {
		i := reg.topoOrder[k]
		if len(reg.succs[i]) == 0 {
			lf[i] = makespan
		} else {
			lf[i] = ls[reg.succs[i][0]] - 1
			for _, s := range reg.succs[i][1:] {
				lf[i] = min(lf[i], ls[s]-1)
			}
		}
		ls[i] = lf[i] - (finishes[i] - starts[i])
	}
	return reg.buildReport(starts, finishes, ls, lf, makespan)
}

// pertFromDurations runs the forward and backward PERT passes over the
// precedence DAG for the given per-task durations. A zero duration is
// treated as one step, matching how the engine executes zero-work tasks.
func (reg *registry) pertFromDurations(durs []int) (es, ef, ls, lf []int, makespan int) {
	n := len(reg.tasks)
	es = make([]int, n)
	ef = make([]int, n)
	ls = make([]int, n)
	lf = make([]int, n)

	dur := func(i int) int {
		return max(durs[i], 1)
	}

	for _, i := range reg.topoOrder {
		es[i] = 1
		for _, p := range reg.preds[i] {
			es[i] = max(es[i], ef[p]+1)
		}
		ef[i] = es[i] + dur(i) - 1
		makespan = max(makespan, ef[i])
	}

	for k := n - 1; k >= 0; k-- {
		i := reg.topoOrder[k]
		if len(reg.succs[i]) == 0 {
			lf[i] = makespan
		} else {
			lf[i] = ls[reg.succs[i][0]] - 1
			for _, s := range reg.succs[i][1:] {
				lf[i] = min(lf[i], ls[s]-1)
			}
		}
		ls[i] = lf[i] - dur(i) + 1
	}
	return es, ef, ls, lf, makespan
}

func (reg *registry) buildReport(es, ef, ls, lf []int, makespan int) *CriticalPathReport {
	rep := &CriticalPathReport{
		Makespan: makespan,
		Timings:  make([]TaskTiming, len(reg.tasks)),
	}
	for i := range reg.tasks {
		fl := ls[i] - es[i]
		rep.Timings[i] = TaskTiming{
			Task:           reg.tasks[i].ID,
			EarliestStart:  es[i],
			EarliestFinish: ef[i],
			LatestStart:    ls[i],
			LatestFinish:   lf[i],
			Float:          fl,
			OnCriticalPath: fl == 0,
		}
		if fl == 0 {
			rep.CriticalPath = append(rep.CriticalPath, reg.tasks[i].ID)
		}
	}
	return rep
}
