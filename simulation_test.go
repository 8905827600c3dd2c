// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package projsim_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/projsim/projsim"
	"github.com/projsim/projsim/internal/gen"
)

// TestBySimulation draws random acyclic projects and checks the structural
// invariants that must hold for every schedule the engine can produce.
func TestBySimulation(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		chk := require.New(t)

		p, err := gen.Project(t, gen.Default)
		chk.NoError(err)

		ctx := context.Background()
		results, err := projsim.Run(ctx, p, 2)
		chk.NoError(err)

		// The drawn horizon always admits a serialized schedule.
		chk.Equal(len(results.Trials), results.Completed)

		for _, tr := range results.Trials {
			checkTransitionsLegal(chk, tr.Log)
			checkPredecessorOrdering(chk, p, tr.Log)
			checkSpansMatchDurations(chk, p, tr)

			rederived, err := p.CriticalPathFromLog(tr.Log)
			chk.NoError(err)
			chk.Equal(tr.Critical, rederived)
			chk.NotEmpty(tr.Critical.CriticalPath)
		}

		// Rerunning the same project replays the same trials byte for byte.
		again, err := projsim.Run(ctx, p, 2)
		chk.NoError(err)
		for i := range results.Trials {
			chk.Equal(results.Trials[i].Log.Bytes(), again.Trials[i].Log.Bytes(), "trial %d", i)
		}
	})
}

// checkTransitionsLegal replays the log against the task lifecycle.
func checkTransitionsLegal(chk *require.Assertions, log *projsim.ExecutionLog) {
	state := make(map[projsim.TaskID]projsim.TaskState)
	for _, e := range log.Entries() {
		var to projsim.TaskState
		switch e.Event {
		case projsim.EventReady:
			to = projsim.TaskReady
		case projsim.EventStarted, projsim.EventResumed:
			to = projsim.TaskWorking
		case projsim.EventPaused:
			to = projsim.TaskPaused
		case projsim.EventFinished:
			to = projsim.TaskFinished
		default:
			continue
		}
		cur, ok := state[e.Task]
		if !ok {
			cur = projsim.TaskNotReady
		}
		chk.True(projsim.ValidTaskTransition(cur, to),
			"task %s at step %d: %s -> %s", e.Task, e.Step, cur, to)
		if e.Event == projsim.EventStarted {
			chk.Equal(projsim.TaskReady, cur, "task %s at step %d", e.Task, e.Step)
		}
		if e.Event == projsim.EventResumed {
			chk.Equal(projsim.TaskPaused, cur, "task %s at step %d", e.Task, e.Step)
		}
		state[e.Task] = to
	}
	for id, st := range state {
		chk.Equal(projsim.TaskFinished, st, "task %s left in %s", id, st)
	}
}

// checkPredecessorOrdering verifies that no task starts until the step after
// each of its predecessors finished.
func checkPredecessorOrdering(chk *require.Assertions, p *projsim.Project, log *projsim.ExecutionLog) {
	started := make(map[projsim.TaskID]int)
	finished := make(map[projsim.TaskID]int)
	for _, e := range log.Entries() {
		switch e.Event {
		case projsim.EventStarted:
			started[e.Task] = e.Step
		case projsim.EventFinished:
			finished[e.Task] = e.Step
		}
	}
	for _, id := range p.TaskIDs() {
		task, ok := p.Task(id)
		chk.True(ok)
		for _, pred := range task.Predecessors {
			chk.Greater(started[id], finished[pred],
				"task %s started at %d but predecessor %s finished at %d",
				id, started[id], pred, finished[pred])
		}
	}
}

// checkSpansMatchDurations verifies that with unit-output resources, fixed
// durations, and no calendars, each task works for exactly its duration in
// contiguous steps, and that the critical-path timings mirror the log.
func checkSpansMatchDurations(chk *require.Assertions, p *projsim.Project, tr projsim.TrialResult) {
	starts := make(map[projsim.TaskID]int)
	for _, e := range tr.Log.Entries() {
		switch e.Event {
		case projsim.EventStarted:
			starts[e.Task] = e.Step
		case projsim.EventFinished:
			task, ok := p.Task(e.Task)
			chk.True(ok)
			chk.Equal(projsim.DistFixed, task.Duration.Kind)
			chk.Equal(task.Duration.Value, e.Step-starts[e.Task]+1, "task %s", e.Task)

			timing, ok := tr.Critical.Timing(e.Task)
			chk.True(ok)
			chk.Equal(starts[e.Task], timing.EarliestStart, "task %s", e.Task)
			chk.Equal(e.Step, timing.EarliestFinish, "task %s", e.Task)
		}
	}
}
