// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package projsim_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/projsim/projsim"
)

// buildProject wraps a single workflow with the given tasks into a
// validated project.
func buildProject(t *testing.T, tasks []projsim.Task, resources []projsim.Resource, cfg projsim.Config) *projsim.Project {
	t.Helper()
	p, err := projsim.NewProject(
		[]projsim.Workflow{{ID: "wf", Name: "workflow", Tasks: tasks}},
		resources, nil, nil, cfg)
	require.NoError(t, err)
	return p
}

func worker(id string, tags ...string) projsim.Resource {
	skills := make(map[string]projsim.Skill, len(tags))
	for _, tag := range tags {
		skills[tag] = projsim.Skill{Mean: 1}
	}
	return projsim.Resource{ID: projsim.ResourceID(id), Name: id, Skills: skills}
}

func runOne(t *testing.T, p *projsim.Project) projsim.TrialResult {
	t.Helper()
	results, err := projsim.Run(context.Background(), p, 1)
	require.NoError(t, err)
	require.Len(t, results.Trials, 1)
	return results.Trials[0]
}

func TestSequentialDependentTasks(t *testing.T) {
	chk := require.New(t)

	p := buildProject(t,
		[]projsim.Task{
			{ID: "A", Duration: projsim.Fixed(3), Requires: []string{"build"}},
			{ID: "B", Duration: projsim.Fixed(2), Requires: []string{"build"}, Predecessors: []projsim.TaskID{"A"}},
		},
		[]projsim.Resource{worker("r1", "build")},
		projsim.Config{Horizon: 10},
	)

	tr := runOne(t, p)
	chk.True(tr.Completed)
	chk.Equal(5, tr.Duration)

	chk.Equal([]projsim.Entry{
		{Step: 1, Event: projsim.EventReady, Task: "A"},
		{Step: 1, Event: projsim.EventAssigned, Task: "A", Resource: "r1"},
		{Step: 1, Event: projsim.EventStarted, Task: "A"},
		{Step: 3, Event: projsim.EventFinished, Task: "A"},
		{Step: 3, Event: projsim.EventReleased, Task: "A", Resource: "r1"},
		{Step: 4, Event: projsim.EventReady, Task: "B"},
		{Step: 4, Event: projsim.EventAssigned, Task: "B", Resource: "r1"},
		{Step: 4, Event: projsim.EventStarted, Task: "B"},
		{Step: 5, Event: projsim.EventFinished, Task: "B"},
		{Step: 5, Event: projsim.EventReleased, Task: "B", Resource: "r1"},
	}, tr.Log.Entries())

	chk.Equal([]projsim.TaskID{"A", "B"}, tr.Critical.CriticalPath)
	for _, timing := range tr.Critical.Timings {
		chk.Zero(timing.Float, "task %s", timing.Task)
	}

	chk.Len(tr.Utilization, 1)
	chk.Equal(5, tr.Utilization[0].Busy)
	chk.Equal(5, tr.Utilization[0].Steps)
	chk.InDelta(1.0, tr.Utilization[0].Rate(), 1e-9)
}

func TestIndependentTasksShareOneResource(t *testing.T) {
	tasks := []projsim.Task{
		{ID: "A", Duration: projsim.Fixed(5), Requires: []string{"build"}},
		{ID: "B", Duration: projsim.Fixed(2), Requires: []string{"build"}},
	}

	t.Run("topological prioritizes A", func(t *testing.T) {
		chk := require.New(t)
		p := buildProject(t, tasks, []projsim.Resource{worker("r1", "build")},
			projsim.Config{Horizon: 20, Policy: projsim.PolicyTopological})
		tr := runOne(t, p)
		chk.Equal(7, tr.Duration)
		// A occupies steps 1-5, B steps 6-7; B finishes last and is critical.
		chk.Equal([]projsim.TaskID{"B"}, tr.Critical.CriticalPath)
		timing, ok := tr.Critical.Timing("A")
		chk.True(ok)
		chk.Equal(2, timing.Float)
	})

	t.Run("shortest-first prioritizes B", func(t *testing.T) {
		chk := require.New(t)
		p := buildProject(t, tasks, []projsim.Resource{worker("r1", "build")},
			projsim.Config{Horizon: 20, Policy: projsim.PolicyShortestFirst})
		tr := runOne(t, p)
		chk.Equal(7, tr.Duration)
		// B occupies steps 1-2, A steps 3-7; now A is critical.
		chk.Equal([]projsim.TaskID{"A"}, tr.Critical.CriticalPath)
		timing, ok := tr.Critical.Timing("B")
		chk.True(ok)
		chk.Equal(5, timing.Float)
	})
}

func TestAbsencePausesAndResumes(t *testing.T) {
	chk := require.New(t)

	res := worker("r1", "build")
	res.Calendar = projsim.Calendar{{From: 2, To: 2}}
	p := buildProject(t,
		[]projsim.Task{{ID: "A", Duration: projsim.Fixed(3), Requires: []string{"build"}}},
		[]projsim.Resource{res},
		projsim.Config{Horizon: 10},
	)

	tr := runOne(t, p)
	chk.True(tr.Completed)
	chk.Equal(4, tr.Duration)
	chk.Equal([]projsim.Entry{
		{Step: 1, Event: projsim.EventReady, Task: "A"},
		{Step: 1, Event: projsim.EventAssigned, Task: "A", Resource: "r1"},
		{Step: 1, Event: projsim.EventStarted, Task: "A"},
		{Step: 2, Event: projsim.EventAbsent, Resource: "r1"},
		{Step: 2, Event: projsim.EventPaused, Task: "A", Resource: "r1"},
		{Step: 3, Event: projsim.EventReturned, Resource: "r1"},
		{Step: 3, Event: projsim.EventAssigned, Task: "A", Resource: "r1"},
		{Step: 3, Event: projsim.EventResumed, Task: "A"},
		{Step: 4, Event: projsim.EventFinished, Task: "A"},
		{Step: 4, Event: projsim.EventReleased, Task: "A", Resource: "r1"},
	}, tr.Log.Entries())

	chk.Equal([]projsim.ResourceState{
		projsim.ResourceWorking,
		projsim.ResourceAbsent,
		projsim.ResourceWorking,
		projsim.ResourceWorking,
	}, tr.Utilization[0].Series)
}

func TestAllOrNothingAssignment(t *testing.T) {
	chk := require.New(t)

	tester := worker("t1", "test")
	tester.Calendar = projsim.Calendar{{From: 1, To: 1}}
	p := buildProject(t,
		[]projsim.Task{{ID: "X", Duration: projsim.Fixed(2), Requires: []string{"design", "test"}}},
		[]projsim.Resource{worker("d1", "design"), tester},
		projsim.Config{Horizon: 10},
	)

	tr := runOne(t, p)
	chk.True(tr.Completed)

	// No partial commitment at step 1: the tester is absent, so the
	// designer must not be committed either.
	for _, e := range tr.Log.EntriesBetween(1, 1) {
		chk.NotEqual(projsim.EventAssigned, e.Event)
	}

	assigned := 0
	for _, e := range tr.Log.EntriesBetween(2, 2) {
		if e.Event == projsim.EventAssigned {
			assigned++
		}
	}
	chk.Equal(2, assigned)
	// Both resources contribute one unit each during step 2, so the
	// two-unit task finishes the same step it starts.
	chk.Equal(2, tr.Duration)
}

func TestComponentGatesReadiness(t *testing.T) {
	chk := require.New(t)

	p, err := projsim.NewProject(
		[]projsim.Workflow{{ID: "wf", Tasks: []projsim.Task{
			{ID: "make", Duration: projsim.Fixed(2), Requires: []string{"build"}, Outputs: []projsim.ComponentID{"part"}},
			{ID: "use", Duration: projsim.Fixed(3), Requires: []string{"test"}, Inputs: []projsim.ComponentID{"part"}},
		}}},
		[]projsim.Resource{worker("r1", "build"), worker("r2", "test")},
		nil,
		[]projsim.Component{{ID: "part", Name: "part"}},
		projsim.Config{Horizon: 10},
	)
	require.NoError(t, err)

	tr := runOne(t, p)
	chk.True(tr.Completed)

	entries := tr.Log.EntriesForTask("use")
	chk.Equal(projsim.EventReady, entries[0].Event)
	chk.Equal(3, entries[0].Step) // the component becomes ready when "make" finishes at step 2
	chk.Equal(5, tr.Duration)
}

func TestTaskWithoutResourceRequirements(t *testing.T) {
	chk := require.New(t)

	p := buildProject(t,
		[]projsim.Task{{ID: "milestone", Duration: projsim.Fixed(2)}},
		nil,
		projsim.Config{Horizon: 10},
	)

	tr := runOne(t, p)
	chk.True(tr.Completed)
	chk.Equal(2, tr.Duration)
	for _, e := range tr.Log.Entries() {
		chk.NotEqual(projsim.EventAssigned, e.Event)
	}
}

func TestHorizonExceededSurfacedPerTrial(t *testing.T) {
	chk := require.New(t)

	p := buildProject(t,
		[]projsim.Task{{ID: "A", Duration: projsim.Fixed(5), Requires: []string{"build"}}},
		[]projsim.Resource{worker("r1", "build")},
		projsim.Config{Horizon: 3},
	)

	results, err := projsim.Run(context.Background(), p, 2)
	chk.NoError(err) // the batch itself succeeds
	chk.Len(results.Trials, 2)
	chk.Zero(results.Completed)

	for _, tr := range results.Trials {
		var horizonErr *projsim.HorizonExceededError
		chk.True(errors.As(tr.Err, &horizonErr))
		chk.Equal(3, horizonErr.Horizon)
		chk.False(tr.Completed)
		chk.Nil(tr.Critical)
		// The log is still a valid prefix of the run.
		chk.NotZero(tr.Log.Len())
		chk.Equal(projsim.EventReady, tr.Log.Entries()[0].Event)
	}
}

func TestCancellationAtStepBoundary(t *testing.T) {
	chk := require.New(t)

	p := buildProject(t,
		[]projsim.Task{{ID: "A", Duration: projsim.Fixed(100), Requires: []string{"build"}}},
		[]projsim.Resource{worker("r1", "build")},
		projsim.Config{Horizon: 1000},
	)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := projsim.Run(ctx, p, 1)
	chk.ErrorIs(err, context.Canceled)
}

func TestStateTransitionsObservedInLogAreLegal(t *testing.T) {
	chk := require.New(t)

	res := worker("r1", "build")
	res.Calendar = projsim.Calendar{{From: 3, To: 4}}
	p := buildProject(t,
		[]projsim.Task{
			{ID: "A", Duration: projsim.Fixed(4), Requires: []string{"build"}},
			{ID: "B", Duration: projsim.Fixed(2), Requires: []string{"build"}, Predecessors: []projsim.TaskID{"A"}},
		},
		[]projsim.Resource{res},
		projsim.Config{Horizon: 20},
	)

	tr := runOne(t, p)
	chk.True(tr.Completed)
	assertLegalTransitions(t, tr.Log)
}

// assertLegalTransitions replays the log and checks that every task only
// ever moves along not_ready -> ready -> working <-> paused -> finished.
func assertLegalTransitions(t *testing.T, log *projsim.ExecutionLog) {
	t.Helper()
	chk := require.New(t)
	state := make(map[projsim.TaskID]projsim.TaskState)
	for _, e := range log.Entries() {
		if e.Task == "" {
			continue
		}
		cur, ok := state[e.Task]
		if !ok {
			cur = projsim.TaskNotReady
		}
		switch e.Event {
		case projsim.EventReady:
			chk.Equal(projsim.TaskNotReady, cur, "task %s at step %d", e.Task, e.Step)
			state[e.Task] = projsim.TaskReady
		case projsim.EventStarted:
			chk.Equal(projsim.TaskReady, cur, "task %s at step %d", e.Task, e.Step)
			state[e.Task] = projsim.TaskWorking
		case projsim.EventResumed:
			chk.Equal(projsim.TaskPaused, cur, "task %s at step %d", e.Task, e.Step)
			state[e.Task] = projsim.TaskWorking
		case projsim.EventPaused:
			chk.Equal(projsim.TaskWorking, cur, "task %s at step %d", e.Task, e.Step)
			state[e.Task] = projsim.TaskPaused
		case projsim.EventFinished:
			chk.Equal(projsim.TaskWorking, cur, "task %s at step %d", e.Task, e.Step)
			state[e.Task] = projsim.TaskFinished
		}
	}
}
