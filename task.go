// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package projsim

import "fmt"

// TaskID identifies a [Task] within a project.
type TaskID string

// WorkflowID identifies a [Workflow] within a project.
type WorkflowID string

// TaskState is the lifecycle state of a task during simulation.
//
// The only observable transitions are
// not_ready -> ready -> working <-> paused -> finished. A task never
// re-enters not_ready once it has left it, and finished is terminal.
type TaskState int

const (
	TaskNotReady TaskState = iota
	TaskReady
	TaskWorking
	TaskPaused
	TaskFinished
)

func (s TaskState) String() string {
	switch s {
	case TaskNotReady:
		return "not_ready"
	case TaskReady:
		return "ready"
	case TaskWorking:
		return "working"
	case TaskPaused:
		return "paused"
	case TaskFinished:
		return "finished"
	default:
		return fmt.Sprintf("TaskState(%d)", int(s))
	}
}

// ValidTaskTransition reports whether from -> to is a legal task transition.
// Useful for consumers replaying an [ExecutionLog].
func ValidTaskTransition(from, to TaskState) bool {
	switch from {
	case TaskNotReady:
		return to == TaskReady
	case TaskReady:
		return to == TaskWorking
	case TaskWorking:
		return to == TaskPaused || to == TaskFinished
	case TaskPaused:
		return to == TaskWorking
	default:
		return false
	}
}

// A Task is a unit of work within a [Workflow]. A task becomes ready once
// every predecessor has finished and every input component is ready; it then
// requires one idle resource per entry in Requires before it starts working.
//
// A task with an empty Requires list needs no resource at all: it starts as
// soon as it is ready and consumes one work unit per step on its own. This
// models milestones and automatic hand-offs.
type Task struct {
	ID   TaskID
	Name string

	// Duration is the task's required work amount.
	Duration DurationSpec

	// Predecessors must all be finished before this task can become ready.
	// They must belong to the same workflow.
	Predecessors []TaskID

	// Requires lists the capability tags this task needs, one resource per
	// tag. Assignment is all-or-nothing: either every tag is filled in a
	// single step or no resource is committed.
	Requires []string

	// Team optionally restricts candidate resources to members of one team.
	Team TeamID

	// Inputs are components that must be ready before the task can start;
	// Outputs are components the task contributes to producing.
	Inputs  []ComponentID
	Outputs []ComponentID
}

func (t *Task) String() string {
	if t.Name != "" {
		return t.Name
	}
	return string(t.ID)
}

// A Workflow is the precedence DAG of tasks for one project scope.
// Construction of the owning [Project] fails with [CyclicWorkflowError] if
// the tasks contain a precedence cycle.
type Workflow struct {
	ID    WorkflowID
	Name  string
	Tasks []Task
}
