// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package projsim

import (
	"fmt"
	"strings"
)

type constError string

func (e constError) Error() string {
	return string(e)
}

const ErrNoTasks = constError("project has no tasks")
const ErrNilProject = constError("nil project")
const ErrIncompleteLog = constError("execution log does not cover every task")

const errUnknownPolicy = constError("unknown allocation policy")
const errUnknownDurationMode = constError("unknown duration mode")

// CyclicWorkflowError reports a precedence cycle detected while building a
// [Project]. Tasks holds the identifiers of every task that could not be
// topologically ordered, sorted for stable output.
type CyclicWorkflowError struct {
	Workflow WorkflowID
	Tasks    []TaskID
}

func (e *CyclicWorkflowError) Error() string {
	ids := make([]string, len(e.Tasks))
	for i, id := range e.Tasks {
		ids[i] = string(id)
	}
	return fmt.Sprintf("workflow %s: precedence cycle involving tasks [%s]",
		e.Workflow, strings.Join(ids, ", "))
}

// InvalidDistributionParameters reports a duration specification that cannot
// produce valid work amounts, either because its parameters are malformed or
// because a sampled value was negative under [NegativeReject].
type InvalidDistributionParameters struct {
	Task   TaskID
	Reason string
}

func (e *InvalidDistributionParameters) Error() string {
	return fmt.Sprintf("task %s: invalid duration distribution: %s", e.Task, e.Reason)
}

// HorizonExceededError reports a trial that did not complete within the
// configured horizon. The trial's execution log remains a valid prefix of
// the run up to the point the horizon was reached.
type HorizonExceededError struct {
	Trial   int
	Horizon int
}

func (e *HorizonExceededError) Error() string {
	return fmt.Sprintf("trial %d: simulation exceeded horizon of %d steps", e.Trial, e.Horizon)
}
