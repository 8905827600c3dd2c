// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package projsim

import (
	"cmp"
	"fmt"
	"slices"
)

// A Policy selects the order in which allocation candidates (ready and
// paused tasks) are offered resources each step. Every policy breaks ties
// by task identifier so that a trial's schedule is fully reproducible.
type Policy int

const (
	// PolicyTopological considers tasks in topological wave order. This is
	// the default.
	PolicyTopological Policy = iota

	// PolicyShortestFirst considers tasks with the least remaining work
	// first.
	PolicyShortestFirst

	// PolicyMostSuccessors considers tasks with the most downstream
	// dependents first, clearing wide bottlenecks early.
	PolicyMostSuccessors

	// PolicyMinSlack considers tasks with the least planned slack
	// (latest start minus earliest start over planned durations) first.
	PolicyMinSlack
)

func (p Policy) String() string {
	switch p {
	case PolicyTopological:
		return "topological"
	case PolicyShortestFirst:
		return "shortest-first"
	case PolicyMostSuccessors:
		return "most-successors"
	case PolicyMinSlack:
		return "min-slack"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// ParsePolicy converts a configuration string to a [Policy].
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "", "topological":
		return PolicyTopological, nil
	case "shortest-first":
		return PolicyShortestFirst, nil
	case "most-successors":
		return PolicyMostSuccessors, nil
	case "min-slack":
		return PolicyMinSlack, nil
	default:
		return 0, fmt.Errorf("%w: %q", errUnknownPolicy, s)
	}
}

// order sorts candidate task indices in place according to the policy.
// remaining supplies the current remaining work per task index.
func (p Policy) order(reg *registry, remaining []int, candidates []int) {
	key := func(i int) int {
		switch p {
		case PolicyShortestFirst:
			return remaining[i]
		case PolicyMostSuccessors:
			return -reg.descendants[i]
		case PolicyMinSlack:
			return reg.slack[i]
		default:
			return reg.topoRank[i]
		}
	}
	slices.SortFunc(candidates, func(a, b int) int {
		if c := cmp.Compare(key(a), key(b)); c != 0 {
			return c
		}
		return compareIDs(reg.tasks[a].ID, reg.tasks[b].ID)
	})
}
