// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package projsim

import (
	"fmt"

	"github.com/gammazero/deque"
)

// An UnreachableTask is a pre-flight audit warning: the named task can
// never become ready in any run, because a required capability exists in no
// in-scope resource, or because something upstream of it is itself
// unreachable. Warnings do not stop a simulation; an unreachable task
// simply never leaves not_ready and the trial ends with the horizon error.
type UnreachableTask struct {
	Task   TaskID
	Reason string
}

func (w UnreachableTask) String() string {
	return fmt.Sprintf("task %s unreachable: %s", w.Task, w.Reason)
}

// Audit performs the pre-flight reachability and capability check and
// returns one warning per unreachable task, in task definition order.
func (p *Project) Audit() []UnreachableTask {
	reg := p.reg
	n := len(reg.tasks)
	reason := make([]string, n)

	var frontier deque.Deque[int]
	mark := func(ti int, why string) {
		if reason[ti] != "" {
			return
		}
		reason[ti] = why
		frontier.PushBack(ti)
	}

	for ti := range reg.tasks {
		if tag, ok := p.missingCapability(ti); ok {
			mark(ti, fmt.Sprintf("no resource provides capability %q", tag))
		}
	}

	for frontier.Len() > 0 {
		u := frontier.PopFront()
		for _, s := range reg.succs[u] {
			mark(s, fmt.Sprintf("predecessor %s is unreachable", reg.tasks[u].ID))
		}
		for _, ci := range reg.taskOutputs[u] {
			for ti := range reg.tasks {
				for _, in := range reg.taskInputs[ti] {
					if in == ci {
						mark(ti, fmt.Sprintf("required component %s has an unreachable producer", reg.comps[ci].ID))
					}
				}
			}
		}
	}

	var out []UnreachableTask
	for ti := range reg.tasks {
		if reason[ti] != "" {
			out = append(out, UnreachableTask{Task: reg.tasks[ti].ID, Reason: reason[ti]})
		}
	}
	return out
}

// missingCapability returns the first required capability tag no in-scope
// resource offers. Calendars are ignored: a resource that is sometimes
// absent still makes the capability reachable.
func (p *Project) missingCapability(ti int) (string, bool) {
	reg := p.reg
	task := &reg.tasks[ti]

	scope := make([]int, 0, len(reg.resources))
	if task.Team != "" {
		scope = reg.teamMembers[reg.teamIdx[task.Team]]
	} else {
		for ri := range reg.resources {
			scope = append(scope, ri)
		}
	}

	for _, tag := range task.Requires {
		found := false
		for _, ri := range scope {
			if _, ok := reg.resources[ri].Skills[tag]; ok {
				found = true
				break
			}
		}
		if !found {
			return tag, true
		}
	}
	return "", false
}
