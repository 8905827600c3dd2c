// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package projsim

import "fmt"

// ResourceID identifies a [Resource] within a project.
type ResourceID string

// ResourceState is the availability state of a resource during simulation.
type ResourceState int

const (
	ResourceIdle ResourceState = iota
	ResourceWorking
	ResourceAbsent
)

func (s ResourceState) String() string {
	switch s {
	case ResourceIdle:
		return "idle"
	case ResourceWorking:
		return "working"
	case ResourceAbsent:
		return "absent"
	default:
		return fmt.Sprintf("ResourceState(%d)", int(s))
	}
}

// A Skill is a capability a resource offers. Mean is the integer work amount
// the resource contributes per step when assigned through this capability.
// SD adds normal noise to that output when the project runs in
// [DurationVariableDaily] mode; it is ignored otherwise.
type Skill struct {
	Mean int
	SD   float64
}

// An Absence is an inclusive range of steps during which a resource is
// unavailable.
type Absence struct {
	From int
	To   int
}

// A Calendar is the set of absences for one resource.
type Calendar []Absence

// Absent reports whether the calendar marks step t as unavailable.
func (c Calendar) Absent(t int) bool {
	for _, a := range c {
		if t >= a.From && t <= a.To {
			return true
		}
	}
	return false
}

// A Resource is an executor with a capability set and an availability
// calendar. Capacity is the number of tasks it can serve concurrently,
// almost always one. Resources are owned by the project registry; tasks and
// teams refer to them by identifier only.
type Resource struct {
	ID       ResourceID
	Name     string
	Capacity int
	Skills   map[string]Skill
	Calendar Calendar
}

func (r *Resource) String() string {
	if r.Name != "" {
		return r.Name
	}
	return string(r.ID)
}

// capacity returns the effective concurrency limit, defaulting to one.
func (r *Resource) capacity() int {
	if r.Capacity <= 0 {
		return 1
	}
	return r.Capacity
}

// output returns the per-step work amount the resource contributes through
// the given capability tag, defaulting to one unit for listed skills with a
// zero mean.
func (r *Resource) output(tag string) int {
	s, ok := r.Skills[tag]
	if !ok || s.Mean <= 0 {
		return 1
	}
	return s.Mean
}
