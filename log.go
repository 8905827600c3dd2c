// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package projsim

import (
	"bytes"
	"fmt"
)

// EventKind classifies an execution log entry.
type EventKind int

const (
	// EventReady records a task transitioning not_ready -> ready.
	EventReady EventKind = iota
	// EventAssigned records one resource being committed to a task.
	EventAssigned
	// EventStarted records a task transitioning ready -> working.
	EventStarted
	// EventResumed records a task transitioning paused -> working.
	EventResumed
	// EventPaused records a task transitioning working -> paused because
	// the named resource became absent.
	EventPaused
	// EventFinished records a task transitioning working -> finished.
	EventFinished
	// EventReleased records one resource being returned by a task.
	EventReleased
	// EventAbsent records a resource entering a calendar absence.
	EventAbsent
	// EventReturned records a resource coming back from an absence.
	EventReturned
)

func (k EventKind) String() string {
	switch k {
	case EventReady:
		return "ready"
	case EventAssigned:
		return "assigned"
	case EventStarted:
		return "started"
	case EventResumed:
		return "resumed"
	case EventPaused:
		return "paused"
	case EventFinished:
		return "finished"
	case EventReleased:
		return "released"
	case EventAbsent:
		return "absent"
	case EventReturned:
		return "returned"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// An Entry is one immutable execution log record. Task or Resource may be
// empty when the event concerns only the other entity.
type Entry struct {
	Step     int
	Event    EventKind
	Task     TaskID
	Resource ResourceID
}

func (e Entry) String() string {
	return fmt.Sprintf("%d %s task=%s resource=%s", e.Step, e.Event, e.Task, e.Resource)
}

// An ExecutionLog is the append-only, time-indexed record of every state
// transition and resource assignment made during one trial. It is the sole
// artifact consumed by reporting collaborators; entries are never mutated or
// removed, and an aborted run leaves a valid, inspectable prefix.
type ExecutionLog struct {
	entries []Entry
}

func (l *ExecutionLog) append(e Entry) {
	l.entries = append(l.entries, e)
}

// Len returns the number of entries recorded so far.
func (l *ExecutionLog) Len() int {
	return len(l.entries)
}

// Entries returns a copy of all entries in append order.
func (l *ExecutionLog) Entries() []Entry {
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// EntriesBetween returns all entries with t0 <= Step <= t1, in append order.
func (l *ExecutionLog) EntriesBetween(t0, t1 int) []Entry {
	var out []Entry
	for _, e := range l.entries {
		if e.Step >= t0 && e.Step <= t1 {
			out = append(out, e)
		}
	}
	return out
}

// EntriesForTask returns all entries concerning the given task, in append
// order.
func (l *ExecutionLog) EntriesForTask(id TaskID) []Entry {
	var out []Entry
	for _, e := range l.entries {
		if e.Task == id {
			out = append(out, e)
		}
	}
	return out
}

// Bytes serializes the log deterministically, one entry per line. Two runs
// of the same project with the same configuration and seed produce
// byte-identical output.
func (l *ExecutionLog) Bytes() []byte {
	var buf bytes.Buffer
	for _, e := range l.entries {
		buf.WriteString(e.String())
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}
