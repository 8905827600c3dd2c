// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package projsim

// TeamID identifies a [Team] within a project.
type TeamID string

// A Team is a named group of resources used as an allocation scope: a task
// whose Team field is set may only be served by members of that team. Teams
// hold member identifiers, not the resources themselves, so a resource may
// belong to any number of teams.
type Team struct {
	ID      TeamID
	Name    string
	Members []ResourceID
}

func (t *Team) String() string {
	if t.Name != "" {
		return t.Name
	}
	return string(t.ID)
}
