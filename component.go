// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package projsim

// ComponentID identifies a [Component] within a project.
type ComponentID string

// A Component is a deliverable produced and consumed by tasks. Which tasks
// produce or require it is declared on the tasks themselves (Outputs and
// Inputs); the component record carries identity only. A component becomes
// ready once every task producing it has finished. A component no task
// produces is treated as a raw input and is ready from the first step.
type Component struct {
	ID   ComponentID
	Name string
}

func (c *Component) String() string {
	if c.Name != "" {
		return c.Name
	}
	return string(c.ID)
}
