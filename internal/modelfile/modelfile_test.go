// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package modelfile_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/projsim/projsim"
	"github.com/projsim/projsim/internal/modelfile"
)

const sampleModel = `
name: widget line
config:
  horizon: 100
  seed: 7
  trials: 3
  policy: shortest-first
workflows:
  - id: wf
    tasks:
      - id: cut
        duration: {fixed: 2}
        requires: [machining]
        outputs: [blank]
      - id: polish
        duration: {dist: uniform, min: 1, max: 3}
        requires: [machining]
        after: [cut]
        inputs: [blank]
resources:
  - id: m1
    capacity: 1
    skills:
      machining: {mean: 1}
    absences:
      - {from: 4, to: 5}
teams:
  - id: shop
    members: [m1]
components:
  - id: blank
`

func writeModel(t *testing.T, text string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "project.yaml")
	require.NoError(t, os.WriteFile(path, []byte(text), 0o600))
	return path
}

func TestLoadAndRun(t *testing.T) {
	chk := require.New(t)

	p, trials, err := modelfile.Load(writeModel(t, sampleModel))
	chk.NoError(err)
	chk.Equal(3, trials)
	chk.Equal(projsim.PolicyShortestFirst, p.Config.Policy)
	chk.Equal(uint64(7), p.Config.Seed)
	chk.Len(p.Resources, 1)
	chk.Len(p.Resources[0].Calendar, 1)

	task, ok := p.Task("polish")
	chk.True(ok)
	chk.Equal(projsim.DistUniform, task.Duration.Kind)
	chk.Equal([]projsim.TaskID{"cut"}, task.Predecessors)
	chk.Equal([]projsim.ComponentID{"blank"}, task.Inputs)

	results, err := projsim.Run(context.Background(), p, trials)
	chk.NoError(err)
	chk.Equal(3, results.Completed)
}

func TestLoadRejectsBadPolicy(t *testing.T) {
	_, _, err := modelfile.Load(writeModel(t, `
config:
  policy: nonsense
workflows:
  - id: wf
    tasks:
      - id: a
        duration: {fixed: 1}
`))
	require.ErrorContains(t, err, "nonsense")
}

func TestLoadRejectsBadDistribution(t *testing.T) {
	_, _, err := modelfile.Load(writeModel(t, `
workflows:
  - id: wf
    tasks:
      - id: a
        duration: {dist: pareto}
`))
	require.ErrorContains(t, err, `unknown duration distribution "pareto"`)
}

func TestLoadMissingFile(t *testing.T) {
	_, _, err := modelfile.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.ErrorContains(t, err, "read model file")
}

func TestBuildDefaultsTrialsToOne(t *testing.T) {
	chk := require.New(t)

	m := &modelfile.Model{
		Workflows: []modelfile.WorkflowSpec{{ID: "wf", Tasks: []modelfile.TaskSpec{
			{ID: "a", Duration: modelfile.DurationSpec{Fixed: 1}},
		}}},
	}
	_, trials, err := modelfile.Build(m)
	chk.NoError(err)
	chk.Equal(1, trials)
}
