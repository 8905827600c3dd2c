// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package cmd

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/projsim/projsim"
	"github.com/projsim/projsim/internal/modelfile"
)

var (
	runTrials  int
	runSeed    uint64
	runPolicy  string
	runHorizon int
	runJSON    bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the simulation and print the schedule report",
	RunE: func(cmd *cobra.Command, args []string) error {
		project, trials, err := modelfile.Load(modelPath)
		if err != nil {
			return err
		}

		if cmd.Flags().Changed("trials") {
			trials = runTrials
		}
		if cmd.Flags().Changed("seed") {
			project.Config.Seed = runSeed
		}
		if cmd.Flags().Changed("policy") {
			policy, err := projsim.ParsePolicy(runPolicy)
			if err != nil {
				return err
			}
			project.Config.Policy = policy
		}
		if cmd.Flags().Changed("horizon") {
			project.Config.Horizon = runHorizon
		}
		project.Config.Logger = newLogger()

		for _, w := range project.Audit() {
			fmt.Fprintln(cmd.ErrOrStderr(), "warning:", w)
		}

		results, err := projsim.Run(cmd.Context(), project, trials)
		if err != nil {
			return err
		}
		if runJSON {
			return printJSON(cmd, results)
		}
		printSummary(cmd, project.Config.StepSize, results)
		return nil
	},
}

func init() {
	runCmd.Flags().IntVar(&runTrials, "trials", 1, "number of Monte-Carlo trials")
	runCmd.Flags().Uint64Var(&runSeed, "seed", 0, "top-level random seed")
	runCmd.Flags().StringVar(&runPolicy, "policy", "topological", "allocation policy (topological, shortest-first, most-successors, min-slack)")
	runCmd.Flags().IntVar(&runHorizon, "horizon", 0, "maximum number of steps per trial")
	runCmd.Flags().BoolVar(&runJSON, "json", false, "print the report as JSON")
	rootCmd.AddCommand(runCmd)
}

func printSummary(cmd *cobra.Command, stepSize int, results *projsim.TrialResults) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "trials: %d completed, %d failed\n",
		results.Completed, len(results.Trials)-results.Completed)
	if results.Completed > 0 {
		fmt.Fprintf(out, "duration: min %d, mean %.1f, max %d steps\n",
			results.MinDuration, results.MeanDuration, results.MaxDuration)
		if stepSize > 1 {
			fmt.Fprintf(out, "calendar time: min %d, max %d units at %d per step\n",
				results.MinDuration*stepSize, results.MaxDuration*stepSize, stepSize)
		}
	}

	for _, tr := range results.Trials {
		if tr.Err != nil {
			fmt.Fprintf(out, "trial %d: %v\n", tr.Trial, tr.Err)
		}
	}

	if results.Completed == 0 {
		return
	}

	w := tabwriter.NewWriter(out, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "task\ton critical path")
	for id, n := range sortedCriticality(results) {
		fmt.Fprintf(w, "%s\t%d/%d trials\n", id, n, results.Completed)
	}
	w.Flush()

	first := firstCompleted(results)
	fmt.Fprintln(out, "utilization (first completed trial):")
	for _, u := range first.Utilization {
		fmt.Fprintf(out, "  %s\t%.0f%% (%d/%d steps)\n", u.Resource, u.Rate()*100, u.Busy, u.Steps)
	}
}

func sortedCriticality(results *projsim.TrialResults) func(yield func(projsim.TaskID, int) bool) {
	first := firstCompleted(results)
	return func(yield func(projsim.TaskID, int) bool) {
		for _, t := range first.Critical.Timings {
			if n, ok := results.Criticality[t.Task]; ok {
				if !yield(t.Task, n) {
					return
				}
			}
		}
	}
}

func firstCompleted(results *projsim.TrialResults) *projsim.TrialResult {
	for i := range results.Trials {
		if results.Trials[i].Completed {
			return &results.Trials[i]
		}
	}
	return nil
}

type trialJSON struct {
	Trial       int                           `json:"trial"`
	Completed   bool                          `json:"completed"`
	Duration    int                           `json:"duration"`
	Error       string                        `json:"error,omitempty"`
	Critical    *projsim.CriticalPathReport   `json:"critical,omitempty"`
	Utilization []projsim.ResourceUtilization `json:"utilization"`
}

type reportJSON struct {
	Completed    int                    `json:"completed"`
	MinDuration  int                    `json:"min_duration"`
	MaxDuration  int                    `json:"max_duration"`
	MeanDuration float64                `json:"mean_duration"`
	Criticality  map[projsim.TaskID]int `json:"criticality"`
	Trials       []trialJSON            `json:"trials"`
}

func printJSON(cmd *cobra.Command, results *projsim.TrialResults) error {
	rep := reportJSON{
		Completed:    results.Completed,
		MinDuration:  results.MinDuration,
		MaxDuration:  results.MaxDuration,
		MeanDuration: results.MeanDuration,
		Criticality:  results.Criticality,
	}
	for _, tr := range results.Trials {
		tj := trialJSON{
			Trial:       tr.Trial,
			Completed:   tr.Completed,
			Duration:    tr.Duration,
			Critical:    tr.Critical,
			Utilization: tr.Utilization,
		}
		if tr.Err != nil {
			tj.Error = tr.Err.Error()
		}
		rep.Trials = append(rep.Trials, tj)
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}
