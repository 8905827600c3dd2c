// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package projsim

// ResourceUtilization reports how one resource spent a trial. Series holds
// the resource's effective state for every executed step, in step order.
type ResourceUtilization struct {
	Resource ResourceID
	Busy     int
	Steps    int
	Series   []ResourceState
}

// Rate returns the fraction of executed steps the resource spent working.
func (u ResourceUtilization) Rate() float64 {
	if u.Steps == 0 {
		return 0
	}
	return float64(u.Busy) / float64(u.Steps)
}

// A TrialResult is the complete outcome of one trial. Log is always a valid
// record, even when the trial failed: a horizon-exceeded trial yields the
// prefix executed before the horizon was reached and a nil CriticalPath.
type TrialResult struct {
	Trial       int
	Completed   bool
	Duration    int // makespan in steps
	Log         *ExecutionLog
	Critical    *CriticalPathReport
	Utilization []ResourceUtilization
	Err         error
}

// TrialResults aggregates a Monte-Carlo batch. Duration statistics cover
// completed trials only; Criticality counts, per task, how many completed
// trials placed it on the critical path.
type TrialResults struct {
	Trials       []TrialResult
	Completed    int
	MinDuration  int
	MaxDuration  int
	MeanDuration float64
	Criticality  map[TaskID]int
}

func aggregate(trials []TrialResult) *TrialResults {
	out := &TrialResults{
		Trials:      trials,
		Criticality: make(map[TaskID]int),
	}
	sum := 0
	for _, tr := range trials {
		if !tr.Completed {
			continue
		}
		if out.Completed == 0 || tr.Duration < out.MinDuration {
			out.MinDuration = tr.Duration
		}
		out.MaxDuration = max(out.MaxDuration, tr.Duration)
		sum += tr.Duration
		out.Completed++
		for _, id := range tr.Critical.CriticalPath {
			out.Criticality[id]++
		}
	}
	if out.Completed > 0 {
		out.MeanDuration = float64(sum) / float64(out.Completed)
	}
	return out
}

// utilization snapshots the per-resource series recorded during a trial.
func (st *simState) utilization() []ResourceUtilization {
	out := make([]ResourceUtilization, len(st.res))
	for ri := range st.res {
		series := st.util[ri]
		busy := 0
		for _, s := range series {
			if s == ResourceWorking {
				busy++
			}
		}
		out[ri] = ResourceUtilization{
			Resource: st.reg.resources[ri].ID,
			Busy:     busy,
			Steps:    len(series),
			Series:   series,
		}
	}
	return out
}
