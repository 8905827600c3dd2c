// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package projsim

import (
	"context"
	"errors"
	"math/rand/v2"
	"runtime"
	"sync"
)

// Run executes trials independent simulations of the project and aggregates
// their results. Each trial draws from its own random stream derived from
// the configured seed and the trial index, so trials are statistically
// independent while the whole batch stays reproducible from the single
// top-level seed.
//
// Trials share no mutable state and run fork-join on up to
// Config.Parallelism workers. A trial that exceeds the horizon or rejects a
// negative duration sample records its error in its [TrialResult] and the
// batch continues; Run itself returns an error only for an invalid call or
// a canceled context.
func Run(ctx context.Context, p *Project, trials int) (*TrialResults, error) {
	if p == nil {
		return nil, ErrNilProject
	}
	if trials <= 0 {
		trials = 1
	}
	logger := p.Config.Logger

	workers := p.Config.Parallelism
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	workers = min(workers, trials)

	results := make([]TrialResult, trials)
	indexes := make(chan int)

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				results[i] = runTrial(ctx, p, i)
			}
		}()
	}

feed:
	for i := range trials {
		select {
		case indexes <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(indexes)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, tr := range results {
		if tr.Err != nil {
			logger.Warn("trial failed", "trial", tr.Trial, "error", tr.Err)
		}
	}
	out := aggregate(results)
	logger.Debug("batch complete",
		"trials", trials,
		"completed", out.Completed,
		"mean_duration", out.MeanDuration)
	return out, nil
}

// runTrial executes one trial on a private random stream and state copy.
func runTrial(ctx context.Context, p *Project, trial int) TrialResult {
	rng := rand.New(rand.NewPCG(p.Config.Seed, uint64(trial)+1))

	st, err := newSimState(p, trial, rng)
	if err != nil {
		return TrialResult{Trial: trial, Err: err, Log: &ExecutionLog{}}
	}

	makespan, err := st.run(ctx)
	result := TrialResult{
		Trial:       trial,
		Duration:    makespan,
		Log:         st.log,
		Utilization: st.utilization(),
		Err:         err,
	}
	if err == nil {
		result.Completed = true
		starts, finishes := st.schedule()
		result.Critical = st.reg.criticalFromSchedule(starts, finishes)
	} else if !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		p.Config.Logger.Debug("trial incomplete", "trial", trial, "steps", makespan)
	}
	return result
}
