// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

// Package projsim simulates project schedules over discrete time. A project
// is a set of workflows whose tasks are linked by precedence edges, a pool of
// typed resources with per-capability skills and availability calendars, and
// an optional layer of teams and components that further constrain when and
// by whom each task may run. The engine advances the whole model one step at
// a time, matching ready tasks to eligible resources under a configurable
// prioritization policy, and records every state transition in an append-only
// execution log.
//
// Task durations are either fixed work amounts or draws from probability
// distributions, so a single model answers both deterministic and stochastic
// questions. Running many trials with [Run] yields makespan statistics and
// per-task criticality across the batch; each trial consumes its own random
// stream derived from the top-level seed, making every batch reproducible and
// safe to run on parallel workers.
//
// Beyond raw schedules, the package derives critical-path reports in two
// modes: from an execution log, reflecting resource contention as it actually
// played out, and from planned durations alone, the classic what-if analysis
// that ignores contention. A static [Project.Audit] pass flags tasks that no
// resource in scope could ever execute, before any trial is spent on them.
package projsim
