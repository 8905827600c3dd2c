// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package projsim

import (
	"fmt"
	"math"
	"math/rand/v2"
)

// DistKind identifies the family of a [DurationSpec].
type DistKind int

const (
	DistFixed DistKind = iota
	DistNormal
	DistUniform
	DistTriangular
)

func (k DistKind) String() string {
	switch k {
	case DistFixed:
		return "fixed"
	case DistNormal:
		return "normal"
	case DistUniform:
		return "uniform"
	case DistTriangular:
		return "triangular"
	default:
		return fmt.Sprintf("DistKind(%d)", int(k))
	}
}

// A DurationSpec describes how much work a task requires, either as a fixed
// integer number of work units or as a draw from a probability distribution.
// Distribution specs are sampled exactly once per trial, when the task is
// instantiated; see [DurationVariableDaily] for the only exception.
type DurationSpec struct {
	Kind DistKind

	// Value is the work amount for DistFixed.
	Value int

	// Mean and SD parameterize DistNormal.
	Mean float64
	SD   float64

	// Min, Max and Mode parameterize DistUniform (Min, Max) and
	// DistTriangular (Min, Mode, Max).
	Min  float64
	Max  float64
	Mode float64
}

// Fixed returns a spec that always yields n work units.
func Fixed(n int) DurationSpec {
	return DurationSpec{Kind: DistFixed, Value: n}
}

// NormalDist returns a spec drawn from a normal distribution.
func NormalDist(mean, sd float64) DurationSpec {
	return DurationSpec{Kind: DistNormal, Mean: mean, SD: sd}
}

// UniformDist returns a spec drawn uniformly from [min, max].
func UniformDist(min, max float64) DurationSpec {
	return DurationSpec{Kind: DistUniform, Min: min, Max: max}
}

// TriangularDist returns a spec drawn from a triangular distribution with
// the given lower bound, mode and upper bound.
func TriangularDist(min, mode, max float64) DurationSpec {
	return DurationSpec{Kind: DistTriangular, Min: min, Mode: mode, Max: max}
}

// validate reports why the spec cannot produce valid work amounts, or nil.
func (s DurationSpec) validate() error {
	switch s.Kind {
	case DistFixed:
		if s.Value < 0 {
			return fmt.Errorf("fixed work amount %d is negative", s.Value)
		}
	case DistNormal:
		if s.SD < 0 {
			return fmt.Errorf("normal standard deviation %g is negative", s.SD)
		}
		if s.Mean < 0 {
			return fmt.Errorf("normal mean %g is negative", s.Mean)
		}
	case DistUniform:
		if s.Min > s.Max {
			return fmt.Errorf("uniform bounds inverted: min %g > max %g", s.Min, s.Max)
		}
		if s.Min < 0 {
			return fmt.Errorf("uniform lower bound %g is negative", s.Min)
		}
	case DistTriangular:
		if !(s.Min <= s.Mode && s.Mode <= s.Max) {
			return fmt.Errorf("triangular parameters not ordered: min %g, mode %g, max %g",
				s.Min, s.Mode, s.Max)
		}
		if s.Min < 0 {
			return fmt.Errorf("triangular lower bound %g is negative", s.Min)
		}
	default:
		return fmt.Errorf("unknown distribution kind %d", int(s.Kind))
	}
	return nil
}

// sample draws one raw value. Fixed specs always return Value. The result
// may be negative for normal specs; the caller applies the configured
// [NegativeSample] policy before rounding.
func (s DurationSpec) sample(rng *rand.Rand) float64 {
	switch s.Kind {
	case DistFixed:
		return float64(s.Value)
	case DistNormal:
		return rng.NormFloat64()*s.SD + s.Mean
	case DistUniform:
		return s.Min + rng.Float64()*(s.Max-s.Min)
	case DistTriangular:
		// Inverse-CDF sampling.
		if s.Max == s.Min {
			return s.Min
		}
		u := rng.Float64()
		fc := (s.Mode - s.Min) / (s.Max - s.Min)
		if u < fc {
			return s.Min + math.Sqrt(u*(s.Max-s.Min)*(s.Mode-s.Min))
		}
		return s.Max - math.Sqrt((1-u)*(s.Max-s.Min)*(s.Max-s.Mode))
	default:
		return 0
	}
}

// planned returns the deterministic planning value of the spec: the fixed
// amount, or the distribution's expectation rounded to the nearest integer.
// Used for what-if critical-path analysis and slack-based prioritization.
func (s DurationSpec) planned() int {
	var v float64
	switch s.Kind {
	case DistFixed:
		return s.Value
	case DistNormal:
		v = s.Mean
	case DistUniform:
		v = (s.Min + s.Max) / 2
	case DistTriangular:
		v = (s.Min + s.Mode + s.Max) / 3
	}
	n := int(math.Round(v))
	if n < 0 {
		return 0
	}
	return n
}

// NegativeSample selects how a negative sampled work amount is handled.
type NegativeSample int

const (
	// NegativeClamp clamps negative samples to zero.
	NegativeClamp NegativeSample = iota
	// NegativeReject fails the trial with [InvalidDistributionParameters].
	NegativeReject
)

// DurationMode selects when distribution specs are re-sampled.
type DurationMode int

const (
	// DurationSampledOnce samples each task's total work exactly once per
	// trial. This is the default and keeps a task's duration a single draw.
	DurationSampledOnce DurationMode = iota

	// DurationVariableDaily additionally re-samples each assigned
	// resource's per-step output from its skill's normal noise (mean, sd).
	// Deterministic given a seed, but the draw pattern depends on the
	// executed schedule, so it is an explicit opt-in.
	DurationVariableDaily
)

func (m DurationMode) String() string {
	switch m {
	case DurationSampledOnce:
		return "sampled-once"
	case DurationVariableDaily:
		return "variable-daily"
	default:
		return fmt.Sprintf("DurationMode(%d)", int(m))
	}
}

// ParseDurationMode converts a configuration string to a [DurationMode].
func ParseDurationMode(s string) (DurationMode, error) {
	switch s {
	case "", "sampled-once":
		return DurationSampledOnce, nil
	case "variable-daily":
		return DurationVariableDaily, nil
	default:
		return 0, fmt.Errorf("%w: %q", errUnknownDurationMode, s)
	}
}

// sampleTotal draws a task's total work for one trial, applying the
// negative-sample policy and rounding to the nearest integer.
func sampleTotal(task *Task, spec DurationSpec, mode NegativeSample, rng *rand.Rand) (int, error) {
	v := spec.sample(rng)
	if v < 0 {
		if mode == NegativeReject {
			return 0, &InvalidDistributionParameters{
				Task:   task.ID,
				Reason: fmt.Sprintf("sampled work amount %g is negative", v),
			}
		}
		v = 0
	}
	return int(math.Round(v)), nil
}
